package workerpool

import (
	"context"

	"jobpipe/internal/browser"
)

// BrowserOpener adapts *browser.Manager to the pool's pageOpener
// interface. Go's interface satisfaction is structural but exact on
// method signatures, so OpenPage's concrete *browser.Page return type
// needs this thin wrapper rather than matching pageOpener directly.
type BrowserOpener struct {
	Manager *browser.Manager
}

// OpenPage implements pageOpener.
func (b BrowserOpener) OpenPage(ctx context.Context) (pageHandle, error) {
	page, err := b.Manager.OpenPage(ctx)
	if err != nil {
		return nil, err
	}
	return page, nil
}
