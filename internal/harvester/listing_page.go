package harvester

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"jobpipe/internal/browser"
	"jobpipe/pkg/utils"
)

// cardLinkSelectors locate each listing card's detail link, per platform.
// The stable slug is derived from that link's href: the last path segment
// for LinkedIn, the trailing numeric id for Naukri. Naukri's data-job-id
// card attribute is not read.
var cardLinkSelectors = map[utils.Platform]string{
	utils.PlatformLinkedIn: "a.job-card-container__link, a.base-card__full-link",
	utils.PlatformNaukri:   "a.title",
}

var cardTitleSelectors = map[utils.Platform]string{
	utils.PlatformLinkedIn: ".job-card-list__title",
	utils.PlatformNaukri:   "a.title",
}

// BrowserListingOpener opens real listings pages through the shared
// browser.Manager, implementing harvester's listingOpener/listingPage
// interfaces against the minimal consumed surface (§6).
type BrowserListingOpener struct {
	Manager *browser.Manager
}

func (o BrowserListingOpener) OpenListingPage(ctx context.Context) (listingPage, error) {
	page, err := o.Manager.OpenPage(ctx)
	if err != nil {
		return nil, err
	}
	return &browserListingPage{page: page}, nil
}

type browserListingPage struct {
	page *browser.Page
}

func (p *browserListingPage) Open(ctx context.Context, platform utils.Platform, role, location string) error {
	listingURL, err := buildListingURL(platform, role, location)
	if err != nil {
		return err
	}
	return p.page.Navigate(ctx, listingURL, 30*time.Second)
}

func (p *browserListingPage) Scroll(ctx context.Context) error {
	return p.page.Scroll(ctx)
}

func (p *browserListingPage) ExtractCards(ctx context.Context, platform utils.Platform) ([]Card, error) {
	linkSelector, ok := cardLinkSelectors[platform]
	if !ok {
		return nil, eris.Errorf("harvester: no card selector registered for platform %q", platform)
	}

	hrefs := p.page.QueryAttrAll(linkSelector, "href")
	titles := p.page.QueryTextAll(cardTitleSelectors[platform])

	cards := make([]Card, 0, len(hrefs))
	for i, href := range hrefs {
		detailURL, slug, err := canonicalizeCardURL(platform, href)
		if err != nil {
			continue
		}
		title := ""
		if i < len(titles) {
			title = strings.TrimSpace(titles[i])
		}
		cards = append(cards, Card{Slug: slug, URL: detailURL, RawTitle: title})
	}
	return cards, nil
}

func (p *browserListingPage) Close() error {
	return p.page.Close()
}

func buildListingURL(platform utils.Platform, role, location string) (string, error) {
	switch platform {
	case utils.PlatformLinkedIn:
		q := url.Values{}
		q.Set("keywords", role)
		if location != "" {
			q.Set("location", location)
		}
		return "https://www.linkedin.com/jobs/search/?" + q.Encode(), nil
	case utils.PlatformNaukri:
		slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(role), " ", "-"))
		if location != "" {
			locSlug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(location), " ", "-"))
			return fmt.Sprintf("https://www.naukri.com/%s-jobs-in-%s", slug, locSlug), nil
		}
		return fmt.Sprintf("https://www.naukri.com/%s-jobs", slug), nil
	default:
		return "", eris.Errorf("harvester: unknown platform %q", platform)
	}
}

// canonicalizeCardURL resolves a raw href into a full detail URL and
// derives the platform's stable slug (§4.2 step 2).
func canonicalizeCardURL(platform utils.Platform, href string) (string, string, error) {
	switch platform {
	case utils.PlatformLinkedIn:
		full, err := utils.ConvertToPublicLinkedInJobURL(href)
		if err != nil {
			return "", "", err
		}
		slug, err := utils.ExtractLinkedInJobID(full)
		if err != nil {
			return "", "", err
		}
		return full, slug, nil
	case utils.PlatformNaukri:
		full := href
		if !strings.HasPrefix(full, "http") {
			full = "https://www.naukri.com" + href
		}
		slug, err := utils.ExtractNaukriJobID(full)
		if err != nil {
			return "", "", err
		}
		return full, slug, nil
	default:
		return "", "", eris.Errorf("harvester: unknown platform %q", platform)
	}
}
