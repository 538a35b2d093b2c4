// Package browser wraps go-rod (with go-rod/stealth) behind the minimal
// interface the core actually consumes (§6 "Browser runtime"): open a
// page, navigate with a timeout, read the post-navigation URL, query
// selectors, read text/content, and close. Adapted from the teacher's
// internal/scraper/engines/headed/browser.go launcher and stealth-page
// setup, stripped of its captcha-solving branch (auth-bypass is a
// declared non-goal).
package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Options configures the launcher. Mirrors the config.Config.Browser
// section so callers can pass it through directly.
type Options struct {
	Headless    bool
	StealthMode bool
	UserAgent   string
	StorePath   string
	Proxy       *ProxyDescriptor
}

// Manager launches and owns the lifecycle of browser processes, handing
// out Pages on request.
type Manager struct {
	opts     Options
	launcher *launcher.Launcher
	logger   *logrus.Logger

	mu       sync.Mutex
	browsers []*rod.Browser
}

// NewManager constructs a launcher with the same hardening flags the
// teacher uses to survive headless/container environments.
func NewManager(opts Options, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-web-security").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if opts.StorePath != "" {
		l = l.UserDataDir(opts.StorePath)
	}
	if chromePath := systemChromePath(); chromePath != "" {
		l = l.Bin(chromePath)
	}
	if opts.UserAgent != "" {
		l = l.Set("user-agent", opts.UserAgent)
	}
	if opts.Proxy != nil {
		l = l.Proxy(fmt.Sprintf("%s:%d", opts.Proxy.Host, opts.Proxy.Port))
	}

	return &Manager{opts: opts, launcher: l, logger: logger}
}

// Page is a single navigable page handle, the unit the worker pool opens
// and closes once per fetch (§4.5).
type Page struct {
	rodPage *rod.Page
	manager *Manager
}

// OpenPage launches (or reuses) a browser process and returns a fresh
// stealth-hardened page (§6 open_page).
func (m *Manager) OpenPage(ctx context.Context) (*Page, error) {
	browser, err := m.acquireBrowser(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "browser: acquire browser")
	}

	var page *rod.Page
	if m.opts.StealthMode {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, eris.Wrap(err, "browser: create page")
	}

	if err := configurePage(page, m.opts); err != nil {
		m.logger.WithError(err).Warn("browser: non-fatal page configuration failure")
	}

	return &Page{rodPage: page, manager: m}, nil
}

func (m *Manager) acquireBrowser(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.browsers {
		if isHealthy(b) {
			return b, nil
		}
	}

	controlURL, err := m.launcher.Launch()
	if err != nil {
		return nil, eris.Wrap(err, "browser: launch")
	}

	b := rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, eris.Wrap(err, "browser: connect")
	}

	m.browsers = append(m.browsers, b)
	return b, nil
}

// Close shuts down every browser process the manager launched. Called
// once at pipeline shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, b := range m.browsers {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.browsers = nil
	return firstErr
}

func isHealthy(b *rod.Browser) bool {
	return rod.Try(func() { b.MustVersion() }) == nil
}

func configurePage(page *rod.Page, opts Options) error {
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width: 1920, Height: 1080, DeviceScaleFactor: 1,
	}); err != nil {
		return err
	}
	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			return err
		}
	}
	return nil
}

// Navigate goes to url and waits for load, bounded by timeout (§6
// page.goto).
func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := rod.Try(func() {
		p.rodPage.Context(navCtx).MustNavigate(url).MustWaitLoad()
	})
	if err != nil {
		return eris.Wrapf(err, "browser: navigate to %s", url)
	}
	return nil
}

// URL returns the post-navigation URL (§6 page.url()).
func (p *Page) URL() string {
	info, err := p.rodPage.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

// Title returns the page title.
func (p *Page) Title() string {
	info, err := p.rodPage.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.Title
}

// QueryText runs a selector and returns its text content, or ("", false)
// when the selector matches nothing (§6 page.query / element.text()).
func (p *Page) QueryText(selector string) (string, bool) {
	el, err := p.rodPage.Element(selector)
	if err != nil || el == nil {
		return "", false
	}
	text, err := el.Text()
	if err != nil {
		return "", true
	}
	return text, true
}

// Content returns the full page text (body innerText), used by the state
// machine's closure-phrase and login-wall heuristics (§6 page.content()).
func (p *Page) Content() string {
	body, err := p.rodPage.Element("body")
	if err != nil || body == nil {
		return ""
	}
	text, err := body.Text()
	if err != nil {
		return ""
	}
	return text
}

// QueryAttrAll returns the named attribute's value from every element
// matching selector, in document order. Used by the harvester to pull
// href/data-job-id off repeated listing cards (§6 "query selectors",
// generalised to all matches rather than the first).
func (p *Page) QueryAttrAll(selector, attr string) []string {
	elements, err := p.rodPage.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		val, err := el.Attribute(attr)
		if err != nil || val == nil {
			continue
		}
		out = append(out, *val)
	}
	return out
}

// QueryTextAll returns the text content of every element matching
// selector, in document order.
func (p *Page) QueryTextAll(selector string) []string {
	elements, err := p.rodPage.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			continue
		}
		out = append(out, text)
	}
	return out
}

// Scroll scrolls the window to the bottom of the page, the trigger most
// infinite-scroll listing pages use to load the next batch of cards.
func (p *Page) Scroll(ctx context.Context) error {
	err := rod.Try(func() {
		p.rodPage.Context(ctx).Mouse.Scroll(0, 2000, 1)
	})
	if err != nil {
		return eris.Wrap(err, "browser: scroll")
	}
	return nil
}

// Close releases the page; safe to call on every exit path (§4.5).
func (p *Page) Close() error {
	if p.rodPage == nil {
		return nil
	}
	return p.rodPage.Close()
}

func systemChromePath() string {
	candidates := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
