package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// launchArgs keeps the rendering processes cheap enough to run several
// browsers side by side on a small machine.
var launchArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--disable-web-security",
	"--disable-features=VizDisplayCompositor",
	"--memory-pressure-off",
	"--max_old_space_size=512",
}

// Launch starts the Playwright driver, pre-launches count headless Chromium
// instances, and wraps them in a Pool. On any launch failure the already
// started browsers and the driver are torn down before returning.
func Launch(count int, logger *zap.Logger) (*Pool, error) {
	if count <= 0 {
		return nil, fmt.Errorf("browser count must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("inicializando navegadores", zap.Int("max_browsers", count))

	pw, err := playwright.Run(&playwright.RunOptions{SkipInstallBrowsers: true})
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	instances := make([]Instance, 0, count)
	for i := 0; i < count; i++ {
		b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(true),
			Args:     launchArgs,
		})
		if err != nil {
			for _, inst := range instances {
				_ = inst.Close()
			}
			_ = pw.Stop()
			return nil, fmt.Errorf("launch chromium %d: %w", i, err)
		}
		instances = append(instances, &chromiumInstance{browser: b})
	}
	return NewPool(instances, pw.Stop, logger)
}

type chromiumInstance struct {
	browser playwright.Browser
}

func (c *chromiumInstance) NewSession(opts SessionOptions) (Session, error) {
	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: 1920, Height: 1080},
		IgnoreHttpsErrors: playwright.Bool(true),
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.Locale != "" {
		ctxOpts.Locale = playwright.String(opts.Locale)
	}
	if opts.AcceptLanguage != "" {
		ctxOpts.ExtraHttpHeaders = map[string]string{
			"Accept-Language": opts.AcceptLanguage,
		}
	}
	browserCtx, err := c.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	if opts.NavigationTimeout > 0 {
		browserCtx.SetDefaultNavigationTimeout(float64(opts.NavigationTimeout.Milliseconds()))
	}
	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	return &chromiumSession{
		ctx:  browserCtx,
		page: page,
		opts: opts,
	}, nil
}

func (c *chromiumInstance) Close() error {
	if err := c.browser.Close(); err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

type chromiumSession struct {
	ctx  playwright.BrowserContext
	page playwright.Page
	opts SessionOptions
}

// Fetch navigates to url, waits for DOM content plus a fixed settle delay so
// late scripts can inject contact markup, and returns the rendered HTML.
func (s *chromiumSession) Fetch(url string) (FetchResult, error) {
	gotoOpts := playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}
	if s.opts.NavigationTimeout > 0 {
		gotoOpts.Timeout = playwright.Float(float64(s.opts.NavigationTimeout.Milliseconds()))
	}
	resp, err := s.page.Goto(url, gotoOpts)
	if err != nil {
		return FetchResult{}, fmt.Errorf("goto %s: %w", url, err)
	}
	status := 0
	if resp != nil {
		status = resp.Status()
	}
	if status >= 400 {
		return FetchResult{Status: status}, nil
	}
	if s.opts.SettleDelay > 0 {
		s.page.WaitForTimeout(float64(s.opts.SettleDelay.Milliseconds()))
	}
	content, err := s.page.Content()
	if err != nil {
		return FetchResult{Status: status}, fmt.Errorf("page content: %w", err)
	}
	return FetchResult{Status: status, Content: content}, nil
}

func (s *chromiumSession) Close() {
	_ = s.page.Close()
	_ = s.ctx.Close()
}
