package fetch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Browser fetches pages by rendering them in headless Chrome.
// Use it for setlist pages whose list is built by JavaScript.
type Browser struct {
	execPath string
	waitFor  string
	settle   time.Duration
}

// NewBrowser creates a headless browser fetcher.
// waitFor is a CSS selector that must be present before the DOM is captured;
// an empty selector only waits for the body.
func NewBrowser(waitFor string) *Browser {
	if waitFor == "" {
		waitFor = "body"
	}
	return &Browser{
		execPath: os.Getenv("CHROME_PATH"),
		waitFor:  waitFor,
		settle:   time.Second,
	}
}

// Fetch navigates to url and returns the rendered document.
func (b *Browser) Fetch(ctx context.Context, url string) (*Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.UserAgent(defaultUserAgent),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	var (
		body     string
		finalURL string
	)
	err := chromedp.Run(chromeCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(b.waitFor, chromedp.ByQuery),
		// Let client-side rendering finish
		chromedp.Sleep(b.settle),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &body, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: rendering page: %w", ErrNetwork, err)
	}

	zerolog.Ctx(ctx).Debug().Str("url", url).Int("bytes", len(body)).Msg("Rendered page")

	return &Page{
		URL:         url,
		FinalURL:    finalURL,
		Status:      "rendered",
		ContentType: "text/html; charset=utf-8",
		Body:        body,
	}, nil
}
