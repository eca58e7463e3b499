// Package verify loads published bundles in a headless browser to confirm
// that their public URLs serve an HTML document, the way the client app's web
// view will fetch them.
package verify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Options controls the behaviour of a page load.
type Options struct {
	// NavigationTimeout is the maximum duration to wait for a single page to
	// load. Defaults to 10 seconds if zero.
	NavigationTimeout time.Duration

	// TotalTimeout bounds browser startup plus every page load of one Check
	// call. Defaults to 60 seconds if zero.
	TotalTimeout time.Duration
}

// Page is what the browser observed when loading a URL.
type Page struct {
	// Status is the HTTP status of the document response, or zero if no
	// document response was observed.
	Status int64

	// MIMEType is the document's content type as reported by the browser,
	// without parameters.
	MIMEType string

	// Title is the document title after load.
	Title string

	// TTFB is the time between the request being sent and the first response
	// byte being received for the document.
	TTFB time.Duration
}

// Loader loads a single URL.
type Loader interface {
	Load(ctx context.Context, url string) (*Page, error)
}

// Browser is a Loader backed by headless Chrome. Each Browser owns one
// browser process; call Close when done.
type Browser struct {
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
}

// NewBrowser starts headless Chrome. The browser lives until Close is called,
// ctx is cancelled or opts.TotalTimeout elapses.
func NewBrowser(ctx context.Context, opts Options) (*Browser, error) {
	if opts.NavigationTimeout == 0 {
		opts.NavigationTimeout = 10 * time.Second
	}
	if opts.TotalTimeout == 0 {
		opts.TotalTimeout = 60 * time.Second
	}

	totalCtx, cancelTotal := context.WithTimeout(ctx, opts.TotalTimeout)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(totalCtx,
		append(
			chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
		)...,
	)

	// chromedp logs CDP events it cannot unmarshal when the installed Chrome
	// is newer than the pinned cdproto; those events are irrelevant here.
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...any) {}),
		chromedp.WithErrorf(func(string, ...any) {}),
		chromedp.WithDebugf(func(string, ...any) {}),
	)

	b := &Browser{
		opts: opts,
		ctx:  browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
			cancelTotal()
		},
	}

	// Running an empty action list allocates the browser, so every Load
	// opens a tab in the same process.
	if err := chromedp.Run(browserCtx); err != nil {
		b.Close()
		return nil, fmt.Errorf("verify: failed to start browser: %w", err)
	}
	return b, nil
}

// Load navigates a fresh tab to url and reports the document response.
func (b *Browser) Load(_ context.Context, url string) (*Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.ctx)
	defer cancelTab()

	doc := &documentResponse{}
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if ev, ok := ev.(*network.EventResponseReceived); ok && ev.Type == network.ResourceTypeDocument {
			doc.set(ev.Response)
		}
	})

	navCtx, cancelNav := context.WithTimeout(tabCtx, b.opts.NavigationTimeout)
	defer cancelNav()

	var title string
	if err := chromedp.Run(navCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Title(&title),
	); err != nil {
		if isTimeoutError(err) {
			return nil, fmt.Errorf("verify: navigation to %s timed out: %w", url, err)
		}
		return nil, fmt.Errorf("verify: navigation to %s failed: %w", url, err)
	}

	resp := doc.get()
	if resp == nil {
		return &Page{Title: title}, nil
	}
	return &Page{
		Status:   resp.Status,
		MIMEType: resp.MimeType,
		Title:    title,
		TTFB:     extractTTFB(resp),
	}, nil
}

// Close shuts down the browser.
func (b *Browser) Close() {
	b.cancel()
}

// documentResponse keeps the first document response seen by the listener
// goroutine.
type documentResponse struct {
	mu   sync.Mutex
	resp *network.Response
}

func (d *documentResponse) set(resp *network.Response) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.resp == nil {
		d.resp = resp
	}
}

func (d *documentResponse) get() *network.Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resp
}

// extractTTFB returns the time between the document request being sent and
// the first response byte. Chrome exposes this as ReceiveHeadersStart in
// ResourceTiming, in milliseconds relative to requestTime.
func extractTTFB(resp *network.Response) time.Duration {
	t := resp.Timing
	if t == nil || t.ReceiveHeadersStart < 0 {
		return 0
	}
	return time.Duration(t.ReceiveHeadersStart * float64(time.Millisecond))
}

// isTimeoutError reports whether err stems from a context deadline or
// cancellation.
func isTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
