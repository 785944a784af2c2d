package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("robotorder/lib/browser")

type ChromeOptions struct {
	Headed bool
	// path to a chrome/chromium binary, empty means chromedp's lookup
	ExecPath string
	// per action timeout, defaults to 30 seconds
	Timeout time.Duration
	// debug logger for the devtools protocol, nil disables it
	Logf func(string, ...any)
}

// Chrome drives one tab of a locally launched chrome.
type Chrome struct {
	tab     context.Context
	close   func()
	timeout time.Duration
}

var _ Page = (*Chrome)(nil)
var _ PDFRenderer = (*Chrome)(nil)

func NewChrome(ctx context.Context, opts ChromeOptions) (*Chrome, error) {
	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if opts.Headed {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocOpts = append(allocOpts, chromedp.WindowSize(1280, 1024))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)

	var ctxOpts []chromedp.ContextOption
	if opts.Logf != nil {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(opts.Logf))
	}
	tab, cancelTab := chromedp.NewContext(allocCtx, ctxOpts...)

	// the first Run starts the browser, it must not be given a context
	// that ends before the browser should
	err := chromedp.Run(tab)
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	return &Chrome{
		tab: tab,
		close: func() {
			cancelTab()
			cancelAlloc()
		},
		timeout: timeout,
	}, nil
}

func (c *Chrome) Close() {
	c.close()
}

// run executes actions on `tab`, bounded by the driver timeout and by
// the caller's `ctx`.
func (c *Chrome) run(ctx context.Context, tab context.Context, name, selector string, actions ...chromedp.Action) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	if selector != "" {
		span.SetAttributes(attribute.String("selector", selector))
	}

	runCtx, cancel := context.WithTimeout(tab, c.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		} else if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%s: timed out after %s: %w", name, c.timeout, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "browser action failed")
		return err
	}
	return nil
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, c.tab, "Navigate", "",
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (c *Chrome) Fill(ctx context.Context, selector, value string) error {
	return c.run(ctx, c.tab, "Fill", selector,
		chromedp.WaitVisible(selector, chromedp.BySearch),
		chromedp.Clear(selector, chromedp.BySearch),
		chromedp.SendKeys(selector, value, chromedp.BySearch),
	)
}

// react only picks up a changed <select> through its change event.
const selectScript = `(function(selector, value) {
	const el = document.querySelector(selector);
	if (!el) { throw new Error("no element matches " + selector); }
	el.value = value;
	el.dispatchEvent(new Event("change", { bubbles: true }));
	return el.value === value;
})(%q, %q)`

func (c *Chrome) SelectOption(ctx context.Context, selector, value string) error {
	var selected bool
	err := c.run(ctx, c.tab, "SelectOption", selector,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(selectScript, selector, value), &selected),
	)
	if err != nil {
		return err
	}
	if !selected {
		return fmt.Errorf("select %s: no option with value %q", selector, value)
	}
	return nil
}

func (c *Chrome) Click(ctx context.Context, selector string) error {
	return c.run(ctx, c.tab, "Click", selector,
		chromedp.Click(selector, chromedp.BySearch, chromedp.NodeVisible),
	)
}

func (c *Chrome) WaitVisible(ctx context.Context, selector string) error {
	return c.run(ctx, c.tab, "WaitVisible", selector,
		chromedp.WaitVisible(selector, chromedp.BySearch),
	)
}

func (c *Chrome) Count(ctx context.Context, selector string) (int, error) {
	var nodes []*cdp.Node
	err := c.run(ctx, c.tab, "Count", selector,
		chromedp.Nodes(selector, &nodes, chromedp.BySearch, chromedp.AtLeast(0)),
	)
	return len(nodes), err
}

func (c *Chrome) InnerHTML(ctx context.Context, selector string) (string, error) {
	var html string
	err := c.run(ctx, c.tab, "InnerHTML", selector,
		chromedp.InnerHTML(selector, &html, chromedp.BySearch),
	)
	return html, err
}

func (c *Chrome) Screenshot(ctx context.Context, selector, path string) error {
	var buf []byte
	err := c.run(ctx, c.tab, "Screenshot", selector,
		chromedp.ScrollIntoView(selector, chromedp.BySearch),
		chromedp.Screenshot(selector, &buf, chromedp.BySearch, chromedp.NodeVisible),
	)
	if err != nil {
		return err
	}
	return writeFile(path, buf)
}

// RenderPDF loads `html` into a fresh tab of the same browser and prints it.
func (c *Chrome) RenderPDF(ctx context.Context, html, path string) error {
	tab, closeTab := chromedp.NewContext(c.tab)
	defer closeTab()
	err := chromedp.Run(tab)
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}

	var buf []byte
	err = c.run(ctx, tab, "RenderPDF", "",
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return err
	}
	return writeFile(path, buf)
}

func writeFile(path string, contents []byte) error {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0644)
}
