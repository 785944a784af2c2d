package browser

import "context"

// Page is a single browser tab. Selectors accept CSS or XPath unless a
// method says otherwise. Every call blocks until the action finished or the
// driver's own timeout expired.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// Fill replaces the value of an input by typing `value` into it.
	Fill(ctx context.Context, selector, value string) error
	// SelectOption picks the option with `value` of the <select> matched by
	// the CSS `selector`.
	SelectOption(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	WaitVisible(ctx context.Context, selector string) error
	// Count returns how many elements currently match, without waiting.
	Count(ctx context.Context, selector string) (int, error)
	InnerHTML(ctx context.Context, selector string) (string, error)
	// Screenshot writes a png of the first matching element to `path`.
	Screenshot(ctx context.Context, selector, path string) error
}

// PDFRenderer turns a standalone html document into a pdf file.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html, path string) error
}
