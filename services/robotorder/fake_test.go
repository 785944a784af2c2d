package robotorder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

var errNoElement = errors.New("no element matches selector")

// fakeStorefront imitates the order site closely enough for the processor:
// a login form, a modal every time the order form shows up, and a receipt
// once a submission goes through.
type fakeStorefront struct {
	t   testing.TB
	cfg Config

	loggedIn     bool
	onOrderPage  bool
	modal        bool
	previewShown bool
	receipt      bool
	form         map[string]string

	// submissions that produce no receipt before one goes through, negative
	// means never
	rejectSubmits int
	// submit clicks that error before the rejections start counting
	brokenClicks int
	// the modal is never shown when set
	noModal bool

	submitClicks int
	receipts     int
	// order of the paths the preview screenshots were written to
	screenshots []string
	calls       []string
}

func newFakeStorefront(t testing.TB, cfg Config) *fakeStorefront {
	return &fakeStorefront{t: t, cfg: cfg, form: map[string]string{}}
}

func (f *fakeStorefront) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeStorefront) showOrderForm() {
	f.onOrderPage = true
	f.modal = !f.noModal
	f.previewShown = false
	f.receipt = false
	f.form = map[string]string{}
}

func (f *fakeStorefront) Navigate(ctx context.Context, url string) error {
	f.record("navigate %s", url)
	switch url {
	case f.cfg.StoreUrl:
		f.onOrderPage = false
		return nil
	case f.cfg.OrderPageUrl:
		if !f.loggedIn {
			return errors.New("not logged in")
		}
		f.showOrderForm()
		return nil
	}
	return fmt.Errorf("unknown url %s", url)
}

func (f *fakeStorefront) blocked() error {
	if f.modal {
		return errors.New("element is covered by the modal")
	}
	return nil
}

func (f *fakeStorefront) Fill(ctx context.Context, selector, value string) error {
	f.record("fill %s", selector)
	if f.onOrderPage {
		if err := f.blocked(); err != nil {
			return err
		}
	}
	f.form[selector] = value
	return nil
}

func (f *fakeStorefront) SelectOption(ctx context.Context, selector, value string) error {
	f.record("select %s %s", selector, value)
	if err := f.blocked(); err != nil {
		return err
	}
	f.form[selector] = value
	return nil
}

func (f *fakeStorefront) Click(ctx context.Context, selector string) error {
	f.record("click %s", selector)
	sel := f.cfg.Selectors

	switch {
	case selector == sel.LoginButton:
		f.loggedIn = f.form[sel.Username] == "maria" && f.form[sel.Password] == "thoushallnotpass"
		f.form = map[string]string{}
		return nil
	case selector == sel.ModalOK:
		if !f.modal {
			return errNoElement
		}
		f.modal = false
		return nil
	}

	if err := f.blocked(); err != nil {
		return err
	}
	switch {
	case strings.HasPrefix(selector, "#id-body-"):
		f.form["body"] = strings.TrimPrefix(selector, "#id-body-")
	case selector == sel.Preview:
		f.previewShown = true
	case selector == sel.Submit:
		f.submitClicks++
		if f.submitClicks <= f.brokenClicks {
			return errors.New("submit button is not clickable")
		}
		rejected := f.submitClicks - f.brokenClicks
		if f.rejectSubmits < 0 || rejected <= f.rejectSubmits {
			return nil
		}
		f.receipt = true
		f.receipts++
	case selector == sel.OrderAnother:
		if !f.receipt {
			return errNoElement
		}
		f.showOrderForm()
	default:
		return fmt.Errorf("%w: %s", errNoElement, selector)
	}
	return nil
}

func (f *fakeStorefront) WaitVisible(ctx context.Context, selector string) error {
	f.record("wait %s", selector)
	if selector == f.cfg.Selectors.LoggedIn && f.loggedIn {
		return nil
	}
	if selector == f.cfg.Selectors.Receipt && f.receipt {
		return nil
	}
	return fmt.Errorf("%w: %s", errNoElement, selector)
}

func (f *fakeStorefront) Count(ctx context.Context, selector string) (int, error) {
	if selector == f.cfg.Selectors.Receipt && f.receipt {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeStorefront) InnerHTML(ctx context.Context, selector string) (string, error) {
	if selector != f.cfg.Selectors.Receipt || !f.receipt {
		return "", fmt.Errorf("%w: %s", errNoElement, selector)
	}
	return fmt.Sprintf(
		`<h3>Receipt</h3><p class="badge badge-success">RSB-ROBO-ORDER-%d</p><div id="parts">Head: %s</div>`,
		f.receipts, f.form[f.cfg.Selectors.Head],
	), nil
}

func (f *fakeStorefront) Screenshot(ctx context.Context, selector, path string) error {
	if selector != f.cfg.Selectors.PreviewImage || !f.previewShown {
		return fmt.Errorf("%w: %s", errNoElement, selector)
	}
	writePNG(f.t, path)
	f.screenshots = append(f.screenshots, path)
	return nil
}

// RenderPDF writes a one page pdf, replacing whatever is at `path`.
func (f *fakeStorefront) RenderPDF(ctx context.Context, html, path string) error {
	if !strings.Contains(html, "<!DOCTYPE html>") {
		return errors.New("expected a full html document")
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	img := filepath.Join(f.t.TempDir(), "page.png")
	writePNG(f.t, img)
	return api.ImportImagesFile([]string{img}, path, pdfcpu.DefaultImportConfig(), nil)
}

func writePNG(t testing.TB, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	for x := 0; x < 30; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 8), B: uint8(y * 8), A: 255})
		}
	}
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		t.Fatal(err)
	}
}
