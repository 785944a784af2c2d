package receipt

import (
	"errors"
	"fmt"
	"os"
	"robotorder/lib/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

var ErrMissingArtifact = errors.New("receipt artifact does not exist")

func init() {
	// pdfcpu otherwise writes its default config into the user's config dir
	api.DisableConfigDir()
}

var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// ugc already keeps id, class carries the receipt badges
	p.AllowAttrs("class").Globally()
	return p
}()

// 1: sanitized receipt markup
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt</title>
<style>
body { font-family: sans-serif; margin: 2em; }
.badge { font-weight: bold; }
</style>
</head>
<body>
%s
</body>
</html>
`

// Document turns the inner html of the storefront's receipt element into a
// standalone html page, with scripts and event handlers stripped.
func Document(innerHTML string) string {
	return fmt.Sprintf(documentTemplate, strings.TrimSpace(policy.Sanitize(innerHTML)))
}

// Code returns the storefront's order code printed on the receipt, or an
// empty string when the receipt carries none.
func Code(innerHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(innerHTML))
	if err != nil {
		return ""
	}
	badge := doc.Find(".badge-success").First()
	if len(badge.Nodes) == 0 {
		return ""
	}
	return htmlutil.CleanText(badge.Nodes[0])
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, path)
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissingArtifact, path)
	}
	return nil
}

// Embed appends `imagePath` to the pdf at `pdfPath` as a new page, in place.
// Both files must already exist.
func Embed(pdfPath, imagePath string) error {
	err := requireFile(imagePath)
	if err != nil {
		return err
	}
	err = requireFile(pdfPath)
	if err != nil {
		return err
	}

	err = api.ImportImagesFile([]string{imagePath}, pdfPath, pdfcpu.DefaultImportConfig(), nil)
	if err != nil {
		return fmt.Errorf("append %s to %s: %w", imagePath, pdfPath, err)
	}
	return nil
}

// PageCount returns the number of pages of the pdf at `path`.
func PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}
