package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText returns the text content of `node` with non-printable runes
// dropped and runs of whitespace collapsed.
func CleanText(node *html.Node) string {
	text := GetText(node)
	text = strings.Join(strings.Fields(text), " ")
	text = removeNonPrintable(text)
	return strings.TrimSpace(text)
}
