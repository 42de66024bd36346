package kabutan

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// nonVisible lists elements whose text never shows on the rendered page.
const nonVisible = "script, style, noscript, template"

// PageText flattens an HTML document to its visible text. Text nodes are concatenated
// as-is with no separator, so the page's own whitespace decides token boundaries.
func PageText(r io.Reader) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find(nonVisible).Remove()

	return doc.Text(), nil
}
