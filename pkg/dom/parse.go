package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML builds a page from markup. Declarative shadow roots
// (<template shadowrootmode="open">) are attached to their parent element.
// Only elements are kept; text and comments carry no addressable identity.
func ParseHTML(r io.Reader, opts ...WindowOption) (*Window, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}
	w := NewWindow(opts...)
	doc := w.Document()
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			convert(doc, doc, c)
		}
	}
	return w, nil
}

// ParseHTMLString is ParseHTML over a string.
func ParseHTMLString(markup string, opts ...WindowOption) (*Window, error) {
	return ParseHTML(strings.NewReader(markup), opts...)
}

func convert(doc *Document, parent ParentNode, n *html.Node) {
	if n.DataAtom == atom.Template {
		if host, ok := parent.(*Element); ok && shadowMode(n) == "open" {
			shadow := host.AttachShadow()
			convertChildren(doc, shadow, n)
			return
		}
	}
	el := doc.CreateElement(n.Data)
	for _, a := range n.Attr {
		el.SetAttribute(a.Key, a.Val)
	}
	parent.AppendChild(el)
	convertChildren(doc, el, n)
}

func convertChildren(doc *Document, parent ParentNode, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			convert(doc, parent, c)
		}
	}
}

func shadowMode(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "shadowrootmode" || a.Key == "shadowroot" {
			return strings.ToLower(a.Val)
		}
	}
	return ""
}
