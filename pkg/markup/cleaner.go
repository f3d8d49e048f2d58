// Package markup prepares page markup before it is sent to the suggestion
// service: it strips non-structural noise and can cap the size of the result.
package markup

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Cleaned is page markup reduced to the structure and attributes useful for
// writing a locator.
type Cleaned struct {
	HTML        string
	Title       string
	Description string
	Truncated   bool
}

// skipped elements are dropped together with their content.
var skipped = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"embed":    true,
	"object":   true,
	"canvas":   true,
	"svg":      true,
}

var blocks = map[string]bool{
	"div": true, "p": true, "section": true, "article": true, "header": true,
	"footer": true, "nav": true, "main": true, "aside": true, "dialog": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "table": true, "thead": true, "tbody": true,
	"tr": true, "td": true, "th": true, "form": true, "fieldset": true,
	"blockquote": true, "pre": true,
}

var voids = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// targetingAttrs are kept on every element.
var targetingAttrs = map[string]bool{
	"id":          true,
	"class":       true,
	"name":        true,
	"role":        true,
	"title":       true,
	"type":        true,
	"for":         true,
	"placeholder": true,
	"value":       true,
	"href":        true,
	"alt":         true,
}

// tagAttrs are kept only on the given element.
var tagAttrs = map[string]map[string]bool{
	"a":     {"target": true},
	"img":   {"src": true},
	"form":  {"action": true, "method": true},
	"table": {"summary": true},
	"label": {"for": true},
}

// Clean parses raw markup and rebuilds it without scripts, styles, comments
// and other noise, keeping only attributes a locator can target. When maxChars
// is positive, text stops being emitted once the output reaches that size;
// elements already open are still closed.
func Clean(raw string, maxChars int) (*Cleaned, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &cleaner{max: maxChars}
	c.node(doc, 0)

	return &Cleaned{
		HTML:        strings.TrimSpace(c.b.String()),
		Title:       findTitle(doc),
		Description: findMetaDescription(doc),
		Truncated:   c.truncated,
	}, nil
}

type cleaner struct {
	b         strings.Builder
	max       int
	truncated bool
}

func (c *cleaner) full() bool {
	return c.max > 0 && c.b.Len() >= c.max
}

func (c *cleaner) node(n *html.Node, depth int) {
	if c.truncated {
		return
	}
	if c.full() {
		c.truncated = true
		return
	}

	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return
	case html.TextNode:
		c.text(n.Data)
	case html.ElementNode:
		c.element(n, depth)
	default:
		c.children(n, depth)
	}
}

func (c *cleaner) children(n *html.Node, depth int) {
	for child := n.FirstChild; child != nil && !c.truncated; child = child.NextSibling {
		c.node(child, depth)
	}
}

func (c *cleaner) text(data string) {
	text := strings.Join(strings.Fields(data), " ")
	if text == "" {
		return
	}
	text = html.EscapeString(text)

	if c.max > 0 && c.b.Len()+len(text) > c.max {
		remaining := c.max - c.b.Len()
		// Cut on a rune boundary
		for remaining > 0 && !utf8.RuneStart(text[remaining]) {
			remaining--
		}
		c.b.WriteString(text[:remaining])
		c.b.WriteString("...")
		c.truncated = true
		return
	}
	c.b.WriteString(text)
}

func (c *cleaner) element(n *html.Node, depth int) {
	tag := strings.ToLower(n.Data)
	if skipped[tag] {
		return
	}

	block := blocks[tag]
	if block {
		c.indent(depth)
	}

	c.b.WriteString("<")
	c.b.WriteString(tag)
	for _, attr := range n.Attr {
		if keepAttr(tag, attr.Key) {
			fmt.Fprintf(&c.b, ` %s="%s"`, attr.Key, html.EscapeString(attr.Val))
		}
	}
	c.b.WriteString(">")

	if voids[tag] {
		return
	}

	c.children(n, depth+1)

	if block {
		c.indent(depth)
	}
	c.b.WriteString("</")
	c.b.WriteString(tag)
	c.b.WriteString(">")
}

func (c *cleaner) indent(depth int) {
	c.b.WriteString("\n")
	c.b.WriteString(strings.Repeat("  ", depth))
}

func keepAttr(tag, attr string) bool {
	attr = strings.ToLower(attr)
	if targetingAttrs[attr] {
		return true
	}
	if strings.HasPrefix(attr, "data-") || strings.HasPrefix(attr, "aria-") {
		return true
	}
	return tagAttrs[tag][attr]
}

// find returns the first element node accepted by match, depth first.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func findTitle(doc *html.Node) string {
	n := find(doc, func(n *html.Node) bool { return n.Data == "title" })
	if n == nil || n.FirstChild == nil || n.FirstChild.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(n.FirstChild.Data)
}

func findMetaDescription(doc *html.Node) string {
	n := find(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attrValue(n, "name") == "description" && attrValue(n, "content") != ""
	})
	if n == nil {
		return ""
	}
	return strings.TrimSpace(attrValue(n, "content"))
}
