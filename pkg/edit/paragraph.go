package edit

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	paragraphBreak = regexp.MustCompile(`\n\n+`)
	stripPolicy    = bluemonday.StrictPolicy()
)

// RenderDescription turns description text into one <p> per block delimited by blank lines,
// with single line breaks inside a block rendered as <br>. Text is escaped.
func RenderDescription(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var sb strings.Builder
	for _, block := range paragraphBreak.Split(text, -1) {
		lines := strings.Split(block, "\n")
		for i, l := range lines {
			lines[i] = html.EscapeString(l)
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.Join(lines, "<br>"))
		sb.WriteString("</p>")
	}
	return sb.String()
}

// ReadDescription reconstructs description text from edited paragraph markup.
// Each <p> contributes its trimmed text with <br> as a line break, blocks are joined with a blank line.
// Markup without paragraphs is read as a single block. No markup survives into the result.
func ReadDescription(markup string) (string, error) {
	nodes, err := nethtml.ParseFragment(strings.NewReader(markup), &nethtml.Node{
		Type:     nethtml.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return "", fmt.Errorf("parse description markup: %w", err)
	}

	var paragraphs []string
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode && n.DataAtom == atom.P {
			paragraphs = append(paragraphs, strings.TrimSpace(innerText(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n"), nil
	}

	return strings.TrimSpace(innerText(nodes...)), nil
}

// ReadTitle reads an edited single-line field, dropping any markup
func ReadTitle(markup string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(markup)))
}

// innerText collects text of nodes with <br> as newline and div blocks separated by newlines
func innerText(nodes ...*nethtml.Node) string {
	var sb strings.Builder
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		switch {
		case n.Type == nethtml.TextNode:
			sb.WriteString(n.Data)
			return
		case n.Type == nethtml.ElementNode && n.DataAtom == atom.Br:
			sb.WriteString("\n")
			return
		case n.Type == nethtml.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			return
		}
		block := n.Type == nethtml.ElementNode && n.DataAtom == atom.Div
		if block && sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return sb.String()
}
