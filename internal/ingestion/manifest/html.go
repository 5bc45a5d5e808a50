package manifest

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// prose is the visible text of a page split into all text and the text
// inside innovation-marked elements.
type prose struct {
	all    []string
	marked []string
}

// extractProse walks an HTML fragment. Elements whose data-type or class
// matches a marker contribute their text to marked as well.
func extractProse(content string, markers map[string]struct{}) (prose, error) {
	var out prose
	if strings.TrimSpace(content) == "" {
		return out, nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return out, err
	}
	var walk func(n *html.Node, inMarked bool)
	walk = func(n *html.Node, inMarked bool) {
		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				out.all = append(out.all, text)
				if inMarked {
					out.marked = append(out.marked, text)
				}
			}
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			if !inMarked && isMarked(n, markers) {
				inMarked = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inMarked)
		}
	}
	for _, n := range nodes {
		walk(n, false)
	}
	return out, nil
}

func isMarked(n *html.Node, markers map[string]struct{}) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "data-type":
			if _, ok := markers[strings.ToLower(strings.TrimSpace(a.Val))]; ok {
				return true
			}
		case "class":
			for _, cls := range strings.Fields(a.Val) {
				if _, ok := markers[strings.ToLower(cls)]; ok {
					return true
				}
			}
		}
	}
	return false
}

// plainText strips markup from question and answer text.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	p, err := extractProse(s, nil)
	if err != nil {
		return s
	}
	return strings.Join(p.all, " ")
}
