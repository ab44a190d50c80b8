package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// ParseHTML parses a rendered page.
func ParseHTML(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

// ElementIDs returns, in document order, the ids that start with prefix.
func ElementIDs(t *testing.T, body, prefix string) []string {
	t.Helper()
	var ids []string
	walk(ParseHTML(t, body), func(n *html.Node) {
		if id := attr(n, "id"); n.Type == html.ElementNode && strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	})
	return ids
}

// TextByID returns the whitespace-normalised text of the element with id,
// and false when there is none.
func TextByID(t *testing.T, body, id string) (string, bool) {
	t.Helper()
	var found *html.Node
	walk(ParseHTML(t, body), func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
		}
	})
	if found == nil {
		return "", false
	}

	var sb strings.Builder
	walk(found, func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
	})
	return strings.Join(strings.Fields(sb.String()), " "), true
}

// InputValues returns the value attribute of every input named name.
func InputValues(t *testing.T, body, name string) []string {
	t.Helper()
	var values []string
	walk(ParseHTML(t, body), func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" && attr(n, "name") == name {
			values = append(values, attr(n, "value"))
		}
	})
	return values
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
