package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AbsolutizeLocalURLs rewrites relative img[src] and a[href] values to
// absolute file:// URLs under baseDir. It is applied before an HTML document
// is loaded from a temporary file (PDF rendering), where relative references
// left unresolved by the rewrite would otherwise point into the temp dir.
// If baseDir is empty, returns the HTML unchanged.
func AbsolutizeLocalURLs(htmlContent, baseDir string) (string, error) {
	if baseDir == "" {
		return htmlContent, nil
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	walkLocalURLs(doc, absBase)
	return renderHTML(doc, isFragment)
}

// parseHTML parses a full document or a body fragment.
func parseHTML(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders doc; fragments render children only.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func walkLocalURLs(n *html.Node, baseDir string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			absolutizeAttr(n, "src", baseDir)
		case atom.A:
			absolutizeAttr(n, "href", baseDir)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkLocalURLs(c, baseDir)
	}
}

func absolutizeAttr(n *html.Node, key, baseDir string) {
	for i, attr := range n.Attr {
		if attr.Key != key || !isLocalRelative(attr.Val) {
			continue
		}
		abs := filepath.Join(baseDir, filepath.FromSlash(attr.Val))
		n.Attr[i].Val = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}
}

// isLocalRelative reports whether v is a relative filesystem reference.
// Anything with a URL scheme, anchors and absolute paths are left alone.
func isLocalRelative(v string) bool {
	if v == "" || strings.HasPrefix(v, "#") || strings.HasPrefix(v, "//") || filepath.IsAbs(v) {
		return false
	}
	if u, err := url.Parse(v); err == nil && u.Scheme != "" {
		return false
	}
	return true
}
