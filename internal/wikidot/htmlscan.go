package wikidot

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var pageIDPattern = regexp.MustCompile(`WIKIREQUEST\.info\.pageId\s*=\s*(\d+)\s*;`)

// errorBanner returns the text of every <h2 class="error"> element, joined
// with a space. The login screen uses these banners to report rejected
// credentials.
func errorBanner(doc []byte) (string, bool) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return "", false
	}
	var texts []string
	walkNodes(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.H2 && hasClass(n, "error") {
			if text := strings.TrimSpace(textContent(n)); text != "" {
				texts = append(texts, text)
			}
		}
	})
	if len(texts) == 0 {
		return "", false
	}
	return strings.Join(texts, " "), true
}

// extractPageID scans the <script> children of <head> that mention
// WIKIREQUEST for the page ID assignment.
func extractPageID(doc string) (int, bool) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return 0, false
	}
	head := findNode(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Head
	})
	if head == nil {
		return 0, false
	}

	for s := head.FirstChild; s != nil; s = s.NextSibling {
		if s.Type != html.ElementNode || s.DataAtom != atom.Script {
			continue
		}
		text := textContent(s)
		if !strings.Contains(text, "WIKIREQUEST") {
			continue
		}
		m := pageIDPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return id, true
	}
	return 0, false
}

// findNode returns the first node in document order matching pred
func findNode(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, pred); found != nil {
			return found
		}
	}
	return nil
}

// walkNodes calls visit for n and every descendant in document order
func walkNodes(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walkNodes(child, visit)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
