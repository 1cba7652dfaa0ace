package page

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMountID is the id of the mount point in the built-in skeleton
const DefaultMountID = "dashboards"

const skeleton = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title></title>
</head>
<body>
<div id="` + DefaultMountID + `"></div>
</body>
</html>`

// Document is an in-memory HTML page that dashboards are mounted into
type Document struct {
	root   *html.Node
	head   *html.Node
	body   *html.Node
	assets map[string]bool
}

// New creates a document from the built-in skeleton
func New(title string) *Document {
	doc, err := Parse(strings.NewReader(skeleton))
	if err != nil {
		panic(fmt.Sprintf("page: invalid skeleton: %v", err))
	}
	doc.SetTitle(title)
	return doc
}

// Parse reads a host page
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	d := &Document{root: root, assets: make(map[string]bool)}
	walk(root, func(n *html.Node) bool {
		switch {
		case n.Type == html.ElementNode && n.DataAtom == atom.Head && d.head == nil:
			d.head = n
		case n.Type == html.ElementNode && n.DataAtom == atom.Body && d.body == nil:
			d.body = n
		}
		return d.head == nil || d.body == nil
	})
	if d.head == nil || d.body == nil {
		return nil, fmt.Errorf("page has no head or body")
	}
	walk(d.head, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if src := Attr(n, "src"); src != "" {
				d.assets[src] = true
			}
			if n.DataAtom == atom.Link {
				if href := Attr(n, "href"); href != "" {
					d.assets[href] = true
				}
			}
		}
		return true
	})
	return d, nil
}

// ParseFile reads a host page from disk
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open host page: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// SetTitle replaces the text of the <title> element, creating it if needed
func (d *Document) SetTitle(title string) {
	var titleNode *html.Node
	walk(d.head, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			titleNode = n
			return false
		}
		return true
	})
	if titleNode == nil {
		titleNode = element(atom.Title)
		d.head.AppendChild(titleNode)
	}
	setText(titleNode, title)
}

// Query returns the first node matching selector, or nil. Supported forms
// are "#id", ".class" and a bare tag name.
func (d *Document) Query(selector string) *html.Node {
	selector = strings.TrimSpace(selector)
	var match func(*html.Node) bool
	switch {
	case selector == "":
		return nil
	case strings.HasPrefix(selector, "#"):
		id := selector[1:]
		match = func(n *html.Node) bool { return Attr(n, "id") == id }
	case strings.HasPrefix(selector, "."):
		class := selector[1:]
		match = func(n *html.Node) bool { return hasClass(n, class) }
	default:
		tag := strings.ToLower(selector)
		match = func(n *html.Node) bool { return n.Data == tag }
	}

	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// AppendHTML parses markup in the context of parent and appends the
// resulting nodes to it.
func (d *Document) AppendHTML(parent *html.Node, markup string) ([]*html.Node, error) {
	if parent == nil {
		return nil, fmt.Errorf("append target is nil")
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nodes, nil
}

// AddStylesheet links a stylesheet in the head once per href
func (d *Document) AddStylesheet(href string) {
	if href == "" || d.assets[href] {
		return
	}
	link := element(atom.Link)
	link.Attr = []html.Attribute{{Key: "rel", Val: "stylesheet"}, {Key: "href", Val: href}}
	d.head.AppendChild(link)
	d.assets[href] = true
}

// AddHeadScript loads an external script in the head once per src
func (d *Document) AddHeadScript(src string) {
	if src == "" || d.assets[src] {
		return
	}
	script := element(atom.Script)
	script.Attr = []html.Attribute{{Key: "src", Val: src}}
	d.head.AppendChild(script)
	d.assets[src] = true
}

// SetInlineScript creates or replaces the body script element with the given id
func (d *Document) SetInlineScript(id, js string) {
	var script *html.Node
	walk(d.body, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script && Attr(n, "id") == id {
			script = n
			return false
		}
		return true
	})
	if script == nil {
		script = element(atom.Script)
		script.Attr = []html.Attribute{{Key: "id", Val: id}}
		d.body.AppendChild(script)
	}
	setText(script, js)
}

// Render writes the document as HTML
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// HTML returns the rendered document
func (d *Document) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

// FindByID searches the subtree rooted at n for an element with the given id
func FindByID(n *html.Node, id string) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && Attr(c, "id") == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// Attr returns the value of attribute key on n
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Text returns the concatenated text content of n
func Text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// walk visits n and its descendants depth-first until visit returns false
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
