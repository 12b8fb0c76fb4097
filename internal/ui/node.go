// Package ui builds the console page as an HTML node tree and dispatches the
// actions the browser posts back.  Views are plain functions returning
// *html.Node; nothing here depends on a live browser, so every view can be
// rendered and inspected in tests.
package ui

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// El builds an element.  Parts may be html.Attribute, []html.Attribute,
// *html.Node, []*html.Node, string (a text child) or nil, which is skipped.
func El(tag string, parts ...any) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for _, p := range parts {
		add(n, p)
	}
	return n
}

func add(n *html.Node, p any) {
	switch v := p.(type) {
	case nil:
	case html.Attribute:
		n.Attr = append(n.Attr, v)
	case []html.Attribute:
		n.Attr = append(n.Attr, v...)
	case *html.Node:
		if v != nil {
			n.AppendChild(v)
		}
	case []*html.Node:
		for _, c := range v {
			if c != nil {
				n.AppendChild(c)
			}
		}
	case string:
		n.AppendChild(Text(v))
	default:
		panic(fmt.Sprintf("ui: unsupported node part %T", p))
	}
}

// Text returns a text node.  The value is escaped on render.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// At returns an arbitrary attribute.
func At(key, val string) html.Attribute { return html.Attribute{Key: key, Val: val} }

func ID(v string) html.Attribute    { return At("id", v) }
func Class(v string) html.Attribute { return At("class", v) }
func Name(v string) html.Attribute  { return At("name", v) }
func Type(v string) html.Attribute  { return At("type", v) }
func Value(v string) html.Attribute { return At("value", v) }

// Action marks an element as a control posting action with arg.
func Action(action, arg string) []html.Attribute {
	return []html.Attribute{At("data-action", action), At("data-arg", arg)}
}

// Confirm makes the browser ask msg before posting; the answer travels as
// Event.Confirmed.
func Confirm(msg string) html.Attribute { return At("data-confirm", msg) }

// Prompt makes the browser ask for free text before posting; the answer
// travels as Event.Input.
func Prompt(msg string) html.Attribute { return At("data-prompt", msg) }

// OnChange posts the action on the change event instead of click.
func OnChange() html.Attribute { return At("data-event", "change") }

// If returns a when cond holds, nil otherwise.
func If(cond bool, a html.Attribute) any {
	if cond {
		return a
	}
	return nil
}

// Disabled is a boolean attribute.
func Disabled() html.Attribute { return At("disabled", "") }

// Render serializes n.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// Walk visits n and its descendants depth first until fn returns false.
func Walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// FindAll returns every element under n matching pred, n included.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(n, func(x *html.Node) bool {
		if x.Type == html.ElementNode && pred(x) {
			out = append(out, x)
		}
		return true
	})
	return out
}

// Find returns the first element matching pred, or nil.
func Find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(n, func(x *html.Node) bool {
		if x.Type == html.ElementNode && pred(x) {
			found = x
			return false
		}
		return true
	})
	return found
}

// ByID finds the element with the given id attribute.
func ByID(n *html.Node, id string) *html.Node {
	return Find(n, func(x *html.Node) bool { v, _ := AttrOf(x, "id"); return v == id })
}

// ByAction returns every control bound to action.
func ByAction(n *html.Node, action string) []*html.Node {
	return FindAll(n, func(x *html.Node) bool { v, _ := AttrOf(x, "data-action"); return v == action })
}

// AttrOf returns the value of attribute key on n.
func AttrOf(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether class is in n's class list.
func HasClass(n *html.Node, class string) bool {
	v, _ := AttrOf(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// TextOf concatenates the text under n with whitespace collapsed.
func TextOf(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(x *html.Node) bool {
		if x.Type == html.TextNode {
			b.WriteString(x.Data)
			b.WriteByte(' ')
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// Placeholder is the standard loading or empty-state line.
func Placeholder(class, text string) *html.Node {
	return El("div", Class(class), text)
}
