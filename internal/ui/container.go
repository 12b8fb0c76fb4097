package ui

import "golang.org/x/net/html"

// Container is a leased handle on an element of the page.  A lease ends
// when the page is Reset or when someone Claims the same container again;
// writes through an ended lease are dropped.  Loads that resume after a
// network call check Alive so late results never land in a view the user
// already left.
type Container struct {
	s     *Screen
	node  *html.Node
	key   string
	epoch uint64
	gen   uint64
}

// Claim starts a new lease on the container, clears it, and returns the
// new handle.  Every earlier handle on the same container dies.
func (c *Container) Claim() *Container {
	if !c.attached() || c.s.epoch != c.epoch {
		return c
	}
	c.s.gens[c.key]++
	empty(c.node)
	return &Container{s: c.s, node: c.node, key: c.key, epoch: c.s.epoch, gen: c.s.gens[c.key]}
}

// Alive reports whether writes through c still reach the page.
func (c *Container) Alive() bool {
	if c == nil || c.s.epoch != c.epoch || c.s.gens[c.key] != c.gen {
		return false
	}
	return c.attached()
}

func (c *Container) attached() bool {
	for n := c.node; n != nil; n = n.Parent {
		if n == c.s.root {
			return true
		}
	}
	return false
}

// Set replaces the container's children.  It reports whether the write was
// applied.
func (c *Container) Set(children ...*html.Node) bool {
	if !c.Alive() {
		return false
	}
	empty(c.node)
	for _, ch := range children {
		if ch != nil {
			c.node.AppendChild(ch)
		}
	}
	return true
}

// Child returns a handle on a descendant element sharing c's lease, or nil.
func (c *Container) Child(id string) *Container {
	if !c.Alive() {
		return nil
	}
	n := ByID(c.node, id)
	if n == nil {
		return nil
	}
	return &Container{s: c.s, node: n, key: c.key, epoch: c.epoch, gen: c.gen}
}

// Node exposes the element for reading.
func (c *Container) Node() *html.Node { return c.node }

// Screen returns the page the container belongs to.
func (c *Container) Screen() *Screen { return c.s }

func empty(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}
