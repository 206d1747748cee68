package theme

import (
	"sort"
	"sync"
)

// Document is the global visual surface whose marker classes reflect the
// effective theme.
type Document interface {
	AddClass(name string)
	RemoveClass(name string)
}

// ClassList is an in-memory Document. A class is either present once or absent.
type ClassList struct {
	mu      sync.Mutex
	classes map[string]struct{}
}

// NewClassList returns an empty class list.
func NewClassList() *ClassList {
	return &ClassList{classes: make(map[string]struct{})}
}

// AddClass implements Document.
func (c *ClassList) AddClass(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes[name] = struct{}{}
}

// RemoveClass implements Document.
func (c *ClassList) RemoveClass(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.classes, name)
}

// Has reports whether name is present.
func (c *ClassList) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.classes[name]
	return ok
}

// Classes returns the present classes in sorted order.
func (c *ClassList) Classes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.classes))
	for name := range c.classes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
