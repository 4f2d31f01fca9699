package display

import (
	"slices"
	"strings"
	"sync"

	"cluster-service/cluster"

	"github.com/ErikKalkoken/go-set"
)

// ChangeKind tells which part of a node changed
type ChangeKind int

const (
	ChangeText ChangeKind = iota
	ChangeClass
	ChangeStyle
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeClass:
		return "class"
	case ChangeStyle:
		return "style"
	default:
		return "text"
	}
}

// Change describes one mutation of a node
type Change struct {
	Key  string
	Kind ChangeKind
}

// Document is an in-memory model of the host page. It is safe for
// concurrent use.
type Document struct {
	mu        sync.RWMutex
	roots     []*Node
	byID      map[string]*Node
	listeners []func(Change)
}

// Node is one element of the document
type Node struct {
	doc      *Document
	parent   *Node
	id       string
	classes  set.Set[string]
	text     string
	styles   map[string]string
	order    []string // style properties in first-set order
	children []*Node
}

// NewDocument returns an empty document
func NewDocument() *Document {
	return &Document{
		byID: make(map[string]*Node),
	}
}

// Append adds a node under parent, or as a root when parent is nil.
// An empty id is allowed for anonymous nodes such as icon glyphs.
func (d *Document) Append(parent *Node, id string, classes ...string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := &Node{
		doc:     d,
		parent:  parent,
		id:      id,
		classes: set.Of(classes...),
		styles:  make(map[string]string),
	}
	if parent == nil {
		d.roots = append(d.roots, n)
	} else {
		parent.children = append(parent.children, n)
	}
	if id != "" {
		d.byID[id] = n
	}
	return n
}

// Remove detaches the node with id and its subtree
func (d *Document) Remove(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.byID[id]
	if !ok {
		return false
	}
	if n.parent == nil {
		d.roots = slices.DeleteFunc(d.roots, func(x *Node) bool { return x == n })
	} else {
		n.parent.children = slices.DeleteFunc(n.parent.children, func(x *Node) bool { return x == n })
	}
	n.walk(func(x *Node) bool {
		if x.id != "" {
			delete(d.byID, x.id)
		}
		return true
	})
	return true
}

// OnChange registers fn to be called after every mutation
func (d *Document) OnChange(fn func(Change)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Node returns the node with id
func (d *Document) Node(id string) (*Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.byID[id]
	return n, ok
}

// Element resolves "#id", ".class" and "#id .class" selectors
func (d *Document) Element(selector string) (cluster.Element, bool) {
	n, ok := d.Query(selector)
	if !ok {
		return nil, false
	}
	return n, true
}

// Query is Element returning the concrete node
func (d *Document) Query(selector string) (*Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	parts := strings.Fields(selector)
	switch len(parts) {
	case 1:
		return d.match(d.roots, parts[0])
	case 2:
		scope, ok := d.match(d.roots, parts[0])
		if !ok {
			return nil, false
		}
		return d.match(scope.children, parts[1])
	default:
		return nil, false
	}
}

// match finds the first node in document order below nodes matching sel
func (d *Document) match(nodes []*Node, sel string) (*Node, bool) {
	switch {
	case strings.HasPrefix(sel, "#"):
		id := sel[1:]
		var found *Node
		for _, root := range nodes {
			root.walk(func(n *Node) bool {
				if n.id == id {
					found = n
					return false
				}
				return true
			})
			if found != nil {
				return found, true
			}
		}
	case strings.HasPrefix(sel, "."):
		class := sel[1:]
		var found *Node
		for _, root := range nodes {
			root.walk(func(n *Node) bool {
				if n.classes.Contains(class) {
					found = n
					return false
				}
				return true
			})
			if found != nil {
				return found, true
			}
		}
	}
	return nil, false
}

// walk visits n and its descendants depth first until fn returns false
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

func (d *Document) notify(c Change) {
	d.mu.RLock()
	listeners := slices.Clone(d.listeners)
	d.mu.RUnlock()

	for _, fn := range listeners {
		fn(c)
	}
}

// Key identifies the node for mirroring: its id, or the parent key plus
// the first class for anonymous nodes. Callers hold the document lock.
func (n *Node) Key() string {
	if n.id != "" {
		return n.id
	}
	classes := slices.Sorted(n.classes.All())
	suffix := "node"
	if len(classes) > 0 {
		suffix = classes[0]
	}
	if n.parent == nil {
		return suffix
	}
	return n.parent.Key() + "/" + suffix
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) SetText(text string) {
	n.doc.mu.Lock()
	changed := n.text != text
	n.text = text
	key := n.Key()
	n.doc.mu.Unlock()

	if changed {
		n.doc.notify(Change{Key: key, Kind: ChangeText})
	}
}

func (n *Node) AddClass(class string) {
	n.doc.mu.Lock()
	changed := !n.classes.Contains(class)
	n.classes.Add(class)
	key := n.Key()
	n.doc.mu.Unlock()

	if changed {
		n.doc.notify(Change{Key: key, Kind: ChangeClass})
	}
}

func (n *Node) RemoveClass(class string) {
	n.doc.mu.Lock()
	changed := n.classes.Contains(class)
	n.classes.Delete(class)
	key := n.Key()
	n.doc.mu.Unlock()

	if changed {
		n.doc.notify(Change{Key: key, Kind: ChangeClass})
	}
}

func (n *Node) SetStyle(property, value string) {
	n.doc.mu.Lock()
	old, seen := n.styles[property]
	if !seen {
		n.order = append(n.order, property)
	}
	n.styles[property] = value
	key := n.Key()
	n.doc.mu.Unlock()

	if !seen || old != value {
		n.doc.notify(Change{Key: key, Kind: ChangeStyle})
	}
}

// State returns an immutable copy of the node
func (n *Node) State() NodeState {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.state()
}

func (n *Node) state() NodeState {
	s := NodeState{
		Key:     n.Key(),
		ID:      n.id,
		Text:    n.text,
		Classes: slices.Sorted(n.classes.All()),
	}
	for _, p := range n.order {
		s.Styles = append(s.Styles, Style{Property: p, Value: n.styles[p]})
	}
	return s
}

// Snapshot returns the state of the node with key
func (d *Document) Snapshot(key string) (NodeState, bool) {
	for _, s := range d.Snapshots() {
		if s.Key == key {
			return s, true
		}
	}
	return NodeState{}, false
}

// Snapshots returns the state of every node in document order
func (d *Document) Snapshots() []NodeState {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var states []NodeState
	for _, root := range d.roots {
		root.walk(func(n *Node) bool {
			states = append(states, n.state())
			return true
		})
	}
	return states
}
