// Package dom models the elements of one embedded page. Every mutation is
// recorded as a Patch; the session streams drained patches to the browser,
// which applies them to the real document.
//
// Node methods accept a nil receiver and do nothing, so a handler that looks
// up an element the page has not mounted yet degrades to a no-op.
package dom

import (
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const ClassHidden = "hidden"

type Op string

const (
	OpText        Op = "text"
	OpAddClass    Op = "class+"
	OpRemoveClass Op = "class-"
	OpClassName   Op = "className"
	OpAttr        Op = "attr"
	OpRemoveAttr  Op = "attr-"
	OpStyle       Op = "style"
	OpCreate      Op = "create"
	OpPrepend     Op = "prepend"
	OpAppend      Op = "append"
	OpRemove      Op = "remove"
)

type Patch struct {
	Op     Op     `json:"op"`
	ID     string `json:"id"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
	Parent string `json:"parent,omitempty"`
}

// Seed describes an element the page already has.
type Seed struct {
	ID    string `json:"id"`
	Class string `json:"class,omitempty"`
	Text  string `json:"text,omitempty"`
}

type Tree struct {
	nodes   map[string]*Node
	patches []Patch
	newID   func() string
}

func NewTree() *Tree {
	return &Tree{
		nodes: make(map[string]*Node),
		newID: func() string { return "n-" + uuid.NewString() },
	}
}

// Mount registers elements present on the page. Known ids keep their state.
func (t *Tree) Mount(seeds ...Seed) {
	for _, s := range seeds {
		if s.ID == "" {
			continue
		}
		if _, ok := t.nodes[s.ID]; ok {
			continue
		}
		t.nodes[s.ID] = &Node{
			id:      s.ID,
			tree:    t,
			mounted: true,
			classes: strings.Fields(s.Class),
			text:    s.Text,
		}
	}
}

func (t *Tree) MountIDs(ids ...string) {
	for _, id := range ids {
		t.Mount(Seed{ID: id})
	}
}

// ByID returns nil when the element is unknown.
func (t *Tree) ByID(id string) *Node {
	return t.nodes[id]
}

// Create makes a detached element; it reaches the page once inserted.
func (t *Tree) Create(tag string, classes ...string) *Node {
	n := &Node{id: t.newID(), tree: t, tag: tag, classes: slices.Clone(classes)}
	t.nodes[n.id] = n
	t.emit(Patch{Op: OpCreate, ID: n.id, Value: tag, Key: strings.Join(classes, " ")})
	return n
}

func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Pending() int { return len(t.patches) }

// Drain hands over the patches recorded since the last call.
func (t *Tree) Drain() []Patch {
	p := t.patches
	t.patches = nil
	return p
}

// Snapshot renders the whole tree as patches for a freshly joined page.
func (t *Tree) Snapshot() []Patch {
	var out []Patch
	ids := make([]string, 0, len(t.nodes))
	for id, n := range t.nodes {
		if n.mounted {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = t.nodes[id].snapshot(out)
	}
	return out
}

func (t *Tree) emit(p Patch) {
	t.patches = append(t.patches, p)
}

type Node struct {
	id       string
	tree     *Tree
	tag      string
	text     string
	classes  []string
	attrs    map[string]string
	style    map[string]string
	parent   *Node
	children []*Node
	mounted  bool
	removed  bool
}

func (n *Node) ID() string {
	if n == nil {
		return ""
	}
	return n.id
}

func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return n.text
}

func (n *Node) SetText(s string) {
	if n == nil || n.removed {
		return
	}
	n.text = s
	n.tree.emit(Patch{Op: OpText, ID: n.id, Value: s})
}

func (n *Node) HasClass(c string) bool {
	return n != nil && slices.Contains(n.classes, c)
}

func (n *Node) Classes() []string {
	if n == nil {
		return nil
	}
	return slices.Clone(n.classes)
}

func (n *Node) AddClass(cs ...string) {
	if n == nil || n.removed {
		return
	}
	for _, c := range cs {
		if c == "" || slices.Contains(n.classes, c) {
			continue
		}
		n.classes = append(n.classes, c)
		n.tree.emit(Patch{Op: OpAddClass, ID: n.id, Value: c})
	}
}

func (n *Node) RemoveClass(cs ...string) {
	if n == nil || n.removed {
		return
	}
	for _, c := range cs {
		i := slices.Index(n.classes, c)
		if i < 0 {
			continue
		}
		n.classes = slices.Delete(n.classes, i, i+1)
		n.tree.emit(Patch{Op: OpRemoveClass, ID: n.id, Value: c})
	}
}

func (n *Node) ToggleClass(c string, on bool) {
	if on {
		n.AddClass(c)
	} else {
		n.RemoveClass(c)
	}
}

// SetClassName replaces the whole class list.
func (n *Node) SetClassName(s string) {
	if n == nil || n.removed {
		return
	}
	n.classes = strings.Fields(s)
	n.tree.emit(Patch{Op: OpClassName, ID: n.id, Value: s})
}

func (n *Node) Attr(k string) (string, bool) {
	if n == nil {
		return "", false
	}
	v, ok := n.attrs[k]
	return v, ok
}

func (n *Node) SetAttr(k, v string) {
	if n == nil || n.removed {
		return
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[k] = v
	n.tree.emit(Patch{Op: OpAttr, ID: n.id, Key: k, Value: v})
}

func (n *Node) RemoveAttr(k string) {
	if n == nil || n.removed {
		return
	}
	if _, ok := n.attrs[k]; !ok {
		return
	}
	delete(n.attrs, k)
	n.tree.emit(Patch{Op: OpRemoveAttr, ID: n.id, Key: k})
}

func (n *Node) SetDisabled(disabled bool) {
	if disabled {
		n.SetAttr("disabled", "true")
	} else {
		n.RemoveAttr("disabled")
	}
}

func (n *Node) Disabled() bool {
	_, ok := n.Attr("disabled")
	return ok
}

func (n *Node) Style(prop string) string {
	if n == nil {
		return ""
	}
	return n.style[prop]
}

func (n *Node) SetStyle(prop, v string) {
	if n == nil || n.removed {
		return
	}
	if n.style == nil {
		n.style = make(map[string]string)
	}
	n.style[prop] = v
	n.tree.emit(Patch{Op: OpStyle, ID: n.id, Key: prop, Value: v})
}

// Hidden reports true for a missing element as well.
func (n *Node) Hidden() bool {
	return n == nil || n.removed || n.HasClass(ClassHidden)
}

func (n *Node) Show() { n.RemoveClass(ClassHidden) }

func (n *Node) Hide() { n.AddClass(ClassHidden) }

func (n *Node) Prepend(child *Node) {
	if n == nil || child == nil || n.removed || child.removed {
		return
	}
	child.detach()
	n.children = slices.Insert(n.children, 0, child)
	child.parent = n
	n.tree.emit(Patch{Op: OpPrepend, ID: child.id, Parent: n.id})
}

func (n *Node) Append(child *Node) {
	if n == nil || child == nil || n.removed || child.removed {
		return
	}
	child.detach()
	n.children = append(n.children, child)
	child.parent = n
	n.tree.emit(Patch{Op: OpAppend, ID: child.id, Parent: n.id})
}

func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return slices.Clone(n.children)
}

func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Attached reports whether the node is part of the page.
func (n *Node) Attached() bool {
	if n == nil || n.removed {
		return false
	}
	if n.mounted {
		return true
	}
	return n.parent != nil && n.parent.Attached()
}

// Remove detaches a created node and forgets it. Page elements are only
// emptied, never removed. Calling Remove twice is a no-op.
func (n *Node) Remove() {
	if n == nil || n.removed || n.mounted {
		return
	}
	n.detach()
	n.forget()
	n.tree.emit(Patch{Op: OpRemove, ID: n.id})
}

// Clear removes every child.
func (n *Node) Clear() {
	if n == nil {
		return
	}
	for _, c := range n.Children() {
		c.Remove()
	}
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
}

func (n *Node) forget() {
	n.removed = true
	delete(n.tree.nodes, n.id)
	for _, c := range n.children {
		c.parent = nil
		c.forget()
	}
	n.children = nil
}

func (n *Node) snapshot(out []Patch) []Patch {
	out = append(out, Patch{Op: OpClassName, ID: n.id, Value: strings.Join(n.classes, " ")})
	if n.text != "" {
		out = append(out, Patch{Op: OpText, ID: n.id, Value: n.text})
	}
	for _, k := range sortedKeys(n.attrs) {
		out = append(out, Patch{Op: OpAttr, ID: n.id, Key: k, Value: n.attrs[k]})
	}
	for _, k := range sortedKeys(n.style) {
		out = append(out, Patch{Op: OpStyle, ID: n.id, Key: k, Value: n.style[k]})
	}
	for _, c := range n.children {
		out = append(out,
			Patch{Op: OpCreate, ID: c.id, Value: c.tag},
			Patch{Op: OpAppend, ID: c.id, Parent: n.id},
		)
		out = c.snapshot(out)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
