// Package scene is a retained node tree the compositor renders from.
// Nodes carry positions relative to their parent; stacking order is
// child order, last child on top.
package scene

import (
	"fmt"

	"github.com/flickwm/flick/internal/backend"
)

// Node is the state shared by every scene element
type Node struct {
	parent  *Tree
	x, y    int
	enabled bool
}

type element interface {
	base() *Node
}

func (n *Node) base() *Node { return n }

// Position returns the node position relative to its parent
func (n *Node) Position() (int, int) {
	return n.x, n.y
}

// SetPosition moves the node relative to its parent
func (n *Node) SetPosition(x, y int) {
	n.x, n.y = x, y
}

// Enabled reports whether the node participates in rendering
func (n *Node) Enabled() bool {
	return n.enabled
}

// SetEnabled toggles rendering of the node and its descendants
func (n *Node) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// Tree is a container node
type Tree struct {
	Node
	children []element
}

// NewTree creates a detached root tree
func NewTree() *Tree {
	t := &Tree{}
	t.enabled = true
	return t
}

// NewSubtree creates an empty child tree
func (t *Tree) NewSubtree() *Tree {
	child := &Tree{}
	child.enabled = true
	t.attach(child)
	return child
}

// NewRect creates a solid-color child rectangle
func (t *Tree) NewRect(width, height int, color backend.Color) *Rect {
	r := &Rect{width: width, height: height, color: color}
	r.enabled = true
	t.attach(r)
	return r
}

func (t *Tree) attach(el element) {
	el.base().parent = t
	t.children = append(t.children, el)
}

// Rect is a solid-color rectangle node
type Rect struct {
	Node
	width, height int
	color         backend.Color
}

// Size returns the rectangle dimensions
func (r *Rect) Size() (int, int) {
	return r.width, r.height
}

// SetSize resizes the rectangle
func (r *Rect) SetSize(width, height int) {
	r.width, r.height = width, height
}

// Color returns the fill color
func (r *Rect) Color() backend.Color {
	return r.color
}

// SetColor replaces the fill color
func (r *Rect) SetColor(color backend.Color) {
	r.color = color
}

// RaiseToTop moves an element above its siblings
func RaiseToTop(el element) {
	parent := el.base().parent
	if parent == nil {
		return
	}
	for i, child := range parent.children {
		if child == el {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			parent.children = append(parent.children, el)
			return
		}
	}
}

// Detach removes an element from its parent
func Detach(el element) {
	parent := el.base().parent
	if parent == nil {
		return
	}
	for i, child := range parent.children {
		if child == el {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	el.base().parent = nil
}

// Walk visits every enabled element depth-first in stacking order,
// passing absolute coordinates.
func (t *Tree) Walk(fn func(el any, x, y int)) {
	t.walk(0, 0, fn)
}

func (t *Tree) walk(ox, oy int, fn func(el any, x, y int)) {
	if !t.enabled {
		return
	}
	for _, child := range t.children {
		b := child.base()
		if !b.enabled {
			continue
		}
		x, y := ox+b.x, oy+b.y
		switch el := child.(type) {
		case *Tree:
			el.walk(x, y, fn)
		default:
			fn(child, x, y)
		}
	}
}

// Output renders a tree onto one backend output
type Output struct {
	tree     *Tree
	output   backend.Output
	renderer backend.Renderer
}

// NewOutput binds a tree to an output
func NewOutput(tree *Tree, out backend.Output, renderer backend.Renderer) *Output {
	return &Output{tree: tree, output: out, renderer: renderer}
}

// Commit renders the current tree state into a swapchain buffer and
// commits it to the output.
func (so *Output) Commit() error {
	sc, err := so.output.Swapchain()
	if err != nil {
		return fmt.Errorf("failed to get swapchain: %w", err)
	}
	buf, err := sc.Acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire buffer: %w", err)
	}

	pass, err := so.renderer.BeginPassForOutput(buf, so.output)
	if err != nil {
		buf.Unlock()
		return fmt.Errorf("failed to begin render pass: %w", err)
	}

	so.tree.Walk(func(el any, x, y int) {
		if rect, ok := el.(*Rect); ok {
			w, h := rect.Size()
			pass.AddRect(backend.Box{X: x, Y: y, Width: w, Height: h}, rect.Color(), nil)
		}
	})

	if err := pass.Submit(); err != nil {
		buf.Unlock()
		return fmt.Errorf("failed to submit render pass: %w", err)
	}

	w, h := buf.Size()
	damage := backend.Box{Width: w, Height: h}
	return so.output.Commit(&backend.OutputState{Buffer: buf, Damage: &damage})
}
