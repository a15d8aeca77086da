package component

import (
	"errors"
	"slices"
)

// Container is a component owning an ordered list of children with unique ids,
// plus a queue of children not yet placed by markup.
type Container interface {
	Component
	Get(id string) Component
	Children() []Component
	Add(children ...Component) error
	Queue(children ...Component) error
	Remove(id string) bool
	Replace(c Component) error

	container() *ContainerBase
}

// ContainerBase implements Container. Types embedding it call InitContainer
// with themselves so children see the outer type as their parent.
type ContainerBase struct {
	Base
	self     Container
	children []Component
	queue    []Component
}

// InitContainer sets the id and the outer value embedding this ContainerBase.
func (c *ContainerBase) InitContainer(self Container, id string) {
	c.id = id
	c.self = self
}

func (c *ContainerBase) container() *ContainerBase { return c }

func (c *ContainerBase) outer() Container {
	if c.self != nil {
		return c.self
	}
	return c
}

// Get returns the direct child with id, or nil.
func (c *ContainerBase) Get(id string) Component {
	for _, ch := range c.children {
		if ch.ID() == id {
			return ch
		}
	}
	return nil
}

// Children returns the children in insertion order.
func (c *ContainerBase) Children() []Component { return c.children }

// Add appends children. A child already attached elsewhere is moved.
func (c *ContainerBase) Add(children ...Component) error {
	if err := c.checkBatch(children); err != nil {
		return err
	}
	for _, ch := range children {
		c.attach(ch)
		c.record(func() { c.detach(ch) })
	}
	return nil
}

// MustAdd is Add for page construction code where a duplicate id is a bug.
func (c *ContainerBase) MustAdd(children ...Component) {
	if err := c.Add(children...); err != nil {
		panic(err)
	}
}

// Queue enqueues children to be placed where the markup puts them. Their
// parent is decided at render time by searching queues from the tag's
// enclosing container outwards, up to the nearest page, panel, border or
// fragment.
func (c *ContainerBase) Queue(children ...Component) error {
	if err := c.checkBatch(children); err != nil {
		return err
	}
	c.queue = append(c.queue, children...)
	return nil
}

// Remove detaches the child with id.
func (c *ContainerBase) Remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	ch := c.children[i]
	c.detach(ch)
	c.record(func() {
		ch.base().parent = c.outer()
		c.children = slices.Insert(c.children, min(i, len(c.children)), ch)
	})
	return true
}

// Replace swaps the child with the same id for ch.
func (c *ContainerBase) Replace(ch Component) error {
	if ch == nil {
		return ErrNilComponent
	}
	i := c.indexOf(ch.ID())
	if i < 0 {
		return c.Add(ch)
	}
	if c.children[i] == ch {
		return nil
	}
	if p := ch.Parent(); p != nil {
		p.container().detach(ch)
	}
	old := c.children[i]
	old.base().parent = nil
	ch.base().parent = c.outer()
	c.children[i] = ch
	c.record(func() {
		ch.base().parent = nil
		old.base().parent = c.outer()
		if j := c.indexOf(old.ID()); j >= 0 {
			c.children[j] = old
		}
	})
	return nil
}

// RemoveAll detaches all children.
func (c *ContainerBase) RemoveAll() {
	for _, ch := range slices.Clone(c.children) {
		c.Remove(ch.ID())
	}
}

// checkBatch rejects nil children, empty ids and ids already taken by an
// attached child, a queued child or an earlier child of the same batch.
func (c *ContainerBase) checkBatch(children []Component) error {
	seen := make(map[string]struct{}, len(children))
	for _, ch := range children {
		if ch == nil {
			return ErrNilComponent
		}
		id := ch.ID()
		if id == "" {
			return errors.Join(ErrEmptyID, errors.New(c.Path()))
		}
		if _, dup := seen[id]; dup || c.Get(id) != nil || c.queuedIndex(id) >= 0 {
			return duplicateID(id, c.Path())
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (c *ContainerBase) queuedIndex(id string) int {
	return slices.IndexFunc(c.queue, func(q Component) bool { return q.ID() == id })
}

func (c *ContainerBase) indexOf(id string) int {
	return slices.IndexFunc(c.children, func(ch Component) bool { return ch.ID() == id })
}

func (c *ContainerBase) attach(ch Component) {
	if p := ch.Parent(); p != nil {
		p.container().detach(ch)
	}
	ch.base().parent = c.outer()
	c.children = append(c.children, ch)
}

func (c *ContainerBase) detach(ch Component) {
	c.children = slices.DeleteFunc(c.children, func(x Component) bool { return x == ch })
	ch.base().parent = nil
}

// takeQueued removes and returns the queued component with id.
func (c *ContainerBase) takeQueued(id string) Component {
	i := c.queuedIndex(id)
	if i < 0 {
		return nil
	}
	ch := c.queue[i]
	c.queue = slices.Delete(c.queue, i, i+1)
	return ch
}

// Queued returns components still waiting to be placed.
func (c *ContainerBase) Queued() []Component { return c.queue }

// MarkupContainer is a plain container rendering its markup body.
type MarkupContainer struct {
	ContainerBase
}

// NewContainer creates a MarkupContainer.
func NewContainer(id string) *MarkupContainer {
	c := &MarkupContainer{}
	c.InitContainer(c, id)
	return c
}

func (c *ContainerBase) record(undo func()) {
	if pg, ok := c.outer().(interface{ page() *Page }); ok {
		pg.page().RecordChange(ChangeFunc(undo))
		return
	}
	c.Base.record(undo)
}
