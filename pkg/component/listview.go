package component

import "strconv"

// ListItem is one row of a ListView. Its id is the row index.
type ListItem[T any] struct {
	ContainerBase
	index int
	value T
}

// Index returns the row index.
func (li *ListItem[T]) Index() int { return li.index }

// Value returns the row value.
func (li *ListItem[T]) Value() T { return li.value }

// ListView repeats its tag for every element of a list. Rows are rebuilt
// before each render by calling populate.
type ListView[T any] struct {
	ContainerBase
	list     func() []T
	populate func(item *ListItem[T]) error
}

// NewListView creates a list view over the values returned by list.
func NewListView[T any](id string, list func() []T, populate func(item *ListItem[T]) error) *ListView[T] {
	lv := &ListView[T]{list: list, populate: populate}
	lv.InitContainer(lv, id)
	return lv
}

// OnBeforeRender implements BeforeRenderer.
func (lv *ListView[T]) OnBeforeRender() error {
	lv.children = nil
	for i, v := range lv.list() {
		item := &ListItem[T]{index: i, value: v}
		item.InitContainer(item, strconv.Itoa(i))
		lv.attach(item)
		if lv.populate != nil {
			if err := lv.populate(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// Items implements Repeater.
func (lv *ListView[T]) Items() []Container {
	out := make([]Container, 0, len(lv.children))
	for _, ch := range lv.children {
		if c, ok := ch.(Container); ok {
			out = append(out, c)
		}
	}
	return out
}
