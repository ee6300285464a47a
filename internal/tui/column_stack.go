package tui

import (
	"github.com/mmcdole/lectern/internal/tui/components"
)

// ColumnStack manages the stack of navigable columns in the Miller layout.
//
//	Root:     [Courses]
//	Course:   [Courses | Go Fundamentals]
//	Division: [Courses | Go Fundamentals | Getting Started]
//
// The top of the stack is always focused.
type ColumnStack struct {
	columns     []*components.ListColumn
	cursorStack []int // cursor positions saved for back navigation
}

// NewColumnStack creates a new empty column stack
func NewColumnStack() *ColumnStack {
	return &ColumnStack{}
}

func (cs *ColumnStack) Len() int {
	return len(cs.columns)
}

// Get returns the column at idx (0 = root)
func (cs *ColumnStack) Get(idx int) *components.ListColumn {
	if idx < 0 || idx >= len(cs.columns) {
		return nil
	}
	return cs.columns[idx]
}

// Top returns the focused column
func (cs *ColumnStack) Top() *components.ListColumn {
	return cs.Get(len(cs.columns) - 1)
}

// Parent returns the column below the top, or nil at root
func (cs *ColumnStack) Parent() *components.ListColumn {
	return cs.Get(len(cs.columns) - 2)
}

// Push adds a column and focuses it, remembering the current cursor
func (cs *ColumnStack) Push(col *components.ListColumn) {
	if top := cs.Top(); top != nil {
		cs.cursorStack = append(cs.cursorStack, top.SelectedIndex())
		top.SetFocused(false)
	}
	col.SetFocused(true)
	cs.columns = append(cs.columns, col)
}

// Pop removes the top column and restores the parent's cursor.
// The root column is never popped.
func (cs *ColumnStack) Pop() *components.ListColumn {
	if len(cs.columns) <= 1 {
		return nil
	}
	popped := cs.columns[len(cs.columns)-1]
	popped.SetFocused(false)
	cs.columns = cs.columns[:len(cs.columns)-1]

	top := cs.Top()
	if n := len(cs.cursorStack); n > 0 {
		top.SetSelectedIndex(cs.cursorStack[n-1])
		cs.cursorStack = cs.cursorStack[:n-1]
	}
	top.SetFocused(true)
	return popped
}

// Truncate pops until depth columns remain
func (cs *ColumnStack) Truncate(depth int) {
	for len(cs.columns) > max(depth, 1) {
		cs.Pop()
	}
}

// Reset replaces the whole stack with a single root column
func (cs *ColumnStack) Reset(col *components.ListColumn) {
	for _, c := range cs.columns {
		c.SetFocused(false)
	}
	col.SetFocused(true)
	cs.columns = []*components.ListColumn{col}
	cs.cursorStack = nil
}

// Find returns the topmost column of the given type and parent, if any
func (cs *ColumnStack) Find(colType components.ColumnType, parentID int64) *components.ListColumn {
	for i := len(cs.columns) - 1; i >= 0; i-- {
		col := cs.columns[i]
		if col.ColumnType() == colType && col.ParentID() == parentID {
			return col
		}
	}
	return nil
}

// Each calls fn for every column, root first
func (cs *ColumnStack) Each(fn func(*components.ListColumn)) {
	for _, col := range cs.columns {
		fn(col)
	}
}
