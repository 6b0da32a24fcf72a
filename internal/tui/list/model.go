package listview

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one item. selected is true for the highlighted row.
type RenderFunc[T any] func(item T, selected bool) string

// KeyMap holds the navigation bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
}

// DefaultKeyMap returns arrow, vim and page bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g/home", "first")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G/end", "last")),
	}
}

// VirtualList is a scrolling list that renders only its viewport.
type VirtualList[T any] struct {
	items      []T
	renderFunc RenderFunc[T]
	keys       KeyMap

	selected int
	// offset is the index of the first row in the viewport.
	offset int
	height int
	width  int
}

// New creates a list showing height rows of items.
func New[T any](items []T, height, width int, renderFunc RenderFunc[T]) *VirtualList[T] {
	l := &VirtualList[T]{
		items:      items,
		renderFunc: renderFunc,
		keys:       DefaultKeyMap(),
		height:     max(height, 1),
		width:      width,
	}
	l.clamp()
	return l
}

// Init implements tea.Model.
func (l *VirtualList[T]) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys and resizes.
func (l *VirtualList[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		l.handleKey(msg)
	case tea.WindowSizeMsg:
		l.SetSize(msg.Width, msg.Height)
	}
	return l, nil
}

func (l *VirtualList[T]) handleKey(msg tea.KeyMsg) {
	if len(l.items) == 0 {
		return
	}
	switch {
	case key.Matches(msg, l.keys.Up):
		l.selected--
	case key.Matches(msg, l.keys.Down):
		l.selected++
	case key.Matches(msg, l.keys.PageUp):
		l.selected -= l.height
	case key.Matches(msg, l.keys.PageDown):
		l.selected += l.height
	case key.Matches(msg, l.keys.Home):
		l.selected = 0
	case key.Matches(msg, l.keys.End):
		l.selected = len(l.items) - 1
	default:
		return
	}
	l.clamp()
}

// clamp keeps the selection in range and scrolls just enough to show it.
func (l *VirtualList[T]) clamp() {
	if len(l.items) == 0 {
		l.selected, l.offset = 0, 0
		return
	}
	l.selected = min(max(l.selected, 0), len(l.items)-1)

	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.selected >= l.offset+l.height {
		l.offset = l.selected - l.height + 1
	}
	l.offset = min(max(l.offset, 0), max(len(l.items)-l.height, 0))
}

// View renders the rows in the viewport.
func (l *VirtualList[T]) View() string {
	from, to := l.VisibleRange()
	if from == to {
		return ""
	}
	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, l.renderFunc(l.items[i], i == l.selected))
	}
	return strings.Join(lines, "\n")
}

// SetItems replaces the items, keeping the selection index where possible.
func (l *VirtualList[T]) SetItems(items []T) {
	l.items = items
	l.clamp()
}

// SetSize resizes the viewport.
func (l *VirtualList[T]) SetSize(width, height int) {
	l.width = width
	l.height = max(height, 1)
	l.clamp()
}

// Select moves the selection to index, clamped to the list.
func (l *VirtualList[T]) Select(index int) {
	l.selected = index
	l.clamp()
}

// VisibleRange returns the half-open index range in the viewport.
func (l *VirtualList[T]) VisibleRange() (int, int) {
	return l.offset, min(l.offset+l.height, len(l.items))
}

// Len returns the number of items.
func (l *VirtualList[T]) Len() int {
	return len(l.items)
}

// Index returns the selected index.
func (l *VirtualList[T]) Index() int {
	return l.selected
}

// Width returns the viewport width.
func (l *VirtualList[T]) Width() int {
	return l.width
}

// SelectedItem returns the selected item, false when the list is empty.
func (l *VirtualList[T]) SelectedItem() (T, bool) {
	var zero T
	if len(l.items) == 0 {
		return zero, false
	}
	return l.items[l.selected], true
}

// KeyMap returns the navigation bindings, for help views.
func (l *VirtualList[T]) KeyMap() KeyMap {
	return l.keys
}
