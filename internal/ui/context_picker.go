package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/paperl/serverinit/internal/errors"
	"github.com/paperl/serverinit/internal/task"
)

// contextItem implements list.Item for the Bubbles list component.
type contextItem struct {
	value task.Context
	title string
}

func (i contextItem) Title() string       { return i.title }
func (i contextItem) Description() string { return string(i.value) }
func (i contextItem) FilterValue() string { return i.title + " " + string(i.value) }

// contextPickerKeyMap defines key bindings for the context picker.
type contextPickerKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var contextPickerKeys = contextPickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// ContextPickerModel is a Bubble Tea model for choosing the deployment
// context. The picker has exactly two outcomes: a selection or a
// cancellation — cancellation always aborts the run.
type ContextPickerModel struct {
	list      list.Model
	selected  *task.Context
	cancelled bool
	quitting  bool
}

// NewContextPickerModel creates the picker with the cursor on def.
func NewContextPickerModel(def task.Context) ContextPickerModel {
	items := make([]list.Item, len(task.ContextTitles))
	cursor := 0
	for i, opt := range task.ContextTitles {
		items[i] = contextItem{value: opt.Value, title: opt.Title}
		if opt.Value == def {
			cursor = i
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color(string(ColorPrimary))).
		BorderForeground(lipgloss.Color(string(ColorSecondary)))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color(string(ColorMuted)))

	l := list.New(items, delegate, 60, 14)
	l.Title = "Choose context"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color(string(ColorPrimary))).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Select(cursor)

	return ContextPickerModel{list: l}
}

// Init implements tea.Model.
func (m ContextPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ContextPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, contextPickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(contextItem); ok {
				v := item.value
				m.selected = &v
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, contextPickerKeys.Quit):
			m.cancelled = true
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ContextPickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// PickContext displays the context picker with the cursor on def.
func PickContext(def task.Context) (task.Context, error) {
	return PickContextWithIO(def, os.Stdout, os.Stdin)
}

// PickContextWithIO displays the picker using custom I/O.
func PickContextWithIO(def task.Context, output io.Writer, input io.Reader) (task.Context, error) {
	model := NewContextPickerModel(def)

	p := tea.NewProgram(
		model,
		tea.WithOutput(output),
		tea.WithInput(input),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Context picker failed",
			"Pass --context root|user|local to skip the menu.")
	}

	m, ok := finalModel.(ContextPickerModel)
	if !ok || m.cancelled || m.selected == nil {
		return "", errors.NewCancelled("context menu")
	}
	return *m.selected, nil
}
