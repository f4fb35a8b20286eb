package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/sticky/internal/app"
	"github.com/dori/sticky/internal/images"
	"github.com/dori/sticky/internal/model"
	"github.com/dori/sticky/internal/tasks"
	"github.com/dori/sticky/internal/ui/drag"
	"github.com/dori/sticky/internal/ui/theme"
)

// previewSize is the logical thumbnail size; the raster is twice that
const previewSize = 8

// RootModel is the main application model: one ordered list of entries
type RootModel struct {
	store  *tasks.Store
	images *images.Store
	keys   KeyMap
	help   help.Model
	width  int
	height int

	entries []model.Entry
	cursor  int

	mode      Mode
	input     textinput.Model
	editingID string
	drag      drag.Tracker

	helpVisible bool
	showPreview bool
	importing   map[string]bool // task IDs with an image import in flight

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	return newRootModel(application.Store, application.Images)
}

func newRootModel(store *tasks.Store, imgs *images.Store) RootModel {
	h := help.New()
	h.ShowAll = false

	ti := textinput.New()
	ti.CharLimit = 256

	m := RootModel{
		store:       store,
		images:      imgs,
		keys:        DefaultKeyMap(),
		help:        h,
		input:       ti,
		showPreview: true,
		importing:   make(map[string]bool),
	}
	m.refresh()
	return m
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 6
		return m, nil

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		// ctrl+c always quits, 'q' only outside input mode
		if key.Matches(msg, m.keys.Quit) && (msg.String() == "ctrl+c" || !m.mode.IsInput()) {
			return m, tea.Quit
		}

		switch {
		case m.mode.IsInput():
			return m.updateInput(msg)
		case m.mode == ModeDrag:
			return m.updateDrag(msg), nil
		case m.mode == ModeConfirmClear:
			return m.updateConfirmClear(msg), nil
		default:
			return m.updateNormal(msg)
		}

	case ImageSavedMsg:
		delete(m.importing, msg.TaskID)
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		if !m.store.UpdateImage(msg.TaskID, msg.Filename) {
			// The task went away while the file was being written
			m.images.Delete(msg.Filename)
			m.errorMsg = "Task no longer exists; image discarded"
			return m, nil
		}
		m.refresh()
		m.statusMsg = "Image attached"
		return m, nil

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil
	}

	if m.mode.IsInput() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m RootModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	current, hasCurrent := m.current()

	switch {
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible

	case key.Matches(msg, m.keys.Cancel):
		m.helpVisible = false
		m.help.ShowAll = false

	// Navigation
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(m.entries)-1, 0)

	// Entry actions
	case key.Matches(msg, m.keys.Add):
		return m.startInput(ModeAdd, "", "New task...", "")

	case key.Matches(msg, m.keys.Divider):
		return m.startInput(ModeDivider, "", model.DefaultDividerTitle, "")

	case key.Matches(msg, m.keys.Rename):
		if hasCurrent {
			return m.startInput(ModeRename, current.EntryID(), "Title...", current.EntryTitle())
		}

	case key.Matches(msg, m.keys.Toggle):
		if t, ok := current.(model.Task); ok {
			m.store.ToggleDone(t.ID)
			m.refresh()
		}

	case key.Matches(msg, m.keys.InProgress):
		if t, ok := current.(model.Task); ok {
			m.store.SetInProgress(t.ID, !t.InProgress)
			m.refresh()
		}

	case key.Matches(msg, m.keys.Important):
		if t, ok := current.(model.Task); ok {
			m.store.SetImportant(t.ID, !t.Important)
			m.refresh()
		}

	case key.Matches(msg, m.keys.Delete):
		if hasCurrent {
			m.store.Delete(current.EntryID())
			m.refresh()
			m.statusMsg = fmt.Sprintf("Deleted %q", current.EntryTitle())
		}

	case key.Matches(msg, m.keys.ClearDone):
		if m.store.CompletedCount() > 0 {
			m.mode = ModeConfirmClear
		} else {
			m.statusMsg = "Nothing to clear"
		}

	case key.Matches(msg, m.keys.Move):
		if hasCurrent {
			m.drag.Begin(current.EntryID())
			m.mode = ModeDrag
		}

	case key.Matches(msg, m.keys.AttachImage):
		if t, ok := current.(model.Task); ok {
			if m.importing[t.ID] {
				m.statusMsg = "Image import already running"
				return m, nil
			}
			return m.startInput(ModeAttach, t.ID, "Path to image...", "")
		}

	case key.Matches(msg, m.keys.PasteImage):
		if t, ok := current.(model.Task); ok && !m.importing[t.ID] {
			path, err := clipboard.ReadAll()
			path = strings.TrimSpace(path)
			if err != nil || path == "" {
				m.errorMsg = "Clipboard does not hold an image path"
				return m, nil
			}
			m.importing[t.ID] = true
			m.statusMsg = "Importing image..."
			return m, saveImage(m.images, t.ID, path)
		}

	case key.Matches(msg, m.keys.CopyTitle):
		if hasCurrent {
			return m, copyTitle(current.EntryTitle())
		}

	case key.Matches(msg, m.keys.DetachImage):
		if t, ok := current.(model.Task); ok && t.HasImage() {
			m.store.UpdateImage(t.ID, "")
			m.refresh()
			m.statusMsg = "Image detached"
		}

	case key.Matches(msg, m.keys.TogglePreview):
		m.showPreview = !m.showPreview
	}

	return m, nil
}

func (m RootModel) startInput(mode Mode, id, placeholder, value string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.editingID = id
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

func (m RootModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.endInput()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := m.input.Value()
		mode, id := m.mode, m.editingID
		m.endInput()
		return m.submit(mode, id, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *RootModel) endInput() {
	m.mode = ModeNormal
	m.editingID = ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m RootModel) submit(mode Mode, id, value string) (tea.Model, tea.Cmd) {
	switch mode {
	case ModeAdd:
		if _, ok := m.store.AddTask(value); ok {
			m.refresh()
			m.cursor = 0
		}

	case ModeRename:
		if m.store.UpdateTitle(id, value) {
			m.refresh()
		}

	case ModeDivider:
		at := tasks.Front()
		if current, ok := m.current(); ok {
			at = tasks.Above(current.EntryID())
		}
		if newID, ok := m.store.AddDivider(value, at); ok {
			m.refresh()
			m.moveCursorTo(newID)
		}

	case ModeAttach:
		path := strings.TrimSpace(value)
		if path == "" {
			return m, nil
		}
		m.importing[id] = true
		m.statusMsg = "Importing image..."
		return m, saveImage(m.images, id, path)
	}
	return m, nil
}

// saveImage decodes, scales and writes the image off the update loop
func saveImage(imgs *images.Store, taskID, path string) tea.Cmd {
	return func() tea.Msg {
		filename, ok := imgs.SaveFile(path)
		if !ok {
			return ImageSavedMsg{TaskID: taskID, Err: fmt.Errorf("failed to import image %s", path)}
		}
		return ImageSavedMsg{TaskID: taskID, Filename: filename}
	}
}

func copyTitle(title string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(title); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to copy: %w", err)}
		}
		return StatusMsg{Message: "Copied: " + title}
	}
}

// updateDrag moves the dragged entry live as the cursor crosses neighbours
func (m RootModel) updateDrag(msg tea.KeyMsg) RootModel {
	source, ok := m.drag.Source()
	if !ok {
		m.mode = ModeNormal
		return m
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.drag.Enter(m.entries[m.cursor-1].EntryID(), m.store)
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.drag.Enter(m.entries[m.cursor+1].EntryID(), m.store)
		}
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Move), msg.String() == " ":
		m.drag.Drop()
		m.mode = ModeNormal
	case key.Matches(msg, m.keys.Cancel):
		m.drag.Cancel()
		m.mode = ModeNormal
	}

	m.refresh()
	m.moveCursorTo(source)
	return m
}

func (m RootModel) updateConfirmClear(msg tea.KeyMsg) RootModel {
	m.mode = ModeNormal
	if msg.String() != "y" && msg.String() != "Y" {
		m.statusMsg = "Cancelled"
		return m
	}
	n := m.store.ClearCompleted()
	m.refresh()
	m.statusMsg = fmt.Sprintf("Cleared %d completed", n)
	return m
}

// refresh reloads the snapshot from the store and clamps the cursor
func (m *RootModel) refresh() {
	m.entries = m.store.Entries()
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *RootModel) moveCursorTo(id string) {
	for i, e := range m.entries {
		if e.EntryID() == id {
			m.cursor = i
			return
		}
	}
}

func (m RootModel) current() (model.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return nil, false
	}
	return m.entries[m.cursor], true
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	footer := m.renderFooter()
	contentHeight := m.height - 1 - lipgloss.Height(footer)

	var content string
	if m.helpVisible {
		content = m.help.View(m.keys)
	} else {
		content = m.renderContent(contentHeight)
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content, footer)

	return strings.Join(sections, "\n")
}

// renderHeader renders the title and the task counters
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("sticky")

	counterStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	counter := counterStyle.Render(fmt.Sprintf("%d left · %d done",
		m.store.RemainingCount(), m.store.CompletedCount()))

	leftSide := title
	if m.mode != ModeNormal {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Center, title,
			counterStyle.Render(fmt.Sprintf("[%s]", m.mode)))
	}

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(counter)
	if gap < 0 {
		gap = 0
	}
	return leftSide + strings.Repeat(" ", gap) + counter
}

// renderContent renders the list, with the preview panel beside it
func (m RootModel) renderContent(height int) string {
	styles := theme.Current.Styles

	if len(m.entries) == 0 {
		return styles.Label.Padding(1, 2).Render("No tasks yet. Press a to add one.")
	}

	preview := m.renderPreview()
	listWidth := m.width
	if preview != "" {
		listWidth -= lipgloss.Width(preview) + 1
	}

	// Keep the cursor visible
	visible := max(height, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.entries))

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, m.renderEntry(m.entries[i], i == m.cursor, listWidth))
	}
	list := strings.Join(rows, "\n")

	if preview == "" {
		return list
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listWidth).Render(list), " ", preview)
}

func (m RootModel) renderEntry(e model.Entry, selected bool, width int) string {
	styles := theme.Current.Styles

	rowStyle := styles.TaskNormal
	switch {
	case m.drag.IsDragging(e.EntryID()):
		rowStyle = styles.TaskDragging
	case selected:
		rowStyle = styles.TaskSelected
	}

	switch e := e.(type) {
	case model.Divider:
		label := "── " + e.Title + " "
		fill := max(width-lipgloss.Width(label)-2, 0)
		line := label + strings.Repeat("─", fill)
		if selected || m.drag.IsDragging(e.ID) {
			return rowStyle.Render(line)
		}
		return styles.Divider.Render(line)

	case model.Task:
		var b strings.Builder
		switch e.Status() {
		case model.StatusDone:
			b.WriteString("[x] ")
		case model.StatusInProgress:
			b.WriteString("[~] ")
		default:
			b.WriteString("[ ] ")
		}

		if e.Important {
			b.WriteString(styles.Important.Render("! "))
		}

		title := e.Title
		switch e.Status() {
		case model.StatusDone:
			title = styles.TaskDone.Render(title)
		case model.StatusInProgress:
			title = styles.TaskInProgress.Render(title)
		}
		b.WriteString(title)

		switch {
		case m.importing[e.ID]:
			b.WriteString(styles.ImageMarker.Render(" …"))
		case e.HasImage():
			b.WriteString(styles.ImageMarker.Render(" ▣"))
		}
		return rowStyle.Render(b.String())
	}
	return ""
}

// renderPreview draws the selected task's thumbnail, if it has one
func (m RootModel) renderPreview() string {
	if !m.showPreview || m.images == nil {
		return ""
	}
	current, ok := m.current()
	if !ok {
		return ""
	}
	t, ok := current.(model.Task)
	if !ok || !t.HasImage() {
		return ""
	}

	styles := theme.Current.Styles
	img, ok := m.images.Thumbnail(t.ImageFilename, previewSize)
	if !ok {
		return styles.Panel.Render(styles.Label.Render("image missing"))
	}
	return styles.Panel.Render(renderHalfBlocks(img))
}

// renderFooter renders the status line and key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	// Helper to format key hints
	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var lines []string

	// Status/error line (if present)
	if m.errorMsg != "" {
		lines = append(lines, styles.StatusError.Render(m.errorMsg))
	} else if m.statusMsg != "" {
		lines = append(lines, styles.StatusInfo.Render(m.statusMsg))
	}

	switch m.mode {
	case ModeAdd, ModeRename, ModeDivider, ModeAttach:
		lines = append(lines, styles.InputFocused.Render(m.input.View()))
		lines = append(lines, key("enter", "confirm")+sep+key("esc", "cancel"))
	case ModeDrag:
		lines = append(lines, key("↑/↓", "move")+sep+key("enter", "drop")+sep+key("esc", "stop"))
	case ModeConfirmClear:
		lines = append(lines, fmt.Sprintf("Clear %d completed task(s)? ", m.store.CompletedCount())+
			key("y", "yes")+sep+key("any", "no"))
	default:
		lines = append(lines, m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return strings.Join(lines, "\n")
}
