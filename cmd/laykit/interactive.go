package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	elementStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browseState int

const (
	stateCellList browseState = iota
	stateCellDetail
)

type browseModel struct {
	filename string
	cells    []cellInfo
	visible  []int // indexes into cells after filtering
	filter   textinput.Model
	selected int
	scroll   int
	width    int
	height   int
	state    browseState
}

func runInteractive(filename string, l *layout) error {
	cells := l.cells()
	if len(cells) == 0 {
		return fmt.Errorf("%s holds no cells", filename)
	}

	filter := textinput.New()
	filter.Placeholder = "filter cells"
	filter.Prompt = "/ "

	m := browseModel{
		filename: filename,
		cells:    cells,
		filter:   filter,
		width:    80,
		height:   24,
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		m.width, m.height = w, h
	}
	m.applyFilter()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				return m, nil
			default:
				var cmd tea.Cmd
				m.filter, cmd = m.filter.Update(msg)
				m.applyFilter()
				return m, cmd
			}
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			if m.state == stateCellList {
				m.filter.Focus()
				return m, textinput.Blink
			}
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			m.scroll = 0
		case "down", "j":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
			m.scroll = 0
		case "pgup":
			if m.scroll > 0 {
				m.scroll--
			}
		case "pgdown":
			m.scroll++
		case "enter", "l":
			if m.state == stateCellList && len(m.visible) > 0 {
				m.state = stateCellDetail
				m.scroll = 0
			}
		case "esc", "h":
			if m.state == stateCellDetail {
				m.state = stateCellList
			}
		}
	}
	return m, nil
}

func (m *browseModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, c := range m.cells {
		if query == "" || strings.Contains(strings.ToLower(c.name), query) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m browseModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("laykit - %s", m.filename)))
	b.WriteString("\n\n")

	switch m.state {
	case stateCellList:
		b.WriteString(m.listView())
	case stateCellDetail:
		b.WriteString(m.detailView())
	}
	return b.String()
}

func (m browseModel) listView() string {
	var b strings.Builder
	if m.filter.Focused() || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	rows := m.height - 7
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	for i := start; i < len(m.visible) && i < start+rows; i++ {
		c := m.cells[m.visible[i]]
		line := fmt.Sprintf("%s (%d elements)", c.name, len(c.elements))
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(cellStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("up/down: select | enter: open | /: filter | q: quit"))
	return b.String()
}

func (m browseModel) detailView() string {
	var b strings.Builder
	c := m.cells[m.visible[m.selected]]
	b.WriteString(cellStyle.Render(c.name))
	b.WriteString("\n\n")

	rows := m.height - 7
	if rows < 1 {
		rows = 1
	}
	maxScroll := len(c.elements) - rows
	if maxScroll < 0 {
		maxScroll = 0
	}
	scroll := m.scroll
	if scroll > maxScroll {
		scroll = maxScroll
	}
	for i := scroll; i < len(c.elements) && i < scroll+rows; i++ {
		b.WriteString(elementStyle.Render("  " + c.elements[i]))
		b.WriteString("\n")
	}
	if len(c.elements) == 0 {
		b.WriteString(helpStyle.Render("  (empty cell)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("pgup/pgdown: scroll | esc: back | q: quit"))
	return b.String()
}
