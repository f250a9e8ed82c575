// Package tui is an interactive browser over a page's cookies.
package tui

import (
	"fmt"
	"strings"

	"github.com/artpar/crumb/internal/cookie"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RefreshMsg reloads the cookie list.
type RefreshMsg struct{}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62"))
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	emptyStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Browser lists the cookies visible through a Jar and deletes or copies
// the selected one.
type Browser struct {
	jar     *cookie.Jar
	title   string
	records []*cookie.Record
	cursor  int
	status  string
	width   int
	height  int
	copy    func(string) error
	// scope deletes are issued under
	path   string
	domain string
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithDeleteScope sets the path and domain d deletes under. It should
// match the defaults cookies are stored with; unset means "/" and the
// page host.
func WithDeleteScope(path, domain string) BrowserOption {
	return func(b *Browser) {
		b.path = path
		b.domain = domain
	}
}

// WithClipboard replaces the function y copies values with.
func WithClipboard(copy func(string) error) BrowserOption {
	return func(b *Browser) {
		b.copy = copy
	}
}

// NewBrowser creates a Browser over jar. title is shown in the header,
// usually the page URL.
func NewBrowser(jar *cookie.Jar, title string, opts ...BrowserOption) *Browser {
	b := &Browser{
		jar:   jar,
		title: title,
		copy:  clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.reload()
	return b
}

// Records returns the cookies currently listed.
func (b *Browser) Records() []*cookie.Record {
	return b.records
}

// Cursor returns the index of the selected cookie.
func (b *Browser) Cursor() int {
	return b.cursor
}

// Status returns the last status line.
func (b *Browser) Status() string {
	return b.status
}

func (b *Browser) reload() {
	b.records = b.jar.All()
	if b.cursor >= len(b.records) {
		b.cursor = len(b.records) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

func (b *Browser) selected() *cookie.Record {
	if len(b.records) == 0 {
		return nil
	}
	return b.records[b.cursor]
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
	case RefreshMsg:
		b.reload()
	case tea.KeyMsg:
		return b, b.handleKey(msg)
	}
	return b, nil
}

func (b *Browser) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return tea.Quit
	case "j", "down":
		if b.cursor < len(b.records)-1 {
			b.cursor++
		}
	case "k", "up":
		if b.cursor > 0 {
			b.cursor--
		}
	case "g", "home":
		b.cursor = 0
	case "G", "end":
		if len(b.records) > 0 {
			b.cursor = len(b.records) - 1
		}
	case "r":
		b.reload()
		b.status = fmt.Sprintf("%d cookies", len(b.records))
	case "d":
		r := b.selected()
		if r == nil {
			return nil
		}
		b.jar.DeleteScoped(cookie.Options{Name: r.Name, Path: b.path, Domain: b.domain})
		if b.jar.Exists(r.Name) {
			// Stored under a path or domain other than the default
			b.status = fmt.Sprintf("%s is still set: delete it with its path and domain", r.Name)
		} else {
			b.status = fmt.Sprintf("deleted %s", r.Name)
		}
		b.reload()
	case "y":
		r := b.selected()
		if r == nil {
			return nil
		}
		if err := b.copy(r.Value); err != nil {
			b.status = fmt.Sprintf("copy failed: %v", err)
		} else {
			b.status = fmt.Sprintf("copied %s", r.Name)
		}
	}
	return nil
}

// View implements tea.Model.
func (b *Browser) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("cookies " + b.title))
	sb.WriteString("\n\n")

	if len(b.records) == 0 {
		sb.WriteString(emptyStyle.Render("no cookies"))
		sb.WriteString("\n")
	}

	nameWidth := 0
	for _, r := range b.records {
		if len(r.Name) > nameWidth {
			nameWidth = len(r.Name)
		}
	}

	for i, r := range b.records {
		line := fmt.Sprintf("%-*s  %s", nameWidth, r.Name, truncate(r.Value, b.valueWidth(nameWidth)))
		if i == b.cursor {
			sb.WriteString(selectedStyle.Render(line))
		} else {
			sb.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, r.Name)))
			sb.WriteString("  ")
			sb.WriteString(valueStyle.Render(truncate(r.Value, b.valueWidth(nameWidth))))
		}
		sb.WriteString("\n")
	}

	if b.status != "" {
		sb.WriteString("\n")
		sb.WriteString(statusStyle.Render(b.status))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("j/k move  d delete  y copy  r reload  q quit"))

	return frameStyle.Render(sb.String())
}

func (b *Browser) valueWidth(nameWidth int) int {
	if b.width == 0 {
		return 0
	}
	// border, padding and the gap after the name
	w := b.width - nameWidth - 6
	if w < 8 {
		w = 8
	}
	return w
}

// truncate shortens s to max runes with an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
