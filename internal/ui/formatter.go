package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"remindkit/internal/reminder"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Bright cyan
			Bold(true)

	DoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")). // Dim gray
			Strikethrough(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Medium gray
			Italic(true)

	DueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")) // Soft green

	IDStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	HighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	MediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("222"))
	LowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

const dueLayout = "2006-01-02 15:04"

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

// FormatReminders renders the cached list, one reminder per line, in
// the order the store keeps it.
func (f *Formatter) FormatReminders(rs []reminder.Reminder) string {
	if len(rs) == 0 {
		return f.FormatSystem("No reminders.")
	}

	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.formatReminder(r))
	}
	return b.String()
}

func (f *Formatter) formatReminder(r reminder.Reminder) string {
	glyph := "[ ]"
	if r.Completed {
		glyph = "[x]"
	}

	title := r.Title
	if f.colored {
		if r.Completed {
			title = DoneStyle.Render(title)
		} else {
			title = TitleStyle.Render(title)
		}
	}

	parts := []string{glyph, title}

	if r.DueAt != nil {
		due := "due " + r.DueAt.Format(dueLayout)
		if f.colored {
			due = DueStyle.Render(due)
		}
		parts = append(parts, due)
	}

	if r.Priority != reminder.PriorityNone {
		parts = append(parts, f.formatPriority(r.Priority))
	}

	if r.Notes != "" {
		parts = append(parts, "- "+r.Notes)
	}

	id := "(" + r.ID + ")"
	if f.colored {
		id = IDStyle.Render(id)
	}
	parts = append(parts, id)

	return strings.Join(parts, "  ")
}

func (f *Formatter) formatPriority(p reminder.Priority) string {
	label := "[" + strings.ToUpper(p.String()) + "]"
	if !f.colored {
		return label
	}
	switch p {
	case reminder.PriorityHigh:
		return HighStyle.Render(label)
	case reminder.PriorityMedium:
		return MediumStyle.Render(label)
	default:
		return LowStyle.Render(label)
	}
}

// FormatAccess renders the permission state banner.
func (f *Formatter) FormatAccess(state reminder.AccessState) string {
	msg := "Reminders access: " + state.String()
	if state == reminder.AccessDenied {
		msg += " (run 'grant' or enable access in your settings)"
	}
	if f.colored {
		if state == reminder.AccessDenied {
			return ErrorStyle.Render(msg)
		}
		return InfoStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatError(err error) string {
	prefix := "Error: "
	if f.colored {
		prefix = ErrorStyle.Render("Error: ")
	}
	return prefix + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	if f.colored {
		return InfoStyle.Render(info)
	}
	return info
}

func (f *Formatter) FormatSystem(msg string) string {
	if f.colored {
		return SystemStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatStatus(msg string) string {
	if f.colored {
		return StatusStyle.Render(msg)
	}
	return msg
}
