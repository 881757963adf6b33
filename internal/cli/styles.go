package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/ilsang/internal/models"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	CycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	DoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	listStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// RoutineLine renders a routine as a single list row.
func RoutineLine(r models.Routine) string {
	parts := []string{r.Name, CycleStyle.Render(r.RepeatCycle)}
	if r.ReminderTime != "" {
		parts = append(parts, "⏰ "+r.ReminderTime)
	}
	if n := len(r.SubTasks); n > 0 {
		parts = append(parts, MutedStyle.Render(fmt.Sprintf("(%d sub-tasks)", n)))
	}
	parts = append(parts, MutedStyle.Render(ShortID(r.ID)))
	return strings.Join(parts, "  ")
}

// Progress renders an execution state such as "✓ 3/3" or "· 1/3".
func Progress(exec *models.Execution) string {
	switch {
	case exec == nil:
		return MutedStyle.Render("·")
	case exec.Done():
		return DoneStyle.Render(fmt.Sprintf("✓ %d/%d", exec.CompletedSubTasks, exec.TotalSubTasks))
	default:
		return WarningStyle.Render(fmt.Sprintf("… %d/%d", exec.CompletedSubTasks, exec.TotalSubTasks))
	}
}

// List indents each line as a block.
func List(lines []string) string {
	return listStyle.Render(strings.Join(lines, "\n"))
}

// ShortID returns the first eight characters of a UUID for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
