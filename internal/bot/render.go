package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/views"
)

const (
	iconDefault    = "🟢"
	iconDue        = "⏳"
	iconOverdue    = "⚠️"
	iconCompleted  = "✅"
	iconInProgress = "🔄"
	iconUnknownCat = "🏷️"
)

func escape(s string) string {
	return html.EscapeString(s)
}

func statusIcon(s model.Status) string {
	switch s {
	case model.StatusCompleted:
		return iconCompleted
	case model.StatusInProgress:
		return iconInProgress
	default:
		return "🕓"
	}
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "🔴 high"
	case model.PriorityMedium:
		return "🟡 medium"
	default:
		return "🟢 low"
	}
}

func categoryLabel(categories []model.Category, name string) string {
	if name == "" {
		return "📁 Uncategorized"
	}
	label := model.LabelFor(categories, name)
	if label == "" {
		// Dangling reference; show the raw name rather than dropping it.
		return fmt.Sprintf("%s %s", iconUnknownCat, escape(name))
	}
	return fmt.Sprintf("%s %s", iconUnknownCat, escape(label))
}

func dueIcon(task model.Task, today string) string {
	if task.Status == model.StatusCompleted {
		return iconCompleted
	}
	switch {
	case task.DueDate < today:
		return iconOverdue
	case task.DueDate == today:
		return iconDue
	default:
		return iconDefault
	}
}

// renderTaskList builds the list view message. Compact mode is one line per
// task; detailed mode adds description, category and due-date lines.
func renderTaskList(view views.ListView, categories []model.Category, params views.ListParams, now time.Time, compact bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>Tasks (%d)</b>\n", len(view.Tasks))

	if params.Active() {
		b.WriteString(renderActiveFilters(params))
	}
	b.WriteByte('\n')

	if len(view.Tasks) == 0 {
		if view.Total == 0 {
			b.WriteString("No tasks yet. Get started with ➕ New Task!")
		} else {
			b.WriteString("No tasks match your filters. Adjust the search with /filter or reset with /clearfilter.")
		}
		return b.String()
	}

	today := views.DateOf(now)
	for _, task := range view.Tasks {
		if compact {
			fmt.Fprintf(&b, "%s <b>#%d</b> %s · %s\n", dueIcon(task, today), task.ID, escape(task.Title), string(task.Status))
			continue
		}
		b.WriteString(formatTaskDetailed(task, categories, today))
	}
	return strings.TrimSpace(b.String())
}

func formatTaskDetailed(task model.Task, categories []model.Category, today string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>#%d</b> %s\n", dueIcon(task, today), task.ID, escape(task.Title))
	fmt.Fprintf(&b, "   %s %s · %s\n", statusIcon(task.Status), string(task.Status), priorityLabel(task.Priority))
	fmt.Fprintf(&b, "   %s\n", categoryLabel(categories, task.Category))
	if task.DueDate != "" {
		if task.Status != model.StatusCompleted && task.DueDate < today {
			fmt.Fprintf(&b, "   ⏰ due %s — <b>overdue</b>\n", task.DueDate)
		} else {
			fmt.Fprintf(&b, "   ⏰ due %s\n", task.DueDate)
		}
	}
	if task.Description != "" {
		fmt.Fprintf(&b, "   📝 %s\n", escape(task.Description))
	}
	b.WriteByte('\n')
	return b.String()
}

func renderActiveFilters(p views.ListParams) string {
	var parts []string
	if p.Query != "" {
		parts = append(parts, fmt.Sprintf("search %q", p.Query))
	}
	if p.Status != "" && p.Status != views.FilterAll {
		parts = append(parts, "status="+p.Status)
	}
	if p.Priority != "" && p.Priority != views.FilterAll {
		parts = append(parts, "priority="+p.Priority)
	}
	if p.Category != "" && p.Category != views.FilterAll {
		parts = append(parts, "category="+p.Category)
	}
	return fmt.Sprintf("🔍 Filters: %s\n", escape(strings.Join(parts, ", ")))
}

func renderStats(stats views.Stats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Task statistics</b>\n\n")
	fmt.Fprintf(&b, "• Total: <b>%d</b>\n", stats.Total)
	fmt.Fprintf(&b, "• %s Completed: <b>%d</b>\n", iconCompleted, stats.Completed)
	fmt.Fprintf(&b, "• %s In progress: <b>%d</b>\n", iconInProgress, stats.InProgress)
	fmt.Fprintf(&b, "• 🕓 Pending: <b>%d</b>\n", stats.Pending)
	fmt.Fprintf(&b, "\nProgress: %d%% %s", int(stats.CompletionRate()+0.5), progressBar(stats.CompletionRate()))
	return b.String()
}

func progressBar(rate float64) string {
	filled := int(rate / 10)
	return strings.Repeat("▰", filled) + strings.Repeat("▱", 10-filled)
}

func renderCalendar(view views.MonthView, today string) string {
	var b strings.Builder
	first := time.Date(view.Year, view.Month, 1, 0, 0, 0, 0, time.UTC)
	fmt.Fprintf(&b, "📅 <b>%s</b>\n\n", first.Format("January 2006"))
	b.WriteString("<code>Su Mo Tu We Th Fr Sa</code>\n")

	var row []string
	for i := 0; i < view.LeadingBlanks; i++ {
		row = append(row, "  ")
	}
	for _, day := range view.Days {
		row = append(row, fmt.Sprintf("%2d", day.Day))
		if len(row) == 7 {
			b.WriteString("<code>" + strings.Join(row, " ") + "</code>\n")
			row = nil
		}
	}
	if len(row) > 0 {
		b.WriteString("<code>" + strings.Join(row, " ") + "</code>\n")
	}
	fmt.Fprintf(&b, "Today: %s\n", today)

	busy := false
	for _, day := range view.Days {
		if len(day.Tasks) == 0 {
			continue
		}
		busy = true
		fmt.Fprintf(&b, "\n<b>%s</b>\n", day.Date)
		for _, task := range day.Visible() {
			fmt.Fprintf(&b, "• #%d %s\n", task.ID, escape(task.Title))
		}
		if day.Overflow() > 0 {
			fmt.Fprintf(&b, "• +%d more\n", day.Overflow())
		}
	}
	if !busy {
		b.WriteString("\nNothing due this month.")
	}
	return strings.TrimSpace(b.String())
}

func renderAnalytics(tasks []model.Task, categories []model.Category, now time.Time) string {
	series := views.Productivity(tasks, now)
	perf := views.CategoryStats(tasks, categories)
	overdue := views.OverdueCount(tasks, now)
	avgDays := views.AverageCompletionDays(tasks)

	weekTotal := 0
	maxCompleted := 1
	for _, point := range series {
		weekTotal += point.Completed
		if point.Completed > maxCompleted {
			maxCompleted = point.Completed
		}
	}

	var b strings.Builder
	b.WriteString("📈 <b>Analytics</b>\n\n")
	fmt.Fprintf(&b, "• Overdue: <b>%d</b>\n", overdue)
	fmt.Fprintf(&b, "• Avg. completion: <b>%d days</b>\n", avgDays)
	fmt.Fprintf(&b, "• Completed this week: <b>%d</b>\n\n", weekTotal)

	b.WriteString("<b>7-day productivity</b>\n")
	for _, point := range series {
		bars := strings.Repeat("▇", point.Completed*8/maxCompleted)
		if point.Completed > 0 && bars == "" {
			bars = "▇"
		}
		fmt.Fprintf(&b, "<code>%s %s %d</code>\n", point.Weekday, bars, point.Completed)
	}

	b.WriteString("\n<b>Category performance</b>\n")
	for _, p := range perf {
		fmt.Fprintf(&b, "• %s: %d/%d (%d%%)\n", escape(p.Category.Label), p.Completed, p.Total, int(p.Percentage+0.5))
	}
	return strings.TrimSpace(b.String())
}

func notificationIcon(kind views.NotificationType) string {
	switch kind {
	case views.NotifyOverdue:
		return iconOverdue
	case views.NotifyDueToday:
		return iconDue
	default:
		return "🔔"
	}
}

func renderNotificationLine(n views.Notification) string {
	return fmt.Sprintf("%s %s (due %s)", notificationIcon(n.Type), escape(n.Message), n.Task.DueDate)
}
