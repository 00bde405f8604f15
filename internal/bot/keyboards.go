package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskdeck/internal/model"
	"taskdeck/internal/views"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTasks),
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelStats),
			tgbotapi.NewKeyboardButton(menuLabelCal),
			tgbotapi.NewKeyboardButton(menuLabelTrends),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelAlerts),
			tgbotapi.NewKeyboardButton(menuLabelExport),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🔴 high"),
			tgbotapi.NewKeyboardButton("🟡 medium"),
			tgbotapi.NewKeyboardButton("🟢 low"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func statusFilterKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🕓 pending"),
			tgbotapi.NewKeyboardButton("🔄 in-progress"),
			tgbotapi.NewKeyboardButton("✅ completed"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("All"),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityFilterKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🔴 high"),
			tgbotapi.NewKeyboardButton("🟡 medium"),
			tgbotapi.NewKeyboardButton("🟢 low"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("All"),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// categoryKeyboard offers the known category labels as buttons. The user can
// still type a free-form name; the backend does not enforce the list.
func (b *Bot) categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, cat := range b.client.Categories() {
		row = append(row, tgbotapi.NewKeyboardButton(cat.Label))
		if len(row) == 3 {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func (b *Bot) categoryFilterKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := b.categoryKeyboard()
	last := len(kb.Keyboard) - 1
	kb.Keyboard[last] = tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("All"),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	)
	return kb
}

// categoryNameForInput maps a tapped label back to the stored category name.
// Unrecognized input is treated as a free-form name, lowercased to match the
// stock naming.
func (b *Bot) categoryNameForInput(input string) string {
	input = strings.TrimSpace(input)
	for _, cat := range b.client.Categories() {
		if strings.EqualFold(input, cat.Label) || strings.EqualFold(input, cat.Name) {
			return cat.Name
		}
	}
	return strings.ToLower(input)
}

// taskButtons builds one inline row per listed task: the status changes the
// current status offers, plus delete.
func taskButtons(tasks []model.Task) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		var row []tgbotapi.InlineKeyboardButton
		for _, next := range task.Status.Transitions() {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s #%d → %s", statusIcon(next), task.ID, string(next)),
				fmt.Sprintf("%s%d:%s", cbStatusPrefix, task.ID, string(next)),
			))
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("🗑 #%d", task.ID),
			fmt.Sprintf("%s%d", cbDeletePrefix, task.ID),
		))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	return rows
}

func isSkipInput(text string) bool {
	t := strings.TrimSpace(text)
	return t == btnSkip || strings.EqualFold(t, "skip")
}

func isCancelInput(text string) bool {
	t := strings.TrimSpace(text)
	return t == btnCancelDialog || strings.EqualFold(t, "cancel")
}

func isAllInput(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || strings.EqualFold(t, "all") || isSkipInput(t)
}

// parsePriorityInput reads either a tapped priority button ("🔴 high") or a
// typed value.
func parsePriorityInput(text string) (model.Priority, bool) {
	t := strings.TrimSpace(text)
	if i := strings.LastIndexByte(t, ' '); i >= 0 {
		t = t[i+1:]
	}
	p := model.Priority(strings.ToLower(t))
	if p.Valid() {
		return p, true
	}
	return "", false
}

// parseFilterInput matches the text against the allowed values, dropping a
// leading emoji from button labels. Anything else means "all".
func parseFilterInput(text string, allowed ...string) string {
	t := strings.TrimSpace(text)
	if i := strings.LastIndexByte(t, ' '); i >= 0 {
		t = t[i+1:]
	}
	t = strings.ToLower(t)
	for _, v := range allowed {
		if t == v {
			return v
		}
	}
	return views.FilterAll
}

func parseCalData(data string) (int, time.Month, bool) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}
