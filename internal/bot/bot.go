// Package bot is the interactive surface of taskdeck: it renders the
// derived views over Telegram and forwards user intents (create, edit,
// delete, status changes, filter changes) to the repository client.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskdeck/internal/client"
	"taskdeck/internal/config"
	"taskdeck/internal/export"
	"taskdeck/internal/model"
	"taskdeck/internal/session"
	"taskdeck/internal/views"
)

type conversationKind int

const (
	convNone conversationKind = iota
	convLogin
	convNewTask
	convEditTask
	convFilter
)

type conversationState struct {
	kind  conversationKind
	stage int

	// login
	username string

	// new/edit task
	taskID int // edit only
	draft  client.Draft
	patch  client.Patch

	// filter
	params views.ListParams
}

const (
	cbStatusPrefix  = "status:"
	cbDeletePrefix  = "delete:"
	cbDelOKPrefix   = "delok:"
	cbDelNo         = "delno"
	cbDismissPrefix = "dismiss:"
	cbCalPrefix     = "cal:"
	cbExportPrefix  = "exp:"
)

const (
	btnSkip          = "⏭️ Skip"
	btnCancelDialog  = "⏪ Cancel"
	menuLabelTasks   = "📋 Tasks"
	menuLabelNewTask = "➕ New Task"
	menuLabelStats   = "📊 Stats"
	menuLabelCal     = "📅 Calendar"
	menuLabelTrends  = "📈 Analytics"
	menuLabelAlerts  = "🔔 Alerts"
	menuLabelExport  = "📤 Export"
	menuLabelHelp    = "ℹ️ Help"
)

// chatState is the per-chat UI state: the authenticated user, any dialog in
// flight, the list view parameters and the ephemeral notification
// dismissals.
type chatState struct {
	user         *model.User
	conversation *conversationState
	params       views.ListParams
	compact      bool
	calYear      int
	calMonth     time.Month
	dismissed    map[string]bool
}

// Bot aggregates the Telegram API with the repository client.
type Bot struct {
	api      *tgbotapi.BotAPI
	client   *client.Client
	sessions *session.Store
	config   *config.Config

	mu     sync.Mutex
	states map[int64]*chatState
}

func New(cfg *config.Config, cl *client.Client, sessions *session.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	b := &Bot{
		api:      api,
		client:   cl,
		sessions: sessions,
		config:   cfg,
		states:   make(map[int64]*chatState),
	}

	// Restore the persisted session so the digest keeps flowing after a
	// restart without a fresh /login.
	rec, err := sessions.Load()
	if err != nil {
		log.Printf("load session: %v", err)
	} else if rec != nil {
		b.setUser(rec.ChatID, rec.User)
		log.Printf("[info] restored session for %s", rec.User.Username)
	}

	return b, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if isCancelInput(msg.Text) {
		b.clearConversation(chatID)
		return b.sendText(chatID, "⏪ Dialog cancelled.")
	}

	// A dialog in flight consumes the text before menu buttons do.
	if b.hasConversation(chatID) {
		return b.handleConversation(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(chatID, "I didn't get that. Try /tasks to see your list or /help for all commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "login":
		return b.startLogin(msg)
	case "logout":
		return b.handleLogout(msg)
	case "tasks":
		return b.handleTasks(ctx, msg)
	case "filter":
		return b.startFilter(msg)
	case "clearfilter":
		return b.handleClearFilter(ctx, msg)
	case "view":
		return b.handleToggleView(ctx, msg)
	case "newtask":
		return b.startNewTask(msg)
	case "edit":
		return b.startEdit(msg)
	case "delete":
		return b.handleDeleteCommand(msg)
	case "stats":
		return b.handleStats(msg)
	case "calendar":
		return b.handleCalendar(msg, 0, 0)
	case "analytics":
		return b.handleAnalytics(msg)
	case "alerts", "notifications":
		return b.handleAlerts(msg)
	case "export":
		return b.handleExport(msg)
	case "reload":
		return b.handleReload(ctx, msg)
	case "cancel":
		b.clearConversation(msg.Chat.ID)
		return b.sendText(msg.Chat.ID, "⏪ Dialog cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	state := b.state(msg.Chat.ID)
	if state.user != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("👋 Welcome back, %s! Here's what you have on your plate: /tasks", escape(state.user.Name)))
	}
	text := "👋 Hi! <b>I'm taskdeck, your personal task manager.</b>\n\n" +
		"Log in first with /login, then:\n" +
		"• /tasks — your task list\n" +
		"• /newtask — add a task\n" +
		"• /stats — status counts\n" +
		"• /calendar — month view\n" +
		"• /analytics — productivity and categories\n" +
		"• /alerts — due-date notifications\n" +
		"• /export — CSV, JSON backup or text report\n" +
		"• /help — everything else"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /login, /logout — session\n" +
		"• /tasks — filtered task list with action buttons\n" +
		"• /filter — set search text and status/priority/category filters\n" +
		"• /clearfilter — reset all filters\n" +
		"• /view — toggle compact/detailed list\n" +
		"• /newtask — add a task step by step\n" +
		"• /edit &lt;id&gt; — edit a task field by field\n" +
		"• /delete &lt;id&gt; — delete (asks for confirmation)\n" +
		"• /stats, /calendar, /analytics, /alerts — views\n" +
		"• /export — download CSV, JSON backup or report\n" +
		"• /reload — refetch from the server\n" +
		"• /cancel — abort the current dialog"
	return b.sendText(msg.Chat.ID, text)
}

// ----- login / logout -----

func (b *Bot) startLogin(msg *tgbotapi.Message) error {
	b.setConversation(msg.Chat.ID, &conversationState{kind: convLogin})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🔐 <b>Step 1:</b> your username?", cancelKeyboard())
}

func (b *Bot) handleLogout(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	b.mu.Lock()
	delete(b.states, chatID)
	b.mu.Unlock()
	if err := b.sessions.Clear(); err != nil {
		log.Printf("clear session: %v", err)
	}
	return b.sendText(chatID, "👋 Logged out. See you soon — /login when you're back.")
}

// ----- conversations -----

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.Chat.ID)
	if state == nil {
		return nil
	}
	switch state.kind {
	case convLogin:
		return b.continueLogin(ctx, msg, state)
	case convNewTask:
		return b.continueNewTask(ctx, msg, state)
	case convEditTask:
		return b.continueEdit(ctx, msg, state)
	case convFilter:
		return b.continueFilter(ctx, msg, state)
	default:
		b.clearConversation(msg.Chat.ID)
		return nil
	}
}

func (b *Bot) continueLogin(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case 0:
		state.username = text
		state.stage = 1
		return b.sendWithReplyMarkup(chatID, "🔑 <b>Step 2:</b> your password?", cancelKeyboard())
	default:
		b.clearConversation(chatID)
		user, err := b.client.Login(ctx, state.username, text)
		if errors.Is(err, client.ErrInvalidCredentials) {
			return b.sendText(chatID, "❌ Invalid username or password. Try /login again.")
		}
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Login failed: %s", escape(err.Error())))
		}

		b.setUser(chatID, user)
		if err := b.sessions.Save(session.Record{User: user, ChatID: chatID}); err != nil {
			log.Printf("save session: %v", err)
		}
		log.Printf("[info] user %s logged in", user.Username)

		if err := b.client.Load(ctx, user.ID); err != nil {
			return b.sendText(chatID, fmt.Sprintf("✅ Logged in as <b>%s</b>, but loading tasks failed: %s. Retry with /reload.", escape(user.Name), escape(err.Error())))
		}
		if err := b.sendText(chatID, fmt.Sprintf("✅ Welcome, <b>%s</b>!", escape(user.Name))); err != nil {
			return err
		}
		return b.sendTaskList(chatID)
	}
}

func (b *Bot) startNewTask(msg *tgbotapi.Message) error {
	if b.requireUser(msg.Chat.ID) == nil {
		return b.sendLoginPrompt(msg.Chat.ID)
	}
	b.setConversation(msg.Chat.ID, &conversationState{kind: convNewTask, draft: client.Draft{
		Priority: model.PriorityMedium,
		Status:   model.StatusPending,
	}})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what's the title?", cancelKeyboard())
}

func (b *Bot) continueNewTask(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case 0:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The title can't be empty. What's the title?", cancelKeyboard())
		}
		state.draft.Title = text
		state.stage = 1
		return b.sendWithReplyMarkup(chatID, "✏️ Add a short description (or Skip).", skipKeyboard())
	case 1:
		if !isSkipInput(text) {
			state.draft.Description = text
		}
		state.stage = 2
		return b.sendWithReplyMarkup(chatID, "🏷 Pick a category (or Skip).", b.categoryKeyboard())
	case 2:
		if !isSkipInput(text) {
			state.draft.Category = b.categoryNameForInput(text)
		}
		state.stage = 3
		return b.sendWithReplyMarkup(chatID, "⚡ Priority?", priorityKeyboard())
	case 3:
		if p, ok := parsePriorityInput(text); ok {
			state.draft.Priority = p
		}
		state.stage = 4
		return b.sendWithReplyMarkup(chatID, "⏰ Due date as <code>2025-11-30</code> (or Skip for today).", skipKeyboard())
	default:
		if isSkipInput(text) {
			state.draft.DueDate = views.DateOf(time.Now())
		} else {
			if _, err := time.Parse(model.DateOnly, text); err != nil {
				return b.sendWithReplyMarkup(chatID, "I can't read that date. Use <code>2025-11-30</code> or Skip.", skipKeyboard())
			}
			state.draft.DueDate = text
		}
		b.clearConversation(chatID)
		return b.finishNewTask(ctx, chatID, state.draft)
	}
}

func (b *Bot) finishNewTask(ctx context.Context, chatID int64, draft client.Draft) error {
	user := b.requireUser(chatID)
	if user == nil {
		return b.sendLoginPrompt(chatID)
	}
	task, err := b.client.Create(ctx, user.ID, draft)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Couldn't save the task: %s", escape(err.Error())))
	}
	log.Printf("[info] task created id=%d user=%d", task.ID, user.ID)
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("✅ Task <b>#%d</b> saved.", task.ID)); err != nil {
		return err
	}
	return b.sendTaskList(chatID)
}

func (b *Bot) startEdit(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	if b.requireUser(chatID) == nil {
		return b.sendLoginPrompt(chatID)
	}
	taskID, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		return b.sendText(chatID, "Give me a task id: /edit 12")
	}
	task, ok := b.findTask(taskID)
	if !ok {
		return b.sendText(chatID, "Task not found.")
	}
	b.setConversation(chatID, &conversationState{kind: convEditTask, taskID: taskID})
	prompt := fmt.Sprintf("✏️ Editing <b>#%d</b> %s.\n<b>Step 1:</b> new title? (Skip keeps %q)", task.ID, escape(task.Title), task.Title)
	return b.sendWithReplyMarkup(chatID, prompt, skipKeyboard())
}

func (b *Bot) continueEdit(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case 0:
		if !isSkipInput(text) && text != "" {
			state.patch.Title = &text
		}
		state.stage = 1
		return b.sendWithReplyMarkup(chatID, "New description? (Skip keeps the current one)", skipKeyboard())
	case 1:
		if !isSkipInput(text) {
			state.patch.Description = &text
		}
		state.stage = 2
		return b.sendWithReplyMarkup(chatID, "New category? (Skip keeps the current one)", b.categoryKeyboard())
	case 2:
		if !isSkipInput(text) {
			name := b.categoryNameForInput(text)
			state.patch.Category = &name
		}
		state.stage = 3
		return b.sendWithReplyMarkup(chatID, "New priority? (Skip keeps the current one)", priorityKeyboard())
	case 3:
		if p, ok := parsePriorityInput(text); ok {
			state.patch.Priority = &p
		}
		state.stage = 4
		return b.sendWithReplyMarkup(chatID, "New due date as <code>2025-11-30</code>? (Skip keeps the current one)", skipKeyboard())
	default:
		if !isSkipInput(text) {
			if _, err := time.Parse(model.DateOnly, text); err != nil {
				return b.sendWithReplyMarkup(chatID, "I can't read that date. Use <code>2025-11-30</code> or Skip.", skipKeyboard())
			}
			state.patch.DueDate = &text
		}
		b.clearConversation(chatID)
		task, err := b.client.Update(ctx, state.taskID, state.patch)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Couldn't update the task: %s", escape(err.Error())))
		}
		log.Printf("[info] task updated id=%d", task.ID)
		if err := b.sendTextWithRemove(chatID, fmt.Sprintf("✅ Task <b>#%d</b> updated.", task.ID)); err != nil {
			return err
		}
		return b.sendTaskList(chatID)
	}
}

func (b *Bot) startFilter(msg *tgbotapi.Message) error {
	if b.requireUser(msg.Chat.ID) == nil {
		return b.sendLoginPrompt(msg.Chat.ID)
	}
	b.setConversation(msg.Chat.ID, &conversationState{kind: convFilter})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🔍 Search text? (Skip for none)", skipKeyboard())
}

func (b *Bot) continueFilter(_ context.Context, msg *tgbotapi.Message, state *conversationState) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case 0:
		if !isSkipInput(text) {
			state.params.Query = text
		}
		state.stage = 1
		return b.sendWithReplyMarkup(chatID, "Status filter?", statusFilterKeyboard())
	case 1:
		state.params.Status = parseFilterInput(text, string(model.StatusPending), string(model.StatusInProgress), string(model.StatusCompleted))
		state.stage = 2
		return b.sendWithReplyMarkup(chatID, "Priority filter?", priorityFilterKeyboard())
	case 2:
		state.params.Priority = parseFilterInput(text, string(model.PriorityLow), string(model.PriorityMedium), string(model.PriorityHigh))
		state.stage = 3
		return b.sendWithReplyMarkup(chatID, "Category filter?", b.categoryFilterKeyboard())
	default:
		if !isAllInput(text) {
			state.params.Category = b.categoryNameForInput(text)
		} else {
			state.params.Category = views.FilterAll
		}
		b.clearConversation(chatID)
		cs := b.state(chatID)
		cs.params = state.params
		if err := b.sendTextWithRemove(chatID, "🔍 Filters applied."); err != nil {
			return err
		}
		return b.sendTaskList(chatID)
	}
}

// ----- list, stats, calendar, analytics, alerts -----

func (b *Bot) handleTasks(_ context.Context, msg *tgbotapi.Message) error {
	if b.requireUser(msg.Chat.ID) == nil {
		return b.sendLoginPrompt(msg.Chat.ID)
	}
	return b.sendTaskList(msg.Chat.ID)
}

func (b *Bot) handleClearFilter(_ context.Context, msg *tgbotapi.Message) error {
	if b.requireUser(msg.Chat.ID) == nil {
		return b.sendLoginPrompt(msg.Chat.ID)
	}
	cs := b.state(msg.Chat.ID)
	cs.params = views.ListParams{}
	if err := b.sendText(msg.Chat.ID, "🔄 Filters reset."); err != nil {
		return err
	}
	return b.sendTaskList(msg.Chat.ID)
}

func (b *Bot) handleToggleView(_ context.Context, msg *tgbotapi.Message) error {
	if b.requireUser(msg.Chat.ID) == nil {
		return b.sendLoginPrompt(msg.Chat.ID)
	}
	cs := b.state(msg.Chat.ID)
	cs.compact = !cs.compact
	mode := "detailed"
	if cs.compact {
		mode = "compact"
	}
	if err := b.sendText(msg.Chat.ID, fmt.Sprintf("👁 Switched to the %s view.", mode)); err != nil {
		return err
	}
	return b.sendTaskList(msg.Chat.ID)
}

func (b *Bot) sendTaskList(chatID int64) error {
	cs := b.state(chatID)
	view := views.List(b.client.Tasks(), cs.params)
	text := renderTaskList(view, b.client.Categories(), cs.params, time.Now(), cs.compact)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if buttons := taskButtons(view.Tasks); len(buttons) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleStats(msg *tgbotapi.Message) error {
	if b.requireUser(msg.Chat.ID) == nil {
		return b.sendLoginPrompt(msg.Chat.ID)
	}
	return b.sendText(msg.Chat.ID, renderStats(views.Statistics(b.client.Tasks())))
}

func (b *Bot) handleCalendar(msg *tgbotapi.Message, year int, month time.Month) error {
	chatID := msg.Chat.ID
	if b.requireUser(chatID) == nil {
		return b.sendLoginPrompt(chatID)
	}
	cs := b.state(chatID)
	if year != 0 {
		cs.calYear, cs.calMonth = year, month
	}
	if cs.calYear == 0 {
		now := time.Now()
		cs.calYear, cs.calMonth = now.Year(), now.Month()
	}

	view := views.Calendar(b.client.Tasks(), cs.calYear, cs.calMonth)
	text := renderCalendar(view, views.DateOf(time.Now()))

	prev := time.Date(cs.calYear, cs.calMonth, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	next := time.Date(cs.calYear, cs.calMonth, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️", fmt.Sprintf("%s%d:%d", cbCalPrefix, prev.Year(), int(prev.Month()))),
			tgbotapi.NewInlineKeyboardButtonData("▶️", fmt.Sprintf("%s%d:%d", cbCalPrefix, next.Year(), int(next.Month()))),
		),
	)
	_, err := b.api.Send(out)
	return err
}

func (b *Bot) handleAnalytics(msg *tgbotapi.Message) error {
	if b.requireUser(msg.Chat.ID) == nil {
		return b.sendLoginPrompt(msg.Chat.ID)
	}
	return b.sendText(msg.Chat.ID, renderAnalytics(b.client.Tasks(), b.client.Categories(), time.Now()))
}

func (b *Bot) handleAlerts(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	if b.requireUser(chatID) == nil {
		return b.sendLoginPrompt(chatID)
	}
	notifications := views.WithoutDismissed(views.Notifications(b.client.Tasks(), time.Now()), b.dismissed(chatID))
	if len(notifications) == 0 {
		return b.sendText(chatID, "🔕 No due-date alerts. Nice and quiet.")
	}

	var lines []string
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, n := range notifications {
		lines = append(lines, renderNotificationLine(n))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✖️ Dismiss #%d", n.Task.ID),
				cbDismissPrefix+n.ID,
			),
		))
	}

	out := tgbotapi.NewMessage(chatID, fmt.Sprintf("🔔 <b>Notifications (%d)</b>\n\n%s", len(notifications), strings.Join(lines, "\n")))
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err := b.api.Send(out)
	return err
}

// ----- delete -----

func (b *Bot) handleDeleteCommand(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	if b.requireUser(chatID) == nil {
		return b.sendLoginPrompt(chatID)
	}
	taskID, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		return b.sendText(chatID, "Give me a task id: /delete 12")
	}
	return b.askDeleteConfirmation(chatID, taskID)
}

func (b *Bot) askDeleteConfirmation(chatID int64, taskID int) error {
	task, ok := b.findTask(taskID)
	if !ok {
		return b.sendText(chatID, "Task not found.")
	}
	out := tgbotapi.NewMessage(chatID, fmt.Sprintf("Delete task <b>#%d</b> %s? This can't be undone.", task.ID, escape(task.Title)))
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("%s%d", cbDelOKPrefix, task.ID)),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Keep it", cbDelNo),
		),
	)
	_, err := b.api.Send(out)
	return err
}

// ----- export -----

func (b *Bot) handleExport(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	if b.requireUser(chatID) == nil {
		return b.sendLoginPrompt(chatID)
	}
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		return b.sendExport(chatID, arg)
	}
	out := tgbotapi.NewMessage(chatID, "📤 What should I export?")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 CSV", cbExportPrefix+"csv"),
			tgbotapi.NewInlineKeyboardButtonData("💾 JSON backup", cbExportPrefix+"json"),
			tgbotapi.NewInlineKeyboardButtonData("📃 Report", cbExportPrefix+"report"),
		),
	)
	_, err := b.api.Send(out)
	return err
}

func (b *Bot) sendExport(chatID int64, kind string) error {
	tasks := b.client.Tasks()
	categories := b.client.Categories()
	now := time.Now()

	var file tgbotapi.FileBytes
	switch kind {
	case "csv":
		file = tgbotapi.FileBytes{Name: export.CSVFilename(now), Bytes: []byte(export.CSV(tasks))}
	case "json":
		raw, err := export.JSONBackup(tasks, categories, now)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Export failed: %s", escape(err.Error())))
		}
		file = tgbotapi.FileBytes{Name: export.BackupFilename(now), Bytes: raw}
	case "report":
		file = tgbotapi.FileBytes{Name: export.ReportFilename(now), Bytes: []byte(export.Report(tasks, categories, now))}
	default:
		return b.sendText(chatID, "I can export <code>csv</code>, <code>json</code> or <code>report</code>.")
	}

	log.Printf("[info] export %s for chat %d (%d tasks)", kind, chatID, len(tasks))
	doc := tgbotapi.NewDocument(chatID, file)
	_, err := b.api.Send(doc)
	return err
}

// ----- reload -----

func (b *Bot) handleReload(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	user := b.requireUser(chatID)
	if user == nil {
		return b.sendLoginPrompt(chatID)
	}
	if err := b.client.Load(ctx, user.ID); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Reload failed, keeping what I had: %s", escape(err.Error())))
	}
	if err := b.sendText(chatID, "🔄 Reloaded."); err != nil {
		return err
	}
	return b.sendTaskList(chatID)
}

// ----- callbacks -----

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbStatusPrefix):
		return b.handleStatusCallback(ctx, chatID, strings.TrimPrefix(data, cbStatusPrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		taskID, err := strconv.Atoi(strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			return nil
		}
		return b.askDeleteConfirmation(chatID, taskID)
	case strings.HasPrefix(data, cbDelOKPrefix):
		taskID, err := strconv.Atoi(strings.TrimPrefix(data, cbDelOKPrefix))
		if err != nil {
			return nil
		}
		return b.deleteTaskAndRefresh(ctx, chatID, taskID)
	case data == cbDelNo:
		return b.sendText(chatID, "↩️ Kept it.")
	case strings.HasPrefix(data, cbDismissPrefix):
		b.dismiss(chatID, strings.TrimPrefix(data, cbDismissPrefix))
		return nil
	case strings.HasPrefix(data, cbCalPrefix):
		year, month, ok := parseCalData(strings.TrimPrefix(data, cbCalPrefix))
		if !ok {
			return nil
		}
		return b.handleCalendar(cb.Message, year, month)
	case strings.HasPrefix(data, cbExportPrefix):
		return b.sendExport(chatID, strings.TrimPrefix(data, cbExportPrefix))
	default:
		return nil
	}
}

func (b *Bot) handleStatusCallback(ctx context.Context, chatID int64, data string) error {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return nil
	}
	taskID, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	status := model.Status(parts[1])
	if !status.Valid() {
		return nil
	}

	task, err := b.client.Update(ctx, taskID, client.Patch{Status: &status})
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Status change failed: %s", escape(err.Error())))
	}
	log.Printf("[info] task %d status -> %s", task.ID, task.Status)
	if err := b.sendText(chatID, fmt.Sprintf("%s Task <b>#%d</b> is now <b>%s</b>.", statusIcon(task.Status), task.ID, string(task.Status))); err != nil {
		return err
	}
	return b.sendTaskList(chatID)
}

func (b *Bot) deleteTaskAndRefresh(ctx context.Context, chatID int64, taskID int) error {
	task, ok := b.findTask(taskID)
	if !ok {
		return b.sendText(chatID, "Task not found or already deleted.")
	}
	if err := b.client.Remove(ctx, taskID); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Delete failed: %s", escape(err.Error())))
	}
	log.Printf("[info] task deleted id=%d", taskID)
	if err := b.sendText(chatID, fmt.Sprintf("🗑 Task <b>#%d</b> %s deleted.", task.ID, escape(task.Title))); err != nil {
		return err
	}
	return b.sendTaskList(chatID)
}

// SendDigest pushes the due-date notification summary to the logged-in
// chat. Called from the cron scheduler; refreshes the mirror first so the
// digest reflects the server, not a stale copy. It runs on the cron
// goroutine, so it only ever works on snapshots taken under the mutex.
func (b *Bot) SendDigest(ctx context.Context) error {
	chatID, user, dismissed := b.digestTarget()
	if user == nil {
		return nil
	}

	if err := b.client.Load(ctx, user.ID); err != nil {
		return fmt.Errorf("refresh for digest: %w", err)
	}

	notifications := views.WithoutDismissed(views.Notifications(b.client.Tasks(), time.Now()), dismissed)
	if len(notifications) == 0 {
		return nil
	}

	var lines []string
	for _, n := range notifications {
		lines = append(lines, renderNotificationLine(n))
	}
	return b.sendText(chatID, fmt.Sprintf("🔔 <b>Due-date digest</b>\n\n%s", strings.Join(lines, "\n")))
}

// ----- state plumbing -----
//
// The update loop is the only goroutine that touches chatState fields
// directly. Anything the digest goroutine also needs (the user and the
// dismissal set) is written and snapshotted through the locked helpers
// below.

// setUser installs the authenticated user for a chat and starts a fresh
// dismissal set.
func (b *Bot) setUser(chatID int64, user model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs, ok := b.states[chatID]
	if !ok {
		cs = &chatState{}
		b.states[chatID] = cs
	}
	cs.user = &user
	cs.dismissed = make(map[string]bool)
}

// dismiss marks one notification id as seen for the chat.
func (b *Bot) dismiss(chatID int64, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs, ok := b.states[chatID]
	if !ok {
		cs = &chatState{}
		b.states[chatID] = cs
	}
	if cs.dismissed == nil {
		cs.dismissed = make(map[string]bool)
	}
	cs.dismissed[id] = true
}

// dismissed returns a copy of the chat's dismissal set.
func (b *Bot) dismissed(chatID int64) map[string]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs, ok := b.states[chatID]
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(cs.dismissed))
	for id := range cs.dismissed {
		out[id] = true
	}
	return out
}

// digestTarget snapshots the logged-in chat for the digest: the chat id, a
// copy of the user and a copy of the dismissal set. Nil user when nobody is
// logged in.
func (b *Bot) digestTarget() (int64, *model.User, map[string]bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, cs := range b.states {
		if cs.user == nil {
			continue
		}
		user := *cs.user
		dismissed := make(map[string]bool, len(cs.dismissed))
		for k := range cs.dismissed {
			dismissed[k] = true
		}
		return id, &user, dismissed
	}
	return 0, nil, nil
}

func (b *Bot) state(chatID int64) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs, ok := b.states[chatID]
	if !ok {
		cs = &chatState{dismissed: make(map[string]bool)}
		b.states[chatID] = cs
	}
	return cs
}

func (b *Bot) requireUser(chatID int64) *model.User {
	return b.state(chatID).user
}

func (b *Bot) sendLoginPrompt(chatID int64) error {
	return b.sendText(chatID, "You're not logged in. Start with /login.")
}

func (b *Bot) findTask(taskID int) (model.Task, bool) {
	for _, task := range b.client.Tasks() {
		if task.ID == taskID {
			return task, true
		}
	}
	return model.Task{}, false
}

func (b *Bot) setConversation(chatID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs, ok := b.states[chatID]
	if !ok {
		cs = &chatState{dismissed: make(map[string]bool)}
		b.states[chatID] = cs
	}
	cs.conversation = state
}

func (b *Bot) getConversation(chatID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cs, ok := b.states[chatID]; ok {
		return cs.conversation
	}
	return nil
}

func (b *Bot) hasConversation(chatID int64) bool {
	return b.getConversation(chatID) != nil
}

func (b *Bot) clearConversation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cs, ok := b.states[chatID]; ok {
		cs.conversation = nil
	}
}

// ----- sending helpers -----

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelTasks:
		return true, b.handleTasks(ctx, msg)
	case menuLabelNewTask:
		return true, b.startNewTask(msg)
	case menuLabelStats:
		return true, b.handleStats(msg)
	case menuLabelCal:
		return true, b.handleCalendar(msg, 0, 0)
	case menuLabelTrends:
		return true, b.handleAnalytics(msg)
	case menuLabelAlerts:
		return true, b.handleAlerts(msg)
	case menuLabelExport:
		return true, b.handleExport(msg)
	case menuLabelHelp:
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}
