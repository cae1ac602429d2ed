package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/planner"
	"meal-planner/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const toggleAction = "toggle"

// sender is the part of *tgbotapi.BotAPI the bot talks through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot serves the meal planner over Telegram.
type Bot struct {
	api    sender
	app    *app.App
	cfg    *config.Config
	logger *slog.Logger

	// Last generated list per chat; toggle buttons refer to items by index.
	mu    sync.Mutex
	lists map[int64][]shopping.Item

	unsubscribe func()
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App, logger *slog.Logger) (*Bot, error) {
	if err := cfg.ValidateTelegram(); err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	b := newBot(api, cfg, a, logger)
	b.logger.Info("authorized on telegram", "account", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	b.logger.Info("webhook set", "description", resp.Description)

	return b, nil
}

func newBot(api sender, cfg *config.Config, a *app.App, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{
		api:    api,
		app:    a,
		cfg:    cfg,
		logger: logger,
		lists:  make(map[int64][]shopping.Item),
	}
	b.unsubscribe = a.Subscribe(func(s planner.State) {
		logger.Debug("meal plan changed", "planned_recipes", len(s.MealPlan.RecipeIDs()), "completed_flags", len(s.Completed))
	})
	return b
}

// Close stops observing the plan store.
func (b *Bot) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("parsing update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	go b.HandleUpdate(context.Background(), update)
}

// HandleUpdate processes one update from Telegram.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		if update.CallbackQuery.From == nil || !b.cfg.IsAllowedUser(update.CallbackQuery.From.ID) {
			return
		}
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.cfg.IsAllowedUser(msg.From.ID) {
		b.logger.Warn("unauthorized access attempt", "user_id", msg.From.ID, "username", msg.From.UserName)
		return
	}

	b.processMessage(ctx, msg)
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	command, args := parseCommand(msg.Text)
	chatID := msg.Chat.ID

	switch command {
	case "plan":
		b.reply(chatID, formatPlanMarkdown(b.app.Plan()))
	case "assign":
		b.handleAssign(ctx, chatID, args)
	case "unassign":
		b.handleUnassign(ctx, chatID, args)
	case "search":
		b.handleSearch(ctx, chatID, args)
	case "list":
		b.handleList(ctx, chatID)
	case "clear":
		n := b.app.ClearCompleted(ctx)
		b.reply(chatID, fmt.Sprintf("🧹 Cleared %d completed items.", n))
	case "metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			b.reply(chatID, "⛔ *Access Denied*: Admin only.")
			return
		}
		b.handleMetricsCommand(ctx, chatID)
	default:
		b.reply(chatID, helpText)
	}
}

const helpText = "🍽 *Meal Planner*\n\n" +
	"/plan - show this week\n" +
	"/assign <day> <recipe id> - plan a recipe\n" +
	"/unassign <day> - clear a day\n" +
	"/search <name> - find recipes\n" +
	"/list - shopping list\n" +
	"/clear - forget checked items"

// parseCommand splits "/assign@bot mon 52772" into ("assign", ["mon", "52772"]).
// Plain text yields an empty command.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	command := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}
	return strings.ToLower(command), fields[1:]
}

func (b *Bot) handleAssign(ctx context.Context, chatID int64, args []string) {
	if len(args) != 2 {
		b.reply(chatID, "Usage: /assign <day> <recipe id>")
		return
	}
	day, err := planner.ParseDay(args[0])
	if err != nil {
		b.reply(chatID, "❌ Unknown day. Use Mon..Sun.")
		return
	}

	r, err := b.app.AssignRecipe(ctx, day, args[1])
	switch {
	case errors.Is(err, app.ErrRecipeNotFound):
		b.reply(chatID, fmt.Sprintf("❌ No recipe with id %s.", escape(args[1])))
	case err != nil:
		b.logger.Warn("assigning recipe", "recipe_id", args[1], "error", err)
		b.reply(chatID, "❌ Could not reach the recipe catalog. Try again later.")
	default:
		b.reply(chatID, fmt.Sprintf("✅ *%s* planned for %s.", escape(r.Name), day.LongName()))
	}
}

func (b *Bot) handleUnassign(ctx context.Context, chatID int64, args []string) {
	if len(args) != 1 {
		b.reply(chatID, "Usage: /unassign <day>")
		return
	}
	day, err := planner.ParseDay(args[0])
	if err != nil {
		b.reply(chatID, "❌ Unknown day. Use Mon..Sun.")
		return
	}
	if err := b.app.Unassign(ctx, day); err != nil {
		b.reply(chatID, "❌ "+escape(err.Error()))
		return
	}
	b.reply(chatID, fmt.Sprintf("🗑 %s cleared.", day.LongName()))
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, args []string) {
	query := strings.Join(args, " ")
	if query == "" {
		b.reply(chatID, "Usage: /search <name>")
		return
	}
	recipes, err := b.app.Search(ctx, query, "")
	if err != nil {
		b.logger.Warn("searching recipes", "query", query, "error", err)
		b.reply(chatID, "❌ Could not reach the recipe catalog. Try again later.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔎 *Results for* _%s_\n\n", escape(query)))
	if len(recipes) == 0 {
		sb.WriteString("_Nothing found_\n")
	}
	const maxResults = 10
	for i, r := range recipes {
		if i == maxResults {
			sb.WriteString(fmt.Sprintf("\n_…and %d more_\n", len(recipes)-maxResults))
			break
		}
		sb.WriteString(fmt.Sprintf("• `%s` %s", r.ID, escape(r.Name)))
		if r.Category != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", escape(r.Category)))
		}
		sb.WriteString("\n")
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	entries, err := b.app.ShoppingList(ctx)
	if err != nil {
		b.logger.Warn("generating shopping list", "error", err)
		b.reply(chatID, "❌ Could not build the shopping list. Try again later.")
		return
	}

	items := make([]shopping.Item, len(entries))
	for i, e := range entries {
		items[i] = e.Item
	}
	b.mu.Lock()
	b.lists[chatID] = items
	b.mu.Unlock()

	msg := tgbotapi.NewMessage(chatID, formatShoppingListMarkdown(entries))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if len(entries) > 0 {
		keyboard := shoppingKeyboard(entries)
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("sending shopping list", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	action, arg, ok := strings.Cut(query.Data, "|")
	if !ok || action != toggleAction || query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	index, err := strconv.Atoi(arg)
	b.mu.Lock()
	items := b.lists[chatID]
	b.mu.Unlock()
	if err != nil || index < 0 || index >= len(items) {
		b.api.Request(tgbotapi.NewCallback(query.ID, "This list is out of date, send /list again."))
		return
	}

	item := items[index]
	done := b.app.Toggle(ctx, item.Key)
	status := "not done"
	if done {
		status = "done"
	}
	b.api.Request(tgbotapi.NewCallback(query.ID, fmt.Sprintf("%s marked %s", item.Name, status)))

	completed := b.app.Plan().Completed
	entries := shopping.Checklist(items, completed)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID, formatShoppingListMarkdown(entries), shoppingKeyboard(entries))
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("updating shopping list", "chat_id", chatID, "error", err)
	}
}

func shoppingKeyboard(entries []shopping.Entry) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entries))
	for i, e := range entries {
		box := "⬜"
		if e.Completed {
			box = "✅"
		}
		label := strings.TrimSpace(fmt.Sprintf("%s %s %s", box, e.Name, e.Measure))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s|%d", toggleAction, i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatPlanMarkdown(state planner.State) string {
	var sb strings.Builder
	sb.WriteString("📅 *Weekly Meal Plan*\n\n")
	for _, d := range planner.Week() {
		r := state.MealPlan.Get(d)
		if r == nil {
			sb.WriteString(fmt.Sprintf("*%s*: _nothing planned_\n", d.LongName()))
			continue
		}
		sb.WriteString(fmt.Sprintf("*%s*: %s `%s`\n", d.LongName(), escape(r.Name), r.ID))
	}
	return sb.String()
}

func formatShoppingListMarkdown(entries []shopping.Entry) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	if len(entries) == 0 {
		sb.WriteString("_Nothing to buy. Plan some recipes with /assign._\n")
		return sb.String()
	}
	done := 0
	for _, e := range entries {
		if e.Completed {
			done++
		}
	}
	sb.WriteString(fmt.Sprintf("%d items, %d done. Tap an item to check it off.\n", len(entries), done))
	return sb.String()
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	store := b.app.Metrics()
	if store == nil {
		b.reply(chatID, "❌ Metrics are not recorded.")
		return
	}
	usage, err := store.GetDailyUsage(ctx, 7)
	if err != nil {
		b.reply(chatID, "❌ Error fetching metrics.")
		return
	}

	health := b.app.Health()

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Catalog Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d calls (%d failed, avg %dms)\n", d.Date, d.Calls, d.Failures, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataSize))

	b.reply(chatID, sb.String())
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("sending message", "chat_id", chatID, "error", err)
	}
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
