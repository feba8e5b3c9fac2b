package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/notexe/vocab-trainer/internal/lookup"
	"github.com/notexe/vocab-trainer/internal/srs"
)

// Reply keyboard button texts.
const (
	buttonDictionary = "📚 Learning Dictionary"
	buttonPack       = "➕ Pre-defined Vocabulary Pack (B2+)"
	buttonRandom     = "🎲 Random Word"
	buttonQuiz       = "📝 Run Quiz"
)

const defaultPackID = "b2plus"

// viewPrefs are the per-chat dictionary display settings. Presentation
// state only; nothing here feeds back into scheduling.
type viewPrefs struct {
	sort SortMode
	page int
}

// Bot maps Telegram updates onto engine calls and renders the results. It
// also implements srs.Notifier, so fired reminders travel back out through
// the same client.
type Bot struct {
	client    *Client
	engine    *srs.Engine
	explainer *lookup.Explainer // nil when no API key is configured
	packs     map[string][]string
	pageSize  int
	pollTime  int

	prefsMu sync.Mutex
	prefs   map[int64]*viewPrefs
}

// NewBot creates the transport. packs maps pack id to its candidate list,
// already loaded and ordered.
func NewBot(client *Client, explainer *lookup.Explainer, packs map[string][]string, pageSize, pollTimeout int) *Bot {
	return &Bot{
		client:    client,
		explainer: explainer,
		packs:     packs,
		pageSize:  pageSize,
		pollTime:  pollTimeout,
		prefs:     make(map[int64]*viewPrefs),
	}
}

// AttachEngine wires the engine in after construction. The bot is the
// engine's notifier, so the two reference each other.
func (b *Bot) AttachEngine(e *srs.Engine) { b.engine = e }

// SendNotification implements srs.Notifier: deliver one reminder with its
// action buttons.
func (b *Bot) SendNotification(userID int64, text string) error {
	var row []InlineKeyboardButton
	if data, ok := (Action{Kind: ActionDeleteRequest, Word: text}).Encode(); ok {
		row = append(row, InlineKeyboardButton{Text: "🗑️ Delete", CallbackData: data})
	}
	if word := lookup.FirstWord(text); word != "" {
		if data, ok := (Action{Kind: ActionClue, Word: word}).Encode(); ok {
			row = append(row, InlineKeyboardButton{Text: "💡 Clue", CallbackData: data})
		}
		if b.explainer != nil {
			if data, ok := (Action{Kind: ActionExplain, Word: word}).Encode(); ok {
				row = append(row, InlineKeyboardButton{Text: "✨ Explain (AI)", CallbackData: data})
			}
		}
	}

	msg := "🔔 Reminder: " + text
	if len(row) == 0 {
		return b.client.SendMessage(userID, msg)
	}
	return b.client.SendMessageWithMarkup(userID, msg, &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{row},
	})
}

// SendMessage implements srs.Notifier.
func (b *Bot) SendMessage(userID int64, text string) error {
	return b.client.SendMessage(userID, text)
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	log.Printf("[telegram] Bot polling started (timeout %ds)", b.pollTime)

	var offset int64
	for {
		select {
		case <-ctx.Done():
			log.Println("[telegram] Shutting down...")
			return nil
		default:
		}

		updates, err := b.client.GetUpdates(offset, b.pollTime)
		if err != nil {
			log.Printf("[telegram] getUpdates failed: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			switch {
			case u.Message != nil:
				b.handleMessage(ctx, u.Message)
			case u.CallbackQuery != nil:
				b.handleCallback(ctx, u.CallbackQuery)
			}
		}
	}
}

func replyKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		Keyboard: [][]KeyboardButton{
			{{Text: buttonDictionary}},
			{{Text: buttonPack}},
			{{Text: buttonRandom}, {Text: buttonQuiz}},
		},
		ResizeKeyboard:        true,
		InputFieldPlaceholder: "Enter word/phrase or select...",
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *Message) {
	chatID := m.Chat.ID
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}

	switch text {
	case "/start":
		b.reply(chatID, "Hi! Send an English word or phrase and I'll schedule spaced-repetition reminders for it. Use the buttons below for more.")
		return
	case "/help":
		b.reply(chatID, b.helpText())
		return
	case buttonDictionary:
		b.setPrefs(chatID, SortLexical, 1)
		b.showDictionary(chatID, 0)
		return
	case buttonPack:
		b.enrollPack(chatID)
		return
	case buttonRandom:
		if word, ok := b.engine.RandomActive(chatID); ok {
			b.reply(chatID, fmt.Sprintf("🎲 Your random word: %s\nTry to recall its meaning!", word))
		} else {
			b.reply(chatID, "Your active learning dictionary is empty. Add some words first!")
		}
		return
	case buttonQuiz:
		b.reply(chatID, "📝 The Quiz feature will be available soon! Keep learning!")
		return
	}

	// Anything else is a word or phrase to learn.
	res, err := b.engine.ScheduleItem(chatID, text, srs.ProvenanceUser, m.MessageID)
	switch {
	case err == srs.ErrEmptyIdentity:
		return
	case err != nil:
		log.Printf("[telegram] scheduling %q for chat %d failed: %v", text, chatID, err)
		b.reply(chatID, fmt.Sprintf("⚠️ Could not schedule %q right now, please try again.", text))
	case res == srs.Duplicate:
		b.reply(chatID, fmt.Sprintf("ℹ️ %q is already in your dictionary.", text))
	default:
		first := int(b.engine.FirstInterval() / time.Minute)
		b.reply(chatID, fmt.Sprintf("✅ Added %q!\nFirst reminder in ~%d min. Total %d reminders.",
			text, first, b.engine.SequenceLength()))
	}
}

func (b *Bot) enrollPack(chatID int64) {
	words, ok := b.packs[defaultPackID]
	if !ok || len(words) == 0 {
		b.reply(chatID, "Curated pack unavailable.")
		return
	}

	summary, err := b.engine.Enroll(chatID, defaultPackID, words)
	switch {
	case err == srs.ErrPackAlreadyCompleted:
		b.reply(chatID, "You've completed the pack!")
	case err == srs.ErrPackAlreadyActive:
		b.reply(chatID, "Pack is already being added.")
	case err != nil:
		log.Printf("[telegram] enrollment for chat %d failed: %v", chatID, err)
		b.reply(chatID, "⚠️ Could not start the pack right now, please try again.")
	default:
		b.reply(chatID, fmt.Sprintf(
			"Great! B2+ Pack (%d words) added. A few words are activated daily; ~%d days for all to activate. Check '%s'!",
			summary.Candidates, summary.Days, buttonDictionary))
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *CallbackQuery) {
	if err := b.client.AnswerCallbackQuery(q.ID); err != nil {
		log.Printf("[telegram] answerCallbackQuery failed: %v", err)
	}
	if q.Message == nil {
		return
	}
	chatID := q.Message.Chat.ID

	action, err := ParseAction(q.Data)
	if err != nil {
		log.Printf("[telegram] %v", err)
		b.edit(chatID, q.Message.MessageID, "😕 Unknown action.", nil)
		return
	}

	switch action.Kind {
	case ActionDeleteRequest:
		confirm, ok1 := (Action{Kind: ActionDeleteConfirm, Word: action.Word}).Encode()
		cancel, ok2 := (Action{Kind: ActionDeleteCancel, Word: action.Word}).Encode()
		if !ok1 || !ok2 {
			b.edit(chatID, q.Message.MessageID, q.Message.Text+"\n\n⚠️ Word too long to confirm.", nil)
			return
		}
		b.edit(chatID, q.Message.MessageID, fmt.Sprintf("❓ Remove %q?", action.Word), &InlineKeyboardMarkup{
			InlineKeyboard: [][]InlineKeyboardButton{{
				{Text: "✅ Yes", CallbackData: confirm},
				{Text: "❌ No", CallbackData: cancel},
			}},
		})

	case ActionDeleteConfirm:
		timers, ledgerRows := b.engine.CancelItemEverywhere(chatID, action.Word)
		var msg string
		switch {
		case timers > 0 && ledgerRows > 0:
			msg = fmt.Sprintf("✅ %q (%d reminders) removed. Also updated in pack.", action.Word, timers)
		case timers > 0:
			msg = fmt.Sprintf("✅ %q (%d reminders) removed.", action.Word, timers)
		case ledgerRows > 0:
			msg = fmt.Sprintf("✅ %q removed from pack plan.", action.Word)
		default:
			msg = fmt.Sprintf("ℹ️ %q not found active or planned.", action.Word)
		}
		b.edit(chatID, q.Message.MessageID, msg, nil)

	case ActionDeleteCancel:
		b.edit(chatID, q.Message.MessageID,
			fmt.Sprintf("🔔 Reminder: %s\n\n❌ Deletion cancelled.", action.Word), nil)

	case ActionClue:
		b.reply(chatID, fmt.Sprintf("💡 Info for %q:\n%s", action.Word, lookup.Clue(action.Word)))

	case ActionExplain:
		b.explain(ctx, chatID, action.Word)

	case ActionSort:
		b.setPrefs(chatID, action.Sort, 1)
		b.showDictionary(chatID, q.Message.MessageID)

	case ActionPage:
		b.setPage(chatID, action.Page)
		b.showDictionary(chatID, q.Message.MessageID)
	}
}

func (b *Bot) explain(ctx context.Context, chatID int64, word string) {
	if b.explainer == nil {
		b.reply(chatID, "AI explanations are not configured.")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	explanation, err := b.explainer.Explain(ctx, word)
	if err != nil {
		log.Printf("[telegram] explain %q failed: %v", word, err)
		b.reply(chatID, fmt.Sprintf("⚠️ Could not get an explanation for %q.", word))
		return
	}
	b.reply(chatID, fmt.Sprintf("✨ AI for %q:\n\n%s", word, explanation))
}

// showDictionary renders the current page with sort and paging buttons.
// messageID > 0 edits an existing message in place; otherwise a new one is
// sent with the reply keyboard.
func (b *Bot) showDictionary(chatID, messageID int64) {
	mode, page := b.getPrefs(chatID)

	items, err := b.engine.Snapshot(chatID)
	if err != nil {
		log.Printf("[telegram] snapshot for chat %d failed: %v", chatID, err)
		b.reply(chatID, "⚠️ Could not read your dictionary right now.")
		return
	}

	ordering, reverse := srs.OrderLexical, false
	switch mode {
	case SortEaseAsc:
		ordering = srs.OrderEase
	case SortEaseDesc:
		ordering, reverse = srs.OrderEase, true
	}
	pageItems, pageNum, totalPages := srs.Arrange(items, ordering, reverse, b.pageSize, page)
	b.setPage(chatID, pageNum)

	text := renderDictionary(pageItems, pageNum, totalPages, time.Now())
	markup := b.dictionaryMarkup(mode, pageNum, totalPages)

	if messageID > 0 {
		b.edit(chatID, messageID, text, markup)
		return
	}
	if err := b.client.SendMessageWithMarkup(chatID, text, markup); err != nil {
		log.Printf("[telegram] sending dictionary to chat %d failed: %v", chatID, err)
	}
}

// dictionaryMarkup builds the sort-cycle button plus prev/next paging.
func (b *Bot) dictionaryMarkup(mode SortMode, page, totalPages int) *InlineKeyboardMarkup {
	var sortLabel string
	var next SortMode
	switch mode {
	case SortEaseAsc:
		sortLabel, next = "🔃 Sort (Ease ↓)", SortEaseDesc
	case SortEaseDesc:
		sortLabel, next = "Sort A-Z (Default)", SortLexical
	default:
		sortLabel, next = "🔃 Sort (Ease)", SortEaseAsc
	}
	sortData, _ := (Action{Kind: ActionSort, Sort: next}).Encode()

	rows := [][]InlineKeyboardButton{
		{{Text: sortLabel, CallbackData: sortData}},
	}
	var nav []InlineKeyboardButton
	if page > 1 {
		if data, ok := (Action{Kind: ActionPage, Page: page - 1}).Encode(); ok {
			nav = append(nav, InlineKeyboardButton{Text: "◀️ Previous", CallbackData: data})
		}
	}
	if page < totalPages {
		if data, ok := (Action{Kind: ActionPage, Page: page + 1}).Encode(); ok {
			nav = append(nav, InlineKeyboardButton{Text: "Next ▶️", CallbackData: data})
		}
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

// renderDictionary formats one page of the snapshot.
func renderDictionary(items []srs.ViewItem, page, totalPages int, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 Your Learning Dictionary (Page %d/%d):\n\n", page, totalPages)

	if len(items) == 0 {
		sb.WriteString("Dictionary empty. Add words or start a Pack!\n")
		return sb.String()
	}

	for _, item := range items {
		var status string
		switch item.Status {
		case srs.StatusPending:
			status = "Starts around: " + item.EstimatedDate
		default:
			status = formatUntil(item.NextDue.Sub(now))
		}
		fmt.Fprintf(&sb, "- %s (Reminders: %d, Status: %s)\n", item.Text, item.Remaining, status)
	}

	sb.WriteString("\nThese are your learning items.")
	return sb.String()
}

// formatUntil humanizes the gap to the next reminder.
func formatUntil(d time.Duration) string {
	switch {
	case d <= 0:
		return "Soon"
	case d < time.Hour:
		return fmt.Sprintf("in ~%d min", int(d.Round(time.Minute)/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("in ~%d hr(s)", int(d.Round(time.Hour)/time.Hour))
	default:
		return fmt.Sprintf("in ~%d day(s)", int(d.Round(24*time.Hour)/(24*time.Hour)))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if err := b.client.SendMessageWithMarkup(chatID, text, replyKeyboard()); err != nil {
		log.Printf("[telegram] send to chat %d failed: %v", chatID, err)
	}
}

func (b *Bot) edit(chatID, messageID int64, text string, markup *InlineKeyboardMarkup) {
	if err := b.client.EditMessageText(chatID, messageID, text, markup); err != nil {
		log.Printf("[telegram] edit in chat %d failed: %v", chatID, err)
		// Fall back to a fresh message so the user still sees the result.
		if err := b.client.SendMessage(chatID, text); err != nil {
			log.Printf("[telegram] fallback send to chat %d failed: %v", chatID, err)
		}
	}
}

func (b *Bot) helpText() string {
	return strings.Join([]string{
		"Unlock English vocabulary growth!",
		"",
		"This bot uses spaced repetition: reminders at increasing intervals for optimal recall.",
		"",
		"How it works:",
		"1. Send any English word or phrase.",
		"2. I'll schedule reminders (1 min, 1 day, 2 days, ...).",
		"3. Actively recall the meaning on each reminder.",
		"",
		"Features:",
		fmt.Sprintf("- %s: paginated list of active AND planned words, reminders left, next due or start time.", buttonDictionary),
		fmt.Sprintf("- %s: gradually adds a curated B2+ word list, a few words per day.", buttonPack),
		fmt.Sprintf("- %s: random word from your active list, for recall practice.", buttonRandom),
		fmt.Sprintf("- %s: coming soon.", buttonQuiz),
		"- 🗑️ Delete on a reminder removes the word.",
		"- 💡 Clue gives a quick pronunciation hint.",
		"- ✨ Explain (AI) gives meaning and an example.",
		"",
		"Happy learning! 🚀 /start",
	}, "\n")
}

func (b *Bot) getPrefs(chatID int64) (SortMode, int) {
	b.prefsMu.Lock()
	defer b.prefsMu.Unlock()
	p, ok := b.prefs[chatID]
	if !ok {
		return SortLexical, 1
	}
	return p.sort, p.page
}

func (b *Bot) setPrefs(chatID int64, mode SortMode, page int) {
	b.prefsMu.Lock()
	defer b.prefsMu.Unlock()
	b.prefs[chatID] = &viewPrefs{sort: mode, page: page}
}

func (b *Bot) setPage(chatID int64, page int) {
	b.prefsMu.Lock()
	defer b.prefsMu.Unlock()
	p, ok := b.prefs[chatID]
	if !ok {
		p = &viewPrefs{sort: SortLexical}
		b.prefs[chatID] = p
	}
	p.page = page
}
