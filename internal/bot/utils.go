package bot

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readinglist/internal/collection"
	"readinglist/internal/models"
)

const maxButtonLabel = 48

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if b.api == nil {
		b.sent = append(b.sent, msg.Text) // For testing
		return
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", msg.ChatID),
		)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// replyError turns a collection error into a user-facing message
func (b *Bot) replyError(chatID int64, err error) {
	var ve *collection.ValidationError
	switch {
	case errors.As(err, &ve):
		b.reply(chatID, "❌ "+ve.Reason)
	case errors.Is(err, collection.ErrDuplicate):
		b.reply(chatID, "❌ This book is already in your list.")
	case errors.Is(err, collection.ErrNotFound):
		b.reply(chatID, "❌ That book is no longer in your list.")
	case collection.IsPersistence(err):
		b.logger.Error("Change applied but not persisted", zap.Error(err))
		b.reply(chatID, "⚠️ Done, but saving failed. The change will be written with the next update.")
	default:
		b.logger.Error("Unexpected error", zap.Error(err))
		b.reply(chatID, "An error occurred while processing your request. Please try again.")
	}
}

// bookKeyboard lists books one per row with callback data book:<id>
func bookKeyboard(books []models.Book) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, book := range books {
		button := tgbotapi.NewInlineKeyboardButtonData(
			truncate(fmt.Sprintf("%s (%s)", book.Title, book.Author), maxButtonLabel),
			"book:"+book.ID,
		)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// genreKeyboard offers every genre under prefix; withAll adds an unfiltered option
func genreKeyboard(prefix string, withAll bool) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if withAll {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("📚 All", prefix+"all"))
	}
	for _, g := range models.AllGenres() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(genreLabel(g), prefix+g.String()))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func genreLabel(g models.Genre) string {
	switch g {
	case models.GenreNonFiction:
		return "Non-Fiction"
	default:
		return g.String()
	}
}

// formatBook renders one list line with progress
func formatBook(book models.Book, completion float64) string {
	mark := "📖"
	if book.IsCompleted() {
		mark = "✅"
	}
	return fmt.Sprintf("%s %s by %s, %d/%d pages (%.0f%%)",
		mark, book.Title, book.Author, book.PagesRead, book.TotalPages, completion)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
