package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readinglist/internal/models"
)

// handleGenreCallback processes genre selection in the new book conversation
func (b *Bot) handleGenreCallback(query *tgbotapi.CallbackQuery, state *ConversationState) {
	if state.Command != cmdNewBook || state.Step != 3 {
		return
	}

	genre, ok := models.ParseGenre(strings.TrimPrefix(query.Data, "genre:"))
	if !ok {
		return
	}

	state.Data["genre"] = genre
	state.Step = 4
	b.reply(query.Message.Chat.ID, fmt.Sprintf("%s it is. How many pages does the book have?", genreLabel(genre)))
}

// handleBookCallback processes book selection for progress, favorite, delete and cover
func (b *Bot) handleBookCallback(ctx context.Context, query *tgbotapi.CallbackQuery, state *ConversationState) {
	chatID := query.Message.Chat.ID
	if state.Step != 1 {
		return
	}

	id := strings.TrimPrefix(query.Data, "book:")
	book, err := b.library.Get(id)
	if err != nil {
		b.replyError(chatID, err)
		state.Step = stepDone
		return
	}
	state.Data["book_id"] = book.ID

	switch state.Command {
	case cmdProgress:
		state.Step = 2
		b.reply(chatID, fmt.Sprintf("📖 %s: %d of %d pages read.\nHow many pages have you read now?",
			book.Title, book.PagesRead, book.TotalPages))

	case cmdFavorite:
		state.Step = stepDone
		if err := b.library.ToggleFavorite(ctx, book.ID); err != nil {
			b.replyError(chatID, err)
			return
		}
		if book.IsFavorite {
			b.reply(chatID, fmt.Sprintf("☆ %s is no longer a favorite.", book.Title))
		} else {
			b.reply(chatID, fmt.Sprintf("⭐ %s is now a favorite.", book.Title))
		}

	case cmdDelete:
		state.Step = 2
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Remove \"%s\" by %s from your list?", book.Title, book.Author))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", "confirm:yes"),
				tgbotapi.NewInlineKeyboardButtonData("Cancel", "confirm:no"),
			),
		)
		b.sendMessage(msg)

	case cmdCover:
		state.Step = 2
		b.reply(chatID, fmt.Sprintf("Send a photo of the cover of \"%s\".", book.Title))

	default:
		state.Step = stepDone
	}
}

// handleConfirmCallback finishes the delete conversation
func (b *Bot) handleConfirmCallback(ctx context.Context, query *tgbotapi.CallbackQuery, state *ConversationState) {
	chatID := query.Message.Chat.ID
	if state.Command != cmdDelete || state.Step != 2 {
		return
	}
	state.Step = stepDone

	if strings.TrimPrefix(query.Data, "confirm:") != "yes" {
		b.reply(chatID, "Nothing was deleted.")
		return
	}

	id := state.bookID()
	book, err := b.library.Get(id)
	if err != nil {
		b.replyError(chatID, err)
		return
	}

	if err := b.library.Delete(ctx, id); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.covers.Remove(ctx, book.ImagePath)

	b.logger.Info("Book deleted via bot",
		zap.Int64("user_id", query.From.ID),
		zap.String("book_id", id),
	)
	b.reply(chatID, fmt.Sprintf("🗑 Removed \"%s\".", book.Title))
}
