package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readinglist/internal/collection"
	"readinglist/internal/models"
)

// handleConversation processes multi-step conversations
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	userID := message.From.ID

	switch state.Command {
	case cmdNewBook:
		b.handleNewBookConversation(ctx, message, state)
	case cmdProgress:
		b.handleProgressConversation(ctx, message, state)
	case cmdCover:
		b.handleCoverConversation(ctx, message, state)
	}

	// Clean up completed conversations
	if state.Step == stepDone {
		delete(b.states, userID)
	}
}

// handleNewBookConversation collects title, author, genre and pages.
// Genre arrives through handleGenreCallback.
func (b *Bot) handleNewBookConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch state.Step {
	case 1: // Waiting for title
		if text == "" {
			b.reply(chatID, "Please enter a book title.")
			return
		}
		state.Data["title"] = text
		state.Step = 2
		b.reply(chatID, "Who is the author?")

	case 2: // Waiting for author
		if text == "" {
			b.reply(chatID, "Please enter the author's name.")
			return
		}
		state.Data["author"] = text
		state.Step = 3

		msg := tgbotapi.NewMessage(chatID, "Select a genre:")
		msg.ReplyMarkup = genreKeyboard("genre:", false)
		b.sendMessage(msg)

	case 3: // Waiting for genre button
		msg := tgbotapi.NewMessage(chatID, "Please select a genre.")
		msg.ReplyMarkup = genreKeyboard("genre:", false)
		b.sendMessage(msg)

	case 4: // Waiting for total pages
		title, _ := state.Data["title"].(string)
		author, _ := state.Data["author"].(string)
		genre, _ := state.Data["genre"].(models.Genre)

		book, err := b.library.Add(ctx, models.BookInput{
			Title:      title,
			Author:     author,
			Genre:      genre,
			TotalPages: text,
		})

		var ve *collection.ValidationError
		if errors.As(err, &ve) && ve.Field == collection.FieldTotalPages {
			// Let the user correct the page count
			b.reply(chatID, "❌ "+ve.Reason)
			return
		}

		state.Step = stepDone
		if err != nil {
			b.replyError(chatID, err)
			if !collection.IsPersistence(err) {
				return
			}
		}

		b.logger.Info("Book added via bot",
			zap.Int64("user_id", message.From.ID),
			zap.String("book_id", book.ID),
		)
		b.reply(chatID, fmt.Sprintf("✅ Added \"%s\" by %s (%d pages)", book.Title, book.Author, book.TotalPages))
	}
}

// handleProgressConversation records the pages read for the chosen book
func (b *Bot) handleProgressConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	chatID := message.Chat.ID

	if state.Step != 2 {
		b.reply(chatID, "Please choose a book from the list above.")
		return
	}

	pages, err := strconv.Atoi(strings.TrimSpace(message.Text))
	if err != nil {
		b.reply(chatID, "Please enter the number of pages you have read:")
		return
	}

	id := state.bookID()
	state.Step = stepDone
	if err := b.library.UpdateProgress(ctx, id, pages); err != nil {
		b.replyError(chatID, err)
		if !collection.IsPersistence(err) {
			return
		}
	}

	book, err := b.library.Get(id)
	if err != nil {
		b.replyError(chatID, err)
		return
	}

	text := formatBook(book, b.library.CompletionPercentage(id))
	if book.IsCompleted() {
		text += "\n🎉 Finished!"
	}
	b.reply(chatID, text)
}

// handleCoverConversation waits for a photo of the chosen book
func (b *Bot) handleCoverConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	chatID := message.Chat.ID

	if state.Step != 2 {
		b.reply(chatID, "Please choose a book from the list above.")
		return
	}
	if len(message.Photo) == 0 {
		b.reply(chatID, "Please send a photo of the cover.")
		return
	}

	state.Step = stepDone

	data, err := b.downloadPhoto(ctx, message.Photo)
	if err != nil {
		b.logger.Warn("Failed to download cover photo", zap.Error(err))
		b.reply(chatID, "❌ Could not download the photo. Please try again with /cover")
		return
	}

	if _, err := b.covers.Attach(ctx, state.bookID(), data); err != nil {
		b.replyCoverError(chatID, err)
		if !collection.IsPersistence(err) {
			return
		}
	}
	b.reply(chatID, "🖼 Cover saved.")
}
