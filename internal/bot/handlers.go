package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.reply(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	if state, ok := b.states[userID]; ok {
		if state.Step == stepDone {
			delete(b.states, userID)
		} else if message.IsCommand() {
			// Any command cancels an ongoing conversation
			delete(b.states, userID)
		} else {
			b.handleConversation(ctx, message, state)
			return
		}
	}

	if !message.IsCommand() {
		return
	}

	switch message.Command() {
	case "start", "help":
		b.handleStart(message)
	case "new_book":
		b.handleNewBookStart(message)
	case "list":
		b.handleList(message)
	case "progress":
		b.handlePickBookStart(message, cmdProgress, "📈 Which book are you reading?")
	case "favorite":
		b.handlePickBookStart(message, cmdFavorite, "⭐ Which book should be (un)marked as favorite?")
	case "delete":
		b.handlePickBookStart(message, cmdDelete, "🗑 Which book should be removed?")
	case "cover":
		b.handlePickBookStart(message, cmdCover, "🖼 Which book gets a new cover?")
	case "stats":
		b.handleStats(message)
	case "next":
		b.handleNext(message)
	default:
		b.reply(message.Chat.ID, "Unknown command. Use /start to see available commands.")
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	userID := query.From.ID
	ctx := context.Background()

	// Answer the callback query to remove loading state
	if b.api != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			b.logger.Debug("Failed to answer callback", zap.Error(err))
		}
	}

	if query.Message == nil || query.Message.Chat == nil {
		return
	}

	// List filters work without a conversation
	if strings.HasPrefix(query.Data, "list:") {
		b.handleListCallback(query)
		return
	}

	state, ok := b.states[userID]
	if !ok {
		return
	}

	data := query.Data
	switch {
	case strings.HasPrefix(data, "genre:"):
		b.handleGenreCallback(query, state)
	case strings.HasPrefix(data, "book:"):
		b.handleBookCallback(ctx, query, state)
	case strings.HasPrefix(data, "confirm:"):
		b.handleConfirmCallback(ctx, query, state)
	}

	if state.Step == stepDone {
		delete(b.states, userID)
	}
}
