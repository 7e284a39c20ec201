package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// WebhookPath is where Telegram delivers updates in webhook mode
const WebhookPath = "/telegram-webhook"

// Start runs the bot in polling mode until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot in polling mode")

	// Remove webhook (if any was set previously)
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started successfully. Waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(update)
		}
	}
}

// StartWebhook sets up the bot to receive updates via webhook
func (b *Bot) StartWebhook(webhookURL string) error {
	b.logger.Info("Setting up webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL + WebhookPath)
	if err != nil {
		return err
	}
	webhookConfig.MaxConnections = 40

	if _, err := b.api.Request(webhookConfig); err != nil {
		b.logger.Error("Failed to set webhook", zap.Error(err), zap.String("webhook_url", webhookURL))
		return err
	}

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		b.logger.Warn("Failed to get webhook info", zap.Error(err))
	} else {
		b.logger.Info("Webhook set successfully",
			zap.String("url", info.URL),
			zap.Int("pending_updates", info.PendingUpdateCount),
		)
	}
	return nil
}

// HandleUpdate processes a single update. Updates are handled one at a time.
// Updates without a sender or chat are dropped.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Webhook updates run in their own goroutine, outside any HTTP recovery
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in HandleUpdate",
				zap.Any("panic", r),
				zap.Int("update_id", update.UpdateID),
			)
		}
	}()

	if msg := update.Message; msg != nil {
		if msg.From == nil || msg.Chat == nil {
			b.logger.Debug("Dropping message without sender or chat", zap.Int("update_id", update.UpdateID))
			return
		}
		userID := msg.From.ID
		if !b.allowedUsers[userID] {
			b.logger.Warn("Unauthorized access attempt",
				zap.Int64("user_id", userID),
				zap.String("username", msg.From.UserName),
				zap.String("text", msg.Text),
			)
			b.reply(msg.Chat.ID, "Sorry, you are not authorized to use this bot.")
			return
		}
		b.handleMessage(msg)
	}

	// Inline keyboard button clicks
	if query := update.CallbackQuery; query != nil {
		if query.From == nil {
			b.logger.Debug("Dropping callback without sender", zap.Int("update_id", update.UpdateID))
			return
		}
		userID := query.From.ID
		if !b.allowedUsers[userID] {
			b.logger.Warn("Unauthorized callback query attempt",
				zap.Int64("user_id", userID),
				zap.String("username", query.From.UserName),
				zap.String("callback_data", query.Data),
			)
			return
		}
		b.handleCallbackQuery(query)
	}
}
