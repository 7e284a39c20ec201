package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"readinglist/internal/covers"
)

// downloadPhoto fetches the largest size of a Telegram photo
func (b *Bot) downloadPhoto(ctx context.Context, photos []tgbotapi.PhotoSize) ([]byte, error) {
	if b.api == nil {
		return nil, errors.New("bot api is not configured")
	}
	largest := photos[len(photos)-1]

	url, err := b.api.GetFileDirectURL(largest.FileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download photo: unexpected status %s", resp.Status)
	}

	// One byte over the limit is enough for the processor to reject it
	return io.ReadAll(io.LimitReader(resp.Body, b.covers.MaxSize()+1))
}

func (b *Bot) replyCoverError(chatID int64, err error) {
	switch {
	case errors.Is(err, covers.ErrTooLarge):
		b.reply(chatID, "❌ That image is too large.")
	case errors.Is(err, covers.ErrUnsupported):
		b.reply(chatID, "❌ Only JPEG and PNG images can be used as covers.")
	default:
		b.replyError(chatID, err)
	}
}
