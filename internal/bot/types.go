package bot

import (
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readinglist/internal/collection"
	"readinglist/internal/covers"
)

// Conversation commands
const (
	cmdNewBook  = "new_book"
	cmdProgress = "progress"
	cmdFavorite = "favorite"
	cmdDelete   = "delete"
	cmdCover    = "cover"
)

// stepDone marks a finished conversation; it is removed on the next update
const stepDone = -1

// Bot represents the Telegram bot wrapper
type Bot struct {
	api          *tgbotapi.BotAPI
	library      collection.Library
	covers       *covers.Service
	httpClient   *http.Client
	allowedUsers map[int64]bool
	states       map[int64]*ConversationState
	mu           sync.Mutex // serializes update handling
	logger       *zap.Logger

	sent []string // replies captured when api is nil
}

// ConversationState tracks the state of multi-step commands
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]interface{}
}

func (s *ConversationState) bookID() string {
	id, _ := s.Data["book_id"].(string)
	return id
}
