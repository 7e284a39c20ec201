package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"readinglist/internal/models"
)

// handleStart shows welcome message and available commands
func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := `Welcome to your Reading List! 📚

Available commands:
/new_book - Add a book to your list
/list - Show your books by genre
/progress - Update pages read
/favorite - Mark or unmark a favorite
/cover - Attach a cover photo
/delete - Remove a book
/next - Suggest what to read next
/stats - Reading statistics`

	b.reply(message.Chat.ID, text)
}

// handleNewBookStart initiates the new book conversation
func (b *Bot) handleNewBookStart(message *tgbotapi.Message) {
	b.states[message.From.ID] = &ConversationState{
		Command: cmdNewBook,
		Step:    1,
		Data:    make(map[string]interface{}),
	}

	b.reply(message.Chat.ID, "Please enter the book title:")
}

// handleList asks which genre to show
func (b *Bot) handleList(message *tgbotapi.Message) {
	if len(b.library.FilteredBooks("")) == 0 {
		b.reply(message.Chat.ID, "Your list is empty. Add a book with /new_book")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "📚 Which genre?")
	msg.ReplyMarkup = genreKeyboard("list:", true)
	b.sendMessage(msg)
}

// handleListCallback renders favorites first, then the rest of the selected genre
func (b *Bot) handleListCallback(query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	selected := strings.TrimPrefix(query.Data, "list:")

	var genre models.Genre
	title := "All books"
	if selected != "all" {
		g, ok := models.ParseGenre(selected)
		if !ok {
			return
		}
		genre = g
		title = genreLabel(g)
	}

	favorites, others := b.library.Grouped(genre)
	if len(favorites)+len(others) == 0 {
		b.reply(chatID, fmt.Sprintf("No %s books yet.", strings.ToLower(title)))
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "📚 %s\n", title)
	if len(favorites) > 0 {
		text.WriteString("\n⭐ Favorites\n")
		for _, book := range favorites {
			text.WriteString(formatBook(book, b.library.CompletionPercentage(book.ID)) + "\n")
		}
	}
	if len(others) > 0 {
		text.WriteString("\n📖 Books\n")
		for _, book := range others {
			text.WriteString(formatBook(book, b.library.CompletionPercentage(book.ID)) + "\n")
		}
	}
	b.reply(chatID, text.String())
}

// handlePickBookStart starts a conversation whose first step is choosing a book
func (b *Bot) handlePickBookStart(message *tgbotapi.Message, command, prompt string) {
	books := b.library.FilteredBooks("")
	if len(books) == 0 {
		b.reply(message.Chat.ID, "Your list is empty. Add a book with /new_book")
		return
	}

	b.states[message.From.ID] = &ConversationState{
		Command: command,
		Step:    1,
		Data:    make(map[string]interface{}),
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, prompt)
	msg.ReplyMarkup = bookKeyboard(books)
	b.sendMessage(msg)
}

// handleStats summarizes the collection
func (b *Bot) handleStats(message *tgbotapi.Message) {
	stats := b.library.Stats()
	if stats.Total == 0 {
		b.reply(message.Chat.ID, "No books yet. Add one with /new_book")
		return
	}

	var text strings.Builder
	text.WriteString("📊 Reading statistics\n\n")
	fmt.Fprintf(&text, "Books: %d\n", stats.Total)
	fmt.Fprintf(&text, "Completed: %d\n", stats.Completed)
	fmt.Fprintf(&text, "Favorites: %d\n", stats.Favorites)
	fmt.Fprintf(&text, "Pages read: %d\n\n", stats.PagesRead)
	for _, g := range models.AllGenres() {
		fmt.Fprintf(&text, "%s: %d\n", genreLabel(g), stats.ByGenre[g])
	}

	b.reply(message.Chat.ID, text.String())
}

// handleNext suggests the next book to read
func (b *Bot) handleNext(message *tgbotapi.Message) {
	book, ok := ComputeNextBook(b.library.FilteredBooks(""))
	if !ok {
		b.reply(message.Chat.ID, "Nothing left to read. Add a book with /new_book")
		return
	}

	text := fmt.Sprintf("Next to read: %s by %s (%.0f%% done)",
		book.Title, book.Author, b.library.CompletionPercentage(book.ID))
	b.reply(message.Chat.ID, text)
}
