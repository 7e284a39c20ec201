package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"readinglist/internal/collection"
	"readinglist/internal/covers"
	"readinglist/internal/models"
)

// Handler exposes the collection over HTTP
type Handler struct {
	library collection.Library
	covers  *covers.Service
	logger  *zap.Logger
}

func NewHandler(library collection.Library, coverService *covers.Service, logger *zap.Logger) *Handler {
	return &Handler{library: library, covers: coverService, logger: logger}
}

type bookView struct {
	models.Book
	Completion float64 `json:"completion"`
	Completed  bool    `json:"completed"`
}

type mutationResult struct {
	Book      *bookView `json:"book,omitempty"`
	Persisted bool      `json:"persisted"`
}

type createBookRequest struct {
	Title      string      `json:"title"`
	Author     string      `json:"author"`
	Genre      string      `json:"genre"`
	TotalPages interface{} `json:"totalPages"`
}

type progressRequest struct {
	PagesRead *int `json:"pagesRead" binding:"required"`
}

func (h *Handler) view(book models.Book) *bookView {
	return &bookView{
		Book:       book,
		Completion: h.library.CompletionPercentage(book.ID),
		Completed:  book.IsCompleted(),
	}
}

func (h *Handler) views(books []models.Book) []*bookView {
	result := make([]*bookView, 0, len(books))
	for _, b := range books {
		result = append(result, h.view(b))
	}
	return result
}

// genreParam reads the optional genre filter; an empty value means all genres
func genreParam(c *gin.Context) (models.Genre, bool) {
	raw := strings.TrimSpace(c.Query("genre"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", true
	}
	return models.ParseGenre(raw)
}

// pagesText renders totalPages as the user typed it, numbers or strings
func pagesText(v interface{}) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return p
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	default:
		return fmt.Sprint(p)
	}
}

// persisted separates a persistence failure, which leaves the mutation applied,
// from errors that rejected it
func (h *Handler) persisted(c *gin.Context, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if collection.IsPersistence(err) {
		h.logger.Warn("Change applied but not persisted",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
		return false, nil
	}
	return false, err
}

// fail maps domain errors to HTTP responses
func (h *Handler) fail(c *gin.Context, err error) {
	var ve *collection.ValidationError
	switch {
	case errors.As(err, &ve):
		errorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", ve.Reason, gin.H{"field": ve.Field})
	case errors.Is(err, collection.ErrDuplicate):
		errorResponse(c, http.StatusConflict, "DUPLICATE_BOOK", "This book is already in your list.")
	case errors.Is(err, collection.ErrNotFound):
		notFound(c, "Book not found")
	case errors.Is(err, covers.ErrTooLarge):
		errorResponse(c, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", err.Error())
	case errors.Is(err, covers.ErrUnsupported):
		errorResponse(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_IMAGE", err.Error())
	case errors.Is(err, covers.ErrNotFound):
		notFound(c, "Cover not found")
	default:
		h.logger.Error("Request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
		internalServerError(c)
	}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListBooks handles GET /api/books?genre=
func (h *Handler) ListBooks(c *gin.Context) {
	genre, ok := genreParam(c)
	if !ok {
		badRequest(c, "Unknown genre")
		return
	}
	success(c, http.StatusOK, h.views(h.library.FilteredBooks(genre)))
}

// GroupedBooks handles GET /api/books/grouped?genre=
func (h *Handler) GroupedBooks(c *gin.Context) {
	genre, ok := genreParam(c)
	if !ok {
		badRequest(c, "Unknown genre")
		return
	}
	favorites, others := h.library.Grouped(genre)
	success(c, http.StatusOK, gin.H{
		"favorites": h.views(favorites),
		"others":    h.views(others),
	})
}

// CreateBook handles POST /api/books
func (h *Handler) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON body")
		return
	}

	genre := models.Genre(strings.TrimSpace(req.Genre))
	if g, ok := models.ParseGenre(req.Genre); ok {
		genre = g
	}

	book, err := h.library.Add(c.Request.Context(), models.BookInput{
		Title:      req.Title,
		Author:     req.Author,
		Genre:      genre,
		TotalPages: pagesText(req.TotalPages),
	})
	saved, err := h.persisted(c, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, http.StatusCreated, mutationResult{Book: h.view(book), Persisted: saved})
}

// GetBook handles GET /api/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	book, err := h.library.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, http.StatusOK, h.view(book))
}

// respondWithBook answers a mutation on an existing book
func (h *Handler) respondWithBook(c *gin.Context, id string, mutationErr error) {
	saved, err := h.persisted(c, mutationErr)
	if err != nil {
		h.fail(c, err)
		return
	}
	book, err := h.library.Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, http.StatusOK, mutationResult{Book: h.view(book), Persisted: saved})
}

// ToggleFavorite handles POST /api/books/:id/favorite
func (h *Handler) ToggleFavorite(c *gin.Context) {
	id := c.Param("id")
	h.respondWithBook(c, id, h.library.ToggleFavorite(c.Request.Context(), id))
}

// UpdateProgress handles PUT /api/books/:id/progress
func (h *Handler) UpdateProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "pagesRead is required")
		return
	}
	id := c.Param("id")
	h.respondWithBook(c, id, h.library.UpdateProgress(c.Request.Context(), id, *req.PagesRead))
}

// DeleteBook handles DELETE /api/books/:id and drops its cover once the deletion is persisted
func (h *Handler) DeleteBook(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	book, err := h.library.Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}

	saved, err := h.persisted(c, h.library.Delete(ctx, id))
	if err != nil {
		h.fail(c, err)
		return
	}
	if saved {
		h.covers.Remove(ctx, book.ImagePath)
	}

	success(c, http.StatusOK, mutationResult{Persisted: saved})
}

// UploadCover handles PUT /api/books/:id/cover with the raw image as body
func (h *Handler) UploadCover(c *gin.Context) {
	id := c.Param("id")

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, h.covers.MaxSize()+1))
	if err != nil {
		badRequest(c, "Could not read image")
		return
	}

	book, err := h.covers.Attach(c.Request.Context(), id, data)
	saved, err := h.persisted(c, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, http.StatusOK, mutationResult{Book: h.view(book), Persisted: saved})
}

// GetCover handles GET /api/books/:id/cover
func (h *Handler) GetCover(c *gin.Context) {
	book, err := h.library.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	data, err := h.covers.Load(c.Request.Context(), book.ImagePath)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// Stats handles GET /api/stats
func (h *Handler) Stats(c *gin.Context) {
	success(c, http.StatusOK, h.library.Stats())
}

// Persist handles POST /api/persist, retrying an unsaved change
func (h *Handler) Persist(c *gin.Context) {
	if err := h.library.Flush(c.Request.Context()); err != nil {
		h.logger.Error("Manual persist failed", zap.Error(err))
		errorResponse(c, http.StatusServiceUnavailable, "PERSISTENCE_ERROR", "Could not save the collection")
		return
	}
	success(c, http.StatusOK, mutationResult{Persisted: true})
}
