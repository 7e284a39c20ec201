package collection

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readinglist/internal/models"
)

const validID = "3f9a4c1e-7b2d-4e8f-9a6b-1c2d3e4f5a6b"

func TestEncodeSnapshot_WritesEveryField(t *testing.T) {
	data, err := encodeSnapshot([]models.Book{{
		ID:         validID,
		Title:      "1984",
		Author:     "George Orwell",
		Genre:      models.GenreFiction,
		TotalPages: 328,
		PagesRead:  12,
	}})
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)

	assert.Equal(t, validID, records[0]["id"])
	assert.Equal(t, "Fiction", records[0]["genre"])
	assert.Equal(t, float64(328), records[0]["totalPages"])
	assert.Equal(t, float64(12), records[0]["pagesRead"])
	assert.Equal(t, false, records[0]["isFavorite"])
	assert.Contains(t, records[0], "imagePath")
}

func TestEncodeSnapshot_EmptyCollectionIsArray(t *testing.T) {
	data, err := encodeSnapshot(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestDecodeSnapshot_RejectsNonArray(t *testing.T) {
	for _, doc := range []string{`{}`, `"books"`, `42`, `not json`, ``} {
		_, _, err := decodeSnapshot([]byte(doc))
		assert.Error(t, err, "document %q", doc)
	}
}

func TestDecodeSnapshot_Defaults(t *testing.T) {
	books, skipped, err := decodeSnapshot([]byte(`[{"title":"Only a title"}]`))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, books, 1)

	b := books[0]
	_, parseErr := uuid.Parse(b.ID)
	assert.NoError(t, parseErr, "missing id is regenerated")
	assert.Equal(t, "Only a title", b.Title)
	assert.Equal(t, "", b.Author)
	assert.Equal(t, models.GenreFiction, b.Genre)
	assert.Equal(t, 0, b.TotalPages)
	assert.Equal(t, 0, b.PagesRead)
	assert.False(t, b.IsFavorite)
	assert.False(t, b.HasCover())
}

func TestDecodeSnapshot_WrongTypesFallBack(t *testing.T) {
	doc := `[{
		"id": 17,
		"title": ["x"],
		"author": "A",
		"genre": 3,
		"totalPages": "300",
		"pagesRead": 1.5,
		"isFavorite": "yes",
		"imagePath": null
	}]`
	books, _, err := decodeSnapshot([]byte(doc))
	require.NoError(t, err)
	require.Len(t, books, 1)

	b := books[0]
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "", b.Title)
	assert.Equal(t, "A", b.Author)
	assert.Equal(t, models.GenreFiction, b.Genre)
	assert.Equal(t, 0, b.TotalPages)
	assert.Equal(t, 0, b.PagesRead)
	assert.False(t, b.IsFavorite)
	assert.Equal(t, "", b.ImagePath)
}

func TestDecodeSnapshot_GenreLabels(t *testing.T) {
	doc := `[
		{"id":"a5d3c1e2-0000-4000-8000-000000000001","genre":"NonFiction"},
		{"id":"a5d3c1e2-0000-4000-8000-000000000002","genre":"Non-Fiction"},
		{"id":"a5d3c1e2-0000-4000-8000-000000000003","genre":"academic"},
		{"id":"a5d3c1e2-0000-4000-8000-000000000004","genre":"Poetry"}
	]`
	books, _, err := decodeSnapshot([]byte(doc))
	require.NoError(t, err)
	require.Len(t, books, 4)

	assert.Equal(t, models.GenreNonFiction, books[0].Genre)
	assert.Equal(t, models.GenreNonFiction, books[1].Genre)
	assert.Equal(t, models.GenreAcademic, books[2].Genre)
	assert.Equal(t, models.GenreFiction, books[3].Genre)
}

func TestDecodeSnapshot_ClampsProgress(t *testing.T) {
	doc := `[
		{"id":"a5d3c1e2-0000-4000-8000-000000000001","totalPages":100,"pagesRead":250},
		{"id":"a5d3c1e2-0000-4000-8000-000000000002","totalPages":100,"pagesRead":-4},
		{"id":"a5d3c1e2-0000-4000-8000-000000000003","totalPages":-10,"pagesRead":5}
	]`
	books, _, err := decodeSnapshot([]byte(doc))
	require.NoError(t, err)
	require.Len(t, books, 3)

	assert.Equal(t, 100, books[0].PagesRead)
	assert.Equal(t, 0, books[1].PagesRead)
	assert.Equal(t, 0, books[2].TotalPages)
	assert.Equal(t, 0, books[2].PagesRead)
}

func TestDecodeSnapshot_RegeneratesDuplicateIDs(t *testing.T) {
	doc := `[
		{"id":"` + validID + `","title":"first"},
		{"id":"` + validID + `","title":"second"}
	]`
	books, _, err := decodeSnapshot([]byte(doc))
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, validID, books[0].ID)
	assert.NotEqual(t, validID, books[1].ID)
	assert.Equal(t, "second", books[1].Title)
}

func TestDecodeSnapshot_SkipsNonObjects(t *testing.T) {
	books, skipped, err := decodeSnapshot([]byte(`[1, "two", null, {"title":"kept"}, []]`))
	require.NoError(t, err)
	assert.Equal(t, 4, skipped)
	require.Len(t, books, 1)
	assert.Equal(t, "kept", books[0].Title)
}

func TestSnapshotRoundTrip(t *testing.T) {
	original := []models.Book{
		{ID: validID, Title: "1984", Author: "George Orwell", Genre: models.GenreFiction, TotalPages: 328, PagesRead: 328, IsFavorite: true, ImagePath: "covers/1984.jpg"},
		{ID: uuid.NewString(), Title: "SICP", Author: "Abelson", Genre: models.GenreAcademic, TotalPages: 657},
	}

	data, err := encodeSnapshot(original)
	require.NoError(t, err)
	decoded, skipped, err := decodeSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, 0, skipped)
	assert.Equal(t, original, decoded)
}
