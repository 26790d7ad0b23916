package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWordsFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEmbeddedWords(t *testing.T) {
	ws, err := loadWords("")
	require.NoError(t, err)
	assert.Greater(t, ws.categoryCount(), 0)

	category, word := ws.pick()
	assert.NotEmpty(t, category)
	assert.NotEmpty(t, word)
}

func TestLoadCustomWordsFile(t *testing.T) {
	path := writeWordsFile(t, `[{"category": "Tools", "words": ["Hammer"]}]`)

	ws, err := loadWords(path)
	require.NoError(t, err)
	require.Equal(t, 1, ws.categoryCount())

	category, word := ws.pick()
	assert.Equal(t, "Tools", category)
	assert.Equal(t, "Hammer", word)
}

func TestWordEntriesTrimmed(t *testing.T) {
	path := writeWordsFile(t, `[{"category": " Tools ", "words": [" Hammer ", "   ", ""]}]`)

	ws, err := loadWords(path)
	require.NoError(t, err)

	category, word := ws.pick()
	assert.Equal(t, "Tools", category)
	assert.Equal(t, "Hammer", word)
}

func TestCategoryWithoutNameRejected(t *testing.T) {
	path := writeWordsFile(t, `[{"category": "   ", "words": ["Hammer"]}]`)

	_, err := loadWords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a name")
}

func TestCategoryWithoutWordsRejected(t *testing.T) {
	path := writeWordsFile(t, `[{"category": "Tools", "words": ["  ", ""]}]`)

	_, err := loadWords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Tools"`)
}

func TestEmptyDatasetRejected(t *testing.T) {
	path := writeWordsFile(t, `[]`)

	_, err := loadWords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no categories")
}

func TestMalformedWordsFileRejected(t *testing.T) {
	path := writeWordsFile(t, `{"not": "a list"`)

	_, err := loadWords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestMissingWordsFileRejected(t *testing.T) {
	_, err := loadWords(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}
