package service

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "plain", title: "NASA finds water on Mars", want: "NASA_finds_water_on_Mars"},
		{name: "diacritics and punctuation", title: "Café: Zürich's 5 best spots!", want: "Cafe_Zurichs_5_best_spots"},
		{name: "dash runs collapse", title: "NASA -- new   rover", want: "NASA_new_rover"},
		{name: "keeps other scripts", title: "Новости дня", want: "Новости_дня"},
		{name: "only punctuation", title: " ?!-- ", want: "untitled"},
		{name: "empty", title: "", want: "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitle(tt.title))
		})
	}
}

func TestSanitizeTitle_Truncates(t *testing.T) {
	got := SanitizeTitle(strings.Repeat("word ", 30))
	assert.LessOrEqual(t, len([]rune(got)), 50)
	assert.False(t, strings.HasSuffix(got, "_"))
}

func TestFolderLayout_Prepare(t *testing.T) {
	root := t.TempDir()
	layout := NewFolderLayout(root)
	created := time.Date(2026, 1, 2, 18, 0, 0, 0, time.UTC)

	first, err := layout.Prepare("Rover lands", "evening", created, "abcdef12-3456-7890-abcd-ef1234567890")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "02-01-2026", "evening", "Rover_lands"), first)
	assert.DirExists(t, first)

	second, err := layout.Prepare("Rover lands", "evening", created, "12345678-aaaa-bbbb-cccc-dddddddddddd")
	require.NoError(t, err)
	assert.Equal(t, first+"_12345678", second)
	assert.DirExists(t, second)

	layout.Remove(second)
	assert.NoDirExists(t, second)
}
