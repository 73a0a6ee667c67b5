package service

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	folderDateLayout = "02-01-2006"
	maxFolderName    = 50
)

var (
	folderUnsafe     = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	folderSeparators = regexp.MustCompile(`[-\s]+`)
)

// FolderLayout owns the on-disk tree of task folders:
// <root>/<dd-mm-yyyy>/<slot>/<sanitized title>.
type FolderLayout struct {
	root string
}

func NewFolderLayout(root string) *FolderLayout {
	return &FolderLayout{root: root}
}

// Prepare creates the folder for a new task. If the plain path is taken the
// first eight characters of id are appended.
func (f *FolderLayout) Prepare(title, slot string, created time.Time, id string) (string, error) {
	dir := filepath.Join(f.root, created.Format(folderDateLayout), slot, SanitizeTitle(title))

	_, err := os.Stat(dir)
	switch {
	case err == nil:
		dir += "_" + shortID(id)
	case !errors.Is(err, fs.ErrNotExist):
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Remove deletes a folder created by Prepare for a task that was never stored.
func (f *FolderLayout) Remove(dir string) {
	_ = os.RemoveAll(dir)
}

// SanitizeTitle turns a headline into a filesystem-safe folder name:
// diacritics folded, punctuation dropped, whitespace and dashes collapsed to
// underscores and at most 50 runes kept.
func SanitizeTitle(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	name := folderUnsafe.ReplaceAllString(folded, "")
	name = folderSeparators.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	name = strings.TrimRight(truncateRunes(name, maxFolderName), "_")

	if name == "" {
		return "untitled"
	}
	return name
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
