// Package importer turns documents and web pages into plain buffer text.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxFileSize bounds local files read into the buffer.
const MaxFileSize = 10 << 20

var ErrBinary = errors.New("file does not look like text")

// Load reads source, a local path or an http(s) URL, and returns its text.
func Load(ctx context.Context, source string) (string, error) {
	if isURL(source) {
		return fetchArticle(ctx, source)
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", source)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("%s is too large (%d bytes, limit %d)", source, info.Size(), MaxFileSize)
	}

	var text string
	switch strings.ToLower(filepath.Ext(source)) {
	case ".pdf":
		text, err = parsePDF(source)
	case ".xlsx", ".xlsm":
		text, err = parseExcel(source)
	case ".html", ".htm":
		text, err = parseHTMLFile(source)
	default:
		text, err = readText(source)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", source, err)
	}
	return text, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) || strings.ContainsRune(string(data), 0) {
		return "", ErrBinary
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// cleanText removes artifacts common in PDF extraction.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
