package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-shiori/go-readability"
)

const userAgent = "Mozilla/5.0 (compatible; tonepad/1.0)"

var httpClient = &http.Client{Timeout: 30 * time.Second}

// fetchArticle downloads a page, keeps its main content and returns it as
// Markdown headed by the article title.
func fetchArticle(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP %d error reading %s", resp.StatusCode, rawURL)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, MaxFileSize), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract article: %w", err)
	}

	body, err := toMarkdown(article.Content, pageURL.Host)
	if err != nil {
		body = strings.TrimSpace(article.TextContent)
	}
	if article.Title == "" {
		return body, nil
	}
	return "# " + article.Title + "\n\n" + body, nil
}

func parseHTMLFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return toMarkdown(string(data), "")
}

func toMarkdown(html, domain string) (string, error) {
	converter := md.NewConverter(domain, true, nil)
	out, err := converter.ConvertString(html)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
