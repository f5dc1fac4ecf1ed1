package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// fetchFulltext downloads an article body up to the byte cap and extracts
// readable text. Used as a second chance when the feed summary alone does
// not satisfy the keyword matcher.
func (p *Processor) fetchFulltext(ctx context.Context, link string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.FulltextTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build article request: %w", err)
	}
	req.Header.Set("User-Agent", p.opts.UserAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.opts.FulltextMaxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read article body: %w", err)
	}

	return extractText(data), nil
}

// extractText strips HTML with graceful degradation: readability first, a
// generic goquery pass second, a regex tag strip as the last resort. Each
// step failing silently hands over to the next.
func extractText(data []byte) string {
	if article, err := readability.FromReader(bytes.NewReader(data), nil); err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}

	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data)); err == nil {
		doc.Find("script, style, noscript").Remove()
		if text := normalizeWhitespace(doc.Find("body").Text()); text != "" {
			return text
		}
	}

	return normalizeWhitespace(tagPattern.ReplaceAllString(string(data), " "))
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
