// Package docs extracts plain text from uploaded resume documents.
package docs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadResume returns the plain text of a resume file based on its extension.
// Supported: .txt, .md, .html, .htm.
func ReadResume(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md":
		return strings.TrimSpace(string(data)), nil
	case ".html", ".htm":
		return ExtractHTMLText(string(data))
	default:
		return "", fmt.Errorf("unsupported file format: %s", ext)
	}
}

// ExtractHTMLText strips markup and returns readable text, one block
// element per line.
func ExtractHTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, td, div").Each(func(_ int, s *goquery.Selection) {
		// Skip containers whose text is already covered by child blocks.
		if s.Children().Is("p, li, div, h1, h2, h3, h4, h5, h6") {
			return
		}
		text := strings.TrimSpace(s.Text())
		if text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		return strings.TrimSpace(doc.Text()), nil
	}
	return strings.Join(lines, "\n"), nil
}
