// Package parser extracts structured facts (title, overview, authentication,
// endpoints, code examples) from HTML documentation pages.
package parser

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/integration-agent/models"
)

// Parser turns raw documentation HTML into a models.Documentation.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser. A nil logger discards output.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{logger: logger}
}

// Parse builds a document tree from html and extracts it.
func (p *Parser) Parse(rawURL, html string) (*models.Documentation, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return p.ParseDocument(rawURL, doc), nil
}

// ParseDocument extracts an already-parsed document.
func (p *Parser) ParseDocument(rawURL string, doc *goquery.Document) *models.Documentation {
	result := Extract(doc)
	result.URL = rawURL

	p.logger.Debug("documentation extracted",
		"url", rawURL,
		"has_title", result.Title != "",
		"has_overview", result.Overview != "",
		"has_authentication", !result.Authentication.IsZero(),
		"endpoints", len(result.Endpoints),
		"examples", len(result.Examples),
	)
	return &result
}

// Extract runs every sub-extraction over doc. Each one is independent and a
// missing section yields an empty value, never an error. Extract does not
// modify doc, so repeated calls return equal results.
func Extract(doc *goquery.Document) models.Documentation {
	return models.Documentation{
		Title:          extractTitle(doc.Selection),
		Overview:       extractOverview(doc.Selection),
		Authentication: extractAuthentication(doc.Selection),
		Endpoints:      extractEndpoints(doc.Selection),
		Examples:       extractCodeExamples(doc.Selection),
		Requirements:   extractRequirements(doc.Selection),
	}
}

var titleSelectors = []string{"h1", ".page-title", ".documentation-title"}

func extractTitle(root *goquery.Selection) string {
	if title := strings.TrimSpace(root.Find("title").First().Text()); title != "" {
		return title
	}
	return firstText(root, titleSelectors)
}

var overviewSelectors = []string{
	".introduction", ".overview", "#overview",
	`section[role="main"] > p:first-of-type`,
}

func extractOverview(root *goquery.Selection) string {
	return firstText(root, overviewSelectors)
}

// firstText returns the trimmed text of the first element matched by the
// first selector, in order, that matches anything.
func firstText(root *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		sel := root.Find(selector).First()
		if sel.Length() > 0 {
			return normalizeText(sel.Text())
		}
	}
	return ""
}

func extractAuthentication(root *goquery.Selection) models.Authentication {
	section := root.Find("div.authentication").First()
	if section.Length() == 0 {
		return models.Authentication{}
	}

	text := section.Text()
	auth := models.Authentication{
		Instructions: normalizeText(text),
	}
	if strings.Contains(text, "API Key") {
		auth.Type = "API Key"
	}
	if code := section.Find("code").First(); code.Length() > 0 {
		auth.Example = strings.TrimSpace(code.Text())
	}
	return auth
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
