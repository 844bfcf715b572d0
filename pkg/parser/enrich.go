package parser

import (
	"net/url"
	"strings"
	"sync"

	"github.com/dtnitsch/integration-agent/models"
	"github.com/dtnitsch/integration-agent/pkg/detector"
	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
)

// minLanguageWords is the shortest text worth running language detection on.
const minLanguageWords = 5

var (
	languageDetector     lingua.LanguageDetector
	languageDetectorOnce sync.Once
)

func getLanguageDetector() lingua.LanguageDetector {
	languageDetectorOnce.Do(func() {
		languageDetector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English, lingua.German, lingua.French, lingua.Spanish,
				lingua.Portuguese, lingua.Italian, lingua.Dutch, lingua.Japanese,
				lingua.Chinese, lingua.Korean, lingua.Russian,
			).
			Build()
	})
	return languageDetector
}

// ParseWithMetadata extracts html like Parse and attaches page metadata.
func (p *Parser) ParseWithMetadata(rawURL, html string) (*models.Documentation, error) {
	doc, err := p.Parse(rawURL, html)
	if err != nil {
		return nil, err
	}
	doc.Metadata = p.Enrich(rawURL, html)
	return doc, nil
}

// Enrich computes classification and readability signals for a page. A page
// readability cannot process still gets URL-based classification.
func (p *Parser) Enrich(rawURL, html string) *models.PageMetadata {
	meta := &models.PageMetadata{
		DomainCategory:  detector.Category(rawURL),
		IsDocumentation: detector.IsDocumentationURLExtended(rawURL),
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		p.logger.Debug("skipping readability, bad url", "url", rawURL, "error", err)
		return meta
	}

	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		p.logger.Debug("readability failed", "url", rawURL, "error", err)
		return meta
	}

	meta.Author = article.Byline
	meta.Excerpt = article.Excerpt
	meta.SiteName = article.SiteName

	text := normalizeText(article.TextContent)
	meta.WordCount = len(strings.Fields(text))
	if meta.WordCount >= minLanguageWords {
		meta.Language, meta.LanguageConfidence = detectTextLanguage(text)
	}

	return meta
}

// detectTextLanguage returns the lower-case ISO-639-1 code and confidence of
// the most likely language, or "" when nothing is reliable.
func detectTextLanguage(text string) (string, float64) {
	ld := getLanguageDetector()
	language, ok := ld.DetectLanguageOf(text)
	if !ok {
		return "", 0
	}
	return strings.ToLower(language.IsoCode639_1().String()), ld.ComputeLanguageConfidence(text, language)
}
