package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	languageClassPrefix = "language-"
	UnknownLanguage     = "unknown"
)

// DetectLanguage classifies a code container. An explicit language- class
// wins; otherwise the lower-cased text is checked for python, then json,
// then xml. It never returns an empty string.
func DetectLanguage(sel *goquery.Selection) string {
	if lang, ok := classLanguage(sel); ok {
		return lang
	}
	return detectFromContent(sel.Text())
}

// classLanguage returns the text after "language-" in the first class token
// containing it.
func classLanguage(sel *goquery.Selection) (string, bool) {
	class, _ := sel.Attr("class")
	for _, token := range strings.Fields(class) {
		idx := strings.Index(token, languageClassPrefix)
		if idx < 0 {
			continue
		}
		if lang := token[idx+len(languageClassPrefix):]; lang != "" {
			return lang, true
		}
	}
	return "", false
}

func detectFromContent(text string) string {
	content := strings.ToLower(text)
	switch {
	case strings.Contains(content, "import") &&
		(strings.Contains(content, "def") || strings.Contains(content, "class")):
		return "python"
	case strings.Contains(content, "{") &&
		(strings.Contains(content, ":") || strings.Contains(content, "=")):
		return "json"
	case strings.Contains(content, "<") && strings.Contains(content, ">"):
		return "xml"
	}
	return UnknownLanguage
}
