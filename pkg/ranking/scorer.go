package ranking

import (
	"strings"

	"github.com/dtnitsch/integration-agent/pkg/detector"
	"github.com/dtnitsch/integration-agent/pkg/search"
)

// Scores are summed in whole units of 0.05 and converted once, so that
// thresholds like 0.6 compare exactly.
const (
	unitsPerPoint = 20
	maxUnits      = unitsPerPoint

	docURLUnits      = 8 // 0.4
	keywordUnits     = 2 // 0.1
	serviceUnits     = 4 // 0.2
	typeUnits        = 2 // 0.1
	freeKeywordUnits = 1 // 0.05
	referenceUnits   = 4 // 0.2
	exampleUnits     = 2 // 0.1
)

// genericKeywords are matched by KeywordScorer in addition to the request's
// service name and integration type.
var genericKeywords = []string{"api", "integration", "documentation", "guide", "reference"}

// RequestContext is what a hit is scored against. An empty field is treated
// as the empty string, which every content contains.
type RequestContext struct {
	ServiceName     string
	IntegrationType string
	Keywords        []string
}

// Scorer computes a relevance score in [0, 1] and classifies URLs.
type Scorer interface {
	Score(hit search.Hit, rc RequestContext) float64
	IsDocumentation(url string) bool
}

// KeywordScorer is used when gathering sources for integration generation:
// +0.4 for a documentation URL and +0.1 per distinct keyword in the content.
type KeywordScorer struct{}

// IsDocumentation uses the basic URL markers.
func (KeywordScorer) IsDocumentation(url string) bool {
	return detector.IsDocumentationURL(url)
}

// Score implements Scorer.
func (s KeywordScorer) Score(hit search.Hit, rc RequestContext) float64 {
	units := 0
	if s.IsDocumentation(hit.URL) {
		units += docURLUnits
	}

	content := strings.ToLower(hit.Content)
	keywords := append([]string{
		strings.ToLower(rc.ServiceName),
		strings.ToLower(rc.IntegrationType),
	}, genericKeywords...)

	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		if strings.Contains(content, kw) {
			units += keywordUnits
		}
	}

	return toScore(units)
}

// ContextScorer is used by the standalone ranking tool. It rewards the
// extended documentation URL markers, context matches and reference phrases.
type ContextScorer struct{}

// IsDocumentation uses the extended URL markers.
func (ContextScorer) IsDocumentation(url string) bool {
	return detector.IsDocumentationURLExtended(url)
}

// Score implements Scorer.
func (s ContextScorer) Score(hit search.Hit, rc RequestContext) float64 {
	units := 0
	if s.IsDocumentation(hit.URL) {
		units += docURLUnits
	}

	content := strings.ToLower(hit.Content)
	if containsTerm(content, rc.ServiceName) {
		units += serviceUnits
	}
	if containsTerm(content, rc.IntegrationType) {
		units += typeUnits
	}
	for _, kw := range rc.Keywords {
		if containsTerm(content, kw) {
			units += freeKeywordUnits
		}
	}

	if strings.Contains(content, "api reference") || strings.Contains(content, "developer guide") {
		units += referenceUnits
	}
	if strings.Contains(content, "example") || strings.Contains(content, "tutorial") {
		units += exampleUnits
	}

	return toScore(units)
}

// containsTerm matches term case-insensitively. An empty term is contained
// in any content.
func containsTerm(lowerContent, term string) bool {
	return strings.Contains(lowerContent, strings.ToLower(term))
}

func toScore(units int) float64 {
	if units > maxUnits {
		units = maxUnits
	}
	if units < 0 {
		units = 0
	}
	return float64(units) / unitsPerPoint
}
