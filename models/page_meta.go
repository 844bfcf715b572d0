package models

// PageMetadata holds enrichment signals computed next to the extraction record.
type PageMetadata struct {
	// Classification
	DomainCategory     string  `json:"domain_category,omitempty" yaml:"domain_category,omitempty"` // docs/api, blog, general
	IsDocumentation    bool    `json:"is_documentation" yaml:"is_documentation"`
	Language           string  `json:"language,omitempty" yaml:"language,omitempty"` // ISO-639-1 (e.g. "en")
	LanguageConfidence float64 `json:"language_confidence,omitempty" yaml:"language_confidence,omitempty"`

	// Size signals
	WordCount int `json:"word_count" yaml:"word_count"`

	// Readability enrichment (from go-readability)
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Excerpt  string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"` // meta description
	SiteName string `json:"site_name,omitempty" yaml:"site_name,omitempty"`
}
