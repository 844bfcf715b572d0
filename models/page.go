package models

// Documentation is the structured record extracted from one documentation page.
type Documentation struct {
	URL            string         `json:"url,omitempty" yaml:"url,omitempty"`
	Title          string         `json:"title,omitempty" yaml:"title,omitempty"`
	Overview       string         `json:"overview,omitempty" yaml:"overview,omitempty"`
	Authentication Authentication `json:"authentication" yaml:"authentication"`
	Endpoints      []Endpoint     `json:"endpoints" yaml:"endpoints"`
	Examples       []CodeExample  `json:"examples" yaml:"examples"`
	Requirements   *Requirements  `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Metadata       *PageMetadata  `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Authentication describes how a documented API authenticates callers.
// The zero value means the page had no authentication section.
type Authentication struct {
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Type         string `json:"type,omitempty" yaml:"type,omitempty"`
	Example      string `json:"example,omitempty" yaml:"example,omitempty"`
}

// IsZero reports whether no authentication section was found.
func (a Authentication) IsZero() bool {
	return a == Authentication{}
}

// Endpoint is one documented API operation.
type Endpoint struct {
	Path           string      `json:"path" yaml:"path"`
	Method         string      `json:"method" yaml:"method"`
	Description    string      `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters     []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Response       *Response   `json:"response,omitempty" yaml:"response,omitempty"`
	Authentication string      `json:"authentication,omitempty" yaml:"authentication,omitempty"`
}

// Parameter is one row of an endpoint's parameter table.
type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required" yaml:"required"`
}

// Response holds raw response examples and schema text for an endpoint.
type Response struct {
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
	Schema   string   `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// CodeExample is one extracted code sample.
type CodeExample struct {
	Language    string            `json:"language" yaml:"language"`
	Code        string            `json:"code" yaml:"code"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Context     map[string]string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Requirements lists prerequisites found in a requirements section.
type Requirements struct {
	Version      string   `json:"version,omitempty" yaml:"version,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}
