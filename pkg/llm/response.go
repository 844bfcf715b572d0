package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// CodeBlock is one fenced block from a markdown response.
type CodeBlock struct {
	Language string `json:"language" yaml:"language"`
	Code     string `json:"code" yaml:"code"`
}

// ParsedResponse is the structured view of a model response.
type ParsedResponse struct {
	CodeBlocks   []CodeBlock    `json:"code_blocks" yaml:"code_blocks"`
	Metadata     map[string]any `json:"metadata" yaml:"metadata"`
	Requirements []string       `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

var (
	codeBlockPattern    = regexp.MustCompile("```(\\w*)\\n([\\s\\S]*?)```")
	jsonObjectPattern   = regexp.MustCompile(`\{[\s\S]*?\}`)
	requirementsPattern = regexp.MustCompile(`(?s)Requirements:(.*?)(?:\n\n|\z)`)
)

// ExtractCodeBlocks returns fenced code blocks in order. A block without a
// language tag is "text".
func ExtractCodeBlocks(text string) []CodeBlock {
	blocks := []CodeBlock{}
	for _, m := range codeBlockPattern.FindAllStringSubmatch(text, -1) {
		lang := m[1]
		if lang == "" {
			lang = "text"
		}
		blocks = append(blocks, CodeBlock{Language: lang, Code: strings.TrimSpace(m[2])})
	}
	return blocks
}

// ParseResponse pulls code blocks, JSON object metadata and a
// "Requirements:" list out of text. Later JSON objects override earlier keys;
// fragments that are not valid JSON objects are skipped.
func ParseResponse(text string) ParsedResponse {
	parsed := ParsedResponse{
		CodeBlocks: ExtractCodeBlocks(text),
		Metadata:   map[string]any{},
	}

	for _, candidate := range jsonObjectPattern.FindAllString(text, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
			continue
		}
		for k, v := range obj {
			parsed.Metadata[k] = v
		}
	}

	if m := requirementsPattern.FindStringSubmatch(text); m != nil {
		for _, line := range strings.Split(m[1], "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimSpace(strings.TrimLeft(line, "-*"))
			if line != "" {
				parsed.Requirements = append(parsed.Requirements, line)
			}
		}
	}

	return parsed
}

// ExtractSection returns the text from the first case-insensitive
// occurrence of name up to the earliest following boundary, trimmed. It
// returns "" when name does not occur.
func ExtractSection(content, name string, boundaries []string) string {
	start, from := indexFold(content, name, 0)
	if start < 0 {
		return ""
	}

	end := len(content)
	for _, boundary := range boundaries {
		if pos, _ := indexFold(content, boundary, from); pos >= 0 && pos < end {
			end = pos
		}
	}
	return strings.TrimSpace(content[start:end])
}

// indexFold is a case-insensitive strings.Index starting at byte offset
// from. It returns the start and end offsets of the match, or -1, -1.
func indexFold(s, substr string, from int) (int, int) {
	if substr == "" || from > len(s) {
		return -1, -1
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(substr))
	loc := re.FindStringIndex(s[from:])
	if loc == nil {
		return -1, -1
	}
	return from + loc[0], from + loc[1]
}
