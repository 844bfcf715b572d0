// Package storage writes generated integrations to disk.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dtnitsch/integration-agent/pkg/agent"
)

var ErrNoIntegration = errors.New("result has no generated integration")

const (
	readmeFile   = "README.md"
	metadataFile = "metadata.json"
)

var extensions = map[string]string{
	"python":     ".py",
	"javascript": ".js",
	"typescript": ".ts",
	"java":       ".java",
	"ruby":       ".rb",
	"php":        ".php",
	"go":         ".go",
	"rust":       ".rs",
	"c":          ".c",
	"cpp":        ".cpp",
	"csharp":     ".cs",
	"swift":      ".swift",
	"kotlin":     ".kt",
	"scala":      ".scala",
	"r":          ".r",
	"julia":      ".jl",
	"shell":      ".sh",
	"sql":        ".sql",
	"html":       ".html",
	"css":        ".css",
	"json":       ".json",
	"yaml":       ".yaml",
	"xml":        ".xml",
	"markdown":   ".md",
	"text":       ".txt",
}

// FileExtension maps a code block language to a file extension. Unknown
// languages get ".txt".
func FileExtension(language string) string {
	if ext, ok := extensions[strings.ToLower(language)]; ok {
		return ext
	}
	return ".txt"
}

// ManifestName is the dependency manifest written next to code in language.
func ManifestName(language string) string {
	switch strings.ToLower(language) {
	case "python":
		return "requirements.txt"
	case "javascript", "typescript":
		return "package.json"
	}
	return "DEPENDENCIES.txt"
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// Slug lower-cases name and replaces every non-alphanumeric with "_".
func Slug(name string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	if slug == "" {
		return "integration"
	}
	return slug
}

// SavedFiles lists what SaveIntegration wrote, keyed by file name.
type SavedFiles struct {
	Dir   string            `json:"dir" yaml:"dir"`
	Files map[string]string `json:"files" yaml:"files"`
}

// Storage writes integrations under a base directory.
type Storage struct {
	baseDir string
	now     func() time.Time
}

func NewStorage(baseDir string) *Storage {
	return &Storage{baseDir: baseDir, now: time.Now}
}

// SaveIntegration writes the generated code, README, dependency manifest and
// metadata of res to <base>/<slug(service)>/.
func (s *Storage) SaveIntegration(res agent.Result) (SavedFiles, error) {
	if res.Integration == nil {
		return SavedFiles{}, ErrNoIntegration
	}
	gen := res.Integration

	dir := filepath.Join(s.baseDir, Slug(res.Request.ServiceName))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return SavedFiles{}, fmt.Errorf("error creating output directory: %w", err)
	}
	saved := SavedFiles{Dir: dir, Files: map[string]string{}}

	write := func(name string, content []byte) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("error saving %s: %w", name, err)
		}
		saved.Files[name] = path
		return nil
	}

	language := "text"
	for i, block := range gen.Parsed.CodeBlocks {
		name := "integration" + FileExtension(block.Language)
		if i == 0 {
			language = block.Language
		} else {
			name = fmt.Sprintf("integration_%d%s", i, FileExtension(block.Language))
		}
		if err := write(name, []byte(block.Code+"\n")); err != nil {
			return saved, err
		}
	}

	if err := write(readmeFile, []byte(gen.Raw)); err != nil {
		return saved, err
	}

	deps := gen.Parsed.Requirements
	if len(deps) == 0 && res.Analysis != nil {
		deps = parseDependencyList(res.Analysis.Dependencies())
	}
	if len(deps) > 0 {
		manifest := ManifestName(language)
		content, err := renderManifest(manifest, Slug(res.Request.ServiceName), deps)
		if err != nil {
			return saved, err
		}
		if err := write(manifest, content); err != nil {
			return saved, err
		}
	}

	meta, err := json.MarshalIndent(map[string]any{
		"metadata":              gen.Parsed.Metadata,
		"request":               res.Request,
		"documentation_sources": res.Sources,
		"failed_queries":        res.FailedQueries,
		"generated_at":          s.now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return saved, fmt.Errorf("error encoding metadata: %w", err)
	}
	if err := write(metadataFile, meta); err != nil {
		return saved, err
	}

	return saved, nil
}

func renderManifest(name, slug string, deps []string) ([]byte, error) {
	if name != "package.json" {
		return []byte(strings.Join(deps, "\n") + "\n"), nil
	}

	dependencies := make(map[string]string, len(deps))
	for _, d := range deps {
		dependencies[d] = "*"
	}
	data, err := json.MarshalIndent(map[string]any{
		"name":         strings.ReplaceAll(slug, "_", "-"),
		"version":      "0.1.0",
		"private":      true,
		"dependencies": dependencies,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding package.json: %w", err)
	}
	return append(data, '\n'), nil
}

var (
	dependencyHeading = regexp.MustCompile(`(?i)^[\W\d]*dependencies( required)?\W*`)
	listMarker        = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)
)

// parseDependencyList turns a free-text dependencies section into entries:
// split on newlines and commas, with the heading and list markers removed.
func parseDependencyList(section string) []string {
	section = dependencyHeading.ReplaceAllString(strings.TrimSpace(section), "")

	var deps []string
	for _, line := range strings.Split(section, "\n") {
		for _, item := range strings.Split(line, ",") {
			item = listMarker.ReplaceAllString(strings.TrimSpace(item), "")
			item = strings.TrimRight(strings.TrimSpace(item), ".;")
			if item != "" {
				deps = append(deps, item)
			}
		}
	}
	return deps
}
