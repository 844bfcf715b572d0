package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/integration-agent/models"
)

// codeBlockSelector matches the code containers that become examples.
const codeBlockSelector = `pre[class*="language-"]`

// extractCodeExamples returns one example per language- code block. The
// description is the text of the nearest p, h3 or h4 before the block in
// document order.
func extractCodeExamples(root *goquery.Selection) []models.CodeExample {
	examples := []models.CodeExample{}

	var lastDescription string
	root.Find("p, h3, h4, " + codeBlockSelector).Each(func(_ int, s *goquery.Selection) {
		if !s.Is(codeBlockSelector) {
			lastDescription = normalizeText(s.Text())
			return
		}
		examples = append(examples, models.CodeExample{
			Language:    DetectLanguage(s),
			Code:        strings.TrimSpace(s.Text()),
			Description: lastDescription,
		})
	})

	return examples
}

var (
	requirementsHeading = regexp.MustCompile(`(?i)requirements|prerequisites`)
	versionPattern      = regexp.MustCompile(`version (\d+\.[\d.x]+)`)
)

// extractRequirements reads div/section blocks whose heading mentions
// requirements or prerequisites. It returns nil when none are found.
func extractRequirements(root *goquery.Selection) *models.Requirements {
	var reqs models.Requirements

	root.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		heading := s.ChildrenFiltered("h1, h2, h3, h4, h5, h6").First()
		if heading.Length() == 0 || !requirementsHeading.MatchString(heading.Text()) {
			return
		}

		if m := versionPattern.FindStringSubmatch(s.Text()); len(m) > 1 && reqs.Version == "" {
			reqs.Version = m[1]
		}
		s.Find("ul li, ol li").Each(func(_ int, li *goquery.Selection) {
			if text := normalizeText(li.Text()); text != "" {
				reqs.Dependencies = append(reqs.Dependencies, text)
			}
		})
	})

	if reqs.Version == "" && len(reqs.Dependencies) == 0 {
		return nil
	}
	return &reqs
}
