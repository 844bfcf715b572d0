package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/integration-agent/models"
)

// extractEndpoints reads the first endpoint block only. Pages with several
// endpoint blocks yield just the first one.
func extractEndpoints(root *goquery.Selection) []models.Endpoint {
	endpoints := []models.Endpoint{}

	block := root.Find("div.endpoint").First()
	if block.Length() == 0 {
		return endpoints
	}

	heading := block.Find("h3").First()
	if heading.Length() == 0 {
		return endpoints
	}
	tokens := strings.Fields(heading.Text())
	if len(tokens) < 2 {
		return endpoints
	}

	ep := models.Endpoint{
		Method:     tokens[0],
		Path:       tokens[1],
		Parameters: extractParameters(block),
		Response:   extractResponse(block),
	}
	if desc := block.Find("p.description").First(); desc.Length() > 0 {
		ep.Description = normalizeText(desc.Text())
	}

	return append(endpoints, ep)
}

// extractParameters reads parameter tables: the first row is a header, each
// following row with at least two cells is a name/description pair.
func extractParameters(block *goquery.Selection) []models.Parameter {
	var params []models.Parameter

	block.Find(`table[class*="param"]`).Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			cells := row.Find("td, th")
			if cells.Length() < 2 {
				return
			}
			params = append(params, models.Parameter{
				Name:        normalizeText(cells.Eq(0).Text()),
				Description: normalizeText(cells.Eq(1).Text()),
				Required:    strings.Contains(strings.ToLower(row.Text()), "required"),
			})
		})
	})

	return params
}

// extractResponse collects response examples and the first schema block.
// It returns nil when the endpoint documents neither.
func extractResponse(block *goquery.Selection) *models.Response {
	resp := &models.Response{}

	block.Find(`pre[class*="response"], pre[class*="example"], code[class*="response"], code[class*="example"]`).
		Each(func(_ int, s *goquery.Selection) {
			resp.Examples = append(resp.Examples, strings.TrimSpace(s.Text()))
		})

	if schema := block.Find(`pre[class*="schema"], code[class*="schema"]`).First(); schema.Length() > 0 {
		resp.Schema = strings.TrimSpace(schema.Text())
	}

	if len(resp.Examples) == 0 && resp.Schema == "" {
		return nil
	}
	return resp
}
