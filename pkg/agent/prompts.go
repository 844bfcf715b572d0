package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dtnitsch/integration-agent/models"
	"github.com/dtnitsch/integration-agent/pkg/ranking"
	"github.com/dtnitsch/integration-agent/pkg/search"
)

const systemPrompt = `You are an expert system integration engineer. Your task is to:
1. Analyze integration requirements
2. Find and understand official documentation
3. Generate working integration code
4. Provide clear usage examples

Follow these principles:
- Prefer official documentation over third-party sources
- Follow security best practices
- Generate well-documented, production-ready code
- Include error handling and logging
- Explain your reasoning clearly`

const typeDetectionSystemPrompt = `You are an expert at analyzing software integrations and APIs.
Determine the most appropriate integration type for a service based on its
documentation and requirements.

Common integration types include:
- REST API
- GraphQL API
- SOAP API
- Webhook
- SDK
- OAuth
- Event-driven
- Batch Processing
- File-based
- Database

Give a specific integration type, not a generic description.
If several types apply, list the primary one first.`

// contextResults is how many ranked results go into the analysis prompt.
const contextResults = 3

func analysisPrompt(req models.IntegrationRequest, results []ranking.SearchResult) (string, error) {
	if len(results) > contextResults {
		results = results[:contextResults]
	}
	if results == nil {
		results = []ranking.SearchResult{}
	}
	docs, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("encoding documentation context: %w", err)
	}

	auth := req.AuthenticationType
	if auth == "" || auth == "none" {
		auth = "Not specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the integration requirements for %s:\n", req.ServiceName)
	fmt.Fprintf(&b, "1. Integration Type: %s\n", req.IntegrationType)
	fmt.Fprintf(&b, "2. Requirements: %s\n", req.Description)
	fmt.Fprintf(&b, "3. Authentication: %s\n", auth)
	if len(req.SpecificEndpoints) > 0 {
		fmt.Fprintf(&b, "4. Endpoints of interest: %s\n", strings.Join(req.SpecificEndpoints, ", "))
	}
	b.WriteString("\nBased on the documentation found, provide:\n")
	b.WriteString("1. Required authentication steps\n")
	b.WriteString("2. Key endpoints or features needed\n")
	b.WriteString("3. Any rate limits or restrictions\n")
	b.WriteString("4. Dependencies required\n")
	b.WriteString("5. Potential implementation challenges\n")
	fmt.Fprintf(&b, "\nDocumentation context:\n%s\n", docs)
	return b.String(), nil
}

func generationPrompt(req models.IntegrationRequest, analysis Analysis) (string, error) {
	encoded, err := json.Marshal(analysis)
	if err != nil {
		return "", fmt.Errorf("encoding analysis context: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the analysis of %s integration requirements,\n", req.ServiceName)
	b.WriteString("generate a complete integration solution including:\n\n")
	b.WriteString("1. Installation and setup instructions\n")
	b.WriteString("2. Authentication implementation\n")
	b.WriteString("3. Main integration class/module\n")
	b.WriteString("4. Error handling\n")
	b.WriteString("5. Usage examples\n")
	b.WriteString("6. Testing approach\n\n")
	b.WriteString("Put each file in a fenced code block tagged with its language, and list\n")
	b.WriteString("third-party packages one per line after a line reading \"Requirements:\".\n")
	fmt.Fprintf(&b, "\nAnalysis context:\n%s\n", encoded)
	fmt.Fprintf(&b, "\nRequirements:\n%s\n", req.Description)
	return b.String(), nil
}

// typeDetectionHits is how many search hits go into the detection prompt.
const typeDetectionHits = 3

// maxHitContent bounds the content of each hit quoted in a prompt.
const maxHitContent = 1000

func typeDetectionPrompt(name, action string, hits []search.Hit) string {
	if len(hits) > typeDetectionHits {
		hits = hits[:typeDetectionHits]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Determine the most appropriate integration type for %s.\n\n", name)
	fmt.Fprintf(&b, "Integration requirements:\n%s\n\n", action)
	b.WriteString("Documentation found:\n")
	for _, h := range hits {
		content := h.Content
		if len(content) > maxHitContent {
			content = content[:maxHitContent]
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", h.Title, h.URL, content)
	}
	b.WriteString("\nBased on the documentation and requirements, what is the primary integration type?\n")
	b.WriteString(`Respond with ONLY the integration type (e.g., "REST API", "GraphQL API", "Webhook").` + "\n")
	b.WriteString("Do not include any explanation or additional text.\n")
	return b.String()
}
