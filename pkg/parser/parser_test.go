package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `
<html>
	<head>
		<title>API Documentation</title>
	</head>
	<body>
		<h1>API Reference</h1>
		<div class="introduction">
			This is the API documentation.
		</div>

		<div class="authentication">
			<h2>Authentication</h2>
			<p>Use API Key authentication</p>
			<code>
				Authorization: Bearer YOUR_API_KEY
			</code>
		</div>

		<div class="endpoint">
			<h3>GET /api/v1/users</h3>
			<p class="description">List all users</p>
			<table class="parameters">
				<tr>
					<th>Parameter</th>
					<th>Description</th>
				</tr>
				<tr>
					<td>limit</td>
					<td>Maximum number of records</td>
				</tr>
				<tr>
					<td>cursor</td>
					<td>Required. Page cursor</td>
				</tr>
			</table>
			<pre class="language-python">
				import requests
				response = requests.get('/api/v1/users')
			</pre>
			<pre class="response-example">{"users": []}</pre>
		</div>
	</body>
</html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractSample(t *testing.T) {
	got := Extract(mustDoc(t, sampleHTML))

	assert.Equal(t, "API Documentation", got.Title)
	assert.Equal(t, "This is the API documentation.", got.Overview)

	assert.Contains(t, got.Authentication.Instructions, "Use API Key authentication")
	assert.Equal(t, "API Key", got.Authentication.Type)
	assert.Equal(t, "Authorization: Bearer YOUR_API_KEY", got.Authentication.Example)

	require.Len(t, got.Endpoints, 1)
	ep := got.Endpoints[0]
	assert.Equal(t, "GET", ep.Method)
	assert.Equal(t, "/api/v1/users", ep.Path)
	assert.Equal(t, "List all users", ep.Description)
	require.Len(t, ep.Parameters, 2)
	assert.Equal(t, "limit", ep.Parameters[0].Name)
	assert.Equal(t, "Maximum number of records", ep.Parameters[0].Description)
	assert.False(t, ep.Parameters[0].Required)
	assert.True(t, ep.Parameters[1].Required)
	require.NotNil(t, ep.Response)
	assert.Equal(t, []string{`{"users": []}`}, ep.Response.Examples)

	require.Len(t, got.Examples, 1)
	assert.Equal(t, "python", got.Examples[0].Language)
	assert.Contains(t, got.Examples[0].Code, "requests.get")
	assert.Equal(t, "List all users", got.Examples[0].Description)
}

func TestExtractTitleFallback(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"title element wins", `<html><head><title>Docs</title></head><body><h1>Heading</h1></body></html>`, "Docs"},
		{"h1 when no title", `<html><body><h1> Heading </h1></body></html>`, "Heading"},
		{"page-title class", `<html><body><div class="page-title">Page</div></body></html>`, "Page"},
		{"documentation-title class", `<html><body><span class="documentation-title">Doc</span></body></html>`, "Doc"},
		{"nothing", `<html><body><p>text</p></body></html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(mustDoc(t, tt.html)).Title)
		})
	}
}

func TestExtractOverviewSelectors(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"overview class", `<div class="overview">Over</div>`, "Over"},
		{"overview id", `<div id="overview">By id</div>`, "By id"},
		{"introduction before overview", `<div class="overview">Second</div><div class="introduction">First</div>`, "First"},
		{"main section paragraph", `<section role="main"><p>Lead</p><p>Rest</p></section>`, "Lead"},
		{"none", `<p>loose</p>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(mustDoc(t, tt.html)).Overview)
		})
	}
}

func TestEndpointHeading(t *testing.T) {
	doc := mustDoc(t, `<div class="endpoint"><h3>POST /v1/charges</h3><p class="description">Create a charge</p></div>`)
	got := Extract(doc)
	require.Len(t, got.Endpoints, 1)
	assert.Equal(t, "POST", got.Endpoints[0].Method)
	assert.Equal(t, "/v1/charges", got.Endpoints[0].Path)
	assert.Equal(t, "Create a charge", got.Endpoints[0].Description)
	assert.Nil(t, got.Endpoints[0].Response)
}

func TestEndpointHeadingWithoutPath(t *testing.T) {
	got := Extract(mustDoc(t, `<div class="endpoint"><h3>Users</h3></div>`))
	assert.NotNil(t, got.Endpoints)
	assert.Empty(t, got.Endpoints)
}

func TestOnlyFirstEndpointBlock(t *testing.T) {
	got := Extract(mustDoc(t, `
		<div class="endpoint"><h3>GET /a</h3></div>
		<div class="endpoint"><h3>GET /b</h3></div>`))
	require.Len(t, got.Endpoints, 1)
	assert.Equal(t, "/a", got.Endpoints[0].Path)
}

func TestCodeExampleDescription(t *testing.T) {
	got := Extract(mustDoc(t, `<h3>Fetch Users</h3><pre class="language-python">import requests</pre>`))
	require.Len(t, got.Examples, 1)
	assert.Equal(t, "python", got.Examples[0].Language)
	assert.Equal(t, "import requests", got.Examples[0].Code)
	assert.Equal(t, "Fetch Users", got.Examples[0].Description)
}

func TestCodeExampleNearestPreceding(t *testing.T) {
	got := Extract(mustDoc(t, `
		<h3>Install</h3>
		<pre class="language-bash">pip install acme</pre>
		<div><p>Then call it</p></div>
		<pre class="hljs language-go">acme.Call()</pre>
		<pre class="language-">{"a": 1}</pre>`))
	require.Len(t, got.Examples, 3)
	assert.Equal(t, "Install", got.Examples[0].Description)
	assert.Equal(t, "bash", got.Examples[0].Language)
	assert.Equal(t, "Then call it", got.Examples[1].Description)
	assert.Equal(t, "go", got.Examples[1].Language)
	assert.Equal(t, "json", got.Examples[2].Language)
	assert.Equal(t, "Then call it", got.Examples[2].Description)
}

func TestCodeExampleWithoutDescription(t *testing.T) {
	got := Extract(mustDoc(t, `<pre class="language-js">x()</pre>`))
	require.Len(t, got.Examples, 1)
	assert.Empty(t, got.Examples[0].Description)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"class python", `<code class="language-python">import requests</code>`, "python"},
		{"class json", `<code class="language-json">{"key": "value"}</code>`, "json"},
		{"class wins over content", `<code class="language-ruby">import x; def y</code>`, "ruby"},
		{"python content", `<code>import os\ndef main(): pass</code>`, "python"},
		{"json content", `<code>{ "key": "value" }</code>`, "json"},
		{"xml content", `<code>&lt;user&gt;&lt;name&gt;x&lt;/name&gt;&lt;/user&gt;</code>`, "xml"},
		{"unknown", `<code>some generic code</code>`, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(mustDoc(t, tt.html).Find("code").First()))
		})
	}
}

func TestAuthenticationAbsent(t *testing.T) {
	got := Extract(mustDoc(t, `<html><body><h1>Guide</h1><p>No auth here</p></body></html>`))
	assert.True(t, got.Authentication.IsZero())
}

func TestAuthenticationWithoutAPIKey(t *testing.T) {
	got := Extract(mustDoc(t, `<div class="authentication"><p>Use OAuth</p></div>`))
	assert.Equal(t, "Use OAuth", got.Authentication.Instructions)
	assert.Empty(t, got.Authentication.Type)
	assert.Empty(t, got.Authentication.Example)
}

func TestEmptyDocument(t *testing.T) {
	got := Extract(mustDoc(t, ``))
	assert.Empty(t, got.Title)
	assert.Empty(t, got.Overview)
	assert.True(t, got.Authentication.IsZero())
	assert.NotNil(t, got.Endpoints)
	assert.Empty(t, got.Endpoints)
	assert.NotNil(t, got.Examples)
	assert.Empty(t, got.Examples)
	assert.Nil(t, got.Requirements)
}

func TestExtractIsRepeatable(t *testing.T) {
	doc := mustDoc(t, sampleHTML)
	assert.Equal(t, Extract(doc), Extract(doc))
}

func TestRequirements(t *testing.T) {
	got := Extract(mustDoc(t, `
		<section>
			<h2>Requirements</h2>
			<p>Requires Python version 3.8.x or newer.</p>
			<ul><li>requests</li><li>pydantic</li></ul>
		</section>`))
	require.NotNil(t, got.Requirements)
	assert.Equal(t, "3.8.x", got.Requirements.Version)
	assert.Equal(t, []string{"requests", "pydantic"}, got.Requirements.Dependencies)
}

func TestParserParse(t *testing.T) {
	doc, err := NewParser(nil).Parse("https://docs.acme.io/users", sampleHTML)
	require.NoError(t, err)
	assert.Equal(t, "https://docs.acme.io/users", doc.URL)
	assert.Equal(t, "API Documentation", doc.Title)
	assert.Nil(t, doc.Metadata)
}

func TestParseWithMetadata(t *testing.T) {
	doc, err := NewParser(nil).ParseWithMetadata("https://docs.acme.io/users", sampleHTML)
	require.NoError(t, err)
	require.NotNil(t, doc.Metadata)
	assert.Equal(t, "docs/api", doc.Metadata.DomainCategory)
	assert.True(t, doc.Metadata.IsDocumentation)
}
