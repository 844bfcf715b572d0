package common

import (
	"bytes"
	"testing"

	"github.com/dtnitsch/integration-agent/pkg/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  https://docs.acme.io/api  ", "https://docs.acme.io/api"},
		{"[Acme docs](https://docs.acme.io/api)", "https://docs.acme.io/api"},
		{"https://docs.acme.io/api),", "https://docs.acme.io/api"},
		{"<https://docs.acme.io/api>", "https://docs.acme.io/api"},
		{`"https://docs.acme.io/api"`, "https://docs.acme.io/api"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeURL(tt.in))
		})
	}
}

func TestSanitizeAndValidateURLs(t *testing.T) {
	valid, invalid := SanitizeAndValidateURLs([]string{
		"https://docs.acme.io/api",
		"ftp://files.acme.io",
		"not a url",
		"http://localhost:8080/docs,",
		"https://{host}/api",
	})

	assert.Equal(t, []string{"https://docs.acme.io/api", "http://localhost:8080/docs"}, valid)
	assert.Equal(t, []string{"ftp://files.acme.io", "not a url", "https://{host}/api"}, invalid)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, SplitList(" a, b c ,,d,"))
	assert.Nil(t, SplitList(""))
}

func TestWriteOutput(t *testing.T) {
	v := map[string]int{"count": 2}

	var j bytes.Buffer
	require.NoError(t, WriteOutput(&j, "JSON", v))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", j.String())

	var y bytes.Buffer
	require.NoError(t, WriteOutput(&y, "", v))
	assert.Equal(t, "count: 2\n", y.String())

	assert.Error(t, WriteOutput(&bytes.Buffer{}, "xml", v))
}

func TestSearchRecords(t *testing.T) {
	a, err := ranking.NewSearchResult("https://docs.acme.io/api", "Acme", 0.9)
	require.NoError(t, err)
	b, err := ranking.NewSearchResult("https://blog.acme.io/post", "Acme", 0.65)
	require.NoError(t, err)

	got := SearchRecords([]ranking.SearchResult{a, b})

	require.Len(t, got, 2)
	assert.Equal(t, "https://docs.acme.io/api", got[0].URL)
	assert.InDelta(t, 0.9, got[0].Score, 1e-9)
	assert.True(t, got[0].IsDocumentation)
	assert.False(t, got[1].IsDocumentation)
	assert.Empty(t, SearchRecords(nil))
}
