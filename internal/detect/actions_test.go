package detect

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/dtnitsch/integration-agent/pkg/sheets"
	"github.com/stretchr/testify/assert"
)

type stubDetector map[string]string

func (s stubDetector) DetermineType(_ context.Context, name, _ string) (string, error) {
	t, ok := s[name]
	if !ok {
		return "", errors.New("no documentation")
	}
	return t, nil
}

type recordingWriter struct {
	updates map[int]string
	fail    map[int]bool
}

func (w *recordingWriter) UpdateIntegrationType(_ context.Context, row int, t string) error {
	if w.fail[row] {
		return errors.New("permission denied")
	}
	w.updates[row] = t
	return nil
}

func TestDetectRows(t *testing.T) {
	detector := stubDetector{"Acme": "REST API", "Globex": "Webhook", "Initech": "SDK"}
	w := &recordingWriter{updates: map[int]string{}, fail: map[int]bool{5: true}}
	rows := []sheets.Row{
		{Number: 2, Name: "Acme", Action: "sync orders"},
		{Number: 3, Name: "Unknown", Action: "?"},
		{Number: 4, Name: "Globex", Action: "receive events"},
		{Number: 5, Name: "Initech", Action: "reports"},
	}

	got := detectRows(context.Background(), detector, w, rows, slog.New(slog.DiscardHandler))

	assert.Equal(t, []Detection{
		{Row: 2, Name: "Acme", Action: "sync orders", Type: "REST API"},
		{Row: 3, Name: "Unknown", Action: "?", Error: "no documentation"},
		{Row: 4, Name: "Globex", Action: "receive events", Type: "Webhook"},
		{Row: 5, Name: "Initech", Action: "reports", Type: "SDK", Error: "permission denied"},
	}, got)
	assert.Equal(t, map[int]string{2: "REST API", 4: "Webhook"}, w.updates)
}

func TestDetectRowsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &recordingWriter{updates: map[int]string{}}

	got := detectRows(ctx, stubDetector{"Acme": "REST API"}, w, []sheets.Row{{Number: 2, Name: "Acme"}}, slog.New(slog.DiscardHandler))

	assert.Empty(t, got)
	assert.Empty(t, w.updates)
}

func TestDetectOne(t *testing.T) {
	assert.Equal(t, Detection{Name: "Acme", Action: "sync", Type: "REST API"},
		detectOne(context.Background(), stubDetector{"Acme": "REST API"}, "Acme", "sync"))
	assert.Equal(t, Detection{Name: "Nope", Error: "no documentation"},
		detectOne(context.Background(), stubDetector{}, "Nope", ""))
}
