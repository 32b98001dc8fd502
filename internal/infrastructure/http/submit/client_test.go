package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agromarket/internal/config"
	"agromarket/internal/domain/outbox"
)

func testOrder() *outbox.QueuedOrder {
	return &outbox.QueuedOrder{
		LocalID:       1,
		Items:         []outbox.Item{{ProductID: "p1", Quantity: 2}},
		TotalAmount:   5000,
		CustomerName:  "Awa",
		CustomerPhone: "70000000",
		CreatedAt:     time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestClient_Submit_WithVoiceNote(t *testing.T) {
	voiceData := bytes.Repeat([]byte{0xAB}, 2048)

	var gotMeta map[string]any
	var gotNote []byte
	var gotNoteFilename string
	var gotNoteType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))

		require.NoError(t, json.Unmarshal([]byte(r.FormValue("data")), &gotMeta))

		file, header, err := r.FormFile("voiceNote")
		require.NoError(t, err)
		defer file.Close()

		gotNote, err = io.ReadAll(file)
		require.NoError(t, err)
		gotNoteFilename = header.Filename
		gotNoteType = header.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": "srv-1"})
	}))
	defer server.Close()

	client := NewClient(config.SubmitConfig{URL: server.URL, Timeout: 5 * time.Second})

	order := testOrder()
	order.City = "Bobo-Dioulasso"
	order.VoiceNote = &outbox.VoiceNote{Data: voiceData, MIME: "audio/webm"}

	err := client.Submit(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, float64(5000), gotMeta["totalAmount"])
	customer := gotMeta["customer"].(map[string]any)
	assert.Equal(t, "Awa", customer["name"])
	assert.Equal(t, "70000000", customer["phone"])
	assert.Equal(t, "Bobo-Dioulasso", customer["city"])
	items := gotMeta["items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "p1", first["id"])
	assert.Equal(t, float64(2), first["qty"])
	assert.Equal(t, "2026-03-14T10:30:00Z", gotMeta["createdAt"])

	assert.Len(t, gotNote, 2048)
	assert.Equal(t, "audio/webm", gotNoteType)
	assert.Regexp(t, regexp.MustCompile(`^voice_1_\d+\.webm$`), gotNoteFilename)
}

func TestClient_Submit_WithoutVoiceNote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.NotEmpty(t, r.FormValue("data"))
		_, _, err := r.FormFile("voiceNote")
		assert.Error(t, err, "voiceNote part should be absent")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "srv-2"})
	}))
	defer server.Close()

	client := NewClient(config.SubmitConfig{URL: server.URL, Timeout: 5 * time.Second})

	err := client.Submit(context.Background(), testOrder())
	require.NoError(t, err)
}

func TestClient_Submit_DeliveryBlock(t *testing.T) {
	var gotMeta map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("data")), &gotMeta))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	client := NewClient(config.SubmitConfig{URL: server.URL, Timeout: 5 * time.Second})

	lat, lng := 12.3714, -1.5197
	order := testOrder()
	order.DeliveryLat = &lat
	order.DeliveryLng = &lng
	order.DeliveryDescription = "red gate near the market"

	require.NoError(t, client.Submit(context.Background(), order))

	delivery := gotMeta["delivery"].(map[string]any)
	assert.InDelta(t, 12.3714, delivery["lat"].(float64), 1e-9)
	assert.InDelta(t, -1.5197, delivery["lng"].(float64), 1e-9)
	assert.Equal(t, "red gate near the market", delivery["description"])
}

func TestClient_Submit_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(config.SubmitConfig{URL: server.URL, Timeout: 5 * time.Second})

	err := client.Submit(context.Background(), testOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

// A 2xx whose body is not JSON does not count as acceptance.
func TestClient_Submit_MalformedResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>proxy error</html>"))
	}))
	defer server.Close()

	client := NewClient(config.SubmitConfig{URL: server.URL, Timeout: 5 * time.Second})

	err := client.Submit(context.Background(), testOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestClient_Submit_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from now on

	client := NewClient(config.SubmitConfig{URL: server.URL, Timeout: time.Second})

	err := client.Submit(context.Background(), testOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call endpoint")
}

func TestClient_Submit_EmptyURL(t *testing.T) {
	client := NewClient(config.SubmitConfig{Timeout: time.Second})
	err := client.Submit(context.Background(), testOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint url is empty")
}

func TestVoiceNoteFilename(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	tests := []struct {
		mime string
		want string
	}{
		{"audio/webm", "voice_7_1700000000000.webm"},
		{"audio/webm;codecs=opus", "voice_7_1700000000000.webm"},
		{"audio/ogg", "voice_7_1700000000000.ogg"},
		{"audio/mpeg", "voice_7_1700000000000.mp3"},
		{"audio/mp4", "voice_7_1700000000000.m4a"},
		{"audio/wav", "voice_7_1700000000000.wav"},
		{"application/octet-stream", "voice_7_1700000000000.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, VoiceNoteFilename(7, tt.mime, now))
		})
	}
}
