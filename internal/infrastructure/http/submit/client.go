package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"agromarket/internal/config"
	"agromarket/internal/domain/outbox"
)

// Client posts queued orders to the marketplace submission endpoint as
// multipart form submissions. The endpoint is a black box: a 2xx status
// with a JSON body means the order was accepted, anything else is a
// failure and the caller keeps the record queued.
type Client struct {
	httpClient *http.Client
	cfg        config.SubmitConfig
}

func NewClient(cfg config.SubmitConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
			},
		},
	}
}

type customerBlock struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	City  string `json:"city,omitempty"`
}

type deliveryBlock struct {
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Description string   `json:"description,omitempty"`
}

type orderMetadata struct {
	Items       []outbox.Item `json:"items"`
	TotalAmount float64       `json:"totalAmount"`
	Customer    customerBlock `json:"customer"`
	Delivery    deliveryBlock `json:"delivery"`
	CreatedAt   string        `json:"createdAt"`
}

// Submit sends one queued order. The multipart body carries a `data` part
// with the JSON metadata and, when the order has a voice note, a
// `voiceNote` part whose filename combines the local id with the
// submission timestamp so repeated attempts never collide server-side.
func (c *Client) Submit(ctx context.Context, order *outbox.QueuedOrder) error {
	if c.cfg.URL == "" {
		return fmt.Errorf("submit: endpoint url is empty")
	}
	if order == nil {
		return fmt.Errorf("submit: order is nil")
	}

	meta := orderMetadata{
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		Customer: customerBlock{
			Name:  order.CustomerName,
			Phone: order.CustomerPhone,
			City:  order.City,
		},
		Delivery: deliveryBlock{
			Lat:         order.DeliveryLat,
			Lng:         order.DeliveryLng,
			Description: order.DeliveryDescription,
		},
		CreatedAt: order.CreatedAt.UTC().Format(time.RFC3339),
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("submit: encode metadata: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	dataHeader := make(textproto.MIMEHeader)
	dataHeader.Set("Content-Disposition", `form-data; name="data"`)
	dataHeader.Set("Content-Type", "application/json")
	dataPart, err := writer.CreatePart(dataHeader)
	if err != nil {
		return fmt.Errorf("submit: create data part: %w", err)
	}
	if _, err := dataPart.Write(metaJSON); err != nil {
		return fmt.Errorf("submit: write data part: %w", err)
	}

	if order.VoiceNote != nil {
		filename := VoiceNoteFilename(order.LocalID, order.VoiceNote.MIME, time.Now())
		noteHeader := make(textproto.MIMEHeader)
		noteHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="voiceNote"; filename="%s"`, filename))
		noteHeader.Set("Content-Type", order.VoiceNote.MIME)
		notePart, err := writer.CreatePart(noteHeader)
		if err != nil {
			return fmt.Errorf("submit: create voice note part: %w", err)
		}
		if _, err := notePart.Write(order.VoiceNote.Data); err != nil {
			return fmt.Errorf("submit: write voice note part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("submit: finalize body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, &body)
	if err != nil {
		return fmt.Errorf("submit: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit: call endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("submit: endpoint status %d", resp.StatusCode)
	}

	// Acceptance requires a JSON body; a 2xx with garbage is a failure.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("submit: read response: %w", err)
	}
	if !json.Valid(respBody) {
		return fmt.Errorf("submit: endpoint returned malformed response")
	}

	return nil
}

// VoiceNoteFilename synthesizes a per-submission unique attachment name:
// voice_<localId>_<epochMillis>.<ext>.
func VoiceNoteFilename(localID int64, mimeType string, now time.Time) string {
	return fmt.Sprintf("voice_%d_%d.%s", localID, now.UnixMilli(), extensionForMIME(mimeType))
}

func extensionForMIME(mimeType string) string {
	// Recorders often append codec parameters ("audio/webm;codecs=opus").
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	switch strings.TrimSpace(strings.ToLower(mimeType)) {
	case "audio/webm":
		return "webm"
	case "audio/ogg":
		return "ogg"
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/mp4", "audio/m4a":
		return "m4a"
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "audio/aac":
		return "aac"
	default:
		return "bin"
	}
}
