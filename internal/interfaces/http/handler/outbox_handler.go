package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appcart "agromarket/internal/application/cart"
	appoutbox "agromarket/internal/application/outbox"
	appsync "agromarket/internal/application/sync"
	domain "agromarket/internal/domain/outbox"
	"agromarket/pkg/logger"
)

// maxVoiceNoteBytes caps the voice note accepted at enqueue time. The
// checkout recorder produces clips of a few hundred KB; anything near
// this limit is a client bug, not a long recording.
const maxVoiceNoteBytes = 5 << 20

// OutboxHandler is the local trigger surface for the offline order
// queue: enqueue, drain, status and purge.
type OutboxHandler struct {
	outboxSvc *appoutbox.Service
	syncSvc   *appsync.Service
	cartSvc   *appcart.Service
	log       logger.Logger
}

func NewOutboxHandler(outboxSvc *appoutbox.Service, syncSvc *appsync.Service, cartSvc *appcart.Service, log logger.Logger) *OutboxHandler {
	return &OutboxHandler{outboxSvc: outboxSvc, syncSvc: syncSvc, cartSvc: cartSvc, log: log}
}

// offlineOrderRequest mirrors the submission endpoint's `data` part, so
// the checkout UI speaks one wire shape whether it reaches the server
// directly or lands in the local queue.
type offlineOrderRequest struct {
	Items []struct {
		ID    string  `json:"id"`
		Qty   int     `json:"qty"`
		Price float64 `json:"price"`
	} `json:"items"`
	TotalAmount float64 `json:"totalAmount"`
	Customer    struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		City  string `json:"city"`
	} `json:"customer"`
	Delivery struct {
		Lat         *float64 `json:"lat"`
		Lng         *float64 `json:"lng"`
		Description string   `json:"description"`
	} `json:"delivery"`
}

// CreateOfflineOrder handles POST /api/offline-orders: a multipart form
// with a JSON `data` field and an optional `voiceNote` file. On success
// the cart is cleared, since the order was created from it.
func (h *OutboxHandler) CreateOfflineOrder(c *gin.Context) {
	data := c.PostForm("data")
	if data == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing data field"})
		return
	}

	var req offlineOrderRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data field: " + err.Error()})
		return
	}

	in := domain.NewOrderInput{
		TotalAmount:         req.TotalAmount,
		CustomerName:        req.Customer.Name,
		CustomerPhone:       req.Customer.Phone,
		City:                req.Customer.City,
		DeliveryLat:         req.Delivery.Lat,
		DeliveryLng:         req.Delivery.Lng,
		DeliveryDescription: req.Delivery.Description,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, domain.Item{
			ProductID: item.ID,
			Quantity:  item.Qty,
			Price:     item.Price,
		})
	}

	voiceNote, err := readVoiceNote(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in.VoiceNote = voiceNote

	localID, err := h.outboxSvc.Enqueue(c.Request.Context(), in)
	if err != nil {
		status := http.StatusInternalServerError
		if isValidationError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	// The order now exists durably; a cart-clear failure must not undo
	// that, so it is logged and swallowed.
	if err := h.cartSvc.Clear(c.Request.Context()); err != nil {
		h.log.Warn("cart clear after offline checkout failed", logger.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{
		"local_id": localID,
		"message":  "order saved locally, will sync when online",
	})
}

// RunSync handles POST /api/sync: one drain pass over the outbox.
func (h *OutboxHandler) RunSync(c *gin.Context) {
	result, err := h.syncSvc.Drain(c.Request.Context())
	if err != nil {
		if errors.Is(err, appsync.ErrDrainInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncStatus handles GET /api/sync/status.
func (h *OutboxHandler) SyncStatus(c *gin.Context) {
	pending, err := h.syncSvc.PendingCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pending":           pending,
		"drain_in_progress": h.syncSvc.InProgress(),
	})
}

// PurgeSynced handles DELETE /api/offline-orders/synced?before=RFC3339.
// Without a cutoff it purges every already-delivered record.
func (h *OutboxHandler) PurgeSynced(c *gin.Context) {
	before := time.Now().UTC()
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before timestamp"})
			return
		}
		before = parsed
	}

	purged, err := h.outboxSvc.PurgeSynced(c.Request.Context(), before)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purged": purged})
}

func readVoiceNote(c *gin.Context) (*domain.VoiceNote, error) {
	fileHeader, err := c.FormFile("voiceNote")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.New("invalid voiceNote part")
	}
	if fileHeader.Size > maxVoiceNoteBytes {
		return nil, errors.New("voice note too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("cannot read voiceNote part")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxVoiceNoteBytes+1))
	if err != nil {
		return nil, errors.New("cannot read voiceNote part")
	}
	if len(data) > maxVoiceNoteBytes {
		return nil, errors.New("voice note too large")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &domain.VoiceNote{Data: data, MIME: mimeType}, nil
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrMissingCustomer) ||
		errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrPartialCoordinates) ||
		errors.Is(err, domain.ErrEmptyVoiceNote)
}
