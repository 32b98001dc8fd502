package outbox

import "time"

// Item is one order line as collected at checkout. Duplicate product IDs
// are kept as-is; merging is the checkout UI's job.
type Item struct {
	ProductID string  `json:"id"`
	Quantity  int     `json:"qty"`
	Price     float64 `json:"price,omitempty"`
}

// VoiceNote is an opaque audio attachment recorded at checkout.
type VoiceNote struct {
	Data []byte
	MIME string
}

// QueuedOrder is one record in the offline outbox. Everything except
// Synced is immutable after creation. LocalID is assigned by the store
// on insert and never sent to the server.
type QueuedOrder struct {
	LocalID             int64
	Items               []Item
	TotalAmount         float64
	CustomerName        string
	CustomerPhone       string
	City                string
	DeliveryLat         *float64
	DeliveryLng         *float64
	DeliveryDescription string
	VoiceNote           *VoiceNote
	CreatedAt           time.Time
	Synced              bool
}

// NewOrderInput carries checkout-collected data into the outbox. Business
// rules (minimum order amount, stock) are validated upstream; only
// structural invariants are checked here.
type NewOrderInput struct {
	Items               []Item
	TotalAmount         float64
	CustomerName        string
	CustomerPhone       string
	City                string
	DeliveryLat         *float64
	DeliveryLng         *float64
	DeliveryDescription string
	VoiceNote           *VoiceNote
}

// NewQueuedOrder builds an unsynced outbox record from checkout input,
// stamping CreatedAt with the current UTC time.
func NewQueuedOrder(in NewOrderInput) (*QueuedOrder, error) {
	if in.CustomerName == "" || in.CustomerPhone == "" {
		return nil, ErrMissingCustomer
	}
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range in.Items {
		if item.ProductID == "" {
			return nil, ErrNoItems
		}
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	if in.TotalAmount < 0 {
		return nil, ErrInvalidAmount
	}
	// Coordinates come as a pair or not at all.
	if (in.DeliveryLat == nil) != (in.DeliveryLng == nil) {
		return nil, ErrPartialCoordinates
	}
	if in.VoiceNote != nil && len(in.VoiceNote.Data) == 0 {
		return nil, ErrEmptyVoiceNote
	}

	return &QueuedOrder{
		Items:               in.Items,
		TotalAmount:         in.TotalAmount,
		CustomerName:        in.CustomerName,
		CustomerPhone:       in.CustomerPhone,
		City:                in.City,
		DeliveryLat:         in.DeliveryLat,
		DeliveryLng:         in.DeliveryLng,
		DeliveryDescription: in.DeliveryDescription,
		VoiceNote:           in.VoiceNote,
		CreatedAt:           time.Now().UTC(),
		Synced:              false,
	}, nil
}
