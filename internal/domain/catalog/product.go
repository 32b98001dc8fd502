package catalog

import "time"

// Product is a denormalized snapshot of one catalogue entry, cached so
// the catalogue view keeps working offline. Snapshots are replaced in
// bulk after a successful online fetch and never mutated individually.
type Product struct {
	ProductID    string    `json:"product_id"`
	Region       string    `json:"region"`
	Category     string    `json:"category"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"image_url,omitempty"`
	ProducerName string    `json:"producer_name,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
