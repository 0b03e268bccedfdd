package models

import "time"

type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	OwnerID     int64     `json:"owner_id"`
	RequestID   int64     `json:"request_id,omitempty"` // 0 means the item fulfills no request
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemPatch carries optional fields for a partial update.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// ItemView is an item as rendered for a particular viewer.
// LastBooking and NextBooking are derived from the item's booking set at
// read time and populated only when the viewer owns the item.
type ItemView struct {
	Item
	LastBooking *Booking  `json:"last_booking,omitempty"`
	NextBooking *Booking  `json:"next_booking,omitempty"`
	Comments    []Comment `json:"comments"`
}
