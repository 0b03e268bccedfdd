package models

import "time"

// Request is a public want-ad for an item. Items created against it are
// attached at read time.
type Request struct {
	ID          int64     `json:"id"`
	RequestorID int64     `json:"requestor_id"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	Items       []Item    `json:"items"`
}
