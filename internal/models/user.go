package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPatch carries optional fields for a partial update.
// Nil fields keep the stored value.
type UserPatch struct {
	Email *string `json:"email"`
	Name  *string `json:"name"`
}
