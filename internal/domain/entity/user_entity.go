package entity

import "time"

// User is the aggregate root for the credential store.
// Password holds the bcrypt hash, never the plaintext.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}
