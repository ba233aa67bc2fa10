package types

import "time"

const (
	UserStatusInactive int16 = 0
	UserStatusActive   int16 = 1
)

// User is the persisted account record.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never rendered or logged.
	Status       int16      `json:"status"`
	CreatedBy    *int64     `json:"created_by,omitempty"`
	UpdatedBy    *int64     `json:"updated_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// IsActive reports whether the record can authenticate and be listed.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive && u.DeletedAt == nil
}

// Identity is the payload kept in a session.
type Identity struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
}
