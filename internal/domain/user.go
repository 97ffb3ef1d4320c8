package domain

import "time"

type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionActive    SessionStatus = "active"
	SessionSignedOut SessionStatus = "signed_out"
)

// Session is one wallet sign-in. SecretKey is the function-call key created
// for it; it never leaves the server.
type Session struct {
	ID             string        `json:"id"`
	AccountID      string        `json:"account_id"`
	Balance        string        `json:"balance"`
	PublicKey      string        `json:"public_key"`
	SecretKey      string        `json:"-"`
	FullAccessKeys []string      `json:"-"`
	Status         SessionStatus `json:"status"`
	UserAgent      string        `json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (s Session) IsActive() bool {
	return s.Status == SessionActive && s.AccountID != ""
}

// User is the signed-in account as shown to clients.
type User struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
	SessionID string `json:"session_id"`
}

func (s Session) User() User {
	return User{
		AccountID: s.AccountID,
		Balance:   s.Balance,
		SessionID: s.ID,
	}
}
