package domain

import (
	"time"
)

type ActivityType string

const (
	ActivityMint       ActivityType = "mint"
	ActivityBuy        ActivityType = "buy"
	ActivityCartAdd    ActivityType = "cart_add"
	ActivityCartRemove ActivityType = "cart_remove"
)

type Activity struct {
	ID              uint         `json:"id"`
	AccountID       string       `json:"account_id"`
	Type            ActivityType `json:"type"`
	TokenID         string       `json:"token_id"`
	Price           string       `json:"price,omitempty"`
	TransactionHash string       `json:"transaction_hash,omitempty"`
	WalletURL       string       `json:"wallet_url,omitempty"`
	Mock            bool         `json:"mock"`
	CreatedAt       time.Time    `json:"created_at"`
}

func (a *Activity) IsValid() bool {
	if a.AccountID == "" || a.TokenID == "" {
		return false
	}

	switch a.Type {
	case ActivityMint, ActivityBuy, ActivityCartAdd, ActivityCartRemove:
		return true
	}

	return false
}

func (a *Activity) IsPending() bool {
	return a.WalletURL != "" && a.TransactionHash == ""
}

type EventType string

const (
	EventMinted      EventType = "minted"
	EventBought      EventType = "bought"
	EventCartAdded   EventType = "cart_added"
	EventCartRemoved EventType = "cart_removed"
)

// Event is pushed to websocket subscribers after a state-changing call.
type Event struct {
	Type      EventType `json:"type"`
	AccountID string    `json:"account_id"`
	TokenID   string    `json:"token_id"`
	Price     string    `json:"price,omitempty"`
	Pending   bool      `json:"pending"`
	Timestamp time.Time `json:"timestamp"`
}

var activityEvents = map[ActivityType]EventType{
	ActivityMint:       EventMinted,
	ActivityBuy:        EventBought,
	ActivityCartAdd:    EventCartAdded,
	ActivityCartRemove: EventCartRemoved,
}

// Event converts a recorded activity into the event announcing it. Pending
// is set while the wallet has not yet returned a signed transaction.
func (a *Activity) Event() Event {
	return Event{
		Type:      activityEvents[a.Type],
		AccountID: a.AccountID,
		TokenID:   a.TokenID,
		Price:     a.Price,
		Pending:   a.IsPending(),
		Timestamp: a.CreatedAt,
	}
}
