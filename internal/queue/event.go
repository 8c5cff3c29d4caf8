// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionCreatedEvent is published when a desk session is successfully
// created, whether by guest check-in or staff booking.  It carries
// everything the SMS notification consumer needs without querying the
// primary database.
type SessionCreatedEvent struct {
	SessionID     uint64 `json:"session_id"`
	TenantID      uint64 `json:"tenant_id"`
	Reference     string `json:"reference"`
	DeskID        uint64 `json:"desk_id"`
	DeskName      string `json:"desk_name"`
	Status        string `json:"status"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	TotalCents    uint32 `json:"total_cents"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CreatedAt     string `json:"created_at"`
}
