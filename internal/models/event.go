package models

import "time"

// Event is the payload published on the change-notification channel
// after a successful mutation.
type Event struct {
	Type      string    `json:"type"`
	TontineID string    `json:"tontineId"`
	ActorID   string    `json:"actorId,omitempty"`
	PaymentID string    `json:"paymentId,omitempty"`
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}
