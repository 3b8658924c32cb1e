package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus is the validation state of a contribution claim.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusRejected  PaymentStatus = "rejected"
)

// Payment represents a single contribution claim. Records are immutable
// once created except for the status/validator/validatedAt triple, which
// transitions exactly once from pending to a terminal state.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TontineID     primitive.ObjectID `bson:"tontineId" json:"tontineId"`
	ParticipantID string             `bson:"participantId" json:"participantId"`
	Amount        int64              `bson:"amount" json:"amount"`
	Period        string             `bson:"period" json:"period"`
	ProofRef      string             `bson:"proofRef,omitempty" json:"proofRef,omitempty"`
	Status        PaymentStatus      `bson:"status" json:"status"`
	ValidatorID   string             `bson:"validatorId,omitempty" json:"validatorId,omitempty"`
	ValidatedAt   *time.Time         `bson:"validatedAt,omitempty" json:"validatedAt,omitempty"`
	SubmittedAt   time.Time          `bson:"submittedAt" json:"submittedAt"`
}
