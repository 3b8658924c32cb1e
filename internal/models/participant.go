package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentState is a participant's current-cycle contribution state.
type PaymentState string

const (
	PaymentUnpaid    PaymentState = "unpaid"
	PaymentPending   PaymentState = "pending"
	PaymentConfirmed PaymentState = "confirmed"
)

// Participant represents a user's membership in one tontine. A user id
// appears at most once per tontine. Position is a cache of the index in
// the tontine's rotationOrder and is recomputed on read.
type Participant struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TontineID     primitive.ObjectID `bson:"tontineId" json:"tontineId"`
	UserID        string             `bson:"userId" json:"userId"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PaymentStatus PaymentState       `bson:"paymentStatus" json:"paymentStatus"`
	LastPaymentAt *time.Time         `bson:"lastPaymentAt,omitempty" json:"lastPaymentAt,omitempty"`
	Position      int                `bson:"position" json:"position"`
	JoinedAt      time.Time          `bson:"joinedAt" json:"joinedAt"`
}
