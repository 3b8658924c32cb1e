package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TontineStatus is the lifecycle state of a tontine.
type TontineStatus string

const (
	StatusPending   TontineStatus = "pending"
	StatusActive    TontineStatus = "active"
	StatusSuspended TontineStatus = "suspended"
	StatusCompleted TontineStatus = "completed"
)

// ContributionKind is what members contribute each cycle.
type ContributionKind string

const (
	KindMoney     ContributionKind = "money"
	KindGoodsPack ContributionKind = "goods-pack"
	KindSavings   ContributionKind = "savings"
)

// Cadence is the contribution frequency.
type Cadence string

const (
	CadenceWeekly   Cadence = "weekly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceMonthly  Cadence = "monthly"
)

// Tontine represents a rotating-savings circle. The rotationOrder array
// is the authoritative collection order; participant positions are
// derived from it by index.
type Tontine struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Kind             ContributionKind   `bson:"kind" json:"kind"`
	Amount           int64              `bson:"amount" json:"amount"`
	Cadence          Cadence            `bson:"cadence" json:"cadence"`
	MaxMembers       int                `bson:"maxMembers,omitempty" json:"maxMembers,omitempty"`
	UnlimitedMembers bool               `bson:"unlimitedMembers" json:"unlimitedMembers"`
	CollectionDay    string             `bson:"collectionDay,omitempty" json:"collectionDay,omitempty"`
	StartDate        time.Time          `bson:"startDate" json:"startDate"`
	EndDate          *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	WindowStart      *time.Time         `bson:"windowStart,omitempty" json:"windowStart,omitempty"`
	WindowEnd        *time.Time         `bson:"windowEnd,omitempty" json:"windowEnd,omitempty"`
	RotationOrder    []string           `bson:"rotationOrder" json:"rotationOrder"`
	Status           TontineStatus      `bson:"status" json:"status"`
	InitiatorID      string             `bson:"initiatorId" json:"initiatorId"`
	InviteCode       string             `bson:"inviteCode" json:"inviteCode"`
	InviteLink       string             `bson:"inviteLink" json:"inviteLink"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
