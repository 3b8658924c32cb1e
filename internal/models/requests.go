package models

import "time"

// CreateTontineRequest is the payload for tontine creation.
type CreateTontineRequest struct {
	Name             string           `json:"name" binding:"required"`
	Description      string           `json:"description"`
	Kind             ContributionKind `json:"kind" binding:"required,oneof=money goods-pack savings"`
	Amount           int64            `json:"amount" binding:"required,gt=0"`
	Cadence          Cadence          `json:"cadence" binding:"required,oneof=weekly biweekly monthly"`
	MaxMembers       int              `json:"maxMembers" binding:"omitempty,gt=0"`
	UnlimitedMembers bool             `json:"unlimitedMembers"`
	CollectionDay    string           `json:"collectionDay"`
	StartDate        time.Time        `json:"startDate" binding:"required"`
	EndDate          *time.Time       `json:"endDate"`
	WindowStart      *time.Time       `json:"windowStart"`
	WindowEnd        *time.Time       `json:"windowEnd"`
}

// ChangeStatusRequest is the payload for a lifecycle transition.
type ChangeStatusRequest struct {
	Status TontineStatus `json:"status" binding:"required,oneof=active suspended completed"`
}

// ReorderRequest is the payload for a whole-array rotation reorder.
type ReorderRequest struct {
	Order []string `json:"order" binding:"required"`
}

// JoinRequest is the payload for joining a tontine by invitation code.
type JoinRequest struct {
	Code string `json:"code" binding:"required"`
}

// SubmitPaymentRequest is the payload for a contribution claim.
type SubmitPaymentRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Period   string `json:"period"`
	ProofRef string `json:"proofRef"`
}

// ValidatePaymentRequest is the initiator's decision on a pending claim.
type ValidatePaymentRequest struct {
	Decision string `json:"decision" binding:"required,oneof=confirm reject"`
}

// InvitationPreview is the public projection returned when resolving an
// invitation code, enough for the join page to describe the tontine.
type InvitationPreview struct {
	TontineID string           `json:"tontineId"`
	Name      string           `json:"name"`
	Kind      ContributionKind `json:"kind"`
	Amount    int64            `json:"amount"`
	Cadence   Cadence          `json:"cadence"`
	Status    TontineStatus    `json:"status"`
}
