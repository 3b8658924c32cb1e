// Package events provides the change-notification channel layered on
// top of the core: after a successful mutation the service publishes a
// domain event, and transports (live UI feeds, reminder workers) can
// subscribe without the core knowing about them.
package events

import "context"

// Subjects published by the services.
const (
	SubjectTontineCreated   = "tontines.created"
	SubjectTontineStatus    = "tontines.status"
	SubjectTontineReordered = "tontines.reordered"
	SubjectParticipantJoin  = "tontines.joined"
	SubjectPaymentSubmitted = "payments.submitted"
	SubjectPaymentValidated = "payments.validated"
)

// Publisher sends a serialized domain event to a subject. Publishing is
// best-effort; failures are logged by callers, never surfaced to the
// actor.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// Noop is a Publisher that discards everything. Used when no broker is
// configured and in tests.
type Noop struct{}

func (Noop) Publish(ctx context.Context, subject string, data []byte) error { return nil }

func (Noop) Close() error { return nil }
