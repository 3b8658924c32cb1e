package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSPublisher implements Publisher over a core NATS connection.
type NATSPublisher struct {
	nc *nats.Conn
}

// ConnectNATS establishes a connection to the broker at url.
func ConnectNATS(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	slog.Info("nats connected", "url", url)
	return &NATSPublisher{nc: nc}, nil
}

// Publish sends data to the given subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Close drains and shuts down the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
