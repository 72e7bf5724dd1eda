// Package messaging forwards domain events to external brokers.
package messaging

import "context"

// Publisher delivers one serialized event to a broker.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, key string, body []byte) error
	Close() error
}
