package messaging

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// LogPublisher writes events to the logger instead of a broker.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	p.logger.Info("event", zap.String("key", key), zap.ByteString("payload", b))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
