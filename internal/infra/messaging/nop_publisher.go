package messaging

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"

	"go.uber.org/zap"
)

// ブローカー未設定時。ログに残すだけ。
type NopPublisher struct {
	log *zap.Logger
}

func NewNopPublisher(log *zap.Logger) *NopPublisher {
	return &NopPublisher{log: log}
}

func (p *NopPublisher) Publish(_ context.Context, ev model.DomainEvent) error {
	p.log.Debug("event dropped (no broker)", zap.String("type", string(ev.Type)), zap.String("key", ev.Key))
	return nil
}

func (p *NopPublisher) Close() error { return nil }
