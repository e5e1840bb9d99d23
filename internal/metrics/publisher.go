package metrics

import (
	"context"

	"hearth/internal/services"
)

// meteredPublisher counts published ledger events by kind and outcome.
type meteredPublisher struct {
	inner   services.EventPublisher
	metrics *Metrics
}

// InstrumentPublisher wraps a publisher with the ledger event counters.
func (m *Metrics) InstrumentPublisher(inner services.EventPublisher) services.EventPublisher {
	return &meteredPublisher{inner: inner, metrics: m}
}

func (p *meteredPublisher) PublishLedgerEvent(ctx context.Context, ev services.LedgerEvent) error {
	err := p.inner.PublishLedgerEvent(ctx, ev)
	stage := "published"
	if err != nil {
		stage = "failed"
	}
	p.metrics.LedgerEventsTotal.WithLabelValues(ev.Kind, stage).Inc()
	return err
}
