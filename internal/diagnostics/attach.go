package diagnostics

import (
	"github.com/Iron-Ham/webdiag/internal/event"
	"github.com/Iron-Ham/webdiag/internal/hostenv"
)

// registerFunc performs the registration of key once the guard has decided
// it is needed.
type registerFunc func(b *Builder, key Key) error

// attach runs inner for key at most once per ledger. Ineligible hosts and
// keys already in the ledger return early. When inner fails, everything it
// appended is rolled back and the ledger is left unchanged.
func attach(b *Builder, key Key, host hostenv.Context, inner registerFunc) error {
	if !Eligible(host) {
		b.report(key, event.OutcomeIneligible, nil)
		return nil
	}

	tok := key.token()
	if b.ledger.Has(tok) {
		b.report(key, event.OutcomeDuplicate, nil)
		return nil
	}

	services, filters := b.services.Checkpoint(), b.filters.Checkpoint()
	if err := inner(b, key); err != nil {
		b.services.Rollback(services)
		b.filters.Rollback(filters)
		b.report(key, event.OutcomeFailed, err)
		return err
	}

	b.ledger.Record(tok)
	b.keys[tok] = key
	b.report(key, event.OutcomeAttached, nil)
	return nil
}

func (b *Builder) report(key Key, outcome event.Outcome, err error) {
	log := b.logger.WithKey(key.String())
	switch outcome {
	case event.OutcomeFailed:
		log.Warn("diagnostics registration failed", "error", err)
	case event.OutcomeAttached:
		log.Info("diagnostics attached", "provider", key.ProviderName())
	default:
		log.Debug("diagnostics attach skipped", "outcome", string(outcome))
	}
	b.bus.Publish(event.NewRegistrationEvent(string(ProviderKind), key.String(), outcome, err))
}
