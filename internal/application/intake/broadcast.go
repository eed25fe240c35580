package intake

import (
	"context"
	"fmt"
	"time"
)

// Broadcast fans the fixed announcement out to every registered chat. Only
// the configured owner may trigger it; anyone else gets no reaction at all.
// Per-recipient failures are swallowed so one dead chat never stops the
// batch, and a short delay between sends respects the transport's rate
// limits.
func (s *Service) Broadcast(ctx context.Context, userID, chatID int64) {
	if s.opts.OwnerID == 0 || userID != s.opts.OwnerID {
		return
	}

	regs, err := s.ledger.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("ledger list failed")
		s.send(ctx, chatID, msgTempProblem)
		return
	}

	sent := 0
	for _, reg := range regs {
		if ctx.Err() != nil {
			break
		}
		if err := s.messenger.SendText(ctx, reg.ChatID, broadcastText); err != nil {
			s.log.Debug().Err(err).Int64("chat_id", reg.ChatID).Msg("broadcast delivery failed")
			continue
		}
		sent++
		if s.metrics != nil {
			s.metrics.BroadcastDeliveries.Inc()
		}
		select {
		case <-ctx.Done():
		case <-time.After(s.opts.BroadcastDelay):
		}
	}

	s.audit.BroadcastFinished(ctx, userID, sent, len(regs))
	s.send(ctx, chatID, fmt.Sprintf(msgBroadcastReport, sent))
}
