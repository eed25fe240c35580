package audit

import (
	"context"

	"github.com/rs/zerolog"

	pkgctx "github.com/asfmarkets/intake-bot/internal/pkg/context"
)

// Logger provides structured audit logging for registration lifecycle events.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// RegistrationCreated logs the pending ledger row written after intake.
func (l *Logger) RegistrationCreated(ctx context.Context, chatID int64, email string) {
	l.log.Info().
		Str("action", "registration_created").
		Int64("chat_id", chatID).
		Str("email", email).
		Str("trace_id", pkgctx.GetTraceID(ctx)).
		Msg("Registration recorded as pending")
}

// DuplicateRejected logs an intake bounced back to email collection.
func (l *Logger) DuplicateRejected(ctx context.Context, chatID int64, email string) {
	l.log.Info().
		Str("action", "duplicate_rejected").
		Int64("chat_id", chatID).
		Str("email", email).
		Str("trace_id", pkgctx.GetTraceID(ctx)).
		Msg("Email already registered, re-prompting")
}

// ProvisioningOutcome logs the classified result of one remote phase.
func (l *Logger) ProvisioningOutcome(ctx context.Context, chatID int64, phase, status, note string) {
	l.log.Info().
		Str("action", "provisioning_outcome").
		Int64("chat_id", chatID).
		Str("phase", phase).
		Str("status", status).
		Str("note", note).
		Str("trace_id", pkgctx.GetTraceID(ctx)).
		Msg("Provisioning phase finished")
}

// LedgerUpdateMiss logs a status update that matched no ledger row. The write
// is lost; this is surfaced instead of swallowed because it marks a
// correctness gap between the intake and the ledger.
func (l *Logger) LedgerUpdateMiss(ctx context.Context, chatID int64, email string, status string) {
	l.log.Warn().
		Str("action", "ledger_update_miss").
		Int64("chat_id", chatID).
		Str("email", email).
		Str("status", status).
		Str("trace_id", pkgctx.GetTraceID(ctx)).
		Msg("No ledger row matched status update")
}

// BroadcastFinished logs the fan-out summary.
func (l *Logger) BroadcastFinished(ctx context.Context, ownerID int64, sent, total int) {
	l.log.Info().
		Str("action", "broadcast_finished").
		Int64("owner_id", ownerID).
		Int("sent", sent).
		Int("total", total).
		Msg("Broadcast completed")
}
