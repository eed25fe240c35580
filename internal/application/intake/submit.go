package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/asfmarkets/intake-bot/internal/domain"
	pkgctx "github.com/asfmarkets/intake-bot/internal/pkg/context"
)

// submit runs the full provisioning sequence for a completed intake:
// duplicate check, pending insert, create-demo, classification, create-mt4,
// ledger updates and user notifications after each phase. It runs
// synchronously in the conversation's goroutine; the conversation is
// terminal afterwards regardless of outcome.
func (s *Service) submit(ctx context.Context, chatID int64, sess domain.Session, phone string) {
	ctx = pkgctx.WithTraceID(ctx, uuid.NewString())

	name, email := sess.Name, sess.Email
	password := domain.DerivePassword(name)

	exists, err := s.ledger.EmailExists(ctx, email)
	if err != nil {
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("ledger exists check failed")
		s.send(ctx, chatID, msgTempProblem)
		_ = s.sessions.Delete(ctx, chatID)
		return
	}
	if exists {
		s.audit.DuplicateRejected(ctx, chatID, email)
		sess.Email = ""
		sess.State = domain.StateAwaitingEmail
		s.saveAndPrompt(ctx, chatID, sess, msgEmailTaken)
		return
	}

	if err := s.ledger.InsertPending(ctx, domain.Registration{
		ChatID:   chatID,
		Name:     name,
		Email:    email,
		Password: password,
		Notes:    "phone:" + phone,
	}); err != nil {
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("ledger insert failed")
		s.send(ctx, chatID, msgTempProblem)
		_ = s.sessions.Delete(ctx, chatID)
		return
	}
	s.audit.RegistrationCreated(ctx, chatID, email)
	if s.metrics != nil {
		s.metrics.RegistrationsCreated.Inc()
	}
	s.publish(func() error {
		return s.publisher.PublishRegistrationCreated(ctx, RegistrationCreatedEvent{
			TraceID:   pkgctx.GetTraceID(ctx),
			ChatID:    chatID,
			Name:      name,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		})
	})

	// Intake data is consumed; the conversation ends with this submission.
	_ = s.sessions.Delete(ctx, chatID)

	s.send(ctx, chatID, fmt.Sprintf(msgCreatingDemo, name))

	demo := s.prov.CreateDemo(ctx, name, email, password, phone, s.opts.Country)

	var finalStatus domain.Status
	var finalNote string

	switch ClassifyDemo(demo) {
	case DemoFailed:
		finalStatus, finalNote = domain.StatusError, demoFailureNote(demo)
		s.recordOutcome(ctx, chatID, email, "demo", finalStatus, finalNote)
		s.send(ctx, chatID, msgDemoFailed)
		s.sendPhoto(ctx, chatID, demo.LastScreenshot(), captionOutcome)
		s.finish(ctx, chatID, email, finalStatus, finalNote)
		return

	case DemoCreated:
		s.recordOutcome(ctx, chatID, email, "demo", domain.StatusCreated, demo.Note)
		s.send(ctx, chatID, msgDemoCreated)

	case DemoAmbiguous:
		// Optimistic continuation: nothing confirmed the account, but an
		// MT4 attempt against a missing account fails harmlessly.
		s.recordOutcome(ctx, chatID, email, "demo", domain.StatusMaybeCreated, demo.Note)
		s.send(ctx, chatID, msgDemoMaybe)
	}
	s.sendPhoto(ctx, chatID, demo.LastScreenshot(), captionOutcome)

	mt4 := s.prov.CreateMT4(ctx, email, password)
	if ClassifyMT4(mt4) {
		finalStatus, finalNote = domain.StatusMT4OK, "mt4:"+mt4.Login
		s.recordOutcome(ctx, chatID, email, "mt4", finalStatus, finalNote)
		text := fmt.Sprintf(mt4SuccessHTML, mt4.Login, mt4.Server, password)
		if err := s.messenger.SendHTML(ctx, chatID, text, &domain.LinkButton{
			Label: supportButtonLabel,
			URL:   s.opts.SupportURL,
		}); err != nil {
			s.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send credentials failed")
		}
	} else {
		finalStatus, finalNote = domain.StatusMT4Error, mt4FailureNote(mt4)
		s.recordOutcome(ctx, chatID, email, "mt4", finalStatus, finalNote)
		s.send(ctx, chatID, msgMT4Failed)
	}
	s.sendPhoto(ctx, chatID, mt4.LastScreenshot(), captionMT4)
	s.finish(ctx, chatID, email, finalStatus, finalNote)
}

// recordOutcome updates the ledger and the audit trail for one phase. A
// ledger miss is logged, not raised: the user-visible flow must not stall on
// bookkeeping.
func (s *Service) recordOutcome(ctx context.Context, chatID int64, email, phase string, status domain.Status, note string) {
	if s.metrics != nil {
		s.metrics.ProvisioningOutcomes.WithLabelValues(phase, string(status)).Inc()
	}
	s.audit.ProvisioningOutcome(ctx, chatID, phase, string(status), note)

	err := s.ledger.UpdateStatus(ctx, chatID, email, status, note)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRegistrationNotFound):
		s.audit.LedgerUpdateMiss(ctx, chatID, email, string(status))
	default:
		s.log.Error().Err(err).Int64("chat_id", chatID).Str("status", string(status)).Msg("ledger update failed")
	}
}

func (s *Service) finish(ctx context.Context, chatID int64, email string, status domain.Status, note string) {
	s.publish(func() error {
		return s.publisher.PublishProvisioningFinished(ctx, ProvisioningFinishedEvent{
			TraceID:    pkgctx.GetTraceID(ctx),
			ChatID:     chatID,
			Email:      email,
			Status:     string(status),
			Note:       note,
			FinishedAt: time.Now().UTC(),
		})
	})
}

func (s *Service) publish(fn func() error) {
	if err := fn(); err != nil {
		s.log.Warn().Err(err).Msg("event publish failed")
	}
}
