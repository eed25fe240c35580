package intake

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/asfmarkets/intake-bot/internal/audit"
	"github.com/asfmarkets/intake-bot/internal/domain"
	"github.com/asfmarkets/intake-bot/internal/metrics"
)

// Options carries the intake's tunables. Zero values fall back to the
// defaults the original deployment used.
type Options struct {
	DefaultCountryCode string
	Country            string
	OwnerID            int64
	BroadcastDelay     time.Duration
	SupportURL         string
}

func (o *Options) applyDefaults() {
	if o.DefaultCountryCode == "" {
		o.DefaultCountryCode = "+381"
	}
	if o.Country == "" {
		o.Country = "Serbia"
	}
	if o.SupportURL == "" {
		o.SupportURL = "https://t.me/aleksa_asf01"
	}
	if o.BroadcastDelay <= 0 {
		o.BroadcastDelay = 50 * time.Millisecond
	}
}

// Service drives the multi-turn intake conversation and the provisioning
// sequence it ends in. One conversation is a single logical sequence; the
// caller is responsible for not feeding a chat's messages concurrently.
type Service struct {
	ledger    domain.Ledger
	sessions  domain.SessionStore
	prov      domain.Provisioner
	messenger domain.Messenger
	publisher EventPublisher

	audit   *audit.Logger
	metrics *metrics.Metrics
	log     zerolog.Logger
	opts    Options
}

func New(
	ledger domain.Ledger,
	sessions domain.SessionStore,
	prov domain.Provisioner,
	messenger domain.Messenger,
	publisher EventPublisher,
	auditLog *audit.Logger,
	m *metrics.Metrics,
	log zerolog.Logger,
	opts Options,
) *Service {
	opts.applyDefaults()
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Service{
		ledger:    ledger,
		sessions:  sessions,
		prov:      prov,
		messenger: messenger,
		publisher: publisher,
		audit:     auditLog,
		metrics:   m,
		log:       log,
		opts:      opts,
	}
}

// Start opens (or restarts) an intake conversation for the chat.
func (s *Service) Start(ctx context.Context, chatID int64) {
	if s.metrics != nil {
		s.metrics.ConversationsStarted.Inc()
	}
	if err := s.sessions.Put(ctx, chatID, domain.Session{State: domain.StateAwaitingName}); err != nil {
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("session put failed")
		s.send(ctx, chatID, msgTempProblem)
		return
	}
	s.send(ctx, chatID, msgAskName)
}

// Cancel drops the conversation from any state, with no side effects.
func (s *Service) Cancel(ctx context.Context, chatID int64) {
	if err := s.sessions.Delete(ctx, chatID); err != nil {
		s.log.Warn().Err(err).Int64("chat_id", chatID).Msg("session delete failed")
	}
	s.send(ctx, chatID, msgCanceled)
}

// HandleText advances the state machine with the user's next message. Text
// arriving outside a conversation is ignored, matching the source behavior.
func (s *Service) HandleText(ctx context.Context, chatID int64, text string) {
	sess, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.log.Error().Err(err).Int64("chat_id", chatID).Msg("session get failed")
		}
		return
	}

	switch sess.State {
	case domain.StateAwaitingName:
		name, err := domain.ValidateName(text)
		if err != nil {
			s.send(ctx, chatID, msgNameTooShort)
			return
		}
		sess.Name = name
		sess.State = domain.StateAwaitingEmail
		s.saveAndPrompt(ctx, chatID, sess, msgAskEmail)

	case domain.StateAwaitingEmail:
		email, err := domain.ValidateEmail(text)
		if err != nil {
			s.send(ctx, chatID, msgBadEmail)
			return
		}
		sess.Email = email
		sess.State = domain.StateAwaitingPhone
		s.saveAndPrompt(ctx, chatID, sess, msgAskPhone)

	case domain.StateAwaitingPhone:
		phone := domain.NormalizePhone(text, s.opts.DefaultCountryCode)
		if len(phone) < domain.MinPhoneLen {
			s.send(ctx, chatID, msgBadPhone)
			return
		}
		s.submit(ctx, chatID, sess, phone)

	default:
		s.log.Warn().Int64("chat_id", chatID).Str("state", string(sess.State)).Msg("unknown conversation state, dropping session")
		_ = s.sessions.Delete(ctx, chatID)
	}
}

func (s *Service) saveAndPrompt(ctx context.Context, chatID int64, sess domain.Session, prompt string) {
	if err := s.sessions.Put(ctx, chatID, sess); err != nil {
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("session put failed")
		s.send(ctx, chatID, msgTempProblem)
		return
	}
	s.send(ctx, chatID, prompt)
}

// send is best-effort: a chat delivery failure never aborts the workflow.
func (s *Service) send(ctx context.Context, chatID int64, text string) {
	if err := s.messenger.SendText(ctx, chatID, text); err != nil {
		s.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send text failed")
	}
}

func (s *Service) sendPhoto(ctx context.Context, chatID int64, url, caption string) {
	if url == "" {
		return
	}
	if err := s.messenger.SendPhoto(ctx, chatID, url, caption); err != nil {
		s.log.Warn().Err(err).Int64("chat_id", chatID).Str("photo", url).Msg("send photo failed")
	}
}
