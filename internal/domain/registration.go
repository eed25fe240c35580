package domain

import (
	"context"
	"time"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusCreated      Status = "created"
	StatusMaybeCreated Status = "maybe_created"
	StatusError        Status = "error"
	StatusMT4OK        Status = "mt4_ok"
	StatusMT4Error     Status = "mt4_error"
)

// Registration is one row of the ledger: a single signup attempt and its
// status history. Email is the uniqueness key (case-insensitive); Notes is an
// append-only " | "-joined trail of status annotations.
type Registration struct {
	ID        int64
	CreatedAt time.Time
	ChatID    int64
	Name      string
	Email     string
	Password  string
	Status    Status
	Notes     string
}

// Ledger is the persistence port for registrations. The duplicate check and
// the insert are deliberately separate calls: the source system has no
// atomicity between them and concurrent submissions of the same email can
// race past the check. That race is documented, not fixed here.
type Ledger interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	InsertPending(ctx context.Context, reg Registration) error
	// UpdateStatus rewrites the status of the latest row matching
	// (chatID, email) and appends note to its history. Returns
	// ErrRegistrationNotFound when no row matches.
	UpdateStatus(ctx context.Context, chatID int64, email string, status Status, note string) error
	List(ctx context.Context) ([]Registration, error)
}

type ConversationState string

const (
	StateAwaitingName  ConversationState = "awaiting_name"
	StateAwaitingEmail ConversationState = "awaiting_email"
	StateAwaitingPhone ConversationState = "awaiting_phone"
)

// Session holds the transient per-conversation intake data. It lives only for
// the duration of an intake and carries no durability requirement.
type Session struct {
	State ConversationState `json:"state"`
	Name  string            `json:"name,omitempty"`
	Email string            `json:"email,omitempty"`
}

// SessionStore keeps one Session per chat. Implementations are free to expire
// idle sessions; the intake restarts cleanly from /start either way.
type SessionStore interface {
	Get(ctx context.Context, chatID int64) (Session, error)
	Put(ctx context.Context, chatID int64, s Session) error
	Delete(ctx context.Context, chatID int64) error
}
