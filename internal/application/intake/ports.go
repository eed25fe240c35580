package intake

import (
	"context"
	"time"
)

/*
EventPublisher
--------------
Best-effort lifecycle events for downstream consumers (CRM sync, follow-up
campaigns). Publish failures are logged and never fail the workflow.
*/
type RegistrationCreatedEvent struct {
	TraceID   string    `json:"trace_id"`
	ChatID    int64     `json:"chat_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type ProvisioningFinishedEvent struct {
	TraceID    string    `json:"trace_id"`
	ChatID     int64     `json:"chat_id"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

type EventPublisher interface {
	PublishRegistrationCreated(ctx context.Context, evt RegistrationCreatedEvent) error
	PublishProvisioningFinished(ctx context.Context, evt ProvisioningFinishedEvent) error
}

// NoopPublisher is wired when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRegistrationCreated(context.Context, RegistrationCreatedEvent) error {
	return nil
}

func (NoopPublisher) PublishProvisioningFinished(context.Context, ProvisioningFinishedEvent) error {
	return nil
}
