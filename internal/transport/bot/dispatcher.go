package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/asfmarkets/intake-bot/internal/application/intake"
	"github.com/asfmarkets/intake-bot/internal/infrastructure/telegram"
)

const (
	// pollBackoff is how long the loop sleeps after a failed getUpdates call.
	pollBackoff = 3 * time.Second
	// queueDepth bounds how many unprocessed messages a single chat may
	// pile up before further ones are dropped.
	queueDepth = 16
)

// Dispatcher runs the long-poll loop and routes updates into the intake
// service. Each chat gets its own worker goroutine with an ordered queue,
// so a user's messages are applied in the order they arrived while a slow
// provisioning call in one chat never blocks another chat.
type Dispatcher struct {
	tg  *telegram.Client
	svc *intake.Service
	log zerolog.Logger

	queues map[int64]chan telegram.Update
	mu     sync.Mutex
	wg     sync.WaitGroup
}

func NewDispatcher(tg *telegram.Client, svc *intake.Service, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		tg:     tg,
		svc:    svc,
		log:    log,
		queues: make(map[int64]chan telegram.Update),
	}
}

// Run polls until ctx is canceled, then waits for in-flight handlers.
// An in-progress provisioning call is not interrupted mid-flight; shutdown
// takes effect between conversation turns.
func (d *Dispatcher) Run(ctx context.Context) error {
	var offset int64
	for ctx.Err() == nil {
		updates, err := d.tg.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			d.log.Warn().Err(err).Msg("getUpdates failed, backing off")
			select {
			case <-ctx.Done():
			case <-time.After(pollBackoff):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			d.dispatch(ctx, u)
		}
	}

	d.mu.Lock()
	for _, q := range d.queues {
		close(q)
	}
	d.queues = nil
	d.mu.Unlock()

	d.wg.Wait()
	return ctx.Err()
}

func (d *Dispatcher) dispatch(ctx context.Context, u telegram.Update) {
	if u.Message == nil || u.Message.Chat.ID == 0 {
		return
	}
	chatID := u.Message.Chat.ID

	d.mu.Lock()
	q, ok := d.queues[chatID]
	if !ok {
		q = make(chan telegram.Update, queueDepth)
		d.queues[chatID] = q
		d.wg.Add(1)
		go d.chatWorker(ctx, chatID, q)
	}
	d.mu.Unlock()

	select {
	case q <- u:
	default:
		d.log.Warn().Int64("chat_id", chatID).Msg("chat queue full, dropping update")
	}
}

func (d *Dispatcher) chatWorker(ctx context.Context, chatID int64, q <-chan telegram.Update) {
	defer d.wg.Done()
	for u := range q {
		d.handle(ctx, chatID, u)
	}
}

func (d *Dispatcher) handle(ctx context.Context, chatID int64, u telegram.Update) {
	text := strings.TrimSpace(u.Message.Text)
	switch {
	case text == "/start":
		d.svc.Start(ctx, chatID)
	case text == "/cancel":
		d.svc.Cancel(ctx, chatID)
	case text == "/broadcast":
		if u.Message.From != nil {
			d.svc.Broadcast(ctx, u.Message.From.ID, chatID)
		}
	case strings.HasPrefix(text, "/"):
		// Unknown commands never feed the state machine.
	case text != "":
		d.svc.HandleText(ctx, chatID, text)
	}
}
