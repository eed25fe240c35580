package intake_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/asfmarkets/intake-bot/internal/application/intake"
	"github.com/asfmarkets/intake-bot/internal/audit"
	"github.com/asfmarkets/intake-bot/internal/domain"
	"github.com/asfmarkets/intake-bot/internal/infrastructure/memory"
	"github.com/asfmarkets/intake-bot/internal/metrics"
)

type mockProvisioner struct{ mock.Mock }

func (m *mockProvisioner) CreateDemo(ctx context.Context, name, email, password, phone, country string) domain.DemoResult {
	args := m.Called(ctx, name, email, password, phone, country)
	return args.Get(0).(domain.DemoResult)
}

func (m *mockProvisioner) CreateMT4(ctx context.Context, email, password string) domain.MT4Result {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.MT4Result)
}

// fakeMessenger records everything sent, per chat. Chats listed in fail
// refuse delivery.
type fakeMessenger struct {
	mu     sync.Mutex
	texts  map[int64][]string
	htmls  map[int64][]string
	photos map[int64][]string
	fail   map[int64]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		texts:  make(map[int64][]string),
		htmls:  make(map[int64][]string),
		photos: make(map[int64][]string),
		fail:   make(map[int64]bool),
	}
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[chatID] {
		return context.DeadlineExceeded
	}
	f.texts[chatID] = append(f.texts[chatID], text)
	return nil
}

func (f *fakeMessenger) SendHTML(ctx context.Context, chatID int64, html string, button *domain.LinkButton) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[chatID] {
		return context.DeadlineExceeded
	}
	f.htmls[chatID] = append(f.htmls[chatID], html)
	return nil
}

func (f *fakeMessenger) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[chatID] {
		return context.DeadlineExceeded
	}
	f.photos[chatID] = append(f.photos[chatID], photoURL)
	return nil
}

func (f *fakeMessenger) lastText(chatID int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.texts[chatID]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func (f *fakeMessenger) textCount(chatID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts[chatID])
}

func (f *fakeMessenger) containsText(chatID int64, substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.texts[chatID] {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

type fixture struct {
	svc       *intake.Service
	ledger    *memory.Ledger
	sessions  *memory.SessionStore
	prov      *mockProvisioner
	messenger *fakeMessenger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ledger:    memory.NewLedger(),
		sessions:  memory.NewSessionStore(),
		prov:      &mockProvisioner{},
		messenger: newFakeMessenger(),
	}
	f.svc = intake.New(
		f.ledger,
		f.sessions,
		f.prov,
		f.messenger,
		nil,
		audit.New(zerolog.Nop()),
		metrics.New(prometheus.NewRegistry()),
		zerolog.Nop(),
		intake.Options{
			OwnerID:        99,
			BroadcastDelay: time.Millisecond,
		},
	)
	return f
}

// runIntake walks a conversation up to (and including) the phone message.
func (f *fixture) runIntake(ctx context.Context, chatID int64, name, email, phone string) {
	f.svc.Start(ctx, chatID)
	f.svc.HandleText(ctx, chatID, name)
	f.svc.HandleText(ctx, chatID, email)
	f.svc.HandleText(ctx, chatID, phone)
}
