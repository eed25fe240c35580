package intake_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/asfmarkets/intake-bot/internal/domain"
)

func TestIntake_HappyPathThroughMT4(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.prov.On("CreateDemo", mock.Anything, "Marko", "marko@example.com", "Marko123#", "+381641234567", "Serbia").
		Return(domain.DemoResult{TransportOK: true, OK: true, Note: "account created"})
	f.prov.On("CreateMT4", mock.Anything, "marko@example.com", "Marko123#").
		Return(domain.MT4Result{TransportOK: true, OK: true, Login: "12345", Server: "Demo-Server01"})

	f.runIntake(ctx, 42, "Marko", "marko@example.com", "0641234567")

	f.prov.AssertExpectations(t)

	regs, err := f.ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, domain.StatusMT4OK, regs[0].Status)
	assert.Contains(t, regs[0].Notes, "phone:+381641234567")
	assert.Contains(t, regs[0].Notes, "mt4:12345")

	// Credentials go out as HTML with login and the derived password.
	require.Len(t, f.messenger.htmls[42], 1)
	assert.Contains(t, f.messenger.htmls[42][0], "12345")
	assert.Contains(t, f.messenger.htmls[42][0], "Marko123#")

	// Conversation is terminal: another message is ignored.
	before := f.messenger.textCount(42)
	f.svc.HandleText(ctx, 42, "hello?")
	assert.Equal(t, before, f.messenger.textCount(42))
}

func TestIntake_RepromptsOnInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Start(ctx, 42)

	f.svc.HandleText(ctx, 42, "M")
	assert.Contains(t, f.messenger.lastText(42), "Prekratko ime")

	f.svc.HandleText(ctx, 42, "Marko")
	f.svc.HandleText(ctx, 42, "not-an-email")
	assert.Contains(t, f.messenger.lastText(42), "Email nije validan")

	f.svc.HandleText(ctx, 42, "marko@example.com")
	f.svc.HandleText(ctx, 42, "123")
	assert.Contains(t, f.messenger.lastText(42), "Telefon nije validan")

	// Still in the phone state, nothing was written to the ledger.
	sess, err := f.sessions.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingPhone, sess.State)

	regs, _ := f.ledger.List(ctx)
	assert.Empty(t, regs)
}

func TestIntake_DuplicateEmailRepromptsEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.InsertPending(ctx, domain.Registration{
		ChatID: 7, Name: "Ana", Email: "marko@example.com", Password: "Ana123#",
	}))

	// Case-insensitive collision.
	f.runIntake(ctx, 42, "Marko", "Marko@Example.COM", "0641234567")

	assert.Contains(t, f.messenger.lastText(42), "već registrovan")

	sess, err := f.sessions.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingEmail, sess.State)
	assert.Equal(t, "Marko", sess.Name, "name survives the bounce")

	regs, _ := f.ledger.List(ctx)
	assert.Len(t, regs, 1, "no duplicate row")

	// A fresh email lets the conversation continue.
	f.prov.On("CreateDemo", mock.Anything, "Marko", "marko2@example.com", "Marko123#", "+381641234567", "Serbia").
		Return(domain.DemoResult{TransportOK: true, OK: true})
	f.prov.On("CreateMT4", mock.Anything, "marko2@example.com", "Marko123#").
		Return(domain.MT4Result{TransportOK: true, OK: true, Login: "555"})

	f.svc.HandleText(ctx, 42, "marko2@example.com")
	f.svc.HandleText(ctx, 42, "0641234567")

	regs, _ = f.ledger.List(ctx)
	require.Len(t, regs, 2)
	assert.Equal(t, domain.StatusMT4OK, regs[1].Status)
}

func TestIntake_DemoTransportFailureStopsWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.prov.On("CreateDemo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.DemoResult{Error: "HTTP 500", Note: "automation crashed"})

	f.runIntake(ctx, 42, "Marko", "marko@example.com", "0641234567")

	f.prov.AssertNotCalled(t, "CreateMT4", mock.Anything, mock.Anything, mock.Anything)

	regs, _ := f.ledger.List(ctx)
	require.Len(t, regs, 1)
	assert.Equal(t, domain.StatusError, regs[0].Status)
	assert.Contains(t, regs[0].Notes, "HTTP 500")

	assert.True(t, f.messenger.containsText(42, "Nije uspelo"))
}

func TestIntake_AmbiguousDemoStillAttemptsMT4(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.prov.On("CreateDemo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.DemoResult{TransportOK: true, Note: "captcha interstitial"})
	f.prov.On("CreateMT4", mock.Anything, "marko@example.com", "Marko123#").
		Return(domain.MT4Result{TransportOK: true, OK: false, Phase: "otp"})

	f.runIntake(ctx, 42, "Marko", "marko@example.com", "0641234567")

	f.prov.AssertExpectations(t)

	regs, _ := f.ledger.List(ctx)
	require.Len(t, regs, 1)
	assert.Equal(t, domain.StatusMT4Error, regs[0].Status)
	assert.Contains(t, regs[0].Notes, "otp")

	assert.True(t, f.messenger.containsText(42, "šaljemo ručno"))
}

func TestIntake_HeuristicSuccessProceedsAsCreated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.prov.On("CreateDemo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.DemoResult{
			TransportOK:    true,
			OK:             false,
			OutcomeExcerpt: "Your Demo Account is Being Created",
			Screenshots:    []string{"https://shots.example/last.png"},
		})
	f.prov.On("CreateMT4", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.MT4Result{TransportOK: true, OK: true, Login: "777", Server: "Demo01"})

	f.runIntake(ctx, 42, "Marko", "marko@example.com", "0641234567")

	assert.True(t, f.messenger.containsText(42, "Demo je kreiran"))
	assert.Equal(t, []string{"https://shots.example/last.png"}, f.messenger.photos[42])

	regs, _ := f.ledger.List(ctx)
	require.Len(t, regs, 1)
	assert.Equal(t, domain.StatusMT4OK, regs[0].Status)
}

func TestIntake_CancelDropsConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Start(ctx, 42)
	f.svc.HandleText(ctx, 42, "Marko")

	f.svc.Cancel(ctx, 42)
	assert.Contains(t, f.messenger.lastText(42), "Prekinuto")

	_, err := f.sessions.Get(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Subsequent text does nothing.
	before := f.messenger.textCount(42)
	f.svc.HandleText(ctx, 42, "marko@example.com")
	assert.Equal(t, before, f.messenger.textCount(42))
}
