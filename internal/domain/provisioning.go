package domain

import "context"

// DemoResult is the typed outcome of one create-demo call. TransportOK is
// false for any non-200 status, timeout, or connection failure; in that case
// Error carries a bounded description and every other field is zero.
type DemoResult struct {
	TransportOK   bool
	OK            bool
	LikelyCreated bool
	Note          string
	Error         string
	Phase         string
	Screenshots   []string
	// Free-text and URL evidence for heuristic classification when the
	// automation could not confirm structured success.
	OutcomeExcerpt string
	PageExcerpt    string
	URL            string
}

// MT4Result is the typed outcome of one create-mt4 call. A usable result
// carries a non-empty Login; there is no heuristic fallback for this phase.
type MT4Result struct {
	TransportOK bool
	OK          bool
	Login       string
	Server      string
	Note        string
	Error       string
	Phase       string
	Screenshots []string
}

// LastScreenshot returns the final screenshot reference of the phase, or "".
func (r DemoResult) LastScreenshot() string { return lastScreenshot(r.Screenshots) }

func (r MT4Result) LastScreenshot() string { return lastScreenshot(r.Screenshots) }

func lastScreenshot(shots []string) string {
	if len(shots) == 0 {
		return ""
	}
	return shots[len(shots)-1]
}

// Provisioner is the gateway port to the remote browser-automation service.
// Implementations never return an error for transport failures; those are
// folded into the result so the workflow always has something to classify.
type Provisioner interface {
	CreateDemo(ctx context.Context, name, email, password, phone, country string) DemoResult
	CreateMT4(ctx context.Context, email, password string) MT4Result
}
