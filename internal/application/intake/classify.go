package intake

import (
	"regexp"
	"strings"

	"github.com/asfmarkets/intake-bot/internal/domain"
)

type DemoOutcome int

const (
	// DemoFailed: transport failure. The workflow stops here.
	DemoFailed DemoOutcome = iota
	// DemoCreated: structured success or convincing textual/URL evidence.
	DemoCreated
	// DemoAmbiguous: transport succeeded but nothing confirms the account.
	// The workflow still continues to MT4: a wasted attempt is cheap, while
	// skipping it on a false negative strands a created account without
	// credentials.
	DemoAmbiguous
)

// The automation runs against a signup surface with anti-bot defenses, so a
// successful creation can come back with ok=false. These patterns are the
// fallback oracle: the interstitial phrase shown while the account is built,
// and the post-signup URL shapes (dashboard path or customer-id parameter).
var (
	creationPhrase = regexp.MustCompile(`(?i)demo\s+account\s+is\s+being\s+created`)
	postSignupURL  = regexp.MustCompile(`(?i)(/dashboard\b|[?&]customer_?id=\d+)`)
)

// ClassifyDemo decides how a create-demo result is treated.
func ClassifyDemo(res domain.DemoResult) DemoOutcome {
	if !res.TransportOK {
		return DemoFailed
	}
	if res.OK || res.LikelyCreated {
		return DemoCreated
	}
	excerpt := strings.Join([]string{res.OutcomeExcerpt, res.PageExcerpt, res.Note}, "\n")
	if creationPhrase.MatchString(excerpt) || postSignupURL.MatchString(res.URL) {
		return DemoCreated
	}
	return DemoAmbiguous
}

// ClassifyMT4 accepts only a structured success with a login identifier.
// No heuristics here: without a login there is nothing to hand the user,
// so anything less is deferred to manual follow-up.
func ClassifyMT4(res domain.MT4Result) bool {
	return res.TransportOK && res.OK && res.Login != ""
}

// mt4FailureNote assembles the ledger annotation for a failed MT4 phase from
// whatever evidence the result carries.
func mt4FailureNote(res domain.MT4Result) string {
	var parts []string
	for _, p := range []string{res.Error, res.Note, res.Phase} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "nepoznato"
	}
	return strings.Join(parts, "; ")
}

// demoFailureNote does the same for a transport-failed demo phase.
func demoFailureNote(res domain.DemoResult) string {
	for _, p := range []string{res.Error, res.Note} {
		if p != "" {
			return p
		}
	}
	return "nepoznato"
}
