package intake

// User-facing copy, in Serbian for the bot's audience. Failure messages are
// always soft: the user is promised manual follow-up, never shown a raw
// transport error.
const (
	msgAskName      = "Zdravo! Kako se zoveš? (npr. Marko)"
	msgNameTooShort = "Prekratko ime, probaj opet:"
	msgAskEmail     = "Super! Unesi svoj email:"
	msgBadEmail     = "Email nije validan. Unesi ponovo:"
	msgAskPhone     = "Unesi broj telefona (sa pozivnim, npr. +381641234567 ili 064...):"
	msgBadPhone     = "Telefon nije validan. Probaj ponovo (npr. +38164xxxxxxx):"
	msgEmailTaken   = "Taj email je već registrovan. Unesi drugi:"
	msgCanceled     = "Prekinuto. Pošalji /start kad budeš spreman."

	msgCreatingDemo = "✅ Hvala, %s! Kreiram tvoj DEMO... Sačekaj 10–30 sekundi."
	msgDemoCreated  = "🎉 Demo je kreiran! Pripremam MT4 podatke..."
	msgDemoMaybe    = "⏳ Nalog je najverovatnije u izradi. Pripremam MT4 podatke..."
	msgDemoFailed   = "⚠️ Nije uspelo (verovatno zaštita). Pokušaćemo ponovo ili ručno."
	msgMT4Failed    = "⚠️ Kreiranje MT4 naloga nije uspelo (verovatno zaštita). Nalog je najverovatnije kreiran, a MT4 podatke šaljemo ručno."
	msgTempProblem  = "⚠️ Trenutno imamo tehnički problem. Pošalji /start kasnije da pokušamo ponovo."

	mt4SuccessHTML = "✅ Tvoj MT4 DEMO je spreman!\n\n" +
		"Login ID: <code>%s</code>\n" +
		"Server: <code>%s</code>\n" +
		"Lozinka: <code>%s</code>\n\n" +
		"Ako imaš poteškoća sa povezivanjem, javi se SUPPORT-u."

	captionOutcome = "📸 Outcome screenshot"
	captionMT4     = "📸 MT4 screenshot"

	broadcastText      = "📣 Pozdrav ekipa! Hvala što ste sa nama."
	msgBroadcastReport = "Poslato ka %d korisnika."

	supportButtonLabel = "Kontakt SUPPORT"
)
