package domain

import "context"

// LinkButton is an inline action button attached to a message.
type LinkButton struct {
	Label string
	URL   string
}

// Messenger is the chat-transport port the workflow needs: plain text,
// HTML-formatted text with an optional inline button, and images by URL.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendHTML(ctx context.Context, chatID int64, html string, button *LinkButton) error
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error
}
