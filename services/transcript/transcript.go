// Package transcript owns the chat display log: building entries and
// rendering the markup cards the widget shows for offers and booking
// summaries. Rendering is separated from normalization so it can be
// tested without any network mocking.
package transcript

import (
	"time"

	"aviachat/models"
)

// User builds a plain-text entry for something the user typed.
func User(body string) models.TranscriptEntry {
	return models.TranscriptEntry{
		Role: "user",
		Kind: "text",
		Body: body,
		At:   time.Now().UTC(),
	}
}

// Bot builds a plain-text assistant entry.
func Bot(body string) models.TranscriptEntry {
	return models.TranscriptEntry{
		Role: "bot",
		Kind: "text",
		Body: body,
		At:   time.Now().UTC(),
	}
}

// BotCard builds an assistant entry carrying pre-rendered markup. Body
// keeps a plain-text fallback for clients that cannot show the card.
func BotCard(body, html string) models.TranscriptEntry {
	return models.TranscriptEntry{
		Role: "bot",
		Kind: "card",
		Body: body,
		HTML: html,
		At:   time.Now().UTC(),
	}
}

// Append adds entries to the session log and returns them so the turn
// reply can carry just the delta.
func Append(sess *models.BookingSession, entries ...models.TranscriptEntry) []models.TranscriptEntry {
	sess.Transcript = append(sess.Transcript, entries...)
	return entries
}
