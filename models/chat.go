package models

import "time"

// TranscriptEntry is one bubble in the chat log. Plain text entries carry
// Body; card entries additionally carry pre-rendered HTML.
type TranscriptEntry struct {
	Role string    `json:"role"` // "user" or "bot"
	Kind string    `json:"kind"` // "text" or "card"
	Body string    `json:"body"`
	HTML string    `json:"html,omitempty"`
	At   time.Time `json:"at"`
}

// ChatRequest is the payload the widget posts for a search turn.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message" binding:"required"`
}

// SelectRequest picks one offer out of the last result set.
type SelectRequest struct {
	SessionID   string `json:"sessionId" binding:"required"`
	FlightIndex int    `json:"flightIndex"`
}

// PassengerRequest submits the passenger form.
type PassengerRequest struct {
	SessionID  string      `json:"sessionId" binding:"required"`
	Passengers []Passenger `json:"passengers" binding:"required"`
	Contact    ContactInfo `json:"contact"`
}

// SessionRequest covers the turns that only need a session: continue,
// back, confirm, reset.
type SessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// ChatTurn is the common reply envelope: the session handle, the stage
// after the turn, and the transcript entries the turn appended.
type ChatTurn struct {
	SessionID string            `json:"sessionId"`
	Stage     Stage             `json:"stage"`
	Messages  []TranscriptEntry `json:"messages"`

	Offers       []NormalizedOffer `json:"offers,omitempty"`
	FieldErrors  map[string]string `json:"fieldErrors,omitempty"`
	Confirmation string            `json:"confirmation,omitempty"`
	Reference    string            `json:"reference,omitempty"`
	PaymentURL   string            `json:"paymentUrl,omitempty"`
}
