package models

import "time"

// Stage identifies where a session currently sits in the booking wizard.
type Stage string

const (
	StageSearch        Stage = "search"
	StageSelected      Stage = "selected"
	StagePassengerInfo Stage = "passenger_info"
	StageConfirm       Stage = "confirm"
	StageCompleted     Stage = "completed"
)

// BookingSession holds everything the wizard knows between two user turns.
// It is marshalled into the session store wholesale; nothing here is
// durably persisted.
type BookingSession struct {
	SessionID     string       `json:"sessionId"`
	Stage         Stage        `json:"stage"`
	SearchResults []Offer      `json:"searchResults,omitempty"`
	SelectedOffer *Offer       `json:"selectedOffer,omitempty"`
	Passengers    []Passenger  `json:"passengers,omitempty"`
	Contact       *ContactInfo `json:"contact,omitempty"`
	Pricing       *Pricing     `json:"pricing,omitempty"`

	// ConfirmKey is the idempotency key for the current booking attempt.
	// It is minted when the session enters the confirm stage and reused
	// across manual retries, so the backend can deduplicate a confirm
	// that was retried after a timeout.
	ConfirmKey string `json:"confirmKey,omitempty"`

	Transcript []TranscriptEntry `json:"transcript,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Passenger is the traveller record collected by the passenger form.
// The backend may echo back a normalized version, which replaces this one.
type Passenger struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DateOfBirth    string `json:"dateOfBirth"` // ISO date, e.g. "1990-04-21"
	Gender         string `json:"gender"`      // MALE or FEMALE
	PassportNumber string `json:"passportNumber,omitempty"`
}

// ContactInfo is the booking contact collected alongside the passengers.
type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Pricing is the re-quoted price snapshot taken when an offer is selected.
// It may differ from the offer's original price if the backend re-quotes.
type Pricing struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}
