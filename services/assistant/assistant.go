// Package assistant drives the booking wizard: search, result display,
// offer selection, passenger form, confirmation. It owns the session
// state exclusively; handlers only hand it session IDs and user input.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"aviachat/models"
	"aviachat/services/flightapi"
	"aviachat/services/offers"
	"aviachat/services/session"
	"aviachat/services/transcript"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FlightAPI is the outbound surface the wizard needs. Satisfied by
// *flightapi.Client; tests swap in fakes.
type FlightAPI interface {
	Search(ctx context.Context, query, sessionID string) (*flightapi.SearchResult, error)
	Select(ctx context.Context, sessionID string, index int, offer *models.Offer) (*flightapi.SelectResult, error)
	SubmitPassengers(ctx context.Context, sessionID string, passengers []models.Passenger, contact models.ContactInfo) (*flightapi.PassengerResult, error)
	Confirm(ctx context.Context, req flightapi.ConfirmRequest) (*flightapi.BookingOutcome, error)
}

// WizardService is the wizard's operation set, one method per user turn.
type WizardService interface {
	Message(ctx context.Context, sessionID, text string) (*models.ChatTurn, error)
	Select(ctx context.Context, sessionID string, index int) (*models.ChatTurn, error)
	Continue(ctx context.Context, sessionID string) (*models.ChatTurn, error)
	Back(ctx context.Context, sessionID string) (*models.ChatTurn, error)
	Passengers(ctx context.Context, sessionID string, passengers []models.Passenger, contact models.ContactInfo) (*models.ChatTurn, error)
	Confirm(ctx context.Context, sessionID string) (*models.ChatTurn, error)
	Reset(ctx context.Context, sessionID string) (*models.ChatTurn, error)
	Transcript(ctx context.Context, sessionID string) ([]models.TranscriptEntry, error)
}

// DefaultWizardService implements WizardService.
type DefaultWizardService struct {
	Store  session.Store
	API    FlightAPI
	Logger *zap.Logger

	// PassportRequired mirrors the flow variants that collect a
	// passport number on the passenger form.
	PassportRequired bool
}

// Message runs a search turn. An unknown or absent session ID starts a
// fresh session; a completed session is fully reset first (new session
// ID) so the new search starts clean.
func (s *DefaultWizardService) Message(ctx context.Context, sessionID, text string) (*models.ChatTurn, error) {
	sess, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Stage == models.StageCompleted {
		if sess, err = s.restart(ctx, sess); err != nil {
			return nil, err
		}
	}

	entries := []models.TranscriptEntry{transcript.User(text)}

	if sess.Stage != models.StageSearch {
		entries = append(entries, transcript.Bot("A booking is in progress. Continue with the current steps, go back, or reset to start a new search."))
		transcript.Append(sess, entries...)
		if err := s.Store.Put(ctx, sess); err != nil {
			return nil, err
		}
		return s.turn(sess, entries), nil
	}

	// Persist before the call so a fresh session exists to reload into.
	if err := s.Store.Put(ctx, sess); err != nil {
		return nil, err
	}

	result, searchErr := s.API.Search(ctx, text, sess.SessionID)

	// The user may have reset the session while the call was in
	// flight; a reply for a dead session is discarded, not applied.
	sess, err = s.reloadSame(ctx, sess.SessionID)
	if err != nil {
		return nil, err
	}

	transcript.Append(sess, entries[0])

	if searchErr != nil {
		s.Logger.Info("search failed",
			zap.String("sessionId", sess.SessionID),
			zap.Error(searchErr),
		)
		bot := transcript.Bot(userMessageFor(searchErr))
		entries = append(entries, bot)
		transcript.Append(sess, bot)
		if err := s.Store.Put(ctx, sess); err != nil {
			return nil, err
		}
		return s.turn(sess, entries), nil
	}

	// A new search replaces the result set wholesale and invalidates
	// everything downstream of it.
	sess.SearchResults = result.Offers
	sess.SelectedOffer = nil
	sess.Passengers = nil
	sess.Contact = nil
	sess.Pricing = nil
	sess.ConfirmKey = ""

	normalized := offers.NormalizeAll(result.Offers)

	headline := fmt.Sprintf("Found %d flights", len(normalized))
	if result.OriginCity != "" && result.DestCity != "" {
		headline = fmt.Sprintf("Found %d flights: %s → %s", len(normalized), result.OriginCity, result.DestCity)
	}
	bot := transcript.Bot(headline)
	entries = append(entries, bot)
	transcript.Append(sess, bot)

	if card, cardErr := transcript.OfferCards(normalized); cardErr == nil {
		entries = append(entries, card)
		transcript.Append(sess, card)
	} else {
		s.Logger.Warn("offer card rendering failed", zap.Error(cardErr))
	}

	if err := s.Store.Put(ctx, sess); err != nil {
		return nil, err
	}

	turn := s.turn(sess, entries)
	turn.Offers = normalized
	return turn, nil
}

// Select picks an offer out of the last result set and asks the backend
// to re-quote it. The pricing snapshot taken here may differ from the
// offer's original price.
func (s *DefaultWizardService) Select(ctx context.Context, sessionID string, index int) (*models.ChatTurn, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Stage != models.StageSearch || len(sess.SearchResults) == 0 {
		return s.sayAndSave(ctx, sess, "There are no search results to pick from. Try a new search first.")
	}
	if index < 0 || index >= len(sess.SearchResults) {
		return s.sayAndSave(ctx, sess, fmt.Sprintf("Flight %d does not exist. Pick one of the %d results.", index+1, len(sess.SearchResults)))
	}

	picked := sess.SearchResults[index]

	result, selErr := s.API.Select(ctx, sess.SessionID, index, &picked)

	sess, err = s.reloadSame(ctx, sess.SessionID)
	if err != nil {
		return nil, err
	}

	if selErr != nil {
		s.Logger.Info("flight selection failed",
			zap.String("sessionId", sess.SessionID),
			zap.Error(selErr),
		)
		return s.sayAndSave(ctx, sess, userMessageFor(selErr))
	}

	sess.SelectedOffer = &picked
	if result.Pricing != nil {
		sess.Pricing = result.Pricing
	} else {
		price := offers.Normalize(&picked).Price
		sess.Pricing = &price
	}
	if err := moveTo(sess, models.StageSelected); err != nil {
		return nil, err
	}

	bot := transcript.Bot(fmt.Sprintf("Flight selected: %.2f %s. Continue to passenger details, or go back to the results.",
		sess.Pricing.Amount, sess.Pricing.Currency))
	entries := transcript.Append(sess, bot)
	if err := s.Store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return s.turn(sess, entries), nil
}

// Continue advances from a selected offer to the passenger form.
func (s *DefaultWizardService) Continue(ctx context.Context, sessionID string) (*models.ChatTurn, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := moveTo(sess, models.StagePassengerInfo); err != nil {
		return s.sayAndSave(ctx, sess, "Select a flight before continuing to passenger details.")
	}
	if err := checkStageInvariants(sess); err != nil {
		return nil, err
	}

	bot := transcript.Bot("Please provide the passenger details: name, date of birth, gender, and contact information.")
	entries := transcript.Append(sess, bot)
	if err := s.Store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return s.turn(sess, entries), nil
}

// Back walks one step backwards along the explicit back edges. Returning
// to the results redisplays the cached set without a network call.
func (s *DefaultWizardService) Back(ctx context.Context, sessionID string) (*models.ChatTurn, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch sess.Stage {
	case models.StageSelected:
		if err := moveTo(sess, models.StageSearch); err != nil {
			return nil, err
		}
		normalized := offers.NormalizeAll(sess.SearchResults)
		entries := []models.TranscriptEntry{transcript.Bot("Back to the results. Pick another flight:")}
		if card, cardErr := transcript.OfferCards(normalized); cardErr == nil {
			entries = append(entries, card)
		}
		transcript.Append(sess, entries...)
		if err := s.Store.Put(ctx, sess); err != nil {
			return nil, err
		}
		turn := s.turn(sess, entries)
		turn.Offers = normalized
		return turn, nil

	case models.StageConfirm:
		if err := moveTo(sess, models.StagePassengerInfo); err != nil {
			return nil, err
		}
		return s.sayAndSave(ctx, sess, "Back to passenger details. Update the form and submit again.")

	default:
		return s.sayAndSave(ctx, sess, "There is no previous step to go back to.")
	}
}

// Passengers validates the form locally, submits it for authoritative
// validation, and on success advances to the confirm stage with a fresh
// idempotency key for the booking attempt.
func (s *DefaultWizardService) Passengers(ctx context.Context, sessionID string, passengers []models.Passenger, contact models.ContactInfo) (*models.ChatTurn, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Stage != models.StagePassengerInfo {
		return s.sayAndSave(ctx, sess, "The passenger form is not open at this step.")
	}

	if fieldErrs := validatePassengers(passengers, contact, s.PassportRequired); len(fieldErrs) > 0 {
		turn, err := s.sayAndSave(ctx, sess, "Some passenger details need fixing. Please review the highlighted fields.")
		if err != nil {
			return nil, err
		}
		turn.FieldErrors = fieldErrs
		return turn, nil
	}

	result, submitErr := s.API.SubmitPassengers(ctx, sess.SessionID, passengers, contact)

	sess, err = s.reloadSame(ctx, sess.SessionID)
	if err != nil {
		return nil, err
	}

	if submitErr != nil {
		s.Logger.Info("passenger submission failed",
			zap.String("sessionId", sess.SessionID),
			zap.Error(submitErr),
		)
		turn, sayErr := s.sayAndSave(ctx, sess, userMessageFor(submitErr))
		if sayErr != nil {
			return nil, sayErr
		}
		if apiErr, ok := flightapi.AsAPIError(submitErr); ok && len(apiErr.Fields) > 0 {
			turn.FieldErrors = apiErr.Fields
		}
		return turn, nil
	}

	// The backend's normalized echo wins over the local form data.
	sess.Passengers = passengers
	if len(result.Passengers) > 0 {
		sess.Passengers = result.Passengers
	}
	sess.Contact = &contact
	if result.Contact != nil {
		sess.Contact = result.Contact
	}

	if err := moveTo(sess, models.StageConfirm); err != nil {
		return nil, err
	}
	if err := checkStageInvariants(sess); err != nil {
		return nil, err
	}

	// One stable key per booking attempt; reused across manual retries.
	sess.ConfirmKey = uuid.New().String()

	entries := []models.TranscriptEntry{transcript.Bot("Passenger details confirmed. Review the summary and confirm the booking.")}
	pricing := models.Pricing{Currency: "EUR"}
	if sess.Pricing != nil {
		pricing = *sess.Pricing
	}
	if card, cardErr := transcript.BookingSummary(offers.Normalize(sess.SelectedOffer), sess.Passengers, *sess.Contact, pricing); cardErr == nil {
		entries = append(entries, card)
	}
	transcript.Append(sess, entries...)
	if err := s.Store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return s.turn(sess, entries), nil
}

// Confirm finalizes the booking. Failure keeps the session in the
// confirm stage for a manual retry; the booking action is never retried
// automatically.
func (s *DefaultWizardService) Confirm(ctx context.Context, sessionID string) (*models.ChatTurn, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Stage != models.StageConfirm {
		return s.sayAndSave(ctx, sess, "There is no booking ready to confirm at this step.")
	}
	if err := checkStageInvariants(sess); err != nil {
		return nil, err
	}

	outcome, confirmErr := s.API.Confirm(ctx, flightapi.ConfirmRequest{
		SessionID:      sess.SessionID,
		Offer:          sess.SelectedOffer,
		Passengers:     sess.Passengers,
		Contact:        *sess.Contact,
		IdempotencyKey: sess.ConfirmKey,
	})

	sess, err = s.reloadSame(ctx, sess.SessionID)
	if err != nil {
		return nil, err
	}

	if confirmErr != nil {
		s.Logger.Warn("booking confirmation failed",
			zap.String("sessionId", sess.SessionID),
			zap.Error(confirmErr),
		)
		// Backend guidance verbatim, plus the escape hatch: the
		// booking action is not safely auto-retryable.
		msg := userMessageFor(confirmErr) + " You can retry the confirmation or start a new search."
		return s.sayAndSave(ctx, sess, msg)
	}

	if outcome.PaymentRequired {
		turn, sayErr := s.sayAndSave(ctx, sess, fmt.Sprintf("Payment of %.2f %s is required to complete the booking. Follow the payment link, then confirm again.",
			outcome.PaymentAmount, outcome.Currency))
		if sayErr != nil {
			return nil, sayErr
		}
		turn.PaymentURL = outcome.PaymentURL
		return turn, nil
	}

	if err := moveTo(sess, models.StageCompleted); err != nil {
		return nil, err
	}
	sess.ConfirmKey = ""

	s.Logger.Info("booking confirmed",
		zap.String("sessionId", sess.SessionID),
		zap.String("confirmation", outcome.ConfirmationNumber),
	)

	bot := transcript.Bot(fmt.Sprintf("Booking confirmed! Confirmation number: %s. Send a new message to search for another flight.",
		outcome.ConfirmationNumber))
	entries := transcript.Append(sess, bot)
	if err := s.Store.Put(ctx, sess); err != nil {
		return nil, err
	}

	turn := s.turn(sess, entries)
	turn.Confirmation = outcome.ConfirmationNumber
	turn.Reference = outcome.Reference
	return turn, nil
}

// Reset discards the session entirely and starts a fresh one with a new
// session ID.
func (s *DefaultWizardService) Reset(ctx context.Context, sessionID string) (*models.ChatTurn, error) {
	if sessionID != "" {
		if err := s.Store.Delete(ctx, sessionID); err != nil {
			s.Logger.Warn("session delete failed", zap.String("sessionId", sessionID), zap.Error(err))
		}
	}

	sess := session.New()
	bot := transcript.Bot("Hi! Where would you like to fly? For example: \"Brussels to Bangkok March 15\".")
	entries := transcript.Append(sess, bot)
	if err := s.Store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return s.turn(sess, entries), nil
}

// Transcript returns the full display log for a session.
func (s *DefaultWizardService) Transcript(ctx context.Context, sessionID string) ([]models.TranscriptEntry, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Transcript, nil
}

func (s *DefaultWizardService) loadOrCreate(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	if sessionID == "" {
		return session.New(), nil
	}
	sess, err := s.Store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return session.New(), nil
	}
	return sess, err
}

// restart replaces a completed session with a brand new one.
func (s *DefaultWizardService) restart(ctx context.Context, old *models.BookingSession) (*models.BookingSession, error) {
	if err := s.Store.Delete(ctx, old.SessionID); err != nil {
		return nil, err
	}
	sess := session.New()
	if err := s.Store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// reloadSame re-reads the session after a webhook call returns. A miss
// means the session was reset or expired mid-call: the reply is stale.
func (s *DefaultWizardService) reloadSame(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrStaleTurn
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// sayAndSave appends one bot line, persists, and builds the turn reply.
func (s *DefaultWizardService) sayAndSave(ctx context.Context, sess *models.BookingSession, msg string) (*models.ChatTurn, error) {
	bot := transcript.Bot(msg)
	entries := transcript.Append(sess, bot)
	if err := s.Store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return s.turn(sess, entries), nil
}

func (s *DefaultWizardService) turn(sess *models.BookingSession, entries []models.TranscriptEntry) *models.ChatTurn {
	return &models.ChatTurn{
		SessionID: sess.SessionID,
		Stage:     sess.Stage,
		Messages:  entries,
	}
}
