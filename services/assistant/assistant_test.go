package assistant

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"aviachat/models"
	"aviachat/services/flightapi"
	"aviachat/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	searchResult    *flightapi.SearchResult
	searchErr       error
	selectResult    *flightapi.SelectResult
	selectErr       error
	passengerResult *flightapi.PassengerResult
	passengerErr    error
	confirmOutcome  *flightapi.BookingOutcome
	confirmErr      error

	lastConfirm flightapi.ConfirmRequest
	onSearch    func()
}

func (f *fakeAPI) Search(context.Context, string, string) (*flightapi.SearchResult, error) {
	if f.onSearch != nil {
		f.onSearch()
	}
	return f.searchResult, f.searchErr
}

func (f *fakeAPI) Select(context.Context, string, int, *models.Offer) (*flightapi.SelectResult, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	if f.selectResult != nil {
		return f.selectResult, nil
	}
	return &flightapi.SelectResult{}, nil
}

func (f *fakeAPI) SubmitPassengers(context.Context, string, []models.Passenger, models.ContactInfo) (*flightapi.PassengerResult, error) {
	if f.passengerErr != nil {
		return nil, f.passengerErr
	}
	if f.passengerResult != nil {
		return f.passengerResult, nil
	}
	return &flightapi.PassengerResult{}, nil
}

func (f *fakeAPI) Confirm(_ context.Context, req flightapi.ConfirmRequest) (*flightapi.BookingOutcome, error) {
	f.lastConfirm = req
	return f.confirmOutcome, f.confirmErr
}

func twoOffers(t *testing.T) []models.Offer {
	t.Helper()
	var offerList []models.Offer
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"off_1","airline":{"code":"QR"},"price":{"total":"612.40","currency":"EUR"}},
		{"id":"off_2","airline":{"code":"TG"},"price":{"total":"655.00","currency":"EUR"}}
	]`), &offerList))
	return offerList
}

func newService(t *testing.T, api *fakeAPI) *DefaultWizardService {
	t.Helper()
	return &DefaultWizardService{
		Store:  session.NewMemoryStore(30 * time.Minute),
		API:    api,
		Logger: zap.NewNop(),
	}
}

func TestWizardEndToEnd(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		searchResult: &flightapi.SearchResult{
			Offers:     twoOffers(t),
			OriginCity: "Brussels",
			DestCity:   "Bangkok",
		},
		confirmOutcome: &flightapi.BookingOutcome{
			Confirmed:          true,
			ConfirmationNumber: "FLB-2026-0042",
			Reference:          "REF123",
		},
	}
	svc := newService(t, api)

	// Search turn.
	turn, err := svc.Message(ctx, "", "Brussels to Bangkok March 15")
	require.NoError(t, err)
	assert.Equal(t, models.StageSearch, turn.Stage)
	assert.NotEmpty(t, turn.SessionID)
	require.Len(t, turn.Offers, 2)
	sessionID := turn.SessionID

	// Pick the first offer.
	turn, err = svc.Select(ctx, sessionID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.StageSelected, turn.Stage)

	sess, err := svc.Store.Get(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, sess.SelectedOffer)
	assert.Equal(t, "off_1", sess.SelectedOffer.ID)
	require.NotNil(t, sess.Pricing)
	assert.Equal(t, 612.40, sess.Pricing.Amount)

	// On to the passenger form.
	turn, err = svc.Continue(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StagePassengerInfo, turn.Stage)

	turn, err = svc.Passengers(ctx, sessionID, []models.Passenger{validPassenger()}, validContact())
	require.NoError(t, err)
	assert.Equal(t, models.StageConfirm, turn.Stage)
	assert.Empty(t, turn.FieldErrors)

	sess, err = svc.Store.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ConfirmKey)
	confirmKey := sess.ConfirmKey

	// Confirm the booking.
	turn, err = svc.Confirm(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, turn.Stage)
	assert.Equal(t, "FLB-2026-0042", turn.Confirmation)
	assert.Equal(t, "REF123", turn.Reference)
	assert.Equal(t, confirmKey, api.lastConfirm.IdempotencyKey)
}

func TestNewSearchAfterCompletionResetsEverything(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		searchResult:   &flightapi.SearchResult{Offers: twoOffers(t)},
		confirmOutcome: &flightapi.BookingOutcome{Confirmed: true, ConfirmationNumber: "C1"},
	}
	svc := newService(t, api)

	turn, err := svc.Message(ctx, "", "Brussels to Bangkok")
	require.NoError(t, err)
	oldID := turn.SessionID
	_, err = svc.Select(ctx, oldID, 0)
	require.NoError(t, err)
	_, err = svc.Continue(ctx, oldID)
	require.NoError(t, err)
	_, err = svc.Passengers(ctx, oldID, []models.Passenger{validPassenger()}, validContact())
	require.NoError(t, err)
	turn, err = svc.Confirm(ctx, oldID)
	require.NoError(t, err)
	require.Equal(t, models.StageCompleted, turn.Stage)

	// A new message after completion starts over with a fresh session.
	turn, err = svc.Message(ctx, oldID, "Paris to Tokyo")
	require.NoError(t, err)
	assert.Equal(t, models.StageSearch, turn.Stage)
	assert.NotEqual(t, oldID, turn.SessionID)

	sess, err := svc.Store.Get(ctx, turn.SessionID)
	require.NoError(t, err)
	assert.Nil(t, sess.SelectedOffer)
	assert.Empty(t, sess.Passengers)
	assert.Nil(t, sess.Contact)

	// The completed session is gone.
	_, err = svc.Store.Get(ctx, oldID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSearchFailureKeepsSearchStage(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{searchErr: &flightapi.APIError{Kind: flightapi.KindTimeout, Message: "request timed out"}}
	svc := newService(t, api)

	turn, err := svc.Message(ctx, "", "Brussels to Bangkok")
	require.NoError(t, err)
	assert.Equal(t, models.StageSearch, turn.Stage)
	require.Len(t, turn.Messages, 2)
	assert.Contains(t, turn.Messages[1].Body, "try again")
	assert.Empty(t, turn.Offers)
}

func TestNoResultsShowsBackendSuggestions(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{searchErr: &flightapi.APIError{
		Kind:        flightapi.KindNoResults,
		Message:     "No flights matched. Try nearby dates.",
		Suggestions: []string{"March 16", "March 17"},
	}}
	svc := newService(t, api)

	turn, err := svc.Message(ctx, "", "Brussels to Atlantis")
	require.NoError(t, err)
	assert.Equal(t, models.StageSearch, turn.Stage)
	assert.Contains(t, turn.Messages[1].Body, "No flights matched")
	assert.Contains(t, turn.Messages[1].Body, "March 16")
}

func TestSelectOutOfRange(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{searchResult: &flightapi.SearchResult{Offers: twoOffers(t)}}
	svc := newService(t, api)

	turn, err := svc.Message(ctx, "", "Brussels to Bangkok")
	require.NoError(t, err)

	turn, err = svc.Select(ctx, turn.SessionID, 5)
	require.NoError(t, err)
	assert.Equal(t, models.StageSearch, turn.Stage)
	assert.Contains(t, turn.Messages[0].Body, "does not exist")
}

func TestBackFromSelectedRedisplaysCachedResults(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{searchResult: &flightapi.SearchResult{Offers: twoOffers(t)}}
	svc := newService(t, api)

	turn, err := svc.Message(ctx, "", "Brussels to Bangkok")
	require.NoError(t, err)
	sessionID := turn.SessionID
	_, err = svc.Select(ctx, sessionID, 1)
	require.NoError(t, err)

	turn, err = svc.Back(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageSearch, turn.Stage)
	assert.Len(t, turn.Offers, 2) // cached, no new network call

	sess, err := svc.Store.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Nil(t, sess.SelectedOffer)
	assert.Nil(t, sess.Pricing)
	assert.Len(t, sess.SearchResults, 2)
}

func TestPassengerValidationFailureStays(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{searchResult: &flightapi.SearchResult{Offers: twoOffers(t)}}
	svc := newService(t, api)

	turn, err := svc.Message(ctx, "", "Brussels to Bangkok")
	require.NoError(t, err)
	sessionID := turn.SessionID
	_, err = svc.Select(ctx, sessionID, 0)
	require.NoError(t, err)
	_, err = svc.Continue(ctx, sessionID)
	require.NoError(t, err)

	bad := validPassenger()
	bad.FirstName = "A"
	turn, err = svc.Passengers(ctx, sessionID, []models.Passenger{bad}, validContact())
	require.NoError(t, err)
	assert.Equal(t, models.StagePassengerInfo, turn.Stage)
	assert.Contains(t, turn.FieldErrors, "passengers[0].firstName")
}

func TestBackendValidationErrorsSurfacedVerbatim(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		searchResult: &flightapi.SearchResult{Offers: twoOffers(t)},
		passengerErr: &flightapi.APIError{
			Kind:    flightapi.KindValidation,
			Message: "Passport number is not valid for this route",
			Fields:  map[string]string{"passengers[0].passportNumber": "Not valid for this route"},
		},
	}
	svc := newService(t, api)

	turn, err := svc.Message(ctx, "", "Brussels to Bangkok")
	require.NoError(t, err)
	sessionID := turn.SessionID
	_, err = svc.Select(ctx, sessionID, 0)
	require.NoError(t, err)
	_, err = svc.Continue(ctx, sessionID)
	require.NoError(t, err)

	turn, err = svc.Passengers(ctx, sessionID, []models.Passenger{validPassenger()}, validContact())
	require.NoError(t, err)
	assert.Equal(t, models.StagePassengerInfo, turn.Stage)
	assert.Contains(t, turn.Messages[0].Body, "Passport number is not valid")
	assert.Contains(t, turn.FieldErrors, "passengers[0].passportNumber")
}

func TestConfirmFailureKeepsConfirmStageAndKey(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		searchResult: &flightapi.SearchResult{Offers: twoOffers(t)},
		confirmErr:   &flightapi.APIError{Kind: flightapi.KindRejected, Message: "Fare no longer available"},
	}
	svc := newService(t, api)

	turn, err := svc.Message(ctx, "", "Brussels to Bangkok")
	require.NoError(t, err)
	sessionID := turn.SessionID
	_, err = svc.Select(ctx, sessionID, 0)
	require.NoError(t, err)
	_, err = svc.Continue(ctx, sessionID)
	require.NoError(t, err)
	_, err = svc.Passengers(ctx, sessionID, []models.Passenger{validPassenger()}, validContact())
	require.NoError(t, err)

	sess, err := svc.Store.Get(ctx, sessionID)
	require.NoError(t, err)
	keyBefore := sess.ConfirmKey

	turn, err = svc.Confirm(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageConfirm, turn.Stage)
	assert.Contains(t, turn.Messages[0].Body, "Fare no longer available")
	assert.Contains(t, turn.Messages[0].Body, "new search")

	// Manual retry reuses the same idempotency key.
	sess, err = svc.Store.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, keyBefore, sess.ConfirmKey)

	api.confirmErr = nil
	api.confirmOutcome = &flightapi.BookingOutcome{Confirmed: true, ConfirmationNumber: "C9"}
	turn, err = svc.Confirm(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, turn.Stage)
	assert.Equal(t, keyBefore, api.lastConfirm.IdempotencyKey)
}

func TestPaymentRequiredOutcome(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		searchResult: &flightapi.SearchResult{Offers: twoOffers(t)},
		confirmOutcome: &flightapi.BookingOutcome{
			PaymentRequired: true,
			PaymentURL:      "https://pay.example.com/abc",
			PaymentAmount:   612.40,
			Currency:        "EUR",
		},
	}
	svc := newService(t, api)

	turn, err := svc.Message(ctx, "", "Brussels to Bangkok")
	require.NoError(t, err)
	sessionID := turn.SessionID
	_, err = svc.Select(ctx, sessionID, 0)
	require.NoError(t, err)
	_, err = svc.Continue(ctx, sessionID)
	require.NoError(t, err)
	_, err = svc.Passengers(ctx, sessionID, []models.Passenger{validPassenger()}, validContact())
	require.NoError(t, err)

	turn, err = svc.Confirm(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageConfirm, turn.Stage) // completion happens after payment
	assert.Equal(t, "https://pay.example.com/abc", turn.PaymentURL)
}

func TestStaleSearchReplyIsDiscarded(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	// The session is reset while the search call is in flight; the
	// reply that eventually arrives must be dropped.
	api := &fakeAPI{searchResult: &flightapi.SearchResult{Offers: twoOffers(t)}}
	var sessionID string
	api.onSearch = func() {
		_ = svc.Store.Delete(ctx, sessionID)
	}
	svc.API = api

	sess := session.New()
	sessionID = sess.SessionID
	require.NoError(t, svc.Store.Put(ctx, sess))

	_, err := svc.Message(ctx, sessionID, "Brussels to Bangkok")
	assert.ErrorIs(t, err, ErrStaleTurn)
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, canTransition(models.StageSearch, models.StageSelected))
	assert.True(t, canTransition(models.StageSelected, models.StageSearch))
	assert.True(t, canTransition(models.StageConfirm, models.StagePassengerInfo))
	assert.True(t, canTransition(models.StageCompleted, models.StageSearch))

	assert.False(t, canTransition(models.StageSearch, models.StageConfirm))
	assert.False(t, canTransition(models.StagePassengerInfo, models.StageSearch))
	assert.False(t, canTransition(models.StageCompleted, models.StageConfirm))
}
