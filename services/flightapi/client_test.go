package flightapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aviachat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		BaseURL:       srv.URL,
		SearchPath:    "/flight-search",
		SelectPath:    "/flight-select",
		PassengerPath: "/passenger-data",
		ConfirmPath:   "/booking-confirm",
		Timeout:       timeout,
	}, zap.NewNop())
	return client, srv
}

func TestSearchSuccess(t *testing.T) {
	var gotBody map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/flight-search", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"bestFlights": [
				{"id":"off_1","price":{"total":"612.40","currency":"EUR"}},
				{"id":"off_2","total_amount":655}
			],
			"searchParams": {"originCity":"Brussels","destinationCity":"Bangkok"}
		}`))
	}, 5*time.Second)

	result, err := client.Search(context.Background(), "Brussels to Bangkok March 15", "web-abc")
	require.NoError(t, err)
	assert.Len(t, result.Offers, 2)
	assert.Equal(t, "Brussels", result.OriginCity)
	assert.Equal(t, "Bangkok", result.DestCity)

	assert.Equal(t, "Brussels to Bangkok March 15", gotBody["message"])
	assert.Equal(t, "web-abc", gotBody["sessionId"])
	assert.NotEmpty(t, gotBody["timestamp"])
}

func TestSearchNoResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"No flights found","suggestions":["Try March 16"]}`))
	}, 5*time.Second)

	_, err := client.Search(context.Background(), "nowhere", "web-abc")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindNoResults, apiErr.Kind)
	assert.Equal(t, "No flights found", apiErr.Message)
	assert.Equal(t, []string{"Try March 16"}, apiErr.Suggestions)
}

func TestSearchEmptyOfferListIsNoResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"bestFlights":[]}`))
	}, 5*time.Second)

	_, err := client.Search(context.Background(), "q", "s")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindNoResults, apiErr.Kind)
}

func TestNon2xxIsAlwaysFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":true}`)) // body content must not matter
	}, 5*time.Second)

	_, err := client.Search(context.Background(), "q", "s")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindHTTP, apiErr.Kind)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "server-error", apiErr.Cause())
}

func TestNotFoundCause(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, 5*time.Second)

	_, err := client.Search(context.Background(), "q", "s")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "not-found", apiErr.Cause())
}

func TestTimeoutIsDistinctErrorKind(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}, 20*time.Millisecond)

	_, err := client.Search(context.Background(), "q", "s")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, apiErr.Kind)
	assert.Equal(t, "timeout", apiErr.Cause())
}

func TestNetworkUnreachable(t *testing.T) {
	client := NewClient(Config{
		BaseURL:    "http://127.0.0.1:1", // nothing listens here
		SearchPath: "/flight-search",
		Timeout:    2 * time.Second,
	}, zap.NewNop())

	_, err := client.Search(context.Background(), "q", "s")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Equal(t, "network-unreachable", apiErr.Cause())
}

func TestMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}, 5*time.Second)

	_, err := client.Search(context.Background(), "q", "s")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindMalformed, apiErr.Kind)
}

func TestSelectForwardsRawOffer(t *testing.T) {
	var gotBody map[string]json.RawMessage
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/flight-select", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"success":true,"pricing":{"amount":640.00,"currency":"EUR"}}`))
	}, 5*time.Second)

	rawOffer := `{"id":"off_1","vendorExtra":{"deep":["untouched"]},"price":{"total":"612.40"}}`
	var offer models.Offer
	require.NoError(t, json.Unmarshal([]byte(rawOffer), &offer))

	result, err := client.Select(context.Background(), "web-abc", 0, &offer)
	require.NoError(t, err)
	require.NotNil(t, result.Pricing)
	assert.Equal(t, 640.00, result.Pricing.Amount)

	// The offer travels back byte-for-byte, unknown vendor fields included.
	assert.JSONEq(t, rawOffer, string(gotBody["selectedFlight"]))
}

func TestSelectWithoutConfiguredPathSkipsNetwork(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	result, err := client.Select(context.Background(), "s", 0, &models.Offer{ID: "off_1"})
	require.NoError(t, err)
	assert.Nil(t, result.Pricing)
}

func TestSubmitPassengersBackendRejection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": false,
			"message": "Passport expired",
			"errors": [{"field":"passengers[0].passportNumber","message":"Passport expired"}]
		}`))
	}, 5*time.Second)

	_, err := client.SubmitPassengers(context.Background(), "s", []models.Passenger{{FirstName: "Alice"}}, models.ContactInfo{})
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Equal(t, "Passport expired", apiErr.Message)
	assert.Equal(t, "Passport expired", apiErr.Fields["passengers[0].passportNumber"])
}

func TestConfirmOutcomes(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		var gotBody map[string]any
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/booking-confirm", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"success":true,"confirmationNumber":"FLB-1","booking":{"reference":"REF-9"}}`))
		}, 5*time.Second)

		outcome, err := client.Confirm(context.Background(), ConfirmRequest{
			SessionID:      "web-abc",
			Offer:          &models.Offer{ID: "off_1"},
			Passengers:     []models.Passenger{{FirstName: "Alice"}},
			IdempotencyKey: "key-123",
		})
		require.NoError(t, err)
		assert.True(t, outcome.Confirmed)
		assert.Equal(t, "FLB-1", outcome.ConfirmationNumber)
		assert.Equal(t, "REF-9", outcome.Reference)
		assert.Equal(t, "key-123", gotBody["idempotencyKey"])
		assert.Equal(t, "off_1", gotBody["flightId"])
	})

	t.Run("payment required", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"paymentRequired":true,"paymentUrl":"https://pay.example.com/x","paymentAmount":"612.40","currency":"EUR"}`))
		}, 5*time.Second)

		outcome, err := client.Confirm(context.Background(), ConfirmRequest{Offer: &models.Offer{}})
		require.NoError(t, err)
		assert.True(t, outcome.PaymentRequired)
		assert.Equal(t, "https://pay.example.com/x", outcome.PaymentURL)
		assert.Equal(t, 612.40, outcome.PaymentAmount)
	})

	t.Run("rejected", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error":{"message":"Fare no longer available","code":"FARE_GONE"}}`))
		}, 5*time.Second)

		_, err := client.Confirm(context.Background(), ConfirmRequest{Offer: &models.Offer{}})
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, KindRejected, apiErr.Kind)
		assert.Equal(t, "Fare no longer available", apiErr.Message)
	})
}
