// Package flightapi wraps the outbound calls to the workflow backend that
// does the actual natural-language parsing, flight search, pricing and
// booking. Everything here is plain POST/JSON against deployment-configured
// webhook paths; this layer only adds a bounded timeout and error
// translation. No call is retried automatically: the remote side is not
// guaranteed idempotent, so all retry is user-initiated.
package flightapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aviachat/models"

	"go.uber.org/zap"
)

// Client talks to the search / select / passenger-data / booking-confirm
// webhook endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger

	searchPath    string
	selectPath    string
	passengerPath string
	confirmPath   string
}

// Config carries the deployment-specific endpoint layout.
type Config struct {
	BaseURL       string
	SearchPath    string
	SelectPath    string
	PassengerPath string
	ConfirmPath   string
	Timeout       time.Duration
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       cfg.BaseURL,
		logger:        logger,
		searchPath:    cfg.SearchPath,
		selectPath:    cfg.SelectPath,
		passengerPath: cfg.PassengerPath,
		confirmPath:   cfg.ConfirmPath,
	}
}

// SearchResult is a successful (non-empty) search response.
type SearchResult struct {
	Offers     []models.Offer
	OriginCity string
	DestCity   string
	Message    string
}

type searchResponse struct {
	Success      bool           `json:"success"`
	BestFlights  []models.Offer `json:"bestFlights"`
	SearchParams struct {
		OriginCity      string `json:"originCity"`
		DestinationCity string `json:"destinationCity"`
	} `json:"searchParams"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Search submits the user's natural-language query. An empty or malformed
// offer list comes back as a KindNoResults error carrying any
// backend-supplied suggestions.
func (c *Client) Search(ctx context.Context, query, sessionID string) (*SearchResult, error) {
	payload := map[string]any{
		"message":   query,
		"sessionId": sessionID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"source":    "web",
	}

	var resp searchResponse
	if err := c.post(ctx, c.searchPath, payload, &resp); err != nil {
		return nil, err
	}

	if !resp.Success || len(resp.BestFlights) == 0 {
		return nil, &APIError{
			Kind:        KindNoResults,
			Message:     resp.Message,
			Suggestions: resp.Suggestions,
		}
	}

	return &SearchResult{
		Offers:     resp.BestFlights,
		OriginCity: resp.SearchParams.OriginCity,
		DestCity:   resp.SearchParams.DestinationCity,
		Message:    resp.Message,
	}, nil
}

// SelectResult carries the backend's re-quote for a chosen offer.
type SelectResult struct {
	Pricing *models.Pricing
}

type selectResponse struct {
	Success bool            `json:"success"`
	Pricing *models.Pricing `json:"pricing"`
	Error   string          `json:"error"`
}

// Select tells the backend which offer the user picked so it can verify
// the price is still current.
func (c *Client) Select(ctx context.Context, sessionID string, index int, offer *models.Offer) (*SelectResult, error) {
	// Some deployments have no select webhook; selection then happens
	// purely client-side and the offer's own price stands.
	if c.selectPath == "" {
		return &SelectResult{}, nil
	}

	payload := map[string]any{
		"flightIndex":    index,
		"selectedFlight": offer.RawJSON(),
		"passengers":     1,
		"sessionId":      sessionID,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	var resp selectResponse
	if err := c.post(ctx, c.selectPath, payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Kind: KindRejected, Message: orDefault(resp.Error, "flight selection was rejected")}
	}
	return &SelectResult{Pricing: resp.Pricing}, nil
}

// PassengerResult is the backend's authoritative echo of the passenger
// form. ValidatedPassengers, when present, replace the locally entered set.
type PassengerResult struct {
	Passengers []models.Passenger
	Contact    *models.ContactInfo
}

type passengerResponse struct {
	Success             bool                `json:"success"`
	ValidatedPassengers []models.Passenger  `json:"validatedPassengers"`
	ContactInfo         *models.ContactInfo `json:"contactInfo"`
	Message             string              `json:"message"`
	Errors              []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

// SubmitPassengers sends the validated form for authoritative validation.
// Backend field errors are surfaced verbatim via KindValidation.
func (c *Client) SubmitPassengers(ctx context.Context, sessionID string, passengers []models.Passenger, contact models.ContactInfo) (*PassengerResult, error) {
	// The passenger-data webhook is optional as well; without it the
	// locally validated form is taken as-is.
	if c.passengerPath == "" {
		return &PassengerResult{}, nil
	}

	payload := map[string]any{
		"sessionId":  sessionID,
		"passengers": passengers,
		"contact":    contact,
	}

	var resp passengerResponse
	if err := c.post(ctx, c.passengerPath, payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		apiErr := &APIError{
			Kind:    KindValidation,
			Message: orDefault(resp.Message, "passenger details were rejected"),
			Fields:  map[string]string{},
		}
		for _, e := range resp.Errors {
			apiErr.Fields[e.Field] = e.Message
		}
		return nil, apiErr
	}
	return &PassengerResult{Passengers: resp.ValidatedPassengers, Contact: resp.ContactInfo}, nil
}

// ConfirmRequest is the consolidated booking payload.
type ConfirmRequest struct {
	SessionID      string
	Offer          *models.Offer
	Passengers     []models.Passenger
	Contact        models.ContactInfo
	IdempotencyKey string
}

// BookingOutcome is the terminal result of a confirm call.
type BookingOutcome struct {
	Confirmed          bool
	ConfirmationNumber string
	Reference          string

	PaymentRequired bool
	PaymentURL      string
	PaymentAmount   float64
	Currency        string
}

type confirmResponse struct {
	Success            bool   `json:"success"`
	ConfirmationNumber string `json:"confirmationNumber"`
	Booking            struct {
		Reference string `json:"reference"`
	} `json:"booking"`
	PaymentRequired bool             `json:"paymentRequired"`
	PaymentURL      string           `json:"paymentUrl"`
	PaymentAmount   models.FlexFloat `json:"paymentAmount"`
	Currency        string           `json:"currency"`
	Error           *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Confirm finalizes the booking. The idempotency key is a documented
// backend contract: a confirm retried after a timeout carries the same key
// so the backend can refuse to book twice.
func (c *Client) Confirm(ctx context.Context, req ConfirmRequest) (*BookingOutcome, error) {
	flightID := ""
	var selected json.RawMessage
	if req.Offer != nil {
		flightID = req.Offer.ID
		selected = req.Offer.RawJSON()
	}
	payload := map[string]any{
		"sessionId":      req.SessionID,
		"flightId":       flightID,
		"selectedFlight": selected,
		"passengers":     req.Passengers,
		"contact":        req.Contact,
		"payment":        map[string]any{"method": "external"},
		"idempotencyKey": req.IdempotencyKey,
	}

	var resp confirmResponse
	if err := c.post(ctx, c.confirmPath, payload, &resp); err != nil {
		return nil, err
	}

	switch {
	case resp.PaymentRequired:
		return &BookingOutcome{
			PaymentRequired: true,
			PaymentURL:      resp.PaymentURL,
			PaymentAmount:   float64(resp.PaymentAmount),
			Currency:        resp.Currency,
		}, nil
	case resp.Success:
		return &BookingOutcome{
			Confirmed:          true,
			ConfirmationNumber: resp.ConfirmationNumber,
			Reference:          resp.Booking.Reference,
		}, nil
	default:
		msg := "booking was rejected"
		if resp.Error != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		}
		return nil, &APIError{Kind: KindRejected, Message: msg}
	}
}

// post sends one JSON request and decodes the JSON reply. A status outside
// 200-299 is always a failure regardless of body content.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &APIError{Kind: KindMalformed, Message: fmt.Sprintf("encode request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := classifyTransport(err)
		c.logger.Warn("webhook call failed",
			zap.String("path", path),
			zap.String("kind", string(apiErr.Kind)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return apiErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("webhook returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &APIError{
			Kind:    KindHTTP,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindMalformed, Message: fmt.Sprintf("decode response: %v", err)}
	}

	c.logger.Debug("webhook call ok",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
