package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Offer is a raw flight offer exactly as the search backend returned it.
// The backend does not guarantee any particular shape: prices can be flat
// or nested, schedules can be pre-flattened or buried in raw Duffel
// segments, and numbers sometimes arrive as JSON strings. The struct only
// names the fields the wizard cares about; the original bytes are kept so
// select/confirm can forward the record untouched.
type Offer struct {
	ID          string       `json:"id,omitempty"`
	Airline     *RawAirline  `json:"airline,omitempty"`
	Price       *RawPrice    `json:"price,omitempty"`
	TotalAmount FlexFloat    `json:"total_amount,omitempty"`
	Schedule    *RawSchedule `json:"schedule,omitempty"`
	Outbound    *RawLeg      `json:"outbound,omitempty"`
	Inbound     *RawLeg      `json:"inbound,omitempty"`
	Score       *float64     `json:"score,omitempty"`
	DuffelData  *DuffelData  `json:"duffelData,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the known fields and keeps the original bytes.
func (o *Offer) UnmarshalJSON(data []byte) error {
	type alias Offer
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = Offer(a)
	o.raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}

// MarshalJSON re-emits the original backend record when one was captured,
// so a round trip through the session store loses nothing.
func (o Offer) MarshalJSON() ([]byte, error) {
	if len(o.raw) > 0 {
		return o.raw, nil
	}
	type alias Offer
	return json.Marshal(alias(o))
}

// RawJSON returns the offer exactly as received, for forwarding in the
// select and confirm payloads.
func (o *Offer) RawJSON() json.RawMessage {
	if len(o.raw) > 0 {
		return o.raw
	}
	type alias Offer
	b, err := json.Marshal((*alias)(o))
	if err != nil {
		return json.RawMessage("{}")
	}
	return b
}

type RawAirline struct {
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

type RawPrice struct {
	Total      FlexFloat `json:"total,omitempty"`
	Amount     FlexFloat `json:"amount,omitempty"`
	GrandTotal FlexFloat `json:"grandTotal,omitempty"`
	Currency   string    `json:"currency,omitempty"`
}

// RawSchedule is the pre-flattened schedule some backend variants send.
type RawSchedule struct {
	Departure string `json:"departure,omitempty"`
	Arrival   string `json:"arrival,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

// RawLeg is the per-direction summary other variants send.
type RawLeg struct {
	Departure string `json:"departure,omitempty"`
	Arrival   string `json:"arrival,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

// DuffelData carries the raw provider payload when the backend forwards
// it unprocessed.
type DuffelData struct {
	Slices []RawSlice `json:"slices,omitempty"`
}

// RawSlice is one direction of travel made of one or more segments.
type RawSlice struct {
	Duration string       `json:"duration,omitempty"` // ISO-8601, e.g. "PT14H30M"
	Segments []RawSegment `json:"segments,omitempty"`
}

// RawSegment is one non-stop leg within a slice.
type RawSegment struct {
	DepartingAt      string      `json:"departing_at,omitempty"`
	ArrivingAt       string      `json:"arriving_at,omitempty"`
	Origin           *RawAirport `json:"origin,omitempty"`
	Destination      *RawAirport `json:"destination,omitempty"`
	MarketingCarrier *RawCarrier `json:"marketing_carrier,omitempty"`
	OperatingCarrier *RawCarrier `json:"operating_carrier,omitempty"`
	Carrier          string      `json:"carrier,omitempty"`
}

type RawAirport struct {
	IataCode string `json:"iata_code,omitempty"`
	Name     string `json:"name,omitempty"`
}

type RawCarrier struct {
	Name     string `json:"name,omitempty"`
	IataCode string `json:"iata_code,omitempty"`
}

// FlexFloat decodes a JSON number that some backend variants quote as a
// string ("439.00") and others send as a number (439). Zero means absent.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unparseable values degrade to zero instead of failing the
		// whole offer list.
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// NormalizedOffer is the display-ready summary produced from a raw Offer.
// Every field is always populated, with "N/A"/zero placeholders where the
// backend record gave nothing usable.
type NormalizedOffer struct {
	ID       string         `json:"id"`
	Airline  string         `json:"airline"`
	Outbound NormalizedLeg  `json:"outbound"`
	Inbound  *NormalizedLeg `json:"inbound,omitempty"`
	Price    Pricing        `json:"price"`
	Layovers []Layover      `json:"layovers,omitempty"`
	Score    int            `json:"score"`
}

// NormalizedLeg is one direction of travel, flattened for display.
type NormalizedLeg struct {
	Departure        string `json:"departure"` // clock time or display string
	Arrival          string `json:"arrival"`
	DepartureAirport string `json:"departureAirport"`
	ArrivalAirport   string `json:"arrivalAirport"`
	Duration         string `json:"duration"`
}

// Layover is a plane change between two consecutive segments.
type Layover struct {
	Airport string `json:"airport"`
	Minutes int    `json:"minutes"`
	Status  string `json:"status"` // short, normal or long
}
