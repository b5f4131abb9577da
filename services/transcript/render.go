package transcript

import (
	"fmt"
	"html/template"
	"strings"

	"aviachat/models"
)

// The widget used to build these snippets by string concatenation inline
// with the data extraction. Keeping them as templates means the data model
// stays clean and escaping is handled for us.
var offerListTmpl = template.Must(template.New("offers").Parse(`<div class="flight-results">
<h3>Available flights</h3>
{{- range $i, $o := .Offers}}
<div class="flight-card" data-index="{{$i}}">
  <div class="flight-airline">{{$o.Airline}}</div>
  <div class="flight-leg">OUT: {{$o.Outbound.Departure}} ({{$o.Outbound.DepartureAirport}}) &rarr; {{$o.Outbound.Arrival}} ({{$o.Outbound.ArrivalAirport}}) | {{$o.Outbound.Duration}}</div>
{{- if $o.Inbound}}
  <div class="flight-leg">RET: {{$o.Inbound.Departure}} ({{$o.Inbound.DepartureAirport}}) &rarr; {{$o.Inbound.Arrival}} ({{$o.Inbound.ArrivalAirport}}) | {{$o.Inbound.Duration}}</div>
{{- end}}
{{- range $o.Layovers}}
  <div class="flight-layover {{.Status}}">Layover {{.Airport}}: {{.Minutes}}min</div>
{{- end}}
  <div class="flight-price">{{printf "%.2f" $o.Price.Amount}} {{$o.Price.Currency}}</div>
  <div class="flight-score">Score {{$o.Score}}/100</div>
</div>
{{- end}}
</div>`))

var summaryTmpl = template.Must(template.New("summary").Parse(`<div class="booking-summary">
<h3>Booking summary</h3>
<div class="summary-airline">{{.Airline}}</div>
<div class="summary-leg">{{.Outbound.Departure}} ({{.Outbound.DepartureAirport}}) &rarr; {{.Outbound.Arrival}} ({{.Outbound.ArrivalAirport}})</div>
{{- range .Passengers}}
<div class="summary-passenger">{{.FirstName}} {{.LastName}} ({{.DateOfBirth}})</div>
{{- end}}
<div class="summary-contact">{{.Contact.Email}} / {{.Contact.Phone}}</div>
<div class="summary-price">Total: {{printf "%.2f" .Amount}} {{.Currency}}</div>
</div>`))

// OfferCards renders the result list entry for a search turn.
func OfferCards(offers []models.NormalizedOffer) (models.TranscriptEntry, error) {
	var sb strings.Builder
	if err := offerListTmpl.Execute(&sb, struct {
		Offers []models.NormalizedOffer
	}{offers}); err != nil {
		return models.TranscriptEntry{}, fmt.Errorf("render offer cards: %w", err)
	}
	body := fmt.Sprintf("%d flights available", len(offers))
	return BotCard(body, sb.String()), nil
}

// BookingSummary renders the recap card shown before confirmation.
func BookingSummary(offer models.NormalizedOffer, passengers []models.Passenger, contact models.ContactInfo, pricing models.Pricing) (models.TranscriptEntry, error) {
	var sb strings.Builder
	data := struct {
		models.NormalizedOffer
		Passengers []models.Passenger
		Contact    models.ContactInfo
		Amount     float64
		Currency   string
	}{offer, passengers, contact, pricing.Amount, pricing.Currency}
	if err := summaryTmpl.Execute(&sb, data); err != nil {
		return models.TranscriptEntry{}, fmt.Errorf("render booking summary: %w", err)
	}
	return BotCard("Booking summary", sb.String()), nil
}
