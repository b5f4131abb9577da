// Package offers turns the heterogeneous raw offer records the search
// backend returns into a single display-ready shape. Every extraction is
// total: a malformed sub-field degrades to a placeholder, never an error,
// so one bad offer cannot blank the whole result list.
package offers

import (
	"time"

	"aviachat/models"

	"github.com/samber/lo"
)

const (
	placeholder  = "N/A"
	defaultScore = 70

	// Gaps outside this window are parsing noise, not layovers.
	minLayoverMinutes = 30
	maxLayoverMinutes = 1440

	shortLayoverMinutes = 60
	longLayoverMinutes  = 300
)

// NormalizeAll maps a raw result set, preserving order.
func NormalizeAll(raw []models.Offer) []models.NormalizedOffer {
	return lo.Map(raw, func(o models.Offer, _ int) models.NormalizedOffer {
		return Normalize(&o)
	})
}

// Normalize builds a complete NormalizedOffer from whatever the backend
// sent. Pure: the same input always yields the same output.
func Normalize(raw *models.Offer) models.NormalizedOffer {
	if raw == nil {
		return models.NormalizedOffer{
			Airline:  placeholder,
			Outbound: emptyLeg(),
			Price:    models.Pricing{Currency: "EUR"},
			Score:    defaultScore,
		}
	}

	n := models.NormalizedOffer{
		ID:      raw.ID,
		Airline: extractAirline(raw),
		Price:   extractPrice(raw),
		Score:   extractScore(raw),
	}

	n.Outbound = extractLeg(raw, 0)
	if inbound := extractInbound(raw); inbound != nil {
		n.Inbound = inbound
	}
	n.Layovers = extractLayovers(outboundSlice(raw))
	return n
}

// extractPrice resolves the price in priority order: price.total,
// price.amount, price.grandTotal, then top-level total_amount. The order
// matters; different backend variants populate different fields.
func extractPrice(raw *models.Offer) models.Pricing {
	p := models.Pricing{Currency: "EUR"}
	if raw.Price != nil && raw.Price.Currency != "" {
		p.Currency = raw.Price.Currency
	}
	if raw.Price != nil {
		switch {
		case raw.Price.Total != 0:
			p.Amount = float64(raw.Price.Total)
			return p
		case raw.Price.Amount != 0:
			p.Amount = float64(raw.Price.Amount)
			return p
		case raw.Price.GrandTotal != 0:
			p.Amount = float64(raw.Price.GrandTotal)
			return p
		}
	}
	p.Amount = float64(raw.TotalAmount)
	return p
}

// extractAirline resolves airline.name first, then the IATA carrier
// table, then falls back to the raw segment carrier fields.
func extractAirline(raw *models.Offer) string {
	if raw.Airline != nil {
		if raw.Airline.Name != "" {
			return raw.Airline.Name
		}
		if raw.Airline.Code != "" {
			return airlineNameForCode(raw.Airline.Code)
		}
	}

	if sl := outboundSlice(raw); sl != nil && len(sl.Segments) > 0 {
		seg := sl.Segments[0]
		if seg.MarketingCarrier != nil && seg.MarketingCarrier.Name != "" {
			return seg.MarketingCarrier.Name
		}
		if seg.MarketingCarrier != nil && seg.MarketingCarrier.IataCode != "" {
			return airlineNameForCode(seg.MarketingCarrier.IataCode)
		}
		if seg.OperatingCarrier != nil && seg.OperatingCarrier.Name != "" {
			return seg.OperatingCarrier.Name
		}
		if seg.Carrier != "" {
			return airlineNameForCode(seg.Carrier)
		}
	}
	return placeholder
}

func extractScore(raw *models.Offer) int {
	if raw.Score == nil {
		return defaultScore
	}
	s := int(*raw.Score)
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// extractLeg prefers a pre-flattened schedule, then the per-direction
// summary, then derives everything from the raw segments of the slice.
func extractLeg(raw *models.Offer, sliceIdx int) models.NormalizedLeg {
	if sliceIdx == 0 {
		if raw.Schedule != nil && (raw.Schedule.Departure != "" || raw.Schedule.Arrival != "") {
			return models.NormalizedLeg{
				Departure:        orPlaceholder(raw.Schedule.Departure),
				Arrival:          orPlaceholder(raw.Schedule.Arrival),
				DepartureAirport: placeholder,
				ArrivalAirport:   placeholder,
				Duration:         FormatDuration(raw.Schedule.Duration),
			}
		}
		if raw.Outbound != nil && (raw.Outbound.Departure != "" || raw.Outbound.Arrival != "") {
			return models.NormalizedLeg{
				Departure:        orPlaceholder(raw.Outbound.Departure),
				Arrival:          orPlaceholder(raw.Outbound.Arrival),
				DepartureAirport: placeholder,
				ArrivalAirport:   placeholder,
				Duration:         FormatDuration(raw.Outbound.Duration),
			}
		}
	}

	if raw.DuffelData != nil && sliceIdx < len(raw.DuffelData.Slices) {
		return legFromSlice(&raw.DuffelData.Slices[sliceIdx])
	}
	return emptyLeg()
}

func extractInbound(raw *models.Offer) *models.NormalizedLeg {
	if raw.Inbound != nil && (raw.Inbound.Departure != "" || raw.Inbound.Arrival != "") {
		leg := models.NormalizedLeg{
			Departure:        orPlaceholder(raw.Inbound.Departure),
			Arrival:          orPlaceholder(raw.Inbound.Arrival),
			DepartureAirport: placeholder,
			ArrivalAirport:   placeholder,
			Duration:         FormatDuration(raw.Inbound.Duration),
		}
		return &leg
	}
	if raw.DuffelData != nil && len(raw.DuffelData.Slices) > 1 {
		leg := legFromSlice(&raw.DuffelData.Slices[1])
		return &leg
	}
	return nil
}

func legFromSlice(sl *models.RawSlice) models.NormalizedLeg {
	leg := emptyLeg()
	if sl == nil || len(sl.Segments) == 0 {
		return leg
	}

	first := sl.Segments[0]
	last := sl.Segments[len(sl.Segments)-1]

	if t, ok := parseSegmentTime(first.DepartingAt); ok {
		leg.Departure = t.Format("15:04")
	}
	if t, ok := parseSegmentTime(last.ArrivingAt); ok {
		leg.Arrival = t.Format("15:04")
	}
	if first.Origin != nil && first.Origin.IataCode != "" {
		leg.DepartureAirport = first.Origin.IataCode
	}
	if last.Destination != nil && last.Destination.IataCode != "" {
		leg.ArrivalAirport = last.Destination.IataCode
	}
	leg.Duration = FormatDuration(sl.Duration)
	return leg
}

// extractLayovers reports the gap between consecutive segments of a
// slice. Gaps under 30 minutes or over a day are dropped as noise.
func extractLayovers(sl *models.RawSlice) []models.Layover {
	if sl == nil || len(sl.Segments) < 2 {
		return nil
	}

	var layovers []models.Layover
	for i := 1; i < len(sl.Segments); i++ {
		prev, next := sl.Segments[i-1], sl.Segments[i]

		arrive, ok1 := parseSegmentTime(prev.ArrivingAt)
		depart, ok2 := parseSegmentTime(next.DepartingAt)
		if !ok1 || !ok2 {
			continue
		}

		gap := int(depart.Sub(arrive).Minutes())
		if gap < minLayoverMinutes || gap > maxLayoverMinutes {
			continue
		}

		status := "normal"
		if gap < shortLayoverMinutes {
			status = "short"
		} else if gap > longLayoverMinutes {
			status = "long"
		}

		airport := placeholder
		if prev.Destination != nil && prev.Destination.IataCode != "" {
			airport = prev.Destination.IataCode
		}

		layovers = append(layovers, models.Layover{
			Airport: airport,
			Minutes: gap,
			Status:  status,
		})
	}
	return layovers
}

func outboundSlice(raw *models.Offer) *models.RawSlice {
	if raw.DuffelData == nil || len(raw.DuffelData.Slices) == 0 {
		return nil
	}
	return &raw.DuffelData.Slices[0]
}

// parseSegmentTime accepts the timestamp flavours seen in raw segments:
// RFC 3339 with zone, or a bare local "2006-01-02T15:04:05".
func parseSegmentTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func emptyLeg() models.NormalizedLeg {
	return models.NormalizedLeg{
		Departure:        placeholder,
		Arrival:          placeholder,
		DepartureAirport: placeholder,
		ArrivalAirport:   placeholder,
		Duration:         placeholder,
	}
}
