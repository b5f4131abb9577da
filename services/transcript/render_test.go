package transcript

import (
	"testing"

	"aviachat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOffer() models.NormalizedOffer {
	return models.NormalizedOffer{
		ID:      "off_1",
		Airline: "Qatar Airways",
		Outbound: models.NormalizedLeg{
			Departure:        "10:25",
			Arrival:          "07:05",
			DepartureAirport: "BRU",
			ArrivalAirport:   "BKK",
			Duration:         "14h30m",
		},
		Price:    models.Pricing{Amount: 612.40, Currency: "EUR"},
		Layovers: []models.Layover{{Airport: "DOH", Minutes: 90, Status: "normal"}},
		Score:    81,
	}
}

func TestOfferCards(t *testing.T) {
	entry, err := OfferCards([]models.NormalizedOffer{sampleOffer()})
	require.NoError(t, err)

	assert.Equal(t, "bot", entry.Role)
	assert.Equal(t, "card", entry.Kind)
	assert.Equal(t, "1 flights available", entry.Body)

	assert.Contains(t, entry.HTML, "Qatar Airways")
	assert.Contains(t, entry.HTML, "10:25 (BRU)")
	assert.Contains(t, entry.HTML, "612.40 EUR")
	assert.Contains(t, entry.HTML, "Layover DOH: 90min")
	assert.Contains(t, entry.HTML, "Score 81/100")
	assert.Contains(t, entry.HTML, `data-index="0"`)
}

func TestOfferCardsEscapesBackendText(t *testing.T) {
	offer := sampleOffer()
	offer.Airline = `<script>alert("x")</script>`
	entry, err := OfferCards([]models.NormalizedOffer{offer})
	require.NoError(t, err)
	assert.NotContains(t, entry.HTML, "<script>")
}

func TestBookingSummary(t *testing.T) {
	entry, err := BookingSummary(sampleOffer(),
		[]models.Passenger{{FirstName: "Alice", LastName: "Martin", DateOfBirth: "1990-04-21"}},
		models.ContactInfo{Email: "alice@example.com", Phone: "+3225550101"},
		models.Pricing{Amount: 640, Currency: "EUR"},
	)
	require.NoError(t, err)

	assert.Contains(t, entry.HTML, "Alice Martin (1990-04-21)")
	assert.Contains(t, entry.HTML, "alice@example.com")
	assert.Contains(t, entry.HTML, "Total: 640.00 EUR")
}

func TestAppendReturnsDelta(t *testing.T) {
	sess := &models.BookingSession{}
	added := Append(sess, User("hello"), Bot("hi there"))

	require.Len(t, added, 2)
	require.Len(t, sess.Transcript, 2)
	assert.Equal(t, "user", sess.Transcript[0].Role)
	assert.Equal(t, "hello", sess.Transcript[0].Body)
	assert.Equal(t, "bot", sess.Transcript[1].Role)
	assert.False(t, sess.Transcript[1].At.IsZero())
}
