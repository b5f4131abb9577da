package offers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"days merged into hours", "P1DT7H10M", "31h10m"},
		{"hours and minutes", "PT14H30M", "14h30m"},
		{"minutes only", "PT45M", "45min"},
		{"hours only", "PT2H", "2h00m"},
		{"two days", "P2DT1H5M", "49h05m"},
		{"already formatted passes through", "14h30m", "14h30m"},
		{"empty", "", "N/A"},
		{"garbage passes through", "about 3 hours", "about 3 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestAirlineNameForCode(t *testing.T) {
	assert.Equal(t, "Brussels Airlines", airlineNameForCode("SN"))
	assert.Equal(t, "Qatar Airways", airlineNameForCode("QR"))
	assert.Equal(t, "ZZ Airlines", airlineNameForCode("ZZ"))
}
