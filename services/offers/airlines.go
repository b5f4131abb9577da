package offers

import "fmt"

// carrierNames maps IATA airline codes to display names. The search
// backend frequently returns bare codes in raw segments.
var carrierNames = map[string]string{
	"AF": "Air France",
	"BA": "British Airways",
	"LH": "Lufthansa",
	"KL": "KLM Royal Dutch Airlines",
	"SN": "Brussels Airlines",
	"LX": "Swiss International Air Lines",
	"TK": "Turkish Airlines",
	"EK": "Emirates",
	"QR": "Qatar Airways",
	"EY": "Etihad Airways",
	"TG": "Thai Airways",
	"SQ": "Singapore Airlines",
	"CX": "Cathay Pacific",
	"JL": "Japan Airlines",
	"NH": "All Nippon Airways",
	"AA": "American Airlines",
	"UA": "United Airlines",
	"DL": "Delta Air Lines",
	"IB": "Iberia",
	"AZ": "ITA Airways",
	"TP": "TAP Air Portugal",
	"SK": "Scandinavian Airlines",
	"AY": "Finnair",
	"OS": "Austrian Airlines",
	"VN": "Vietnam Airlines",
	"KE": "Korean Air",
}

// airlineNameForCode resolves an IATA carrier code to a display name.
// Unknown codes render as "<CODE> Airlines" rather than disappearing.
func airlineNameForCode(code string) string {
	if name, ok := carrierNames[code]; ok {
		return name
	}
	return fmt.Sprintf("%s Airlines", code)
}
