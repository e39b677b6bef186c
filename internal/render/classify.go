package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/storefront-map/internal/core/model"
)

const (
	UnknownActivity = "UNKNOWN"
	ConstructionYes = "YES"
	ConstructionNo  = "NO"

	placeholderNA      = "N/A"
	placeholderAddress = "Unknown address"
)

// ParseCoord reads the longest numeric prefix of s, the way a browser's
// parseFloat does: "40.7abc" is 40.7, "abc" and "" are NaN.
func ParseCoord(c model.RawCoord) float64 {
	s := strings.TrimLeft(string(c), " \t\n\r\v\f\u00a0\ufeff")
	n := numericPrefix(s)
	if n == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// numericPrefix returns [sign] digits [. digits] [e [sign] digits], or an
// Infinity literal, from the start of s.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return s[:i]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Position parses both coordinates. ok is false when either is zero, NaN or
// infinite, so a true 0 latitude is dropped together with parse failures.
func Position(r model.PropertyRecord) (lat, lng float64, ok bool) {
	lat = ParseCoord(r.Latitude)
	lng = ParseCoord(r.Longitude)
	if !usable(lat) || !usable(lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

func usable(f float64) bool {
	return f != 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func Activity(r model.PropertyRecord) string {
	if r.PrimaryActivity == "" {
		return UnknownActivity
	}
	return r.PrimaryActivity
}

// Construction collapses every value other than the literal "YES" to "NO".
func Construction(r model.PropertyRecord) string {
	if r.ConstructionReported == ConstructionYes {
		return ConstructionYes
	}
	return ConstructionNo
}

// Popup interpolates the record fields verbatim; sanitizing happens when the
// popup is bound to a marker.
func Popup(r model.PropertyRecord) string {
	return fmt.Sprintf(
		"<strong>%s</strong><br/>Activity: %s<br/>Borough: %s<br/>Vacant 6/30: %s",
		orDefault(r.Address, placeholderAddress),
		orDefault(r.PrimaryActivity, placeholderNA),
		orDefault(r.Borough, placeholderNA),
		orDefault(r.VacantOrDateSold, placeholderNA),
	)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
