package domain

// Intensity maps a magnitude to its descriptive band on the Richter-style
// scale. Buckets are left-closed, right-open; the top bucket is unbounded.
func Intensity(magnitude float64) string {
	switch {
	case magnitude < 3.0:
		return "Micro"
	case magnitude < 4.0:
		return "Minor"
	case magnitude < 5.0:
		return "Light"
	case magnitude < 6.0:
		return "Moderate"
	case magnitude < 7.0:
		return "Strong"
	case magnitude < 8.0:
		return "Major"
	default:
		return "Great"
	}
}

// Mercalli maps a magnitude to an approximate Modified Mercalli intensity
// range. Derived at read time only; never persisted.
func Mercalli(magnitude float64) string {
	switch {
	case magnitude < 3.0:
		return "I-II"
	case magnitude < 4.0:
		return "III-IV"
	case magnitude < 5.0:
		return "V-VI"
	case magnitude < 6.0:
		return "VII-VIII"
	case magnitude < 7.0:
		return "IX-X"
	default:
		return "XI-XII"
	}
}
