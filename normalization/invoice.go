package normalization

// Invoice numbers arrive in many shapes: "0001-00012345", "FC A 8313",
// "12345". All comparison happens on the digits-only form.

// NormalizeInvoiceNumber strips every non-digit character from raw and
// returns the remaining digit string. The result may be empty when raw
// carries no digits at all. The function is idempotent.
func NormalizeInvoiceNumber(raw string) string {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	return string(digits)
}

// IsShortNumber reports whether a normalized number is a short form
// (4 to 5 digits), as printed on most point-of-sale receipts.
func IsShortNumber(id string) bool {
	return len(id) >= 4 && len(id) <= 5
}

// IsLongNumber reports whether a normalized number is a long form
// (more than 5 digits), typically branch + sequence.
func IsLongNumber(id string) bool {
	return len(id) > 5
}
