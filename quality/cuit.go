package quality

import (
	"strings"
)

// ValidateCUIT validates an Argentine tax id (CUIT/CUIL) including its
// mod-11 check digit. Separators and spaces are ignored.
func ValidateCUIT(cuit string) bool {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(cuit, " ", ""), "-", "")

	if len(cleaned) != 11 {
		return false
	}

	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] < '0' || cleaned[i] > '9' {
			return false
		}
	}

	coefficients := []int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}
	sum := 0
	for i := 0; i < 10; i++ {
		digit := int(cleaned[i] - '0')
		sum += digit * coefficients[i]
	}

	checkDigit := 11 - sum%11
	if checkDigit == 11 {
		checkDigit = 0
	} else if checkDigit == 10 {
		checkDigit = 9
	}

	return checkDigit == int(cleaned[10]-'0')
}
