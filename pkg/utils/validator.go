package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidateQuantity validates a line-item quantity against inclusive bounds
func ValidateQuantity(quantity, min, max int) error {
	if quantity < min || quantity > max {
		return fmt.Errorf("quantity must be between %d and %d: %d", min, max, quantity)
	}
	return nil
}

// ValidateAmount validates a monetary amount
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative: %.2f", amount)
	}
	return nil
}

// ValidateTaxRate validates a tax rate percentage
func ValidateTaxRate(rate float64) error {
	if rate < 0 || rate > 100 {
		return fmt.Errorf("tax rate must be between 0 and 100: %.2f", rate)
	}
	return nil
}

// SanitizeFileName strips path components and control characters from an
// uploaded file name so it is safe to store on disk
func SanitizeFileName(name string) string {
	// Drop any client-supplied directory part
	if idx := strings.LastIndexAny(name, "/\\"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "..", "")

	// Remove control characters
	sanitized := regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(name, "")
	return sanitized
}

// SanitizeString removes control characters from free-form input
func SanitizeString(s string) string {
	return regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
}
