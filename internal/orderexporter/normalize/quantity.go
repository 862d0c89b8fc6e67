package normalize

import (
	"strconv"
	"strings"
)

// Quantity reads the leading integer of a quantity badge. It must be at least 1.
func Quantity(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	end := strings.IndexFunc(trimmed, func(r rune) bool { return !isDigit(r) })
	if end < 0 {
		end = len(trimmed)
	}
	qty, err := strconv.Atoi(trimmed[:end])
	if err != nil || qty < 1 {
		return 0, &MalformedQuantityError{Text: text}
	}
	return qty, nil
}
