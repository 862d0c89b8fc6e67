package orderid

import "strings"

const (
	groupSeparator = '-'
	// 3-7-7 digit groups, e.g. 407-1881395-0003506.
	validLength = 3 + 1 + 7 + 1 + 7
)

var invisible = strings.NewReplacer(
	"\u200e", "", // left-to-right mark
	"\u200f", "", // right-to-left mark
	"\u2066", "",
	"\u2067", "",
	"\u2068", "",
	"\u2069", "",
	"\u00a0", " ",
)

// Normalize removes bidi marks, a leading "#" and surrounding space.
func Normalize(raw string) string {
	s := invisible.Replace(raw)
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	return strings.TrimSpace(s)
}

// Validate reports whether number looks like a merchant order id.
func Validate(number string) bool {
	return validate([]byte(number))
}

func validate(s []byte) bool {
	if len(s) != validLength {
		return false
	}
	for i, c := range s {
		switch i {
		case 3, 11:
			if c != groupSeparator {
				return false
			}
		default:
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}
