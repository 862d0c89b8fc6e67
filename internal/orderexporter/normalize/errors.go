package normalize

import "fmt"

type DateParseError struct {
	Text   string
	Reason string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("cannot parse date %q: %s", e.Text, e.Reason)
}

type MalformedAmountError struct {
	Text string
}

func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("malformed amount %q", e.Text)
}

type MalformedQuantityError struct {
	Text string
}

func (e *MalformedQuantityError) Error() string {
	return fmt.Sprintf("malformed quantity %q", e.Text)
}
