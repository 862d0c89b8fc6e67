package normalize

import (
	"strconv"
	"strings"
	"time"

	"order-exporter/internal/orderexporter/data"
)

const (
	todayKeyword     = "today"
	tomorrowKeyword  = "tomorrow"
	yesterdayKeyword = "yesterday"
)

var months = map[string]time.Month{
	"January":   time.January,
	"February":  time.February,
	"March":     time.March,
	"April":     time.April,
	"May":       time.May,
	"June":      time.June,
	"July":      time.July,
	"August":    time.August,
	"September": time.September,
	"October":   time.October,
	"November":  time.November,
	"December":  time.December,
}

// OrderDate converts "<day> <Month> <year>" (or "<Month> <day>, <year>") to YYYY-MM-DD.
// Month names are matched case-sensitively against the English table.
func OrderDate(text string) (string, error) {
	tokens := dateTokens(text)
	if len(tokens) < 3 {
		return "", &DateParseError{Text: text, Reason: "expected day, month and year"}
	}
	tokens = tokens[len(tokens)-3:]

	day, month, ok := dayAndMonth(tokens[0], tokens[1])
	if !ok {
		return "", &DateParseError{Text: text, Reason: "unknown day or month"}
	}
	year, err := strconv.Atoi(tokens[2])
	if err != nil || year < 1000 || year > 9999 {
		return "", &DateParseError{Text: text, Reason: "invalid year"}
	}
	date, ok := calendarDate(year, month, day)
	if !ok {
		return "", &DateParseError{Text: text, Reason: "no such calendar day"}
	}
	return date.Format(data.DateLayout), nil
}

// StatusDate resolves the date mentioned in a shipment status line to MM-DD.
//
// Relative keywords win, checked in the order today, tomorrow, yesterday.
// Otherwise the second and third tokens are read as day and month of the
// current year. Failing that the order date is used. An empty result means
// nothing could be resolved.
func StatusDate(text string, now time.Time, orderDate string) string {
	switch {
	case strings.Contains(text, todayKeyword):
		return now.Format(data.StatusDateLayout)
	case strings.Contains(text, tomorrowKeyword):
		return now.AddDate(0, 0, 1).Format(data.StatusDateLayout)
	case strings.Contains(text, yesterdayKeyword):
		return now.AddDate(0, 0, -1).Format(data.StatusDateLayout)
	}

	tokens := dateTokens(text)
	if len(tokens) >= 3 {
		if day, month, ok := dayAndMonth(tokens[1], tokens[2]); ok {
			if date, ok := calendarDate(now.Year(), month, day); ok {
				return date.Format(data.StatusDateLayout)
			}
		}
	}

	date, err := time.Parse(data.DateLayout, orderDate)
	if err != nil {
		return ""
	}
	return date.Format(data.StatusDateLayout)
}

// StatusLabel is the first word of a status line, "Old" when the line is blank.
func StatusLabel(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return data.DefaultItemStatus
	}
	return tokens[0]
}

func dateTokens(text string) []string {
	fields := strings.Fields(text)
	res := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",.")
		if f != "" {
			res = append(res, f)
		}
	}
	return res
}

// dayAndMonth accepts the two tokens in either order.
func dayAndMonth(a, b string) (int, time.Month, bool) {
	if month, ok := months[b]; ok {
		if day, err := strconv.Atoi(a); err == nil {
			return day, month, true
		}
	}
	if month, ok := months[a]; ok {
		if day, err := strconv.Atoi(b); err == nil {
			return day, month, true
		}
	}
	return 0, 0, false
}

func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || date.Month() != month {
		return time.Time{}, false
	}
	return date, true
}
