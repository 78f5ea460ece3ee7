package tools

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsePartySize parses a positive integer party size from free text.
func ParsePartySize(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("party size %q is not a positive number", text)
	}
	return n, nil
}

var timePattern = regexp.MustCompile(`(\d{1,2}):?(\d{2})?\s*(am|pm)?`)

// ParseArrivalTime parses "7pm", "7:30 pm" or 24-hour "19:30" into a
// same-day timestamp. now anchors the day and timezone.
func ParseArrivalTime(text string, now time.Time) (time.Time, error) {
	m := timePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if m == nil {
		return time.Time{}, fmt.Errorf("no time found in %q", text)
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("time %q out of range", text)
	}

	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), nil
}

// ParsePaymentText maps free text to a payment method by keyword.
func ParsePaymentText(text string) (string, bool) {
	t := strings.ToLower(text)
	for _, kw := range []string{"online", "esewa", "khalti"} {
		if strings.Contains(t, kw) {
			return "online", true
		}
	}
	for _, kw := range []string{"cash", "cod"} {
		if strings.Contains(t, kw) {
			return "cash", true
		}
	}
	return "", false
}
