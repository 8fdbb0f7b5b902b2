package iproxy

import (
	"fmt"
	"strings"
	"time"
)

// planSeparator splits planDetails.message into plan name and expiry, e.g.
// "BigDaddy Pro active till 01.01.2025".
const planSeparator = " active till "

// planDateLayout is the expiry format inside planDetails.message.
const planDateLayout = "02.01.2006"

// labelDateLayout is the expiry format appended to the connection name, e.g.
// "Office phone - 31/12/2024".
const labelDateLayout = "02/01/2006"

// parsePlanMessage splits the combined plan string into plan name and
// expiration date. A malformed message returns an error; the caller
// substitutes the documented defaults (empty plan, zero expiration) and keeps
// going.
func parsePlanMessage(message string) (string, time.Time, error) {
	plan, dateStr, found := strings.Cut(message, planSeparator)
	if !found {
		return "", time.Time{}, fmt.Errorf("plan message %q has no %q marker", message, planSeparator)
	}
	expires, err := time.Parse(planDateLayout, dateStr)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("plan message %q has malformed date: %w", message, err)
	}
	return plan, expires, nil
}

// parseNameLabel splits a "display name - DD/MM/YYYY" label. The date part is
// optional: without the separator the whole label is the name, and a
// malformed date still yields the stripped name with a zero expiry.
func parseNameLabel(label string) (string, time.Time) {
	idx := strings.LastIndex(label, " - ")
	if idx < 0 {
		return label, time.Time{}
	}
	name := label[:idx]
	expires, err := time.Parse(labelDateLayout, label[idx+3:])
	if err != nil {
		return name, time.Time{}
	}
	return name, expires
}
