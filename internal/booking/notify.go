package booking

import (
	"strings"

	"trekbooking/pkg/notify"
)

// StatusUpdate builds the traveller email for b's current status. Links are absolute
// against baseURL.
func StatusUpdate(b Booking, baseURL string) notify.StatusUpdate {
	u := notify.StatusUpdate{
		To:          b.UserEmail,
		Reference:   b.Reference,
		TrekName:    b.TrekName,
		StatusLabel: Classify(string(b.Status)).Label,
	}
	if a := ResumeAction(b); a != nil {
		u.ActionText = a.Text
		u.ActionURL = strings.TrimRight(baseURL, "/") + a.Link
	}
	return u
}
