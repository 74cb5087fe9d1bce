package notify

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"
)

// StatusUpdate describes a booking status change worth telling the traveller about.
type StatusUpdate struct {
	To          string
	Reference   string
	TrekName    string
	StatusLabel string
	ActionText  string
	ActionURL   string
}

type Notifier struct {
	Mailer Mailer
}

func BookingStatusMessage(u StatusUpdate) Message {
	subject := fmt.Sprintf("Booking %s: %s", u.Reference, u.StatusLabel)

	var plain strings.Builder
	fmt.Fprintf(&plain, "Hello,\n\nYour booking %s for %s is now: %s.\n", u.Reference, u.TrekName, u.StatusLabel)
	if u.ActionText != "" {
		fmt.Fprintf(&plain, "\nNext step: %s\n%s\n", u.ActionText, u.ActionURL)
	}
	plain.WriteString("\nHappy trekking!\n")

	var body strings.Builder
	fmt.Fprintf(&body, "<p>Your booking <strong>%s</strong> for %s is now <strong>%s</strong>.</p>",
		html.EscapeString(u.Reference), html.EscapeString(u.TrekName), html.EscapeString(u.StatusLabel))
	if u.ActionText != "" {
		fmt.Fprintf(&body, `<p><a href="%s">%s</a></p>`, html.EscapeString(u.ActionURL), html.EscapeString(u.ActionText))
	}

	return Message{To: u.To, Subject: subject, PlainText: plain.String(), HTML: body.String()}
}

// BookingStatusChanged sends the update in the background. Mail failures never fail the
// request that changed the status.
func (n *Notifier) BookingStatusChanged(u StatusUpdate) {
	if n == nil || n.Mailer == nil || strings.TrimSpace(u.To) == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := n.Mailer.Send(ctx, BookingStatusMessage(u)); err != nil {
			log.Printf("[notify] action=booking_status ref=%s err=%v", u.Reference, err)
		}
	}()
}
