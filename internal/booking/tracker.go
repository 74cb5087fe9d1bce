package booking

import "strings"

// Badge is how a status is shown in lists: Tailwind classes plus a short label.
type Badge struct {
	BadgeClass string `json:"badgeClass"`
	Label      string `json:"label"`
}

// Action is the next thing the traveller has to do to move a booking forward.
type Action struct {
	Text  string `json:"text"`
	Link  string `json:"link"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type Progress struct {
	Step  int    `json:"step"`
	Total int    `json:"total"`
	Label string `json:"label"`
}

// View bundles everything a screen needs to render a booking's state.
type View struct {
	Badge        Badge    `json:"badge"`
	ResumeAction *Action  `json:"resumeAction"`
	Progress     Progress `json:"progress"`
	NextStatuses []Status `json:"nextStatuses"`
}

const progressSteps = 4

type statusPresentation struct {
	badgeClass    string
	progressStep  int
	progressLabel string
	action        func(id string) *Action
}

// presentation is the single table every view reads from. Adding a Status without an
// entry here falls through to the unknown fallbacks.
var presentation = map[Status]statusPresentation{
	StatusPendingPayment: {
		badgeClass:    "bg-yellow-100 text-yellow-800",
		progressStep:  1,
		progressLabel: "Payment Pending",
		action: func(id string) *Action {
			return &Action{
				Text:  "Complete Payment",
				Link:  "/payment/" + id,
				Color: "bg-yellow-600 hover:bg-yellow-700",
				Icon:  "credit-card",
			}
		},
	},
	StatusPaymentConfirmedPartial: {
		badgeClass:    "bg-orange-100 text-orange-800",
		progressStep:  2,
		progressLabel: "Partial Payment Received",
		action: func(id string) *Action {
			return &Action{
				Text:  "Pay Remaining Balance",
				Link:  "/payment/" + id,
				Color: "bg-orange-600 hover:bg-orange-700",
				Icon:  "wallet",
			}
		},
	},
	StatusPaymentCompleted: {
		badgeClass:    "bg-blue-100 text-blue-800",
		progressStep:  2,
		progressLabel: "Payment Completed",
		action: func(id string) *Action {
			return &Action{
				Text:  "Add Participant Details",
				Link:  "/booking/" + id + "/participant-details",
				Color: "bg-blue-600 hover:bg-blue-700",
				Icon:  "users",
			}
		},
	},
	StatusConfirmed: {
		badgeClass:    "bg-green-100 text-green-800",
		progressStep:  3,
		progressLabel: "Booking Confirmed",
	},
	StatusTrekCompleted: {
		badgeClass:    "bg-purple-100 text-purple-800",
		progressStep:  4,
		progressLabel: "Trek Completed",
	},
	StatusCancelled: {
		badgeClass:    "bg-red-100 text-red-800",
		progressStep:  0,
		progressLabel: "Cancelled",
	},
}

var unknownBadge = Badge{BadgeClass: "bg-gray-100 text-gray-800", Label: "unknown"}

// Classify never fails: anything outside the known set gets the neutral badge.
func Classify(status string) Badge {
	p, ok := presentation[Status(status)]
	if !ok {
		return unknownBadge
	}
	return Badge{BadgeClass: p.badgeClass, Label: strings.ReplaceAll(status, "_", " ")}
}

// ResumeAction returns nil when the traveller has nothing left to do.
func ResumeAction(b Booking) *Action {
	p, ok := presentation[b.Status]
	if !ok || p.action == nil {
		return nil
	}
	return p.action(b.ID)
}

func ProgressOf(status string) Progress {
	p, ok := presentation[Status(status)]
	if !ok {
		return Progress{Step: 0, Total: progressSteps, Label: "Unknown"}
	}
	return Progress{Step: p.progressStep, Total: progressSteps, Label: p.progressLabel}
}

func ViewOf(b Booking) View {
	next := NextStatuses(b.Status)
	if next == nil {
		next = []Status{}
	}
	return View{
		Badge:        Classify(string(b.Status)),
		ResumeAction: ResumeAction(b),
		Progress:     ProgressOf(string(b.Status)),
		NextStatuses: next,
	}
}
