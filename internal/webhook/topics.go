package webhook

import "strings"

const (
	TopicPaymentSucceeded = "payment_succeeded"
	TopicPaymentRefunded  = "payment_refunded"
)

// NormalizeTopic converts gateway topic strings into a stable internal form.
// Examples:
// - "payment.succeeded" -> "payment_succeeded"
// - "Payment/Refunded" -> "payment_refunded"
func NormalizeTopic(topic string) string {
	t := strings.TrimSpace(strings.ToLower(topic))
	t = strings.ReplaceAll(t, "/", "_")
	t = strings.ReplaceAll(t, ".", "_")
	t = strings.ReplaceAll(t, "-", "_")
	for strings.Contains(t, "__") {
		t = strings.ReplaceAll(t, "__", "_")
	}
	return strings.Trim(t, "_")
}
