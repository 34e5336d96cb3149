package appointment

import "strings"

var paidWords = map[string]bool{
	"paid":       true,
	"complete":   true,
	"completed":  true,
	"success":    true,
	"successful": true,
	"yes":        true,
}

// Paid accepts the payment shapes the backends emit: a paymentStatus
// string, a nested payment.status, or a bare isPaid flag.
func (r Record) Paid() bool {
	if r.IsPaid {
		return true
	}
	val := r.PaymentStatus
	if val == "" && r.Payment != nil {
		val = r.Payment.Status
	}
	return paidWords[strings.ToLower(strings.TrimSpace(val))]
}

// PaymentLabel is the canonical "paid"/"unpaid" label.
func (r Record) PaymentLabel() string {
	if r.Paid() {
		return "paid"
	}
	return "unpaid"
}

// PaidItem identifies one appointment in a mark-paid request.
type PaidItem struct {
	ID      string  `json:"id"`
	Service Service `json:"service"`
}
