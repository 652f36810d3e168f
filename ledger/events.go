package ledger

// Initiator identifies who asked for a cancellation.
type Initiator string

const (
	InitiatorCustomer Initiator = "customer"
	InitiatorGuide    Initiator = "guide"
)

// Event is one of the external happenings the orchestrator can apply to a
// booking. The concrete types below are the full set.
type Event interface {
	eventName() string
}

// PaymentSucceeded is emitted by the payment-processor webhook after the
// processor's signature has been verified.
type PaymentSucceeded struct {
	ProcessorTxnID string
}

// GuideMarksCompleted is the guide's manual "trip done" action. TripEnded
// states whether the trip's scheduled end has passed; it is an explicit input
// so the caller, not the ledger, owns the clock comparison against the
// schedule.
type GuideMarksCompleted struct {
	TripEnded bool
}

// CancellationRequested is a customer- or guide-initiated cancellation.
type CancellationRequested struct {
	Initiator Initiator
	Reason    string
}

// RefundIssued confirms the processor executed a refund owed by an earlier
// cancellation.
type RefundIssued struct {
	ProcessorRefundID string
}

func (PaymentSucceeded) eventName() string      { return "payment_succeeded" }
func (GuideMarksCompleted) eventName() string   { return "guide_marks_completed" }
func (CancellationRequested) eventName() string { return "cancellation_requested" }
func (RefundIssued) eventName() string          { return "refund_issued" }
