package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/toofuturetechnologies/SummitSite-sub001/models"
)

// Store is the transactional data access the orchestrator is constructed
// with. Implementations must give Tx the isolation of a single database
// transaction: every write either commits as a whole or not at all.
type Store interface {
	Transact(fn func(Tx) error) error
}

// Tx is one in-flight ledger transaction. BookingForUpdate must lock the row
// (and return the booking with its trip date loaded) so two concurrent events
// for the same booking serialize.
type Tx interface {
	BookingForUpdate(id uuid.UUID) (*models.Booking, error)
	SaveBooking(b *models.Booking) error

	ReferralEarningForUpdate(bookingID uuid.UUID) (*models.ReferralEarning, error)
	SaveReferralEarning(e *models.ReferralEarning) error

	CreateCancellationRecord(r *models.CancellationRecord) error
	CancellationForBooking(bookingID uuid.UUID) (*models.CancellationRecord, error)

	CreditGuideBalance(guideID uuid.UUID, amount int64) error
	ReleaseTripDateSeat(tripDateID uuid.UUID) error
}

// NotificationKind names an external dispatch the caller owes after a
// successful event. The orchestrator itself never talks to email or the
// payment processor.
type NotificationKind string

const (
	NotifyBookingConfirmed NotificationKind = "booking_confirmed"
	NotifyBookingCompleted NotificationKind = "booking_completed"
	NotifyBookingCancelled NotificationKind = "booking_cancelled"
	NotifyRefundOwed       NotificationKind = "refund_owed"
	NotifyRefundProcessed  NotificationKind = "refund_processed"
	NotifyReferralPaid     NotificationKind = "referral_paid"
)

// Notification is one dispatch owed to the email/payment collaborators.
type Notification struct {
	Kind     NotificationKind
	Amount   int64
	Currency string
}

// Result describes what an applied event changed. Changed is false for
// idempotent re-deliveries (duplicate webhooks, double mark-complete).
type Result struct {
	BookingID     uuid.UUID
	Status        Status
	PaymentStatus PaymentStatus
	Changed       bool
	RefundPercent int
	RefundAmount  int64
	Notifications []Notification
}

// Orchestrator is the only entry point that mutates booking state. All state,
// money and referral writes for one event happen in one Store transaction.
type Orchestrator struct {
	store          Store
	enforceTripEnd bool
	now            func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock substitutes the time source; tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithTripEndEnforcement controls whether GuideMarksCompleted is rejected
// while the trip's scheduled end has not passed.
func WithTripEndEnforcement(enforce bool) Option {
	return func(o *Orchestrator) { o.enforceTripEnd = enforce }
}

func NewOrchestrator(store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:          store,
		enforceTripEnd: true,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ApplyEvent loads the booking under lock, applies the event and persists
// every resulting write atomically. Domain errors pass through unchanged;
// anything else comes back as a *PersistenceError and nothing was written.
func (o *Orchestrator) ApplyEvent(bookingID uuid.UUID, event Event) (*Result, error) {
	var res *Result

	err := o.store.Transact(func(tx Tx) error {
		booking, err := tx.BookingForUpdate(bookingID)
		if err != nil {
			return err
		}

		switch e := event.(type) {
		case PaymentSucceeded:
			res, err = o.applyPaymentSucceeded(tx, booking)
		case GuideMarksCompleted:
			res, err = o.applyGuideMarksCompleted(tx, booking, e)
		case CancellationRequested:
			res, err = o.applyCancellationRequested(tx, booking, e)
		case RefundIssued:
			res, err = o.applyRefundIssued(tx, booking, e)
		default:
			err = fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, event)
		}
		return err
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, &PersistenceError{Err: err}
	}

	return res, nil
}

func (o *Orchestrator) applyPaymentSucceeded(tx Tx, b *models.Booking) (*Result, error) {
	status := Status(b.Status)

	// Webhook re-delivery for an already confirmed booking is a no-op.
	if status == StatusConfirmed && PaymentStatus(b.PaymentStatus) == PaymentPaid {
		return unchanged(b), nil
	}
	if status.IsTerminal() {
		return nil, fmt.Errorf("%w: payment succeeded for %s booking", ErrTerminalState, status)
	}
	if !status.CanTransitionTo(StatusConfirmed) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, status, StatusConfirmed)
	}

	b.Status = string(StatusConfirmed)
	b.PaymentStatus = string(PaymentPaid)
	if err := tx.SaveBooking(b); err != nil {
		return nil, err
	}

	res := changed(b)
	res.Notifications = append(res.Notifications, Notification{
		Kind:     NotifyBookingConfirmed,
		Amount:   b.GrossPrice,
		Currency: b.Currency,
	})
	return res, nil
}

func (o *Orchestrator) applyGuideMarksCompleted(tx Tx, b *models.Booking, e GuideMarksCompleted) (*Result, error) {
	status := Status(b.Status)

	// A repeated mark-complete succeeds without touching anything; the
	// referral earning stays paid exactly once.
	if status == StatusCompleted {
		return unchanged(b), nil
	}
	if status == StatusCancelled {
		return nil, fmt.Errorf("%w: cannot complete a cancelled booking", ErrTerminalState)
	}
	if !status.CanTransitionTo(StatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, status, StatusCompleted)
	}
	if o.enforceTripEnd && !e.TripEnded {
		return nil, fmt.Errorf("%w: trip has not ended yet", ErrInvalidTransition)
	}

	now := o.now()
	b.Status = string(StatusCompleted)
	b.CompletedAt = &now
	if err := tx.SaveBooking(b); err != nil {
		return nil, err
	}
	if err := tx.CreditGuideBalance(b.GuideID, b.GuidePayout); err != nil {
		return nil, err
	}

	res := changed(b)
	res.Notifications = append(res.Notifications, Notification{
		Kind:     NotifyBookingCompleted,
		Amount:   b.GuidePayout,
		Currency: b.Currency,
	})

	earning, err := settleReferral(tx, b, now)
	if err != nil {
		return nil, err
	}
	if earning != nil {
		res.Notifications = append(res.Notifications, Notification{
			Kind:     NotifyReferralPaid,
			Amount:   earning.Amount,
			Currency: b.Currency,
		})
	}

	return res, nil
}

func (o *Orchestrator) applyCancellationRequested(tx Tx, b *models.Booking, e CancellationRequested) (*Result, error) {
	status := Status(b.Status)

	if status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if status == StatusCompleted {
		return nil, fmt.Errorf("%w: cannot cancel a completed booking", ErrTerminalState)
	}
	if !status.CanTransitionTo(StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, status, StatusCancelled)
	}

	now := o.now()
	start := b.TripDate.StartTime
	if !start.After(now) {
		return nil, fmt.Errorf("%w: trip started at %s", ErrTripAlreadyOccurred, start.Format(time.RFC3339))
	}
	daysUntil := int(start.Sub(now).Hours() / 24)

	percent, err := RefundTier(daysUntil, e.Initiator == InitiatorGuide)
	if err != nil {
		return nil, err
	}

	// Only money actually captured can be refunded.
	var refund int64
	if PaymentStatus(b.PaymentStatus) == PaymentPaid {
		refund = b.GrossPrice * int64(percent) / 100
	}

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	if refund > 0 {
		b.PaymentStatus = string(PaymentRefundPending)
	}
	if err := tx.SaveBooking(b); err != nil {
		return nil, err
	}

	record := &models.CancellationRecord{
		BookingID:     b.ID,
		Initiator:     string(e.Initiator),
		Reason:        e.Reason,
		RefundPercent: percent,
		RefundAmount:  refund,
		DaysUntilTrip: daysUntil,
	}
	if err := tx.CreateCancellationRecord(record); err != nil {
		return nil, err
	}
	if err := tx.ReleaseTripDateSeat(b.TripDateID); err != nil {
		return nil, err
	}

	res := changed(b)
	res.RefundPercent = percent
	res.RefundAmount = refund
	res.Notifications = append(res.Notifications, Notification{
		Kind:     NotifyBookingCancelled,
		Amount:   b.GrossPrice,
		Currency: b.Currency,
	})
	if refund > 0 {
		res.Notifications = append(res.Notifications, Notification{
			Kind:     NotifyRefundOwed,
			Amount:   refund,
			Currency: b.Currency,
		})
	}
	return res, nil
}

func (o *Orchestrator) applyRefundIssued(tx Tx, b *models.Booking, e RefundIssued) (*Result, error) {
	status := Status(b.Status)
	pay := PaymentStatus(b.PaymentStatus)

	// Refund-confirmation webhooks also get re-delivered.
	if status == StatusCancelled && (pay == PaymentRefunded || pay == PaymentPartiallyRefunded) {
		return unchanged(b), nil
	}
	if status == StatusCompleted {
		return nil, fmt.Errorf("%w: refund issued for completed booking", ErrTerminalState)
	}
	if status != StatusCancelled || pay != PaymentRefundPending {
		return nil, fmt.Errorf("%w: no refund pending for %s/%s booking", ErrInvalidTransition, status, pay)
	}

	record, err := tx.CancellationForBooking(b.ID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("cancellation record missing for booking %s", b.ID)
	}

	if record.RefundPercent == 100 {
		b.PaymentStatus = string(PaymentRefunded)
	} else {
		b.PaymentStatus = string(PaymentPartiallyRefunded)
	}
	if err := tx.SaveBooking(b); err != nil {
		return nil, err
	}

	res := changed(b)
	res.RefundPercent = record.RefundPercent
	res.RefundAmount = record.RefundAmount
	res.Notifications = append(res.Notifications, Notification{
		Kind:     NotifyRefundProcessed,
		Amount:   record.RefundAmount,
		Currency: b.Currency,
	})
	return res, nil
}

func changed(b *models.Booking) *Result {
	r := unchanged(b)
	r.Changed = true
	return r
}

func unchanged(b *models.Booking) *Result {
	return &Result{
		BookingID:     b.ID,
		Status:        Status(b.Status),
		PaymentStatus: PaymentStatus(b.PaymentStatus),
	}
}
