package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toofuturetechnologies/SummitSite-sub001/models"
)

// fakeStore keeps everything in maps and rolls the maps back when the
// transaction function fails, mirroring the atomicity the real store gives.
type fakeStore struct {
	bookings      map[uuid.UUID]*models.Booking
	earnings      map[uuid.UUID]*models.ReferralEarning
	cancellations map[uuid.UUID]*models.CancellationRecord
	balances      map[uuid.UUID]int64
	seatReleases  map[uuid.UUID]int

	failSaveBooking error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings:      make(map[uuid.UUID]*models.Booking),
		earnings:      make(map[uuid.UUID]*models.ReferralEarning),
		cancellations: make(map[uuid.UUID]*models.CancellationRecord),
		balances:      make(map[uuid.UUID]int64),
		seatReleases:  make(map[uuid.UUID]int),
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	snap := newFakeStore()
	for id, b := range s.bookings {
		c := *b
		snap.bookings[id] = &c
	}
	for id, e := range s.earnings {
		c := *e
		snap.earnings[id] = &c
	}
	for id, r := range s.cancellations {
		c := *r
		snap.cancellations[id] = &c
	}
	for id, v := range s.balances {
		snap.balances[id] = v
	}
	for id, v := range s.seatReleases {
		snap.seatReleases[id] = v
	}
	return snap
}

func (s *fakeStore) Transact(fn func(Tx) error) error {
	snap := s.snapshot()
	if err := fn(&fakeTx{store: s}); err != nil {
		s.bookings = snap.bookings
		s.earnings = snap.earnings
		s.cancellations = snap.cancellations
		s.balances = snap.balances
		s.seatReleases = snap.seatReleases
		return err
	}
	return nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) BookingForUpdate(id uuid.UUID) (*models.Booking, error) {
	b, ok := t.store.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	c := *b
	return &c, nil
}

func (t *fakeTx) SaveBooking(b *models.Booking) error {
	if t.store.failSaveBooking != nil {
		return t.store.failSaveBooking
	}
	c := *b
	t.store.bookings[b.ID] = &c
	return nil
}

func (t *fakeTx) ReferralEarningForUpdate(bookingID uuid.UUID) (*models.ReferralEarning, error) {
	e, ok := t.store.earnings[bookingID]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

func (t *fakeTx) SaveReferralEarning(e *models.ReferralEarning) error {
	c := *e
	t.store.earnings[e.BookingID] = &c
	return nil
}

func (t *fakeTx) CreateCancellationRecord(r *models.CancellationRecord) error {
	c := *r
	t.store.cancellations[r.BookingID] = &c
	return nil
}

func (t *fakeTx) CancellationForBooking(bookingID uuid.UUID) (*models.CancellationRecord, error) {
	r, ok := t.store.cancellations[bookingID]
	if !ok {
		return nil, nil
	}
	c := *r
	return &c, nil
}

func (t *fakeTx) CreditGuideBalance(guideID uuid.UUID, amount int64) error {
	t.store.balances[guideID] += amount
	return nil
}

func (t *fakeTx) ReleaseTripDateSeat(tripDateID uuid.UUID) error {
	t.store.seatReleases[tripDateID]++
	return nil
}

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestOrchestrator(store *fakeStore, opts ...Option) *Orchestrator {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewOrchestrator(store, opts...)
}

// seedBooking puts a 500.00 booking in the store with the standard split and
// a trip departing startIn from the pinned clock.
func seedBooking(store *fakeStore, status Status, pay PaymentStatus, startIn time.Duration) *models.Booking {
	b := &models.Booking{
		ID:         uuid.New(),
		TripID:     uuid.New(),
		TripDateID: uuid.New(),
		CustomerID: uuid.New(),
		GuideID:    uuid.New(),

		GrossPrice:       50000,
		CommissionAmount: 6000,
		HostingFee:       100,
		GuidePayout:      43150,
		ReferralAmount:   750,
		Currency:         "USD",

		Status:        string(status),
		PaymentStatus: string(pay),
	}
	b.TripDate = models.TripDate{
		ID:        b.TripDateID,
		StartTime: testNow.Add(startIn),
		EndTime:   testNow.Add(startIn + 48*time.Hour),
	}
	c := *b
	store.bookings[b.ID] = &c
	return b
}

func seedReferral(store *fakeStore, b *models.Booking) *models.ReferralEarning {
	referrerID := uuid.New()
	b.ReferrerID = &referrerID
	stored := *b
	store.bookings[b.ID] = &stored

	e := &models.ReferralEarning{
		ID:         uuid.New(),
		ReferrerID: referrerID,
		BookingID:  b.ID,
		Amount:     b.ReferralAmount,
		Status:     ReferralPending,
	}
	c := *e
	store.earnings[b.ID] = &c
	return e
}

func TestApplyEvent_PaymentSucceeded(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusPending, PaymentUnpaid, 10*24*time.Hour)

	res, err := o.ApplyEvent(b.ID, PaymentSucceeded{ProcessorTxnID: "TXN-1"})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, StatusConfirmed, res.Status)
	assert.Equal(t, PaymentPaid, res.PaymentStatus)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, NotifyBookingConfirmed, res.Notifications[0].Kind)
	assert.Equal(t, int64(50000), res.Notifications[0].Amount)

	saved := store.bookings[b.ID]
	assert.Equal(t, "confirmed", saved.Status)
	assert.Equal(t, "paid", saved.PaymentStatus)
}

func TestApplyEvent_PaymentSucceeded_DuplicateWebhook(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusConfirmed, PaymentPaid, 10*24*time.Hour)

	res, err := o.ApplyEvent(b.ID, PaymentSucceeded{ProcessorTxnID: "TXN-1"})
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.Empty(t, res.Notifications)
}

func TestApplyEvent_PaymentSucceeded_TerminalBooking(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusCancelled, PaymentUnpaid, 10*24*time.Hour)

	_, err := o.ApplyEvent(b.ID, PaymentSucceeded{ProcessorTxnID: "TXN-1"})
	assert.ErrorIs(t, err, ErrTerminalState)
}

func TestApplyEvent_BookingNotFound(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)

	_, err := o.ApplyEvent(uuid.New(), PaymentSucceeded{})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestApplyEvent_GuideMarksCompleted(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusConfirmed, PaymentPaid, -3*24*time.Hour)
	seedReferral(store, b)

	res, err := o.ApplyEvent(b.ID, GuideMarksCompleted{TripEnded: true})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, StatusCompleted, res.Status)

	saved := store.bookings[b.ID]
	assert.Equal(t, "completed", saved.Status)
	require.NotNil(t, saved.CompletedAt)
	assert.Equal(t, testNow, *saved.CompletedAt)

	assert.Equal(t, int64(43150), store.balances[b.GuideID])

	earning := store.earnings[b.ID]
	assert.Equal(t, ReferralPaid, earning.Status)
	require.NotNil(t, earning.PaidAt)
	assert.Equal(t, testNow, *earning.PaidAt)

	require.Len(t, res.Notifications, 2)
	assert.Equal(t, NotifyBookingCompleted, res.Notifications[0].Kind)
	assert.Equal(t, int64(43150), res.Notifications[0].Amount)
	assert.Equal(t, NotifyReferralPaid, res.Notifications[1].Kind)
	assert.Equal(t, int64(750), res.Notifications[1].Amount)
}

func TestApplyEvent_GuideMarksCompleted_Idempotent(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusConfirmed, PaymentPaid, -3*24*time.Hour)
	seedReferral(store, b)

	first, err := o.ApplyEvent(b.ID, GuideMarksCompleted{TripEnded: true})
	require.NoError(t, err)
	require.True(t, first.Changed)

	second, err := o.ApplyEvent(b.ID, GuideMarksCompleted{TripEnded: true})
	require.NoError(t, err)

	assert.False(t, second.Changed)
	assert.Empty(t, second.Notifications)

	// The guide got credited once and the referrer got paid once.
	assert.Equal(t, int64(43150), store.balances[b.GuideID])
	assert.Equal(t, ReferralPaid, store.earnings[b.ID].Status)
}

func TestApplyEvent_GuideMarksCompleted_NoReferrer(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusConfirmed, PaymentPaid, -3*24*time.Hour)

	res, err := o.ApplyEvent(b.ID, GuideMarksCompleted{TripEnded: true})
	require.NoError(t, err)

	require.Len(t, res.Notifications, 1)
	assert.Equal(t, NotifyBookingCompleted, res.Notifications[0].Kind)
}

func TestApplyEvent_GuideMarksCompleted_TripNotEnded(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusConfirmed, PaymentPaid, 24*time.Hour)

	_, err := o.ApplyEvent(b.ID, GuideMarksCompleted{TripEnded: false})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// With enforcement off the same event goes through.
	relaxed := newTestOrchestrator(store, WithTripEndEnforcement(false))
	res, err := relaxed.ApplyEvent(b.ID, GuideMarksCompleted{TripEnded: false})
	require.NoError(t, err)
	assert.True(t, res.Changed)
}

func TestApplyEvent_GuideMarksCompleted_OnCancelled(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusCancelled, PaymentRefunded, -3*24*time.Hour)

	_, err := o.ApplyEvent(b.ID, GuideMarksCompleted{TripEnded: true})
	assert.ErrorIs(t, err, ErrTerminalState)
}

func TestApplyEvent_GuideMarksCompleted_OnPending(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusPending, PaymentUnpaid, -3*24*time.Hour)

	_, err := o.ApplyEvent(b.ID, GuideMarksCompleted{TripEnded: true})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyEvent_CancellationRequested_RefundTiers(t *testing.T) {
	type testCase struct {
		name        string
		startIn     time.Duration
		initiator   Initiator
		wantPercent int
		wantRefund  int64
	}

	tests := []testCase{
		{name: "TenDaysOut", startIn: 10 * 24 * time.Hour, initiator: InitiatorCustomer, wantPercent: 100, wantRefund: 50000},
		{name: "FiveDaysOut", startIn: 5 * 24 * time.Hour, initiator: InitiatorCustomer, wantPercent: 50, wantRefund: 25000},
		{name: "OneDayOut", startIn: 24 * time.Hour, initiator: InitiatorCustomer, wantPercent: 0, wantRefund: 0},
		{name: "GuideCancelsOneDayOut", startIn: 24 * time.Hour, initiator: InitiatorGuide, wantPercent: 100, wantRefund: 50000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			o := newTestOrchestrator(store)
			b := seedBooking(store, StatusConfirmed, PaymentPaid, tc.startIn)

			res, err := o.ApplyEvent(b.ID, CancellationRequested{Initiator: tc.initiator, Reason: "plans changed"})
			require.NoError(t, err)

			assert.True(t, res.Changed)
			assert.Equal(t, StatusCancelled, res.Status)
			assert.Equal(t, tc.wantPercent, res.RefundPercent)
			assert.Equal(t, tc.wantRefund, res.RefundAmount)

			saved := store.bookings[b.ID]
			assert.Equal(t, "cancelled", saved.Status)
			require.NotNil(t, saved.CancelledAt)
			if tc.wantRefund > 0 {
				assert.Equal(t, "refund_pending", saved.PaymentStatus)
			} else {
				assert.Equal(t, "paid", saved.PaymentStatus)
			}

			record := store.cancellations[b.ID]
			require.NotNil(t, record)
			assert.Equal(t, string(tc.initiator), record.Initiator)
			assert.Equal(t, tc.wantPercent, record.RefundPercent)
			assert.Equal(t, tc.wantRefund, record.RefundAmount)

			assert.Equal(t, 1, store.seatReleases[b.TripDateID])
		})
	}
}

func TestApplyEvent_CancellationRequested_UnpaidBooking(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusPending, PaymentUnpaid, 10*24*time.Hour)

	res, err := o.ApplyEvent(b.ID, CancellationRequested{Initiator: InitiatorCustomer})
	require.NoError(t, err)

	// Nothing was captured, so a 100% tier still refunds nothing.
	assert.Equal(t, 100, res.RefundPercent)
	assert.Equal(t, int64(0), res.RefundAmount)
	assert.Equal(t, "unpaid", store.bookings[b.ID].PaymentStatus)
}

func TestApplyEvent_CancellationRequested_TripAlreadyStarted(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusConfirmed, PaymentPaid, -24*time.Hour)

	_, err := o.ApplyEvent(b.ID, CancellationRequested{Initiator: InitiatorCustomer})
	assert.ErrorIs(t, err, ErrTripAlreadyOccurred)

	// Guide-initiated does not bypass the start-time check either.
	_, err = o.ApplyEvent(b.ID, CancellationRequested{Initiator: InitiatorGuide})
	assert.ErrorIs(t, err, ErrTripAlreadyOccurred)

	assert.Equal(t, "confirmed", store.bookings[b.ID].Status)
}

func TestApplyEvent_CancellationRequested_AlreadyCancelled(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusCancelled, PaymentRefunded, 10*24*time.Hour)

	_, err := o.ApplyEvent(b.ID, CancellationRequested{Initiator: InitiatorCustomer})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestApplyEvent_CancellationRequested_CompletedBooking(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusCompleted, PaymentPaid, 10*24*time.Hour)

	_, err := o.ApplyEvent(b.ID, CancellationRequested{Initiator: InitiatorCustomer})
	assert.ErrorIs(t, err, ErrTerminalState)
}

func TestApplyEvent_RefundIssued(t *testing.T) {
	type testCase struct {
		name       string
		percent    int
		wantStatus PaymentStatus
	}

	tests := []testCase{
		{name: "FullRefund", percent: 100, wantStatus: PaymentRefunded},
		{name: "PartialRefund", percent: 50, wantStatus: PaymentPartiallyRefunded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			o := newTestOrchestrator(store)
			b := seedBooking(store, StatusCancelled, PaymentRefundPending, 10*24*time.Hour)
			refund := b.GrossPrice * int64(tc.percent) / 100
			store.cancellations[b.ID] = &models.CancellationRecord{
				BookingID:     b.ID,
				Initiator:     string(InitiatorCustomer),
				RefundPercent: tc.percent,
				RefundAmount:  refund,
			}

			res, err := o.ApplyEvent(b.ID, RefundIssued{ProcessorRefundID: "RF-1"})
			require.NoError(t, err)

			assert.True(t, res.Changed)
			assert.Equal(t, tc.wantStatus, res.PaymentStatus)
			assert.Equal(t, refund, res.RefundAmount)
			require.Len(t, res.Notifications, 1)
			assert.Equal(t, NotifyRefundProcessed, res.Notifications[0].Kind)

			// A re-delivered refund webhook is a no-op.
			again, err := o.ApplyEvent(b.ID, RefundIssued{ProcessorRefundID: "RF-1"})
			require.NoError(t, err)
			assert.False(t, again.Changed)
		})
	}
}

func TestApplyEvent_RefundIssued_NoRefundPending(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusConfirmed, PaymentPaid, 10*24*time.Hour)

	_, err := o.ApplyEvent(b.ID, RefundIssued{ProcessorRefundID: "RF-1"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyEvent_PersistenceFailure(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	b := seedBooking(store, StatusPending, PaymentUnpaid, 10*24*time.Hour)

	cause := errors.New("connection reset")
	store.failSaveBooking = cause

	_, err := o.ApplyEvent(b.ID, PaymentSucceeded{ProcessorTxnID: "TXN-1"})

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, cause)

	// Rolled back: the booking is untouched.
	saved := store.bookings[b.ID]
	assert.Equal(t, "pending", saved.Status)
	assert.Equal(t, "unpaid", saved.PaymentStatus)
}
