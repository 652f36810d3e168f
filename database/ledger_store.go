package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/toofuturetechnologies/SummitSite-sub001/ledger"
	"github.com/toofuturetechnologies/SummitSite-sub001/models"
)

// LedgerStore implements ledger.Store over gorm. Every ApplyEvent runs inside
// one DB.Transaction; BookingForUpdate takes a row-level lock so concurrent
// events for the same booking (webhook racing a user cancel) serialize.
type LedgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) Transact(fn func(ledger.Tx) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{tx: tx})
	})
}

type ledgerTx struct {
	tx *gorm.DB
}

func (t *ledgerTx) BookingForUpdate(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "bookings"}}).
		Preload("TripDate").
		First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrBookingNotFound, id)
		}
		return nil, err
	}
	return &booking, nil
}

func (t *ledgerTx) SaveBooking(b *models.Booking) error {
	return t.tx.Omit("Trip", "TripDate", "Customer", "Guide").Save(b).Error
}

func (t *ledgerTx) ReferralEarningForUpdate(bookingID uuid.UUID) (*models.ReferralEarning, error) {
	var earning models.ReferralEarning
	err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&earning, "booking_id = ?", bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &earning, nil
}

func (t *ledgerTx) SaveReferralEarning(e *models.ReferralEarning) error {
	return t.tx.Omit("Referrer", "Booking").Save(e).Error
}

func (t *ledgerTx) CreateCancellationRecord(r *models.CancellationRecord) error {
	return t.tx.Omit("Booking").Create(r).Error
}

func (t *ledgerTx) CancellationForBooking(bookingID uuid.UUID) (*models.CancellationRecord, error) {
	var record models.CancellationRecord
	err := t.tx.
		Where("booking_id = ?", bookingID).
		Order("created_at desc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (t *ledgerTx) CreditGuideBalance(guideID uuid.UUID, amount int64) error {
	res := t.tx.Model(&models.Guide{}).
		Where("user_id = ?", guideID).
		Update("current_balance", gorm.Expr("current_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("guide %s not found", guideID)
	}
	return nil
}

func (t *ledgerTx) ReleaseTripDateSeat(tripDateID uuid.UUID) error {
	var date models.TripDate
	if err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&date, "id = ?", tripDateID).Error; err != nil {
		return err
	}

	if date.CurrentGuests > 0 {
		date.CurrentGuests--
	}
	if date.CurrentGuests < date.MaxGuests {
		date.Status = "available"
	}
	return t.tx.Omit("Trip").Save(&date).Error
}
