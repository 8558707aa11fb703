package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

const sweepBatch = 200

// SweepExpiredHolds writes EXPIRADA on holds whose deadline passed. Reads
// already ignore lapsed holds; the sweep makes storage and the audit trail
// catch up.
type SweepExpiredHolds struct {
	Deps
}

func NewSweepExpiredHolds(d Deps) *SweepExpiredHolds {
	return &SweepExpiredHolds{Deps: d.withDefaults()}
}

// Execute returns how many appointments it expired.
func (uc *SweepExpiredHolds) Execute(ctx context.Context) (int, error) {
	now := uc.Clock()

	lapsed, err := uc.Repo.ListLapsedHolds(ctx, now, sweepBatch)
	if err != nil {
		return 0, err
	}

	cells := map[domain.DayKey]bool{}
	for _, ap := range lapsed {
		cells[domain.DayKey{BarbershopID: ap.BarbershopID, BarberID: ap.BarberID, Date: ap.Date}] = true
	}

	total := 0
	for cell := range cells {
		n, err := uc.sweepCell(ctx, cell)
		if err != nil {
			uc.Log.Error().Err(err).Str("cell", cell.String()).Msg("hold sweep failed")
			continue
		}
		total += n
	}

	if total > 0 {
		uc.Log.Info().Int("expired", total).Msg("expired payment holds")
	}
	return total, nil
}

func (uc *SweepExpiredHolds) sweepCell(ctx context.Context, cell domain.DayKey) (int, error) {
	release, keys, err := uc.lockDays(ctx, cell.BarbershopID, []uint{cell.BarberID}, cell.Date)
	if err != nil {
		return 0, err
	}
	defer release()

	var expired []models.Appointment
	err = uc.Repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockDays(ctx, keys); err != nil {
			return err
		}
		expired, err = tx.ExpireLapsedHolds(ctx, cell.BarbershopID, []uint{cell.BarberID}, cell.Date, uc.Clock())
		return err
	})
	if err != nil {
		return 0, err
	}

	uc.dispatchExpired(cell.BarbershopID, expired)
	return len(expired), nil
}
