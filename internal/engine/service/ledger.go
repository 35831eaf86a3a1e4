package service

import (
	"errors"
	"time"

	"golang-tradebot/internal/entity"
)

var (
	// ErrCapacityExceeded is returned when opening would exceed the maximum
	// number of concurrent positions.
	ErrCapacityExceeded = errors.New("position capacity exceeded")
	// ErrDuplicateAsset is returned when the asset already has an open
	// position.
	ErrDuplicateAsset = errors.New("asset already has an open position")
	// ErrPositionNotFound is returned when closing an asset with no open
	// position. Closing twice is a planner bug and must surface, not no-op.
	ErrPositionNotFound = errors.New("no open position for asset")
	// ErrExposureExceeded is returned when opening would push the summed
	// position sizes above the whole capital.
	ErrExposureExceeded = errors.New("open sizes would exceed total capital")
)

// Ledger is the single source of truth for exposure within a run. It is
// loaded from the persistent store at the start of a cycle, mutated only
// through Open and Close, and written back atomically at the end.
//
// Ledger is not safe for concurrent use; all mutations within a run are
// serialized by the engine.
type Ledger struct {
	maxPositions int
	open         []entity.Position
	closed       []entity.Position
}

// NewLedger builds a ledger over the given open positions, which must be
// ordered by entry time ascending.
func NewLedger(maxPositions int, open []entity.Position) *Ledger {
	positions := make([]entity.Position, len(open))
	copy(positions, open)
	return &Ledger{
		maxPositions: maxPositions,
		open:         positions,
	}
}

// Open creates a new OPEN position for the asset.
func (l *Ledger) Open(assetCode string, price, size float64, at time.Time) (*entity.Position, error) {
	if len(l.open) >= l.maxPositions {
		return nil, ErrCapacityExceeded
	}
	if l.hasOpen(assetCode) {
		return nil, ErrDuplicateAsset
	}
	if l.OpenSizeTotal()+size > 1+1e-9 {
		return nil, ErrExposureExceeded
	}

	position := entity.Position{
		AssetCode:  assetCode,
		EntryPrice: price,
		Size:       size,
		EntryAt:    at,
		Status:     entity.PositionStatusOpen,
	}
	l.open = append(l.open, position)
	return &position, nil
}

// Close transitions the asset's open position to CLOSED and computes the
// realized return. The transition is terminal; re-entering the same asset
// later creates a new position.
func (l *Ledger) Close(assetCode string, price float64, reason string, at time.Time) (*entity.Position, error) {
	for i, position := range l.open {
		if position.AssetCode != assetCode {
			continue
		}

		realized := (price - position.EntryPrice) / position.EntryPrice
		position.Status = entity.PositionStatusClosed
		position.ExitPrice = &price
		position.RealizedReturn = &realized
		position.CloseReason = reason
		closedAt := at
		position.ClosedAt = &closedAt

		l.open = append(l.open[:i], l.open[i+1:]...)
		l.closed = append(l.closed, position)
		return &position, nil
	}
	return nil, ErrPositionNotFound
}

// OpenPositions returns the open positions ordered by entry time ascending.
func (l *Ledger) OpenPositions() []entity.Position {
	positions := make([]entity.Position, len(l.open))
	copy(positions, l.open)
	return positions
}

// ClosedPositions returns the positions closed during this run.
func (l *Ledger) ClosedPositions() []entity.Position {
	positions := make([]entity.Position, len(l.closed))
	copy(positions, l.closed)
	return positions
}

// OpenSizeTotal returns the summed size fractions of all open positions.
func (l *Ledger) OpenSizeTotal() float64 {
	var total float64
	for _, position := range l.open {
		total += position.Size
	}
	return total
}

// OpenAssets returns the set of asset codes with an open position.
func (l *Ledger) OpenAssets() map[string]bool {
	assets := make(map[string]bool, len(l.open))
	for _, position := range l.open {
		assets[position.AssetCode] = true
	}
	return assets
}

// HasCapacity reports whether another position may be opened.
func (l *Ledger) HasCapacity() bool {
	return len(l.open) < l.maxPositions
}

func (l *Ledger) hasOpen(assetCode string) bool {
	for _, position := range l.open {
		if position.AssetCode == assetCode {
			return true
		}
	}
	return false
}
