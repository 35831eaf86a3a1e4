package repository

import (
	"context"
	"sort"
	"time"

	"golang-tradebot/internal/entity"

	"gorm.io/gorm"
)

type ConfidenceRepository interface {
	// GetCutoff returns the confidence value an asset must reach to sit in
	// the top fraction of the historical distribution. The second return is
	// false when no samples exist.
	GetCutoff(ctx context.Context, topFraction float64, lookbackDays int) (float64, bool, error)
}

type confidenceRepository struct {
	db *gorm.DB
}

func NewConfidenceRepository(db *gorm.DB) ConfidenceRepository {
	return &confidenceRepository{db: db}
}

func (r *confidenceRepository) GetCutoff(ctx context.Context, topFraction float64, lookbackDays int) (float64, bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.ConfidenceSample{})
	if lookbackDays > 0 {
		query = query.Where("sample_date >= ?", time.Now().AddDate(0, 0, -lookbackDays))
	}

	var values []float64
	if err := query.Pluck("confidence", &values).Error; err != nil {
		return 0, false, err
	}
	if len(values) == 0 {
		return 0, false, nil
	}

	return Quantile(values, 1-topFraction), true, nil
}

// Quantile returns the q-quantile (0..1) of values using linear
// interpolation between order statistics. The input slice is not modified.
func Quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lower := int(pos)
	frac := pos - float64(lower)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
