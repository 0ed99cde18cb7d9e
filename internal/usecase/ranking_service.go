package usecase

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/caloriecart/backend/internal/domain"
	"github.com/caloriecart/backend/internal/units"
	"github.com/lithammer/fuzzysearch/fuzzy"
	log "github.com/sirupsen/logrus"
)

// Strategy derives calories per dollar for a row, or reports that it does not apply.
// Strategies only run on rows whose price and calories are usable.
type Strategy func(row domain.ProductNutritionRow) (float64, bool)

// NamedStrategy pairs a strategy with the tier name it reports.
type NamedStrategy struct {
	Tier  string
	Apply Strategy
}

// TierRecorder observes which tier produced each ranked row.
type TierRecorder interface {
	ObserveTier(tier string)
}

// RankingConfig holds configuration for the ranking engine
type RankingConfig struct {
	// Strategies are tried in order; nil means DefaultStrategies.
	Strategies []NamedStrategy
	Recorder   TierRecorder
}

// RankingEngine annotates nutrition rows with calories per dollar and sorts them.
type RankingEngine struct {
	strategies []NamedStrategy
	recorder   TierRecorder
}

// NewRankingEngine creates a ranking engine with the given configuration
func NewRankingEngine(config RankingConfig) *RankingEngine {
	strategies := config.Strategies
	if strategies == nil {
		strategies = DefaultStrategies()
	}

	return &RankingEngine{
		strategies: strategies,
		recorder:   config.Recorder,
	}
}

// DefaultStrategies returns the tiers that improve on calories/price, most reliable first.
func DefaultStrategies() []NamedStrategy {
	return []NamedStrategy{
		{Tier: domain.TierServingsPerPackage, Apply: ServingsPerPackageStrategy},
		{Tier: domain.TierUnitConversion, Apply: UnitConversionStrategy},
	}
}

// Validate rejects tables that cannot be ranked at all.
func (e *RankingEngine) Validate(rows []domain.ProductNutritionRow) error {
	if len(rows) == 0 {
		return domain.ErrEmptyInput
	}
	return nil
}

// Score computes the calories per dollar of a single row.
// Rows with an unusable price or calories come back with Valid=false and a zero ratio.
func (e *RankingEngine) Score(row domain.ProductNutritionRow) domain.RankedRow {
	ranked := domain.RankedRow{ProductNutritionRow: row}

	baseline, ok := BaselineRatio(row)
	if !ok {
		ranked.Tier = domain.TierInvalid
		return ranked
	}

	ranked.Valid = true
	ranked.CaloriesPerDollar = baseline
	ranked.Tier = domain.TierBaseline

	for _, s := range e.strategies {
		if v, ok := s.Apply(row); ok {
			ranked.CaloriesPerDollar = v
			ranked.Tier = s.Tier
			break
		}
	}

	return ranked
}

// Rank scores every row and sorts by calories per dollar descending.
// Ties keep input order; invalid rows follow all valid ones in input order.
// The output always has one row per input row.
func (e *RankingEngine) Rank(rows []domain.ProductNutritionRow) []domain.RankedRow {
	ranked := make([]domain.RankedRow, len(rows))
	for i, row := range rows {
		ranked[i] = e.Score(row)
		if e.recorder != nil {
			e.recorder.ObserveTier(ranked[i].Tier)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Valid != ranked[j].Valid {
			return ranked[i].Valid
		}
		return ranked[i].CaloriesPerDollar > ranked[j].CaloriesPerDollar
	})

	return ranked
}

// BaselineRatio is calories / price for a single serving.
func BaselineRatio(row domain.ProductNutritionRow) (float64, bool) {
	if !usable(row.Calories) || !usable(row.Price) || *row.Price <= 0 {
		return 0, false
	}
	return finite(*row.Calories / *row.Price)
}

// ServingsPerPackageStrategy scales calories to the whole package using the explicit serving count.
func ServingsPerPackageStrategy(row domain.ProductNutritionRow) (float64, bool) {
	if !usable(row.ServingsPerPackage) {
		return 0, false
	}
	return finite(*row.Calories * *row.ServingsPerPackage / *row.Price)
}

// UnitConversionStrategy derives servings per package from the size and serving size text.
// Any parse or conversion failure means the strategy does not apply.
func UnitConversionStrategy(row domain.ProductNutritionRow) (float64, bool) {
	if strings.TrimSpace(row.Size) == "" || strings.TrimSpace(row.ServingSize) == "" {
		return 0, false
	}

	servings, err := servingsFromSizes(row.Size, row.ServingSize)
	if err != nil {
		log.WithFields(log.Fields{
			"description":  row.Description,
			"size":         row.Size,
			"serving_size": row.ServingSize,
		}).WithError(err).Debug("unit conversion skipped, keeping baseline")
		return 0, false
	}

	return finite(*row.Calories * servings / *row.Price)
}

// servingsFromSizes is package size divided by serving size, in the package's unit.
func servingsFromSizes(size, servingSize string) (float64, error) {
	pkg, err := units.Parse(size)
	if err != nil {
		return 0, err
	}
	serving, err := units.Parse(servingSize)
	if err != nil {
		return 0, err
	}
	ratio, err := units.Ratio(pkg, serving)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0, errors.New("servings per package is not finite")
	}
	return ratio, nil
}

// FilterByDescription keeps rows whose description fuzzily contains query.
// An empty query keeps everything.
func FilterByDescription(rows []domain.ProductNutritionRow, query string) []domain.ProductNutritionRow {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}

	filtered := make([]domain.ProductNutritionRow, 0, len(rows))
	for _, row := range rows {
		if fuzzy.MatchFold(query, row.Description) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
