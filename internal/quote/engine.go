package quote

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aqilnasir/protek-api/internal/common"
)

// VehicleProfile describes the vehicle being quoted. It is request-scoped
// and discarded after the response is built.
type VehicleProfile struct {
	Type           string `json:"type"`
	Year           int    `json:"year"`
	EngineCapacity int    `json:"engineCapacity"`
	Brand          string `json:"brand,omitempty"`
	Model          string `json:"model,omitempty"`
}

// DriverProfile describes the driver being quoted.
type DriverProfile struct {
	BirthYear     int    `json:"birthYear"`
	ClaimsHistory int    `json:"claimsHistory"`
	Name          string `json:"name,omitempty"`
	LicenseNumber string `json:"licenseNumber,omitempty"`
}

// Quote is a fully priced offer from one insurer. Computed fresh per
// request, never cached or persisted.
type Quote struct {
	Insurer
	FinalPrice     int64  `json:"finalPrice"`
	OriginalPrice  int64  `json:"originalPrice"`
	NCD            string `json:"ncd"`
	Savings        int64  `json:"savings"`
	MonthlyPayment int64  `json:"monthlyPayment"`
}

// Summary aggregates the quote list for a single request.
type Summary struct {
	TotalQuotes  int        `json:"totalQuotes"`
	PriceRange   PriceRange `json:"priceRange"`
	AveragePrice int64      `json:"averagePrice"`
}

// PriceRange holds the cheapest and most expensive final prices.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Result bundles the sorted quotes with their summary.
type Result struct {
	Quotes  []Quote `json:"quotes"`
	Summary Summary `json:"summary"`
}

// errMissingProfiles is returned when the request omits the vehicle or
// driver profile. No partial computation is attempted.
func errMissingProfiles() *common.AppError {
	return common.NewAppError("INVALID_REQUEST", "vehicle and driver information required", http.StatusBadRequest, nil)
}

// Engine computes premiums against the static insurer catalog. The
// computation is pure given the catalog, the type table, and the reference
// date, so instances are safe for concurrent use.
type Engine struct {
	catalog []Insurer
}

// NewEngine constructs an Engine over the built-in catalog.
func NewEngine() *Engine {
	return &Engine{catalog: Catalog()}
}

// Compute prices every insurer in the catalog for the given profiles and
// returns quotes sorted ascending by final price plus a summary.
//
// The reference date is an explicit parameter: premiums are date-sensitive
// on purpose (vehicles age past rating thresholds over real time), and
// passing the date keeps the function deterministic for tests.
//
// The multiplicative factors are applied in a fixed order. Reordering
// changes results because each discount compounds on whatever price
// preceded it, so the sequence below must not be rearranged.
func (e *Engine) Compute(at time.Time, vehicle *VehicleProfile, driver *DriverProfile) (Result, error) {
	if vehicle == nil || driver == nil {
		return Result{}, errMissingProfiles()
	}

	currentYear := at.Year()
	quotes := make([]Quote, 0, len(e.catalog))
	for _, ins := range e.catalog {
		price := float64(ins.BasePrice)

		price *= VehicleMultiplier(vehicle.Type)

		vehicleAge := currentYear - vehicle.Year
		switch {
		case vehicleAge > 10:
			price *= 1.3
		case vehicleAge > 5:
			price *= 1.1
		}

		switch {
		case vehicle.EngineCapacity > 2000:
			price *= 1.2
		case vehicle.EngineCapacity > 1500:
			price *= 1.1
		}

		driverAge := currentYear - driver.BirthYear
		switch {
		case driverAge < 25:
			price *= 1.4
		case driverAge < 30:
			price *= 1.2
		}

		ncd := CalculateNCD(at, vehicle.Year, driver.ClaimsHistory)
		price *= 1 - percentFraction(ncd)

		discount := percentFraction(ins.Discount)
		price *= 1 - discount

		final := int64(math.Round(price))
		// Back-solve the pre-insurer-discount price so savings reflect
		// only the insurer's own discount, not the NCD.
		original := int64(math.Round(price / (1 - discount)))

		quotes = append(quotes, Quote{
			Insurer:        ins,
			FinalPrice:     final,
			OriginalPrice:  original,
			NCD:            ncd,
			Savings:        original - final,
			MonthlyPayment: int64(math.Round(float64(final) / 12)),
		})
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].FinalPrice < quotes[j].FinalPrice
	})

	return Result{Quotes: quotes, Summary: summarize(quotes)}, nil
}

func summarize(quotes []Quote) Summary {
	s := Summary{TotalQuotes: len(quotes)}
	if len(quotes) == 0 {
		return s
	}
	s.PriceRange.Min = quotes[0].FinalPrice
	s.PriceRange.Max = quotes[len(quotes)-1].FinalPrice
	var sum int64
	for _, q := range quotes {
		sum += q.FinalPrice
	}
	s.AveragePrice = int64(math.Round(float64(sum) / float64(len(quotes))))
	return s
}

// CalculateNCD derives the no-claims-discount percentage from vehicle age
// and claims history, rendered as a percentage string (e.g. "55%").
//
// The age banding is deliberately non-monotonic: vehicles older than ten
// years base at 25 while the 6-10 band bases at 30 and the newest band at
// 55. This mirrors the production schedule and must not be "corrected".
func CalculateNCD(at time.Time, vehicleYear, claimsHistory int) string {
	age := at.Year() - vehicleYear

	var base int
	switch {
	case age > 10:
		base = 25
	case age > 5:
		base = 30
	default:
		base = 55
	}

	final := base - claimsHistory*10
	if final < 0 {
		final = 0
	}
	return fmt.Sprintf("%d%%", final)
}

// percentFraction parses a percentage string such as "15%" into a fraction.
func percentFraction(s string) float64 {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return v / 100
}
