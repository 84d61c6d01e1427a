package quote

import (
	"math"
	"net/http"

	"github.com/aqilnasir/protek-api/internal/common"
)

// InstallmentPlan is the result of splitting an amount over a number of
// months. TotalPayment is monthly x months and may drift from the input
// amount by a few units because the monthly figure is rounded; Interest
// captures exactly that drift (it can be negative) and is not real
// interest.
type InstallmentPlan struct {
	MonthlyPayment int64 `json:"monthlyPayment"`
	TotalPayment   int64 `json:"totalPayment"`
	Interest       int64 `json:"interest"`
	Months         int   `json:"months"`
}

// ComputeInstallments splits amount evenly over months.
func ComputeInstallments(amount int64, months int) (InstallmentPlan, error) {
	if amount <= 0 || months <= 0 {
		return InstallmentPlan{}, common.NewAppError("INVALID_REQUEST", "amount and months required", http.StatusBadRequest, nil)
	}
	monthly := int64(math.Round(float64(amount) / float64(months)))
	total := monthly * int64(months)
	return InstallmentPlan{
		MonthlyPayment: monthly,
		TotalPayment:   total,
		Interest:       total - amount,
		Months:         months,
	}, nil
}
