package quote

// Insurer is a static catalog entry. The catalog is process-wide reference
// data: it is never created, mutated, or deleted at runtime.
type Insurer struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	BasePrice    int64    `json:"basePrice"`
	Logo         string   `json:"logo"`
	Rating       float64  `json:"rating"`
	Features     []string `json:"features"`
	Kind         string   `json:"type"`
	Popular      bool     `json:"popular"`
	Discount     string   `json:"discount"`
	Installments []int    `json:"installments"`
}

// KindTakaful and KindConventional are the closed set of insurer categories.
const (
	KindTakaful      = "takaful"
	KindConventional = "conventional"
)

var insurers = []Insurer{
	{
		ID:        1,
		Name:      "Etiqa Takaful",
		BasePrice: 800,
		Logo:      "etiqa.png",
		Rating:    4.8,
		Features: []string{
			"24/7 Roadside Assistance",
			"Personal Accident Cover",
			"Free Emergency Assistance",
			"NCD Protection",
		},
		Kind:         KindTakaful,
		Popular:      true,
		Discount:     "15%",
		Installments: []int{3, 6, 12},
	},
	{
		ID:        2,
		Name:      "Allianz Malaysia",
		BasePrice: 900,
		Logo:      "allianz.png",
		Rating:    4.6,
		Features: []string{
			"NCD Protection",
			"Free Emergency Assistance",
			"Windscreen Cover",
			"Personal Accident",
		},
		Kind:         KindConventional,
		Popular:      false,
		Discount:     "10%",
		Installments: []int{3, 6, 12},
	},
	{
		ID:        3,
		Name:      "Takaful Ikhlas",
		BasePrice: 750,
		Logo:      "takaful-ikhlas.png",
		Rating:    4.5,
		Features: []string{
			"24/7 Roadside Assistance",
			"Personal Accident Cover",
			"Medical Expenses",
		},
		Kind:         KindTakaful,
		Popular:      false,
		Discount:     "20%",
		Installments: []int{3, 6},
	},
	{
		ID:        4,
		Name:      "Berjaya Sompo",
		BasePrice: 850,
		Logo:      "berjaya-sompo.png",
		Rating:    4.7,
		Features: []string{
			"NCD Protection",
			"Free Emergency Assistance",
			"Windscreen Cover",
			"Personal Accident",
			"Medical Expenses",
		},
		Kind:         KindConventional,
		Popular:      true,
		Discount:     "12%",
		Installments: []int{3, 6, 12},
	},
}

// vehicleTypeOrder preserves the canonical listing order of the type table.
var vehicleTypeOrder = []string{"sedan", "suv", "pickup", "commercial", "motorcycle"}

var vehicleMultipliers = map[string]float64{
	"sedan":      1.0,
	"suv":        1.2,
	"pickup":     1.1,
	"commercial": 1.5,
	"motorcycle": 0.6,
}

// Catalog returns the fixed set of insurer offerings.
func Catalog() []Insurer {
	out := make([]Insurer, len(insurers))
	copy(out, insurers)
	return out
}

// VehicleTypes returns the closed enumeration of supported vehicle types in
// stable order.
func VehicleTypes() []string {
	out := make([]string, len(vehicleTypeOrder))
	copy(out, vehicleTypeOrder)
	return out
}

// VehicleMultiplier looks up the rating multiplier for a vehicle type.
// Unknown types rate neutrally at 1.0 rather than erroring.
func VehicleMultiplier(vehicleType string) float64 {
	if m, ok := vehicleMultipliers[vehicleType]; ok {
		return m
	}
	return 1.0
}
