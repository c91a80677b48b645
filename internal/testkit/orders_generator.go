package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// OrdersGeneratorConfig configures the order sheet generator
type OrdersGeneratorConfig struct {
	CustomerCount        int
	AvgOrdersPerCustomer float64
	// MissingRate is the share of quantity cells written as "N/A"
	MissingRate float64
	StartDate   time.Time
	EndDate     time.Time
	Seed        int64
}

// DefaultOrdersConfig returns sensible defaults for order sheet generation
func DefaultOrdersConfig() OrdersGeneratorConfig {
	return OrdersGeneratorConfig{
		CustomerCount:        50,
		AvgOrdersPerCustomer: 2.5,
		MissingRate:          0.05,
		StartDate:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:              time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
		Seed:                 42,
	}
}

// OrdersHeader is the header row of generated sheets
var OrdersHeader = []string{"order_id", "customer", "country", "channel", "order_date", "quantity", "unit_price"}

// OrdersGenerator produces deterministic order sheets for a given seed
type OrdersGenerator struct {
	config OrdersGeneratorConfig
	rng    *rand.Rand
}

// NewOrdersGenerator creates a new order sheet generator
func NewOrdersGenerator(config OrdersGeneratorConfig) *OrdersGenerator {
	return &OrdersGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Rows generates the header row followed by one row per order. Cells are
// written the way a spreadsheet export would: dates as YYYY-MM-DD, prices
// with two decimals.
func (g *OrdersGenerator) Rows() [][]string {
	rows := [][]string{append([]string(nil), OrdersHeader...)}

	for i := 0; i < g.config.CustomerCount; i++ {
		customer := fmt.Sprintf("customer_%04d", i+1)
		country := g.randomCountry()

		orderCount := int(math.Round(g.config.AvgOrdersPerCustomer + g.rng.NormFloat64()*0.5))
		if orderCount < 1 && g.config.AvgOrdersPerCustomer > 0 {
			orderCount = 1
		}
		if orderCount > 10 {
			orderCount = 10
		}

		for j := 0; j < orderCount; j++ {
			orderDate := g.randomTimeInRange(g.config.StartDate, g.config.EndDate)

			quantity := strconv.Itoa(g.rng.Intn(9) + 1)
			if g.rng.Float64() < g.config.MissingRate {
				quantity = "N/A"
			}
			price := 5 + g.rng.Float64()*95

			rows = append(rows, []string{
				fmt.Sprintf("order_%s_%02d", customer, j+1),
				customer,
				country,
				g.randomChannel(),
				orderDate.Format("2006-01-02"),
				quantity,
				strconv.FormatFloat(price, 'f', 2, 64),
			})
		}
	}

	return rows
}

// Cells converts Rows for WriteWorkbook
func (g *OrdersGenerator) Cells() [][]any {
	rows := g.Rows()
	cells := make([][]any, len(rows))
	for i, row := range rows {
		cells[i] = make([]any, len(row))
		for j, v := range row {
			cells[i][j] = v
		}
	}
	return cells
}

func (g *OrdersGenerator) randomTimeInRange(start, end time.Time) time.Time {
	if start.After(end) {
		start, end = end, start
	}
	duration := end.Sub(start)
	if duration <= 0 {
		return start
	}
	return start.Add(time.Duration(g.rng.Int63n(int64(duration))))
}

func (g *OrdersGenerator) randomCountry() string {
	countries := []string{"US", "CA", "GB", "DE", "FR", "AU", "JP"}
	return countries[g.rng.Intn(len(countries))]
}

func (g *OrdersGenerator) randomChannel() string {
	channels := []string{"organic", "paid_search", "social", "email", "direct"}
	weights := []float64{0.4, 0.3, 0.15, 0.1, 0.05}

	r := g.rng.Float64()
	cumulative := 0.0
	for i, weight := range weights {
		cumulative += weight
		if r <= cumulative {
			return channels[i]
		}
	}
	return channels[0]
}
