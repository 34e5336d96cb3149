// Package order prices appointments and builds bank-slip orders.
package order

import (
	"regexp"
	"strings"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
)

const Currency = "LKR"

var prices = map[domain.Service]map[string]float64{
	domain.ServiceGrooming: {
		"basic-bath-brush": 2500,
		"full-grooming":    6500,
		"nail-trim":        1500,
		"deshedding":       4500,
		"flea-tick":        5500,
		"premium-spa":      9500,
	},
	domain.ServiceDaycare: {
		"half-day":     3000,
		"full-day":     5500,
		"extended-day": 7000,
	},
	domain.ServiceVet: {
		"general-health-checkup": 7500,
		"vaccination":            4500,
		"emergency-care":         15000,
	},
}

// PriceTable returns a copy of the package prices.
func PriceTable() map[domain.Service]map[string]float64 {
	out := make(map[domain.Service]map[string]float64, len(prices))
	for svc, table := range prices {
		cp := make(map[string]float64, len(table))
		for k, v := range table {
			cp[k] = v
		}
		out[svc] = cp
	}
	return out
}

var (
	spaces   = regexp.MustCompile(`\s+`)
	nonWords = regexp.MustCompile(`[^\w-]`)
)

// Keyify turns a package name into its price-table key:
// "General Health Checkup" -> "general-health-checkup".
func Keyify(s string) string {
	s = strings.ToLower(s)
	s = spaces.ReplaceAllString(s, "-")
	return nonWords.ReplaceAllString(s, "")
}

// BasePrice looks the record's package up, trying packageId, packageName,
// selectedService and title in that order. Unknown packages cost 0.
func BasePrice(svc domain.Service, rec domain.Record) float64 {
	var key string
	for _, c := range []string{string(rec.PackageID), rec.PackageName, rec.SelectedService, rec.Title} {
		if key = Keyify(c); key != "" {
			break
		}
	}
	return prices[svc][key]
}

func ExtrasTotal(rec domain.Record) float64 {
	var sum float64
	for _, e := range rec.Extras {
		sum += e.Price
	}
	return sum
}

func LineTotal(svc domain.Service, rec domain.Record) float64 {
	return BasePrice(svc, rec) + ExtrasTotal(rec)
}
