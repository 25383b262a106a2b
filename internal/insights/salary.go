// Package insights computes labor-market summaries over postings and the taxonomy
// feed: salary formatting and city statistics, posting quality scores, emerging
// skill phrases and credential inflation.
package insights

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/skill-matcher/internal/textnorm"
	"github.com/jonathan/skill-matcher/internal/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotDisclosed is shown when a posting carries no usable salary.
const NotDisclosed = "Not disclosed"

// MinCityPostings is the smallest number of salaried postings a city needs to be
// reported by SalaryByCity.
const MinCityPostings = 3

var money = message.NewPrinter(language.English)

func dollars(v float64) string {
	return money.Sprintf("$%.0f", v)
}

// FormatSalary renders a salary range. A missing or non-positive minimum yields
// NotDisclosed. The unit defaults to "year" when a maximum is present.
func FormatSalary(minimum, maximum float64, unit string) string {
	if math.IsNaN(minimum) || minimum <= 0 {
		return NotDisclosed
	}
	if math.IsNaN(maximum) {
		maximum = 0
	}

	suffix := ""
	unit = strings.TrimSpace(unit)
	switch {
	case unit != "" && !textnorm.IsNull(unit):
		suffix = " / " + unit
	case maximum > 0:
		suffix = " / year"
	}

	if maximum > 0 {
		return dollars(minimum) + " - " + dollars(maximum) + suffix
	}
	return dollars(minimum) + "+" + suffix
}

// CityStats summarizes the minimum salaries advertised in one city.
type CityStats struct {
	City      string  `json:"city"`
	AvgMin    float64 `json:"avg_min"`
	MedianMin float64 `json:"median_min"`
	P25       float64 `json:"p25"`
	P75       float64 `json:"p75"`
	MaxMin    float64 `json:"max_min"`
	JobCount  int     `json:"job_count"`
}

// SalaryByCity groups salaried postings by city and returns cities with at least
// MinCityPostings postings, highest average first.
func SalaryByCity(postings []types.Posting) []CityStats {
	byCity := make(map[string][]float64)
	for _, p := range postings {
		city := strings.TrimSpace(p.City)
		if city == "" || !(p.SalaryMin > 0) || math.IsInf(p.SalaryMin, 0) {
			continue
		}
		byCity[city] = append(byCity[city], p.SalaryMin)
	}

	out := make([]CityStats, 0, len(byCity))
	for city, salaries := range byCity {
		if len(salaries) < MinCityPostings {
			continue
		}
		sort.Float64s(salaries)
		var sum float64
		for _, s := range salaries {
			sum += s
		}
		out = append(out, CityStats{
			City:      city,
			AvgMin:    sum / float64(len(salaries)),
			MedianMin: percentile(salaries, 50),
			P25:       percentile(salaries, 25),
			P75:       percentile(salaries, 75),
			MaxMin:    salaries[len(salaries)-1],
			JobCount:  len(salaries),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMin != out[j].AvgMin {
			return out[i].AvgMin > out[j].AvgMin
		}
		return out[i].City < out[j].City
	})
	return out
}

// percentile linearly interpolates between closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}
