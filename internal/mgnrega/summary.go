package mgnrega

import (
	"sort"

	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DistrictSummary aggregates every record of one district.
type DistrictSummary struct {
	District                  string  `json:"district"`
	Records                   int     `json:"records"`
	TotalPersonDays           float64 `json:"total_person_days"`
	TotalHouseholds           float64 `json:"total_households"`
	TotalFundsSpent           float64 `json:"total_funds_spent"`
	TotalWorksCompleted       float64 `json:"total_works_completed"`
	AverageWage               float64 `json:"average_wage"`
	AverageWomenParticipation float64 `json:"average_women_participation"`
	LatestYear                int     `json:"latest_year"`
	LatestMonth               int     `json:"latest_month"`
}

type columns struct {
	personDays, households, funds, works, wage, women []float64
}

// Summarize groups records by district, sorted by district name.
func Summarize(records []types.Record) []DistrictSummary {
	byDistrict := make(map[string]*columns)
	latest := make(map[string][2]int)
	order := make([]string, 0)

	for _, r := range records {
		c, ok := byDistrict[r.District]
		if !ok {
			c = &columns{}
			byDistrict[r.District] = c
			order = append(order, r.District)
		}
		c.personDays = append(c.personDays, float64(r.PersonDays))
		c.households = append(c.households, float64(r.Households))
		c.funds = append(c.funds, r.FundsSpent)
		c.works = append(c.works, float64(r.WorksCompleted))
		c.wage = append(c.wage, r.AverageWage)
		c.women = append(c.women, r.WomenParticipation)

		l := latest[r.District]
		if r.Year > l[0] || (r.Year == l[0] && r.Month > l[1]) {
			latest[r.District] = [2]int{r.Year, r.Month}
		}
	}

	sort.Strings(order)
	out := make([]DistrictSummary, 0, len(order))
	for _, d := range order {
		c := byDistrict[d]
		out = append(out, DistrictSummary{
			District:                  d,
			Records:                   len(c.personDays),
			TotalPersonDays:           floats.Sum(c.personDays),
			TotalHouseholds:           floats.Sum(c.households),
			TotalFundsSpent:           floats.Sum(c.funds),
			TotalWorksCompleted:       floats.Sum(c.works),
			AverageWage:               stat.Mean(c.wage, nil),
			AverageWomenParticipation: stat.Mean(c.women, nil),
			LatestYear:                latest[d][0],
			LatestMonth:               latest[d][1],
		})
	}
	return out
}
