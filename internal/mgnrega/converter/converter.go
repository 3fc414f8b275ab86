package converter

import (
	"strings"
	"time"

	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/utils"
	"github.com/go-gota/gota/dataframe"
)

// CSV header names. Lookup is case-insensitive.
const (
	ColDistrict           = "district"
	ColMonth              = "month"
	ColYear               = "year"
	ColPersonDays         = "person_days"
	ColHouseholds         = "households"
	ColFundsSpent         = "funds_spent"
	ColWorksCompleted     = "works_completed"
	ColAverageWage        = "average_wage"
	ColWomenParticipation = "women_participation"
)

var CSVColumns = []string{
	ColDistrict,
	ColMonth,
	ColYear,
	ColPersonDays,
	ColHouseholds,
	ColFundsSpent,
	ColWorksCompleted,
	ColAverageWage,
	ColWomenParticipation,
}

// Remote payloads name the same field differently from record to record.
// The first alias present wins.
var remoteAliases = map[string][]string{
	ColDistrict:           {"district_name", "district"},
	ColMonth:              {"month"},
	ColYear:               {"year", "fin_year"},
	ColPersonDays:         {"persondays_generated", "person_days"},
	ColHouseholds:         {"total_households", "households"},
	ColFundsSpent:         {"total_expenditure", "funds_spent"},
	ColWorksCompleted:     {"number_of_completed_works", "works_completed"},
	ColAverageWage:        {"average_wage_rate_per_day_per_person", "average_wage"},
	ColWomenParticipation: {"women_participation", "women_participation_percent"},
}

func DfRowToRecord(df dataframe.DataFrame, idx utils.ColumnIndex, rowIdx int, now time.Time) types.Record {
	district := utils.GetStr(ColDistrict, rowIdx, &df, idx)
	if district == "" {
		district = types.UnknownDistrict
	}

	return types.Record{
		District:           district,
		Month:              utils.ParseMonth(utils.GetStr(ColMonth, rowIdx, &df, idx)),
		Year:               utils.ParseYear(utils.GetStr(ColYear, rowIdx, &df, idx), now.Year()),
		PersonDays:         utils.NonNegativeInt(utils.GetInt(ColPersonDays, rowIdx, &df, idx, 0)),
		Households:         utils.NonNegativeInt(utils.GetInt(ColHouseholds, rowIdx, &df, idx, 0)),
		FundsSpent:         utils.NonNegative(utils.GetFloat(ColFundsSpent, rowIdx, &df, idx, 0)),
		WorksCompleted:     utils.NonNegativeInt(utils.GetInt(ColWorksCompleted, rowIdx, &df, idx, 0)),
		AverageWage:        utils.NonNegative(utils.GetFloat(ColAverageWage, rowIdx, &df, idx, 0)),
		WomenParticipation: utils.NonNegative(utils.GetFloat(ColWomenParticipation, rowIdx, &df, idx, 0)),
	}
}

// RawToRecord normalizes one remote payload object. The raw object is kept
// on the record so it can be persisted alongside.
func RawToRecord(raw types.RawRecord, now time.Time) types.Record {
	lower := make(map[string]any, len(raw))
	for k, v := range raw {
		lower[strings.ToLower(strings.TrimSpace(k))] = v
	}
	get := func(field string) string {
		for _, alias := range remoteAliases[field] {
			if v, ok := lower[alias]; ok {
				if s := strings.TrimSpace(utils.ToString(v)); s != "" {
					return s
				}
			}
		}
		return ""
	}

	district := get(ColDistrict)
	if district == "" {
		district = types.UnknownDistrict
	}

	return types.Record{
		District:           district,
		Month:              utils.ParseMonth(get(ColMonth)),
		Year:               utils.ParseYear(get(ColYear), now.Year()),
		PersonDays:         utils.NonNegativeInt(utils.ParseIntOrDefault(get(ColPersonDays), 0)),
		Households:         utils.NonNegativeInt(utils.ParseIntOrDefault(get(ColHouseholds), 0)),
		FundsSpent:         utils.NonNegative(utils.ParseNumericOrDefault(get(ColFundsSpent), 0)),
		WorksCompleted:     utils.NonNegativeInt(utils.ParseIntOrDefault(get(ColWorksCompleted), 0)),
		AverageWage:        utils.NonNegative(utils.ParseNumericOrDefault(get(ColAverageWage), 0)),
		WomenParticipation: utils.NonNegative(utils.ParseNumericOrDefault(get(ColWomenParticipation), 0)),
		Raw:                raw,
		FetchedAt:          now,
	}
}

func RawToRecords(raws []types.RawRecord, now time.Time) []types.Record {
	records := make([]types.Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, RawToRecord(raw, now))
	}
	return records
}
