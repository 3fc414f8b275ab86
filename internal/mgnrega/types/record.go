package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Source tags which tier answered a query.
type Source string

const (
	SourceAPI       Source = "API"
	SourceCSV       Source = "CSV"
	SourceMongo     Source = "MongoDB cache"
	SourcePostgres  Source = "Postgres cache"
	SourceMemory    Source = "memory cache"
	SourceGenerated Source = "generated"
)

// UnknownDistrict is used whenever a row carries no district name.
const UnknownDistrict = "Unknown"

// Record is one month of MGNREGA activity for a district.
type Record struct {
	District           string    `json:"district" bson:"district" db:"district"`
	Month              int       `json:"month" bson:"month" db:"month"`
	Year               int       `json:"year" bson:"year" db:"year"`
	PersonDays         int64     `json:"person_days" bson:"person_days" db:"person_days"`
	Households         int64     `json:"households" bson:"households" db:"households"`
	FundsSpent         float64   `json:"funds_spent" bson:"funds_spent" db:"funds_spent"`
	WorksCompleted     int64     `json:"works_completed" bson:"works_completed" db:"works_completed"`
	AverageWage        float64   `json:"average_wage" bson:"average_wage" db:"average_wage"`
	WomenParticipation float64   `json:"women_participation" bson:"women_participation" db:"women_participation"`
	Raw                RawRecord `json:"raw,omitempty" bson:"raw,omitempty" db:"raw"`
	FetchedAt          time.Time `json:"fetched_at,omitzero" bson:"fetched_at,omitempty" db:"fetched_at"`
	CreatedAt          time.Time `json:"createdAt,omitzero" bson:"createdAt,omitempty" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt,omitzero" bson:"updatedAt,omitempty" db:"updated_at"`
}

// Key is the natural dedup key of a persisted record.
type Key struct {
	District string
	Month    int
	Year     int
}

func (r Record) Key() Key {
	return Key{District: r.District, Month: r.Month, Year: r.Year}
}

// RawRecord is an untouched remote payload object.
type RawRecord map[string]any

// Value stores the payload as JSON (jsonb column).
func (r RawRecord) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

func (r *RawRecord) Scan(src any) error {
	if src == nil {
		*r = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("raw record: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, r)
}

// QueryKind identifies the three logical queries the service answers.
type QueryKind int

const (
	QueryAll QueryKind = iota
	QueryDistricts
	QueryDistrict
)

var QueryKindNames = map[QueryKind]string{
	QueryAll:       "all",
	QueryDistricts: "districts",
	QueryDistrict:  "district",
}

func (k QueryKind) String() string {
	if name, ok := QueryKindNames[k]; ok {
		return name
	}
	return "unknown"
}

type Query struct {
	Kind     QueryKind
	District string
}
