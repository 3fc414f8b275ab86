package utils

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// ColumnIndex maps lower-cased, trimmed header names onto the dataframe's own names.
type ColumnIndex map[string]string

func NewColumnIndex(df *dataframe.DataFrame) ColumnIndex {
	idx := make(ColumnIndex)
	if df == nil {
		return idx
	}
	for _, name := range df.Names() {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := idx[key]; !exists {
			idx[key] = name
		}
	}
	return idx
}

// GetStr returns the cell as a string, "" when the column is absent or the cell is NaN.
func GetStr(col string, rowIdx int, df *dataframe.DataFrame, idx ColumnIndex) string {
	if df == nil {
		return ""
	}
	name, ok := idx[strings.ToLower(col)]
	if !ok {
		return ""
	}
	elem := df.Col(name).Elem(rowIdx)
	if elem.IsNA() {
		return ""
	}
	return strings.TrimSpace(elem.String())
}

func GetFloat(col string, rowIdx int, df *dataframe.DataFrame, idx ColumnIndex, def float64) float64 {
	return ParseNumericOrDefault(GetStr(col, rowIdx, df, idx), def)
}

func GetInt(col string, rowIdx int, df *dataframe.DataFrame, idx ColumnIndex, def int64) int64 {
	return ParseIntOrDefault(GetStr(col, rowIdx, df, idx), def)
}
