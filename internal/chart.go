package internal

import "strings"

// Chart view modes understood by the dashboard and the result viewer
var ChartTypes = []string{"table", "bar", "line", "area", "pie", "scatter"}

var (
	preferredXColumns = []string{"name", "title", "label", "category", "date", "month", "year", "id", "rollno"}
	preferredYColumns = []string{"marks", "score", "price", "count", "total", "amount", "qty", "sales"}
)

// Columns returns the column names of a result set, in order of the first row
func Columns(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Keys()
}

// NumericColumns returns the columns whose first-row value is a number
func NumericColumns(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	var out []string
	for _, k := range rows[0].Keys() {
		v, _ := rows[0].Get(k)
		if IsNumeric(v) {
			out = append(out, k)
		}
	}
	return out
}

// InferChartConfig picks chart axes from the first row of a result set.
//
// X prefers a string column with a label-like name, then any string column,
// then the first column. Y prefers a numeric column with a measure-like
// name, then a numeric column that does not look like a key, then any
// numeric column, then the second column.
func InferChartConfig(rows []Row) ChartConfig {
	if len(rows) == 0 || rows[0].Len() == 0 {
		return ChartConfig{}
	}
	first := rows[0]
	keys := first.Keys()

	isString := func(k string) bool {
		v, _ := first.Get(k)
		return IsString(v)
	}

	xAxis := ""
	for _, k := range keys {
		if containsString(preferredXColumns, strings.ToLower(k)) && isString(k) {
			xAxis = k
			break
		}
	}
	if xAxis == "" {
		for _, k := range keys {
			if isString(k) {
				xAxis = k
				break
			}
		}
	}
	if xAxis == "" {
		xAxis = keys[0]
	}

	numeric := NumericColumns(rows)
	yAxis := ""
	for _, k := range numeric {
		if containsString(preferredYColumns, strings.ToLower(k)) {
			yAxis = k
			break
		}
	}
	if yAxis == "" {
		for _, k := range numeric {
			lower := strings.ToLower(k)
			if !strings.Contains(lower, "id") && !strings.Contains(lower, "pk") {
				yAxis = k
				break
			}
		}
	}
	if yAxis == "" && len(numeric) > 0 {
		yAxis = numeric[0]
	}
	if yAxis == "" {
		if len(keys) > 1 {
			yAxis = keys[1]
		} else {
			yAxis = keys[0]
		}
	}

	return ChartConfig{XAxis: xAxis, YAxis: yAxis, LabelKey: xAxis}
}

// ResolveViewMode falls back to a table when a chart was requested for data
// without any numeric column. "message" results are left alone.
func ResolveViewMode(requested string, rows []Row) string {
	if requested == "" {
		requested = DatasetTable
	}
	if len(rows) == 0 || requested == DatasetTable || requested == DatasetMessage {
		return requested
	}
	if len(NumericColumns(rows)) == 0 {
		return DatasetTable
	}
	return requested
}

// IsChartType reports whether t is a known view mode
func IsChartType(t string) bool {
	return containsString(ChartTypes, t)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
