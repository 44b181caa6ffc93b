// Package validation provides cleaning and validation of raw TVL series.
package validation

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/yourorg/defi-tvl-analyzer/internal/model"
)

// Report is the outcome of cleaning a raw series.
type Report struct {
	// Series holds the valid points sorted ascending by date
	Series model.Series

	// Dropped counts points rejected as malformed
	Dropped int
}

// Clean removes malformed points and returns the remainder sorted by date.
// This is the main entrypoint for the validation package.
func Clean(raw []model.RawPoint) model.Series {
	return Inspect(raw).Series
}

// Inspect cleans raw like Clean and also reports how many points were dropped.
func Inspect(raw []model.RawPoint) Report {
	series := make(model.Series, 0, len(raw))
	for _, p := range raw {
		if point, ok := ParsePoint(p); ok {
			series = append(series, point)
		}
	}

	// Stable so equal dates keep their input order
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})

	return Report{
		Series:  series,
		Dropped: len(raw) - len(series),
	}
}

// ParsePoint converts a raw point into a validated one.
func ParsePoint(p model.RawPoint) (model.TimeSeriesPoint, bool) {
	date, ok := ParseDate(p.Date)
	if !ok {
		return model.TimeSeriesPoint{}, false
	}
	value, ok := ParseValue(p.Value)
	if !ok {
		return model.TimeSeriesPoint{}, false
	}
	return model.TimeSeriesPoint{Date: date, Value: value}, true
}

// ParseDate reports whether v is a finite integer and returns it as int64.
// Integral floats and numeric strings are accepted.
func ParseDate(v any) (int64, bool) {
	if i, ok := toInt(v); ok {
		return i, true
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// ParseValue reports whether v is a finite number and returns it as float64.
func ParseValue(v any) (float64, bool) {
	return toFloat(v)
}

// toInt handles values that are exact integers without going through float64.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

// toFloat converts numeric carriers to a finite float64.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil, bool:
		return 0, false
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(rv.Uint())
		default:
			return 0, false
		}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
