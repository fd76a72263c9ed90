package lit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MetricValue is a value reported for a test metric.
type MetricValue interface {
	// Format renders the value for human-readable reports.
	Format() string
	// Value returns the plain Go value (int64, float64 or a JSON value).
	Value() any
}

type IntMetricValue int64

func (v IntMetricValue) Format() string { return strconv.FormatInt(int64(v), 10) }
func (v IntMetricValue) Value() any     { return int64(v) }

type RealMetricValue float64

func (v RealMetricValue) Format() string { return fmt.Sprintf("%.4f", float64(v)) }
func (v RealMetricValue) Value() any     { return float64(v) }

// MarshalJSON keeps a decimal point on integral values so the value reads
// back as a real.
func (v RealMetricValue) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("metric value %v is not representable in JSON", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

// JSONMetricValue holds any other JSON-encodable value: strings, booleans,
// arrays and objects.
type JSONMetricValue struct {
	V any
}

func (v JSONMetricValue) Format() string {
	data, err := json.Marshal(v.V)
	if err != nil {
		return fmt.Sprint(v.V)
	}
	return string(data)
}

func (v JSONMetricValue) Value() any { return v.V }

func (v JSONMetricValue) MarshalJSON() ([]byte, error) { return json.Marshal(v.V) }

// ToMetricValue converts a Go or decoded-JSON value into a metric value.
// Integers become IntMetricValue, floats RealMetricValue, and anything else
// that can be encoded as JSON becomes JSONMetricValue. json.Number values
// are integers when they parse as int64.
func ToMetricValue(v any) (MetricValue, error) {
	switch x := v.(type) {
	case MetricValue:
		return x, nil
	case int:
		return IntMetricValue(x), nil
	case int8:
		return IntMetricValue(x), nil
	case int16:
		return IntMetricValue(x), nil
	case int32:
		return IntMetricValue(x), nil
	case int64:
		return IntMetricValue(x), nil
	case uint8:
		return IntMetricValue(x), nil
	case uint16:
		return IntMetricValue(x), nil
	case uint32:
		return IntMetricValue(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return RealMetricValue(x), nil
		}
		return IntMetricValue(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return RealMetricValue(x), nil
		}
		return IntMetricValue(x), nil
	case float32:
		return RealMetricValue(x), nil
	case float64:
		return RealMetricValue(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return IntMetricValue(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("metric value %q: %w", x.String(), err)
		}
		return RealMetricValue(f), nil
	}
	if _, err := json.Marshal(v); err != nil {
		return nil, fmt.Errorf("metric value of type %T is not JSON encodable: %w", v, err)
	}
	return JSONMetricValue{V: v}, nil
}

// DecodeJSON decodes data with numbers kept as json.Number, so that
// ToMetricValue can tell integers from reals.
func DecodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
