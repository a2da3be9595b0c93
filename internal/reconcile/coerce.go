package reconcile

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the declared type of an accepted field.
type Kind int

const (
	Integer Kind = iota + 1
	Decimal
	Boolean
	String
	Choice
	StringList
	IDList
	// ID is a BIGINT key; Integer is limited to 32 bits.
	ID
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Choice:
		return "choice"
	case StringList:
		return "string list"
	case IDList:
		return "id list"
	case ID:
		return "id"
	}
	return "unknown"
}

// coerceFailure is turned into a ValidationError by the field table, which
// knows the child and index.
type coerceFailure struct {
	kind ErrorKind
	msg  string
}

func (f *coerceFailure) Error() string { return f.msg }

func badShape(format string, args ...any) error {
	return &coerceFailure{kind: KindShape, msg: fmt.Sprintf(format, args...)}
}

func badValue(format string, args ...any) error {
	return &coerceFailure{kind: KindCoercion, msg: fmt.Sprintf(format, args...)}
}

// Coerce converts raw into int64, float64, bool, string, []string or []int64
// depending on kind. Absent and empty values become nil.
func Coerce(kind Kind, raw any, choices []string) (any, error) {
	switch kind {
	case Integer:
		return coerceInt32(raw)
	case Decimal:
		return coerceDecimal(raw)
	case Boolean:
		return coerceBoolean(raw)
	case String:
		return coerceString(raw)
	case Choice:
		return coerceChoice(raw, choices)
	case StringList:
		return coerceStringList(raw)
	case IDList:
		return coerceIDList(raw)
	case ID:
		return coerceInteger(raw)
	}
	return nil, badShape("unsupported field kind %d", kind)
}

func coerceInteger(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, badValue("expected an integer, got %v", v)
		}
		return floatToInt64(v)
	case json.Number:
		return coerceInteger(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return floatToInt64(f)
		}
		return nil, badValue("expected an integer, got %q", v)
	}
	return nil, badShape("expected an integer, got %T", raw)
}

// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
func floatToInt64(f float64) (any, error) {
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, badValue("%v is out of range", f)
	}
	return int64(f), nil
}

// coerceInt32 is coerceInteger limited to the range of an INTEGER column.
func coerceInt32(raw any) (any, error) {
	n, err := coerceInteger(raw)
	if err != nil || n == nil {
		return n, err
	}
	if v := n.(int64); v < math.MinInt32 || v > math.MaxInt32 {
		return nil, badValue("%d is out of range", v)
	}
	return n, nil
}

func coerceDecimal(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, badValue("expected a decimal, got %v", v)
		}
		return v, nil
	case json.Number:
		return coerceDecimal(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, badValue("expected a decimal, got %q", v)
		}
		return f, nil
	}
	return nil, badShape("expected a decimal, got %T", raw)
}

func coerceBoolean(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case float64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
		return nil, badValue("expected a boolean, got %v", v)
	case int:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
		return nil, badValue("expected a boolean, got %v", v)
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "":
			return nil, nil
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
		return nil, badValue("expected a boolean, got %q", v)
	}
	return nil, badShape("expected a boolean, got %T", raw)
}

func coerceString(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case json.Number:
		return string(v), nil
	}
	return nil, badShape("expected a string, got %T", raw)
}

func coerceChoice(raw any, choices []string) (any, error) {
	v, err := coerceString(raw)
	if err != nil || v == nil {
		return v, err
	}
	s := strings.TrimSpace(v.(string))
	if s == "" {
		return nil, nil
	}
	for _, c := range choices {
		if strings.EqualFold(c, s) {
			return c, nil
		}
	}
	return nil, badValue("%q is not one of %s", s, strings.Join(choices, ", "))
}

// listItems accepts a native list, a JSON array string or a comma-separated
// string.
func listItems(raw any) ([]any, bool, error) {
	switch v := raw.(type) {
	case nil:
		return nil, false, nil
	case []any:
		return v, true, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true, nil
	case []int64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return []any{}, true, nil
		}
		if strings.HasPrefix(s, "[") {
			var items []any
			if err := json.Unmarshal([]byte(s), &items); err != nil {
				return nil, false, badValue("malformed list %q", v)
			}
			return items, true, nil
		}
		parts := strings.Split(s, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true, nil
	}
	return nil, false, badShape("expected a list, got %T", raw)
}

func coerceStringList(raw any) (any, error) {
	items, ok, err := listItems(raw)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := coerceString(item)
		if err != nil {
			return nil, badShape("element %d: %v", i, err)
		}
		if s != nil && strings.TrimSpace(s.(string)) != "" {
			out = append(out, strings.TrimSpace(s.(string)))
		}
	}
	return out, nil
}

func coerceIDList(raw any) (any, error) {
	items, ok, err := listItems(raw)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]int64, 0, len(items))
	for i, item := range items {
		n, err := coerceInteger(item)
		if err != nil {
			return nil, badValue("element %d: %v", i, err)
		}
		if n == nil {
			continue
		}
		if n.(int64) <= 0 {
			return nil, badValue("element %d: %d is not a valid id", i, n)
		}
		out = append(out, n.(int64))
	}
	return out, nil
}

// Helpers used by field setters.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringPtr(v any) *string {
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return nil
	}
	return &s
}

func asIntPtr(v any) *int {
	n, ok := v.(int64)
	if !ok {
		return nil
	}
	i := int(n)
	return &i
}

func asInt(v any) int {
	n, _ := v.(int64)
	return int(n)
}

func asInt64Ptr(v any) *int64 {
	n, ok := v.(int64)
	if !ok {
		return nil
	}
	return &n
}

func asFloatPtr(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
