package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/stwalsh4118/reclaim/internal/normalize"
)

// ErrBadValue is returned when a legacy column holds a value of the wrong shape.
var ErrBadValue = errors.New("malformed legacy value")

// timeLayouts are tried in order when a date column arrives as text.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"15:04:05",
	"15:04",
}

// Record is a single legacy row. Column names are lower-case.
type Record map[string]interface{}

// NewRecord copies values into a Record, lower-casing the column names.
func NewRecord(values map[string]interface{}) Record {
	r := make(Record, len(values))
	for k, v := range values {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		r[strings.ToLower(k)] = v
	}
	return r
}

// Raw returns the unprocessed value of column, or nil.
func (r Record) Raw(column string) interface{} {
	return r[strings.ToLower(column)]
}

// Text returns the cleaned text of column. Blank values yield nil.
func (r Record) Text(column string) (*string, error) {
	s, err := normalize.Cleanup(r.Raw(column))
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", column, err)
	}
	return s, nil
}

// RawText returns the value of column as written in the export, without trimming.
func (r Record) RawText(column string) *string {
	v := r.Raw(column)
	if v == nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case time.Time:
		s = t.Format("2006-01-02 15:04:05")
	default:
		s = fmt.Sprint(t)
	}
	if s == "" {
		return nil
	}
	return &s
}

// Int returns the integer value of column. Absent or blank values yield nil.
func (r Record) Int(column string) (*int64, error) {
	switch v := r.Raw(column).(type) {
	case nil:
		return nil, nil
	case int64:
		return &v, nil
	case int:
		n := int64(v)
		return &n, nil
	case int32:
		n := int64(v)
		return &n, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: column %q holds %v", ErrBadValue, column, v)
		}
		n := int64(v)
		return &n, nil
	case bool:
		var n int64
		if v {
			n = 1
		}
		return &n, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q holds %q", ErrBadValue, column, v)
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("%w: column %q holds %T", ErrBadValue, column, v)
	}
}

// ID returns the integer value of a column that must be present.
func (r Record) ID(column string) (int64, error) {
	n, err := r.Int(column)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, fmt.Errorf("%w: column %q is empty", ErrBadValue, column)
	}
	return *n, nil
}

// Time returns the timestamp value of column. Absent or blank values yield nil.
func (r Record) Time(column string) (*time.Time, error) {
	switch v := r.Raw(column).(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return &t, nil
			}
		}
		return nil, fmt.Errorf("%w: column %q holds %q", ErrBadValue, column, v)
	default:
		return nil, fmt.Errorf("%w: column %q holds %T", ErrBadValue, column, v)
	}
}

// Snapshot renders the record as JSON for the msaccess audit column.
func (r Record) Snapshot() (string, error) {
	data, err := json.Marshal(map[string]interface{}(r))
	if err != nil {
		return "", fmt.Errorf("failed to snapshot legacy record: %w", err)
	}
	return string(data), nil
}
