package models

import "time"

// Row is a single target-table row keyed by column name.
type Row map[string]interface{}

// set stores value under column unless it is an absent optional value.
func (r Row) set(column string, value interface{}) {
	switch v := value.(type) {
	case nil:
		return
	case *string:
		if v != nil {
			r[column] = *v
		}
	case *int:
		if v != nil {
			r[column] = *v
		}
	case *int64:
		if v != nil {
			r[column] = *v
		}
	case *time.Time:
		if v != nil {
			r[column] = *v
		}
	default:
		r[column] = value
	}
}

// Int64 returns the integer value stored under column.
// Numeric values of any width are accepted.
func (r Row) Int64(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// String returns the text stored under column.
func (r Row) String(column string) (string, bool) {
	s, ok := r[column].(string)
	return s, ok
}
