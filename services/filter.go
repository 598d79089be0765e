package services

import (
	"executive-analytics/models"
)

// DefaultPageSize bounds a filtered listing when no limit is given.
const DefaultPageSize = 1000

// FilterRows returns the raw rows matching every filter. A filter whose value
// is a list matches any of its members; any other value must match exactly.
// Cells and filter values are compared by their normalized text, so "5" and
// 5 are equal. Filters on columns the dataset does not have are ignored.
// limit <= 0 falls back to DefaultPageSize.
func FilterRows(rows []models.RawRow, schema models.Schema, filters map[string]any, limit, offset int) []models.RawRow {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	known := make(map[string]struct{}, len(schema.Fields))
	for _, f := range schema.Fields {
		known[f.Column] = struct{}{}
	}

	type matcher struct {
		column string
		want   map[string]struct{}
	}
	var matchers []matcher
	for col, val := range filters {
		if _, ok := known[col]; !ok {
			continue
		}
		m := matcher{column: col, want: make(map[string]struct{})}
		switch list := val.(type) {
		case []any:
			for _, item := range list {
				m.want[normaliseText(cellText(item))] = struct{}{}
			}
		case []string:
			for _, item := range list {
				m.want[normaliseText(item)] = struct{}{}
			}
		default:
			m.want[normaliseText(cellText(val))] = struct{}{}
		}
		matchers = append(matchers, m)
	}

	out := []models.RawRow{}
	skipped := 0
	for _, row := range rows {
		matched := true
		for _, m := range matchers {
			if _, ok := m.want[normaliseText(cellText(row[m.column]))]; !ok {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out
}
