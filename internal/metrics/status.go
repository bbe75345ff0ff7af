package metrics

import "sort"

// StatusRow is one line of the status code distribution.
type StatusRow struct {
	Code  int
	Count int64
}

// ErrorRow is one line of the transport error breakdown.
type ErrorRow struct {
	Kind  string
	Count int64
}

// StatusRows flattens a status code histogram into rows sorted by descending
// count, then ascending code for stability.
func StatusRows(codes map[int]int64) []StatusRow {
	if len(codes) == 0 {
		return nil
	}
	rows := make([]StatusRow, 0, len(codes))
	for code, count := range codes {
		rows = append(rows, StatusRow{Code: code, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Code < rows[j].Code
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// ErrorRows flattens an error breakdown the same way StatusRows does.
func ErrorRows(errs map[string]int64) []ErrorRow {
	if len(errs) == 0 {
		return nil
	}
	rows := make([]ErrorRow, 0, len(errs))
	for kind, count := range errs {
		rows = append(rows, ErrorRow{Kind: kind, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Kind < rows[j].Kind
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
