package assessment

import (
	"strconv"
	"strings"
)

// CoerceScore converts a raw marker to an integer score. It fails for the
// NotTaken sentinel, blank cells, non-decimal text, fractional values and
// scores outside [MinScore, MaxScore]. A zero fraction such as "3.0" is
// accepted since spreadsheets often store scores as floats; hex and
// exponent forms are not.
func CoerceScore(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == NotTaken {
		return 0, false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if strings.Trim(s[i+1:], "0") != "" {
			return 0, false
		}
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < MinScore || n > MaxScore {
		return 0, false
	}
	return n, true
}

// Clean reduces ds to the rows that carry a usable score for area. Records
// marked NotTaken, records without a marker for area and records whose
// marker fails coercion are dropped silently. Returned rows have no level
// yet; see LabelLevels.
func Clean(ds Dataset, area Area) Rows {
	rows := make(Rows, 0, len(ds))
	for _, rec := range ds {
		raw, ok := rec.Marker(area)
		if !ok {
			continue
		}
		score, ok := CoerceScore(raw)
		if !ok {
			continue
		}
		rows = append(rows, Row{
			School: rec.School,
			Branch: rec.Branch,
			Score:  score,
			Level:  NoLevel,
		})
	}
	return rows
}

// LabelLevels returns a copy of rows with each row's Level derived from its
// score. Out of range scores get NoLevel.
func LabelLevels(rows Rows) Rows {
	out := make(Rows, len(rows))
	for i, row := range rows {
		row.Level, _ = LevelForScore(row.Score)
		out[i] = row
	}
	return out
}

// FilterBySchool returns the rows of school. AllSchools returns every row.
// Matching is exact and case-sensitive; an unknown school yields no rows.
func FilterBySchool(rows Rows, school string) Rows {
	if school == AllSchools {
		out := make(Rows, len(rows))
		copy(out, rows)
		return out
	}
	return filter(rows, func(r Row) bool { return r.School == school })
}

// FilterByBranch returns the rows of branch with the same matching rules as
// FilterBySchool. It is meant to be applied to rows already narrowed to one
// school, since branch names repeat across schools.
func FilterByBranch(rows Rows, branch string) Rows {
	if branch == AllSchools {
		out := make(Rows, len(rows))
		copy(out, rows)
		return out
	}
	return filter(rows, func(r Row) bool { return r.Branch == branch })
}

func filter(rows Rows, keep func(Row) bool) Rows {
	out := make(Rows, 0)
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
