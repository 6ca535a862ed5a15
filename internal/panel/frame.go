// Package panel provides the validated long-format container for panel data:
// multiple time series sharing one schema, distinguished by an entity
// identifier. A Frame is immutable once constructed; every transformation
// returns a new Frame.
package panel

import (
	"math"
	"sort"
	"time"

	"github.com/panelcast/panelcast/internal/utils"
)

// Row is a single observation: one entity at one timestamp with the target
// value first and any exogenous values after it, in column order.
type Row struct {
	Entity string
	Time   time.Time
	Values []float64
}

// Key identifies a single (entity, time) position in a panel.
type Key struct {
	Entity string
	Time   time.Time
}

// Frame is an ordered set of observations sorted by (entity, time).
// Within an entity, timestamps are strictly increasing and unique.
// The first value column is the target; remaining columns are exogenous.
type Frame struct {
	entityCol string
	timeCol   string
	valueCols []string
	rows      []Row

	entities    []string
	spans       map[string]span
	categorical map[string]bool
}

type span struct {
	start, end int // rows[start:end] belong to one entity
}

// New validates and canonicalizes rows into a Frame. Rows may arrive in any
// order; they are sorted by (entity, time). Duplicate timestamps within an
// entity, a missing column layout, or a row whose value count does not match
// the declared columns all produce a SchemaError.
func New(entityCol, timeCol string, valueCols []string, rows []Row) (*Frame, error) {
	if entityCol == "" || timeCol == "" {
		return nil, &SchemaError{Reason: "entity and time columns are required"}
	}
	if len(valueCols) == 0 {
		return nil, &SchemaError{Reason: "at least one value column is required"}
	}
	seen := make(map[string]bool, len(valueCols)+2)
	seen[entityCol] = true
	if seen[timeCol] {
		return nil, &SchemaError{Reason: "entity and time columns must be distinct", Column: timeCol}
	}
	seen[timeCol] = true
	for _, col := range valueCols {
		if seen[col] {
			return nil, &SchemaError{Reason: "duplicate column name", Column: col}
		}
		seen[col] = true
	}

	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Entity != sorted[j].Entity {
			return sorted[i].Entity < sorted[j].Entity
		}
		return sorted[i].Time.Before(sorted[j].Time)
	})

	f := &Frame{
		entityCol: entityCol,
		timeCol:   timeCol,
		valueCols: append([]string(nil), valueCols...),
		rows:      sorted,
		spans:     make(map[string]span),
	}

	for i, r := range sorted {
		if len(r.Values) != len(valueCols) {
			return nil, &SchemaError{
				Reason: "row value count does not match declared columns",
				Entity: r.Entity,
				Time:   r.Time,
			}
		}
		if i > 0 && sorted[i-1].Entity == r.Entity && !sorted[i-1].Time.Before(r.Time) {
			return nil, &SchemaError{
				Reason: "duplicate timestamp within entity",
				Entity: r.Entity,
				Time:   r.Time,
			}
		}
		if i == 0 || sorted[i-1].Entity != r.Entity {
			f.entities = append(f.entities, r.Entity)
			f.spans[r.Entity] = span{start: i, end: i + 1}
		} else {
			s := f.spans[r.Entity]
			s.end = i + 1
			f.spans[r.Entity] = s
		}
	}

	return f, nil
}

// FromRecords builds a Frame from raw tabular input: a header and rows of
// loosely typed cells. The first column must be the entity identifier, the
// second the timestamp (time.Time, RFC3339 string, or integer index); every
// remaining column must be numeric. Fewer than three columns is a SchemaError.
func FromRecords(columns []string, records [][]interface{}) (*Frame, error) {
	if len(columns) < 3 {
		return nil, &SchemaError{Reason: "input needs entity, time and at least one value column"}
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if len(rec) != len(columns) {
			return nil, &SchemaError{Reason: "record width does not match header"}
		}
		entity, ok := rec[0].(string)
		if !ok || entity == "" {
			return nil, &SchemaError{Reason: "first column must be a non-empty entity identifier", Column: columns[0]}
		}
		ts, err := parseTimeCell(rec[1])
		if err != nil {
			return nil, &SchemaError{Reason: err.Error(), Entity: entity, Column: columns[1]}
		}
		values := make([]float64, 0, len(rec)-2)
		for i, cell := range rec[2:] {
			// JSON null marks a missing observation; see the impute transform.
			if cell == nil {
				values = append(values, math.NaN())
				continue
			}
			v, ok := utils.ToFloat64(cell)
			if !ok {
				return nil, &SchemaError{
					Reason: "value column is not numeric",
					Entity: entity,
					Column: columns[i+2],
					Time:   ts,
				}
			}
			values = append(values, v)
		}
		rows = append(rows, Row{Entity: entity, Time: ts, Values: values})
	}
	return New(columns[0], columns[1], columns[2:], rows)
}

func parseTimeCell(cell interface{}) (time.Time, error) {
	switch v := cell.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, &SchemaError{Reason: "time column is not RFC3339"}
		}
		return t, nil
	default:
		if idx, ok := utils.ToFloat64(cell); ok {
			return IndexTime(int64(idx)), nil
		}
		return time.Time{}, &SchemaError{Reason: "time column is not orderable"}
	}
}

// EntityCol returns the entity column name.
func (f *Frame) EntityCol() string { return f.entityCol }

// TimeCol returns the time column name.
func (f *Frame) TimeCol() string { return f.timeCol }

// ValueCols returns the value column names, target first.
func (f *Frame) ValueCols() []string { return append([]string(nil), f.valueCols...) }

// TargetCol returns the name of the target column.
func (f *Frame) TargetCol() string { return f.valueCols[0] }

// NumRows returns the total number of observations across entities.
func (f *Frame) NumRows() int { return len(f.rows) }

// Entities returns entity identifiers in canonical (sorted) order.
func (f *Frame) Entities() []string { return append([]string(nil), f.entities...) }

// Rows returns all observations in (entity, time) order. The returned slice
// is shared; callers must not mutate it.
func (f *Frame) Rows() []Row { return f.rows }

// Series returns the observations for one entity in time order, or nil if
// the entity is absent. The returned slice is shared; callers must not
// mutate it.
func (f *Frame) Series(entity string) []Row {
	s, ok := f.spans[entity]
	if !ok {
		return nil
	}
	return f.rows[s.start:s.end]
}

// SeriesValues returns one entity's values for a single column in time order.
func (f *Frame) SeriesValues(entity, col string) []float64 {
	idx := f.ColumnIndex(col)
	if idx < 0 {
		return nil
	}
	series := f.Series(entity)
	out := make([]float64, len(series))
	for i, r := range series {
		out[i] = r.Values[idx]
	}
	return out
}

// SeriesTimes returns one entity's timestamps in increasing order.
func (f *Frame) SeriesTimes(entity string) []time.Time {
	series := f.Series(entity)
	out := make([]time.Time, len(series))
	for i, r := range series {
		out[i] = r.Time
	}
	return out
}

// LastTime returns the last observed timestamp for an entity.
func (f *Frame) LastTime(entity string) (time.Time, bool) {
	series := f.Series(entity)
	if len(series) == 0 {
		return time.Time{}, false
	}
	return series[len(series)-1].Time, true
}

// ColumnIndex returns the position of a value column, or -1 if absent.
func (f *Frame) ColumnIndex(col string) int {
	for i, c := range f.valueCols {
		if c == col {
			return i
		}
	}
	return -1
}

// WithRows returns a new Frame carrying the same schema over different rows.
func (f *Frame) WithRows(rows []Row) (*Frame, error) {
	nf, err := New(f.entityCol, f.timeCol, f.valueCols, rows)
	if err != nil {
		return nil, err
	}
	nf.categorical = f.categorical
	return nf, nil
}

// WithColumns returns a new Frame with a different value-column layout.
func (f *Frame) WithColumns(valueCols []string, rows []Row) (*Frame, error) {
	nf, err := New(f.entityCol, f.timeCol, valueCols, rows)
	if err != nil {
		return nil, err
	}
	nf.categorical = f.categorical
	return nf, nil
}

// MarkCategorical returns a new Frame (sharing rows) with the given value
// columns flagged as categorical. Categorical columns participate in feature
// construction but trip the dummy-variable check for intercept-fitting
// linear estimators.
func (f *Frame) MarkCategorical(cols ...string) *Frame {
	nf := *f
	nf.categorical = make(map[string]bool, len(f.categorical)+len(cols))
	for c := range f.categorical {
		nf.categorical[c] = true
	}
	for _, c := range cols {
		nf.categorical[c] = true
	}
	return &nf
}

// CategoricalCols returns the value columns flagged as categorical.
func (f *Frame) CategoricalCols() []string {
	out := make([]string, 0, len(f.categorical))
	for _, c := range f.valueCols {
		if f.categorical[c] {
			out = append(out, c)
		}
	}
	return out
}

// IndexTime converts an integer index position to the canonical timestamp
// used for integer-indexed panels. Index i maps to i seconds after the Unix
// epoch, which keeps integer ordering intact under the "1i" frequency.
func IndexTime(i int64) time.Time {
	return time.Unix(i, 0).UTC()
}

// TimeIndex converts a canonical integer-index timestamp back to its index.
func TimeIndex(t time.Time) int64 {
	return t.Unix()
}
