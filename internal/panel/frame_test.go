package panel

import (
	"math"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_SortsUnorderedInput(t *testing.T) {
	rows := []Row{
		{Entity: "b", Time: day(2), Values: []float64{4}},
		{Entity: "a", Time: day(1), Values: []float64{1}},
		{Entity: "b", Time: day(1), Values: []float64{3}},
		{Entity: "a", Time: day(2), Values: []float64{2}},
	}

	f, err := New("entity", "time", []string{"value"}, rows)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := f.Rows()
	want := []struct {
		entity string
		value  float64
	}{
		{"a", 1}, {"a", 2}, {"b", 3}, {"b", 4},
	}
	for i, w := range want {
		if got[i].Entity != w.entity || got[i].Values[0] != w.value {
			t.Errorf("row %d: got (%s, %v), want (%s, %v)",
				i, got[i].Entity, got[i].Values[0], w.entity, w.value)
		}
	}

	entities := f.Entities()
	if len(entities) != 2 || entities[0] != "a" || entities[1] != "b" {
		t.Errorf("unexpected entities: %v", entities)
	}
}

func TestNew_DuplicateTimestampFails(t *testing.T) {
	rows := []Row{
		{Entity: "a", Time: day(1), Values: []float64{1}},
		{Entity: "a", Time: day(1), Values: []float64{2}},
	}

	_, err := New("entity", "time", []string{"value"}, rows)
	if err == nil {
		t.Fatal("expected SchemaError for duplicate timestamp")
	}
	se, ok := err.(*SchemaError)
	if !ok {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if se.Entity != "a" {
		t.Errorf("error should carry the offending entity, got %q", se.Entity)
	}
}

func TestNew_ValueCountMismatchFails(t *testing.T) {
	rows := []Row{
		{Entity: "a", Time: day(1), Values: []float64{1, 2}},
	}
	if _, err := New("entity", "time", []string{"value"}, rows); err == nil {
		t.Error("expected SchemaError for value count mismatch")
	}
}

func TestNew_DuplicateColumnFails(t *testing.T) {
	if _, err := New("entity", "time", []string{"value", "value"}, nil); err == nil {
		t.Error("expected SchemaError for duplicate column name")
	}
	if _, err := New("entity", "entity", []string{"value"}, nil); err == nil {
		t.Error("expected SchemaError for entity/time column collision")
	}
}

func TestFromRecords(t *testing.T) {
	columns := []string{"shop", "date", "sales", "promo"}
	records := [][]interface{}{
		{"s1", "2024-01-01T00:00:00Z", 10.5, 1},
		{"s1", "2024-01-02T00:00:00Z", 11.0, 0},
		{"s2", "2024-01-01T00:00:00Z", 3.0, 0},
	}

	f, err := FromRecords(columns, records)
	if err != nil {
		t.Fatalf("FromRecords failed: %v", err)
	}
	if f.EntityCol() != "shop" || f.TimeCol() != "date" {
		t.Errorf("unexpected key columns: %s, %s", f.EntityCol(), f.TimeCol())
	}
	if f.TargetCol() != "sales" {
		t.Errorf("expected target 'sales', got %q", f.TargetCol())
	}
	if got := f.SeriesValues("s1", "sales"); len(got) != 2 || got[0] != 10.5 {
		t.Errorf("unexpected s1 sales: %v", got)
	}
}

func TestFromRecords_NullValueIsNaN(t *testing.T) {
	columns := []string{"entity", "time", "value"}
	records := [][]interface{}{
		{"a", "2024-01-01T00:00:00Z", 1.0},
		{"a", "2024-01-02T00:00:00Z", nil},
	}

	f, err := FromRecords(columns, records)
	if err != nil {
		t.Fatalf("FromRecords failed: %v", err)
	}
	got := f.SeriesValues("a", "value")
	if len(got) != 2 || !math.IsNaN(got[1]) {
		t.Errorf("expected [1 NaN], got %v", got)
	}
}

func TestFromRecords_TooFewColumns(t *testing.T) {
	_, err := FromRecords([]string{"entity", "time"}, nil)
	if err == nil {
		t.Error("expected SchemaError for fewer than 3 columns")
	}
}

func TestFromRecords_NonNumericValue(t *testing.T) {
	columns := []string{"entity", "time", "value"}
	records := [][]interface{}{
		{"a", "2024-01-01T00:00:00Z", "not-a-number"},
	}
	_, err := FromRecords(columns, records)
	se, ok := err.(*SchemaError)
	if !ok {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if se.Column != "value" {
		t.Errorf("error should name the offending column, got %q", se.Column)
	}
}

func TestFromRecords_IntegerTimeIndex(t *testing.T) {
	columns := []string{"entity", "time", "value"}
	records := [][]interface{}{
		{"a", 0, 1.0},
		{"a", 1, 2.0},
		{"a", 2, 3.0},
	}
	f, err := FromRecords(columns, records)
	if err != nil {
		t.Fatalf("FromRecords failed: %v", err)
	}
	times := f.SeriesTimes("a")
	for i, ts := range times {
		if TimeIndex(ts) != int64(i) {
			t.Errorf("index %d: round-trip gave %d", i, TimeIndex(ts))
		}
	}
}

func TestSeries_AbsentEntity(t *testing.T) {
	f, err := New("entity", "time", []string{"value"}, []Row{
		{Entity: "a", Time: day(1), Values: []float64{1}},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if f.Series("missing") != nil {
		t.Error("expected nil series for absent entity")
	}
	if _, ok := f.LastTime("missing"); ok {
		t.Error("expected no last time for absent entity")
	}
}

func TestMarkCategorical(t *testing.T) {
	f, err := New("entity", "time", []string{"value", "weekday"}, []Row{
		{Entity: "a", Time: day(1), Values: []float64{1, 0}},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	g := f.MarkCategorical("weekday")
	if got := g.CategoricalCols(); len(got) != 1 || got[0] != "weekday" {
		t.Errorf("unexpected categorical cols: %v", got)
	}
	// Original frame stays untouched.
	if len(f.CategoricalCols()) != 0 {
		t.Error("MarkCategorical must not mutate the receiver")
	}
}
