package core

import (
	"github.com/coregx/sqlbuild/internal/util"
)

// Record is an ordered column -> value row. Columns render in the order
// they were first set, unlike plain maps which render in sorted key order.
//
//	rec := sqlbuild.NewRecord().Set("name", "john").Set("surname", "doe")
type Record struct {
	columns []string
	values  map[string]interface{}
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]interface{})}
}

// Set assigns a column value. Setting an existing column keeps its position.
func (r *Record) Set(column string, value interface{}) *Record {
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
	return r
}

// Columns returns the column names in order.
func (r *Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Get returns the value of a column.
func (r *Record) Get(column string) (interface{}, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Len returns the number of columns.
func (r *Record) Len() int {
	return len(r.columns)
}

// recordFromMap builds a record with columns in sorted key order.
func recordFromMap(m map[string]interface{}) *Record {
	r := NewRecord()
	for _, k := range getKeys(m) {
		r.Set(k, m[k])
	}
	return r
}

// recordFromStruct builds a record from db-tagged struct fields in
// declaration order. A zero-valued numeric primary key is left out so the
// database can generate it; the key column is returned either way.
func recordFromStruct(v interface{}) (*Record, string, error) {
	columns, err := util.StructColumns(v)
	if err != nil {
		return nil, "", invalidf("%v", err)
	}

	r := NewRecord()
	key := ""
	for _, c := range columns {
		if c.PK {
			key = c.Name
			if util.IsZero(c.Value) {
				continue
			}
		}
		r.Set(c.Name, c.Value)
	}
	if r.Len() == 0 {
		return nil, "", invalidf("struct %T has no insertable columns", v)
	}
	return r, key, nil
}

// sameColumns reports whether two records carry the same column set.
func sameColumns(a, b *Record) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, col := range a.columns {
		if _, ok := b.values[col]; !ok {
			return false
		}
	}
	return true
}
