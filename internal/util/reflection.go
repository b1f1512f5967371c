// Package util turns db-tagged structs into ordered column lists for the
// statement builders.
package util

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Column is one struct field mapped to a database column.
type Column struct {
	Name  string
	Value interface{}
	PK    bool
}

// field locates a mapped struct field.
type field struct {
	index  []int
	column string
	pk     bool
}

// fieldCache maps a struct type to its []field, computed once.
var fieldCache sync.Map

// parseTag splits a db tag into the column name and the pk option:
//
//	"name"        column name
//	"user_id,pk"  column user_id, primary key
//	"pk"          column pk, primary key
//	"-"           field skipped
func parseTag(tag string) (column string, pk bool) {
	column, opts, _ := strings.Cut(tag, ",")
	column = strings.TrimSpace(column)
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if strings.TrimSpace(opt) == "pk" {
			pk = true
		}
	}
	return column, pk || column == "pk"
}

// StructColumns lists the columns of a struct or struct pointer in
// declaration order. Unexported fields and db:"-" fields are skipped.
// Untagged fields use the Go field name and untagged embedded structs are
// flattened. When no field is tagged pk, a field mapped to ID or id is the
// primary key.
func StructColumns(data interface{}) ([]Column, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("struct columns: nil %s", v.Type())
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("struct columns: expected struct, got %s", v.Kind())
	}

	fields := fieldsOf(v.Type())
	columns := make([]Column, len(fields))
	for i, f := range fields {
		columns[i] = Column{
			Name:  f.column,
			Value: v.FieldByIndex(f.index).Interface(),
			PK:    f.pk,
		}
	}
	return columns, nil
}

func fieldsOf(t reflect.Type) []field {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]field)
	}

	fields := walkFields(t, nil, nil)
	if _, ok := primaryIndex(fields); !ok {
		for i := range fields {
			if fields[i].column == "ID" || fields[i].column == "id" {
				fields[i].pk = true
				break
			}
		}
	}

	cached, _ := fieldCache.LoadOrStore(t, fields)
	return cached.([]field)
}

func walkFields(t reflect.Type, parent []int, out []field) []field {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append(make([]int, 0, len(parent)+1), parent...), i)
		tag, tagged := sf.Tag.Lookup("db")

		if sf.Anonymous && !tagged && sf.Type.Kind() == reflect.Struct {
			out = walkFields(sf.Type, index, out)
			continue
		}
		if !sf.IsExported() {
			continue
		}

		f := field{index: index, column: sf.Name}
		if tagged {
			column, pk := parseTag(tag)
			switch column {
			case "-":
				continue
			case "pk":
				f.column = strings.ToLower(sf.Name)
			case "":
			default:
				f.column = column
			}
			f.pk = pk
		}
		out = append(out, f)
	}
	return out
}

func primaryIndex(fields []field) (int, bool) {
	for i, f := range fields {
		if f.pk {
			return i, true
		}
	}
	return -1, false
}

// PrimaryKey returns the primary key column of columns, if any.
func PrimaryKey(columns []Column) (Column, bool) {
	for _, c := range columns {
		if c.PK {
			return c, true
		}
	}
	return Column{}, false
}

// IsZero reports whether a primary key value is unset and should be left to
// the database to generate: a zero integer, or a nil pointer or pointer to
// one. Other kinds (strings, UUIDs) are never zero.
func IsZero(value interface{}) bool {
	v := reflect.ValueOf(value)
	for v.IsValid() && v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return true
	}
	switch {
	case v.CanInt():
		return v.Int() == 0
	case v.CanUint():
		return v.Uint() == 0
	}
	return false
}
