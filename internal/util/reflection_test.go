package util

import (
	"testing"
	"time"
)

// TestUser is a test struct with various field types.
type TestUser struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	internal  string    // Unexported - should be skipped.
	Ignored   int       `db:"-"` // Explicitly ignored.
	CreatedAt time.Time `db:"created_at"`
}

// TestUserNoTags is a struct without db tags.
type TestUserNoTags struct {
	ID   int
	Name string
}

type auditFields struct {
	CreatedBy string `db:"created_by"`
}

// TestOrder has a composite-style pk tag and an embedded struct.
type TestOrder struct {
	Number string `db:"order_no,pk"`
	auditFields
	Total float64 `db:"total"`
}

func columnNames(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestStructColumns_DeclarationOrder tests that columns follow field order.
func TestStructColumns_DeclarationOrder(t *testing.T) {
	user := TestUser{ID: 7, Name: "Alice", Email: "alice@example.com", internal: "x", Ignored: 1}

	columns, err := StructColumns(user)
	if err != nil {
		t.Fatalf("StructColumns() error = %v", err)
	}

	want := []string{"id", "name", "email", "created_at"}
	if got := columnNames(columns); !equalStrings(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
	if columns[1].Value != "Alice" {
		t.Errorf("name value = %v, want Alice", columns[1].Value)
	}
	if !columns[0].PK {
		t.Errorf("id column should be the primary key")
	}
}

// TestStructColumns_NoTags tests that field names are used without db tags.
func TestStructColumns_NoTags(t *testing.T) {
	columns, err := StructColumns(&TestUserNoTags{ID: 1, Name: "Bob"})
	if err != nil {
		t.Fatalf("StructColumns() error = %v", err)
	}

	want := []string{"ID", "Name"}
	if got := columnNames(columns); !equalStrings(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
	if !columns[0].PK {
		t.Errorf("ID field should be the primary key fallback")
	}
}

// TestStructColumns_PKTagAndEmbedded tests pk tags and embedded struct flattening.
func TestStructColumns_PKTagAndEmbedded(t *testing.T) {
	order := TestOrder{Number: "A-1", Total: 9.5}
	order.CreatedBy = "admin"

	columns, err := StructColumns(order)
	if err != nil {
		t.Fatalf("StructColumns() error = %v", err)
	}

	want := []string{"order_no", "created_by", "total"}
	if got := columnNames(columns); !equalStrings(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}

	pk, ok := PrimaryKey(columns)
	if !ok || pk.Name != "order_no" {
		t.Errorf("PrimaryKey() = %v, %v, want order_no", pk.Name, ok)
	}
	if columns[1].Value != "admin" {
		t.Errorf("created_by value = %v, want admin", columns[1].Value)
	}
}

// TestStructColumns_Errors tests invalid inputs.
func TestStructColumns_Errors(t *testing.T) {
	var nilUser *TestUser

	if _, err := StructColumns(nilUser); err == nil {
		t.Error("StructColumns(nil pointer) expected error")
	}
	if _, err := StructColumns(42); err == nil {
		t.Error("StructColumns(int) expected error")
	}
	if _, err := StructColumns(map[string]interface{}{"id": 1}); err == nil {
		t.Error("StructColumns(map) expected error")
	}
}

// TestParseTag tests db tag parsing.
func TestParseTag(t *testing.T) {
	tests := []struct {
		tag    string
		column string
		isPK   bool
	}{
		{"id", "id", false},
		{"user_id,pk", "user_id", true},
		{" user_id , pk ", "user_id", true},
		{"pk", "pk", true},
		{"-", "-", false},
		{"code,omitempty,pk", "code", true},
		{"", "", false},
	}

	for _, tt := range tests {
		column, isPK := parseTag(tt.tag)
		if column != tt.column || isPK != tt.isPK {
			t.Errorf("parseTag(%q) = %q, %v, want %q, %v", tt.tag, column, isPK, tt.column, tt.isPK)
		}
	}
}

// TestStructColumns_CachedFields tests that repeated calls reuse the field
// layout and still read the current values.
func TestStructColumns_CachedFields(t *testing.T) {
	first, err := StructColumns(TestOrder{Number: "A-1"})
	if err != nil {
		t.Fatalf("StructColumns() error = %v", err)
	}
	second, err := StructColumns(&TestOrder{Number: "B-2"})
	if err != nil {
		t.Fatalf("StructColumns() error = %v", err)
	}

	if !equalStrings(columnNames(first), columnNames(second)) {
		t.Errorf("columns differ: %v vs %v", columnNames(first), columnNames(second))
	}
	if first[0].Value != "A-1" || second[0].Value != "B-2" {
		t.Errorf("values = %v, %v, want A-1, B-2", first[0].Value, second[0].Value)
	}
}

// TestIsZero tests primary key zero detection.
func TestIsZero(t *testing.T) {
	var nilPtr *int64
	one := int64(1)
	zero := int64(0)

	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"int zero", 0, true},
		{"int set", 42, false},
		{"uint zero", uint32(0), true},
		{"uint set", uint32(9), false},
		{"nil pointer", nilPtr, true},
		{"pointer to zero", &zero, true},
		{"pointer to value", &one, false},
		{"string", "", false},
		{"nil", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsZero(tt.value); got != tt.want {
				t.Errorf("IsZero(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
