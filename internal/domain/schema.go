package domain

// FieldType is the single type inferred for a column across the whole dataset.
type FieldType string

const (
	FieldTypeBoolean FieldType = "BOOLEAN"
	FieldTypeDate    FieldType = "DATE"
	FieldTypeFloat   FieldType = "FLOAT"
	FieldTypeInteger FieldType = "INTEGER"
	FieldTypeOption  FieldType = "OPTION"
	FieldTypeText    FieldType = "TEXT"
)

// ComparableFieldTypes are the field types that accept the gt and lt operators.
var ComparableFieldTypes = []FieldType{FieldTypeDate, FieldTypeFloat, FieldTypeInteger}

// IsComparable reports whether values of t have a natural order for gt/lt filters.
func (t FieldType) IsComparable() bool {
	for _, c := range ComparableFieldTypes {
		if c == t {
			return true
		}
	}
	return false
}

// Field describes one column of the dataset.
// Display is the raw key as found in the source, Name the identifier used by
// standardized rows and query references.
type Field struct {
	Display string    `json:"display"`
	Name    string    `json:"name"`
	Type    FieldType `json:"type"`
	Options []string  `json:"options"`
}

// Schema is the ordered list of fields inferred from a dataset.
type Schema []Field

// Lookup returns the field with the given name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
