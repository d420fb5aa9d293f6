// Package builders provides test data builders for creating test fixtures
package builders

import (
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

// RecordBuilder provides a fluent interface for building test records
type RecordBuilder struct {
	rec *tree.Object
}

// NewRecordBuilder creates a builder for a record with the given name
func NewRecordBuilder(name string) *RecordBuilder {
	rec := tree.NewObject()
	rec.SetString("name", name)
	return &RecordBuilder{rec: rec}
}

// NewUnnamedRecordBuilder creates a builder for a record without a name
func NewUnnamedRecordBuilder() *RecordBuilder {
	return &RecordBuilder{rec: tree.NewObject()}
}

// With sets a field
func (b *RecordBuilder) With(key string, value tree.Value) *RecordBuilder {
	b.rec.Set(key, value)
	return b
}

// WithString sets a string field
func (b *RecordBuilder) WithString(key, value string) *RecordBuilder {
	b.rec.SetString(key, value)
	return b
}

// WithInt sets an integer field
func (b *RecordBuilder) WithInt(key string, value int64) *RecordBuilder {
	b.rec.Set(key, tree.Int(value))
	return b
}

// WithStrings sets a string array field
func (b *RecordBuilder) WithStrings(key string, values ...string) *RecordBuilder {
	b.rec.Set(key, tree.Strings(values...))
	return b
}

// WithSource sets the source book and page
func (b *RecordBuilder) WithSource(source string, page int64) *RecordBuilder {
	return b.WithString("source", source).WithInt("page", page)
}

// Build returns a copy of the record so the builder can be reused
func (b *RecordBuilder) Build() *tree.Object {
	return tree.CloneObject(b.rec)
}

// DocumentBuilder assembles records into an input document
type DocumentBuilder struct {
	wrapper string
	records *tree.Array
}

// NewDocumentBuilder creates a document whose root is the record array
func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{records: tree.NewArray()}
}

// Wrapped nests the record array under a single field, as exported
// sublist files do
func (b *DocumentBuilder) Wrapped(field string) *DocumentBuilder {
	b.wrapper = field
	return b
}

// Add appends records
func (b *DocumentBuilder) Add(records ...*RecordBuilder) *DocumentBuilder {
	for _, rec := range records {
		b.records.Append(rec.Build())
	}
	return b
}

// AddValue appends a raw value, which need not be an object
func (b *DocumentBuilder) AddValue(value tree.Value) *DocumentBuilder {
	b.records.Append(value)
	return b
}

// Build returns the document as JSON
func (b *DocumentBuilder) Build() []byte {
	var root tree.Value = b.records
	if b.wrapper != "" {
		obj := tree.NewObject()
		obj.Set(b.wrapper, b.records)
		root = obj
	}

	data, err := root.MarshalJSON()
	if err != nil {
		panic("builders: encoding document: " + err.Error())
	}
	return data
}
