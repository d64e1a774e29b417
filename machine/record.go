package machine

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"gomck/array"
	"gomck/bitvector"
)

// How ordering comparisons interpret a bit-vector field.
type Signedness int

const (
	Signless Signedness = iota
	Unsigned
	Signed
)

func (s Signedness) String() string {
	switch s {
	case Unsigned:
		return "unsigned"
	case Signed:
		return "signed"
	}
	return "signless"
}

// A named field of a record, holding either a bit-vector or an array.
type Field struct {
	Name       string
	Signedness Signedness
	bits       bitvector.Combined
	array      *array.Abstract
}

func BitvectorField(name string, signedness Signedness, value bitvector.Combined) Field {
	return Field{Name: name, Signedness: signedness, bits: value}
}

func ArrayField(name string, value array.Abstract) Field {
	return Field{Name: name, array: &value}
}

func (f Field) IsArray() bool {
	return f.array != nil
}

// Panics if the field is an array.
func (f Field) Bits() bitvector.Combined {
	if f.array != nil {
		panic(fmt.Sprintf("machine: field %q is an array", f.Name))
	}
	return f.bits
}

// Panics if the field is not an array.
func (f Field) Array() array.Abstract {
	if f.array == nil {
		panic(fmt.Sprintf("machine: field %q is not an array", f.Name))
	}
	return *f.array
}

func (f Field) withBits(value bitvector.Combined) Field {
	if value.Width() != f.bits.Width() {
		panic(fmt.Sprintf("machine: field %q of width %v set to a value of width %v", f.Name, f.bits.Width(), value.Width()))
	}
	f.bits = value
	return f
}

func (f Field) withArray(value array.Abstract) Field {
	f.array = &value
	return f
}

func (f Field) Equal(o Field) bool {
	if f.Name != o.Name || f.Signedness != o.Signedness || f.IsArray() != o.IsArray() {
		return false
	}
	if f.IsArray() {
		return f.array.Equal(*o.array)
	}
	return f.bits == o.bits
}

func (f Field) String() string {
	if f.array != nil {
		return fmt.Sprintf("%v: %v", f.Name, f.array)
	}
	return fmt.Sprintf("%v: %v", f.Name, f.bits)
}

// An ordered collection of named fields, used for both states and inputs.
//
// Records are values: every modifying method returns a new record.
type Record struct {
	fields []Field
}

func NewRecord(fields ...Field) Record {
	for i, f := range fields {
		for _, g := range fields[:i] {
			if f.Name == g.Name {
				panic(fmt.Sprintf("machine: duplicate field %q", f.Name))
			}
		}
	}
	return Record{fields: slices.Clone(fields)}
}

func (r Record) Len() int {
	return len(r.fields)
}

func (r Record) Fields() []Field {
	return slices.Clone(r.fields)
}

func (r Record) position(name string) int {
	return slices.IndexFunc(r.fields, func(f Field) bool { return f.Name == name })
}

func (r Record) Field(name string) (Field, bool) {
	pos := r.position(name)
	if pos < 0 {
		return Field{}, false
	}
	return r.fields[pos], true
}

func (r Record) mustPosition(name string) int {
	pos := r.position(name)
	if pos < 0 {
		panic(fmt.Sprintf("machine: record has no field %q", name))
	}
	return pos
}

// The bit-vector value of a field. Panics if there is no such bit-vector field.
func (r Record) Bits(name string) bitvector.Combined {
	return r.fields[r.mustPosition(name)].Bits()
}

// The array value of a field. Panics if there is no such array field.
func (r Record) Array(name string) array.Abstract {
	return r.fields[r.mustPosition(name)].Array()
}

func (r Record) WithBits(name string, value bitvector.Combined) Record {
	pos := r.mustPosition(name)
	fields := slices.Clone(r.fields)
	fields[pos] = fields[pos].withBits(value)
	return Record{fields: fields}
}

func (r Record) WithArray(name string, value array.Abstract) Record {
	pos := r.mustPosition(name)
	fields := slices.Clone(r.fields)
	fields[pos] = fields[pos].withArray(value)
	return Record{fields: fields}
}

func (r Record) checkShape(o Record) {
	if len(r.fields) != len(o.fields) {
		panic(fmt.Sprintf("machine: records with %v and %v fields", len(r.fields), len(o.fields)))
	}
	for i := range r.fields {
		if r.fields[i].Name != o.fields[i].Name || r.fields[i].IsArray() != o.fields[i].IsArray() {
			panic(fmt.Sprintf("machine: records with fields %q and %q", r.fields[i].Name, o.fields[i].Name))
		}
	}
}

// Joins the records field by field.
func (r Record) Join(o Record) Record {
	r.checkShape(o)
	fields := slices.Clone(r.fields)
	for i := range fields {
		if fields[i].IsArray() {
			fields[i] = fields[i].withArray(fields[i].array.Join(*o.fields[i].array))
		} else {
			fields[i] = fields[i].withBits(fields[i].bits.Join(o.fields[i].bits))
		}
	}
	return Record{fields: fields}
}

// Returns true if every field contains the corresponding field of the other record.
func (r Record) Contains(o Record) bool {
	r.checkShape(o)
	for i := range r.fields {
		if r.fields[i].IsArray() {
			if !r.fields[i].array.Contains(*o.fields[i].array) {
				return false
			}
		} else if !r.fields[i].bits.Contains(o.fields[i].bits) {
			return false
		}
	}
	return true
}

func (r Record) Equal(o Record) bool {
	return slices.EqualFunc(r.fields, o.fields, Field.Equal)
}

func (r Record) String() string {
	parts := make([]string, len(r.fields))
	for i, f := range r.fields {
		parts[i] = f.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
