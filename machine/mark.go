package machine

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"gomck/array"
	"gomck/bitvector"
)

type fieldMark struct {
	bits  bitvector.Mark
	array *array.Mark
}

func (f fieldMark) isMarked() bool {
	if f.array != nil {
		return f.array.IsMarked()
	}
	return f.bits.IsMarked()
}

func (f fieldMark) importance() uint8 {
	if f.array != nil {
		return f.array.Importance()
	}
	return f.bits.Importance()
}

func (f fieldMark) equal(o fieldMark) bool {
	if (f.array == nil) != (o.array == nil) {
		return false
	}
	if f.array != nil {
		return f.array.Equal(*o.array)
	}
	return f.bits == o.bits
}

// A refinement mark of a record: one mark per field of a template record.
//
// As a precision of inputs, the marked bits are the ones enumerated during
// generation. As a precision of states, the marked bits are the ones kept by decay.
// Marks are values, the Apply methods modify the receiver.
type Mark struct {
	template Record
	fields   []fieldMark
}

// A mark of the record shape with no bit marked.
func NewUnmarked(template Record) Mark {
	fields := make([]fieldMark, len(template.fields))
	for i, f := range template.fields {
		if f.IsArray() {
			a := array.NewUnmarked(f.array.IndexWidth(), f.array.ElementWidth())
			fields[i] = fieldMark{array: &a}
		} else {
			fields[i] = fieldMark{bits: bitvector.NewUnmarked(f.bits.Width())}
		}
	}
	return Mark{template: template, fields: fields}
}

// A mark of the record shape with every bit marked.
func NewMarked(template Record, importance uint8) Mark {
	fields := make([]fieldMark, len(template.fields))
	for i, f := range template.fields {
		if f.IsArray() {
			a := array.NewMarked(f.array.IndexWidth(), f.array.ElementWidth(), importance)
			fields[i] = fieldMark{array: &a}
		} else {
			fields[i] = fieldMark{bits: bitvector.NewMarked(f.bits.Width(), importance)}
		}
	}
	return Mark{template: template, fields: fields}
}

func (m Mark) Template() Record {
	return m.template
}

func (m Mark) position(name string) int {
	return m.template.mustPosition(name)
}

// Panics if there is no such bit-vector field.
func (m Mark) Bits(name string) bitvector.Mark {
	f := m.fields[m.position(name)]
	if f.array != nil {
		panic(fmt.Sprintf("machine: mark of field %q is an array mark", name))
	}
	return f.bits
}

// Panics if there is no such array field.
func (m Mark) Array(name string) array.Mark {
	f := m.fields[m.position(name)]
	if f.array == nil {
		panic(fmt.Sprintf("machine: mark of field %q is not an array mark", name))
	}
	return *f.array
}

// Returns a mark with the field additionally marked.
func (m Mark) JoinBits(name string, mark bitvector.Mark) Mark {
	pos := m.position(name)
	current := m.Bits(name)
	fields := slices.Clone(m.fields)
	fields[pos] = fieldMark{bits: current.Join(mark)}
	return Mark{template: m.template, fields: fields}
}

// Returns a mark with the array field additionally marked.
func (m Mark) JoinArray(name string, mark array.Mark) Mark {
	pos := m.position(name)
	current := m.Array(name)
	current.ApplyJoin(mark)
	fields := slices.Clone(m.fields)
	fields[pos] = fieldMark{array: &current}
	return Mark{template: m.template, fields: fields}
}

func (m Mark) IsMarked() bool {
	return slices.IndexFunc(m.fields, fieldMark.isMarked) >= 0
}

// The largest importance of the field marks.
func (m Mark) Importance() uint8 {
	var importance uint8
	for _, f := range m.fields {
		importance = max(importance, f.importance())
	}
	return importance
}

func (m Mark) checkShape(o Mark) {
	if len(m.fields) != len(o.fields) {
		panic(fmt.Sprintf("machine: marks with %v and %v fields", len(m.fields), len(o.fields)))
	}
}

func (m *Mark) ApplyJoin(o Mark) {
	m.checkShape(o)
	fields := slices.Clone(m.fields)
	for i := range fields {
		if fields[i].array != nil {
			joined := *fields[i].array
			joined.ApplyJoin(*o.fields[i].array)
			fields[i].array = &joined
		} else {
			fields[i].bits = fields[i].bits.Join(o.fields[i].bits)
		}
	}
	m.fields = fields
}

// Refines the first field the offer refines. Returns false if the offer refines nothing.
func (m *Mark) ApplyRefin(offer Mark) bool {
	m.checkShape(offer)
	for i := range m.fields {
		field := m.fields[i]
		var refined bool
		if field.array != nil {
			a := *field.array
			refined = a.ApplyRefin(*offer.fields[i].array)
			field.array = &a
		} else {
			refined = field.bits.ApplyRefin(offer.fields[i].bits)
		}
		if refined {
			fields := slices.Clone(m.fields)
			fields[i] = field
			m.fields = fields
			return true
		}
	}
	return false
}

// Makes every unmarked bit of the record unknown.
func (m Mark) ForceDecay(target Record) Record {
	m.template.checkShape(target)
	fields := slices.Clone(target.fields)
	for i, f := range m.fields {
		if f.array != nil {
			fields[i] = fields[i].withArray(f.array.ForceDecay(*fields[i].array))
		} else {
			fields[i] = fields[i].withBits(f.bits.ForceDecay(fields[i].bits))
		}
	}
	return Record{fields: fields}
}

// Keeps only the marks on bits unknown in the record.
func (m Mark) Limit(target Record) Mark {
	m.template.checkShape(target)
	fields := slices.Clone(m.fields)
	for i, f := range fields {
		if f.array != nil {
			limited := f.array.Limit(*target.fields[i].array)
			fields[i].array = &limited
		} else {
			fields[i].bits = f.bits.Limit(target.fields[i].bits)
		}
	}
	return Mark{template: m.template, fields: fields}
}

// The first record of the enumeration: marked bits are zero, the rest unknown.
func (m Mark) ProtoFirst() Record {
	fields := slices.Clone(m.template.fields)
	for i, f := range m.fields {
		if f.array != nil {
			fields[i] = fields[i].withArray(f.array.ProtoFirst())
		} else {
			fields[i] = fields[i].withBits(f.bits.ProtoFirst())
		}
	}
	return Record{fields: fields}
}

// Advances the record as a mixed-radix counter over its fields, the first field
// being the least significant. Fields that overflow are reset.
// On overflow of the last field false is returned and the proto is the first record again.
func (m Mark) ProtoIncrement(proto *Record) bool {
	m.template.checkShape(*proto)
	fields := slices.Clone(proto.fields)
	defer func() {
		proto.fields = fields
	}()
	for i, f := range m.fields {
		if f.array != nil {
			value := *fields[i].array
			advanced := f.array.ProtoIncrement(&value)
			fields[i] = fields[i].withArray(value)
			if advanced {
				return true
			}
		} else {
			value := fields[i].bits
			advanced := f.bits.ProtoIncrement(&value)
			fields[i] = fields[i].withBits(value)
			if advanced {
				return true
			}
		}
	}
	return false
}

func (m Mark) Equal(o Mark) bool {
	return slices.EqualFunc(m.fields, o.fields, fieldMark.equal)
}

func (m Mark) String() string {
	parts := make([]string, 0, len(m.fields))
	for i, f := range m.fields {
		if !f.isMarked() {
			continue
		}
		if f.array != nil {
			parts = append(parts, fmt.Sprintf("%v: %v", m.template.fields[i].Name, f.array))
		} else {
			parts = append(parts, fmt.Sprintf("%v: %v", m.template.fields[i].Name, f.bits))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// A mark of a state: of its panic component and of its result.
type StateMark struct {
	Panic  bitvector.Mark
	Result Mark
}

func NewUnmarkedState(template Record) StateMark {
	return StateMark{Panic: bitvector.NewUnmarked(bitvector.PanicWidth), Result: NewUnmarked(template)}
}

// A mark of the state shape with every bit marked.
func NewMarkedState(template Record, importance uint8) StateMark {
	return StateMark{Panic: bitvector.NewMarked(bitvector.PanicWidth, importance), Result: NewMarked(template, importance)}
}

func (m StateMark) IsMarked() bool {
	return m.Panic.IsMarked() || m.Result.IsMarked()
}

func (m StateMark) Importance() uint8 {
	return max(m.Panic.Importance(), m.Result.Importance())
}

func (m *StateMark) ApplyJoin(o StateMark) {
	m.Panic.ApplyJoin(o.Panic)
	m.Result.ApplyJoin(o.Result)
}

// Refines the panic mark first, then the result mark.
func (m *StateMark) ApplyRefin(offer StateMark) bool {
	if m.Panic.ApplyRefin(offer.Panic) {
		return true
	}
	return m.Result.ApplyRefin(offer.Result)
}

func (m StateMark) ForceDecay(target State) State {
	return State{Panic: m.Panic.ForceDecay(target.Panic), Result: m.Result.ForceDecay(target.Result)}
}

func (m StateMark) Equal(o StateMark) bool {
	return m.Panic == o.Panic && m.Result.Equal(o.Result)
}

func (m StateMark) String() string {
	return fmt.Sprintf("{%v: %v, %v}", PanicField, m.Panic, m.Result)
}
