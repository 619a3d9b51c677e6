// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bq76920

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFieldRange is returned when a value does not fit in the field it is
	// written to. Values are never silently truncated.
	ErrFieldRange = errors.New("bq76920: value out of field range")
	// ErrFieldRegister is returned when a field is applied to a View of
	// another register.
	ErrFieldRegister = errors.New("bq76920: field does not belong to register")
)

// Field is a contiguous run of bits inside one register byte.
type Field struct {
	reg    Register
	name   string
	offset uint8
	width  uint8
}

// Register returns the register the field lives in.
func (f Field) Register() Register { return f.reg }

// Name returns the datasheet name of the field.
func (f Field) Name() string { return f.name }

// Offset returns the position of the least significant bit of the field.
func (f Field) Offset() uint8 { return f.offset }

// Width returns the number of bits of the field.
func (f Field) Width() uint8 { return f.width }

// Max returns the largest value the field can hold.
func (f Field) Max() uint8 {
	return uint8(1<<f.width - 1)
}

// Mask returns the bits of the register byte covered by the field.
func (f Field) Mask() byte {
	return f.Max() << f.offset
}

// Decode extracts the field value from a raw register byte.
func (f Field) Decode(raw byte) uint8 {
	return (raw >> f.offset) & f.Max()
}

// Encode returns the contribution of v to the register byte. Only bits of
// the field's mask can be set in the result.
func (f Field) Encode(v uint8) (byte, error) {
	if v > f.Max() {
		return 0, fmt.Errorf("%w: %s=%d, max %d", ErrFieldRange, f.name, v, f.Max())
	}
	return (v << f.offset) & f.Mask(), nil
}

func (f Field) String() string {
	if f.width == 1 {
		return fmt.Sprintf("%s.%s[%d]", f.reg, f.name, f.offset)
	}
	return fmt.Sprintf("%s.%s[%d:%d]", f.reg, f.name, f.offset+f.width-1, f.offset)
}

// Layout is the ordered set of fields declared for a register. All field
// masks are disjoint.
type Layout struct {
	reg    Register
	fields []Field
	used   byte
}

// newLayout validates that every field belongs to reg, fits in a byte and
// does not overlap any field declared before it.
func newLayout(reg Register, fields ...Field) (*Layout, error) {
	l := &Layout{reg: reg, fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		if f.reg != reg {
			return nil, fmt.Errorf("%w: %s in %s", ErrFieldRegister, f, reg)
		}
		if f.width == 0 || int(f.offset)+int(f.width) > 8 {
			return nil, fmt.Errorf("bq76920: field %s does not fit in a byte", f)
		}
		if l.used&f.Mask() != 0 {
			return nil, fmt.Errorf("bq76920: field %s overlaps another field of %s", f, reg)
		}
		l.used |= f.Mask()
		l.fields = append(l.fields, f)
	}
	return l, nil
}

func mustLayout(reg Register, fields ...Field) *Layout {
	l, err := newLayout(reg, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// Register returns the register described by the layout.
func (l *Layout) Register() Register { return l.reg }

// Fields returns a copy of the declared fields in declaration order.
func (l *Layout) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

// Mask returns the union of all field masks. Bits outside of it are not
// modelled; a View carries them through unchanged.
func (l *Layout) Mask() byte { return l.used }

func (l *Layout) index(f Field) int {
	for i := range l.fields {
		if l.fields[i] == f {
			return i
		}
	}
	return -1
}

// View is a register byte decoded into the fields of its Layout. Get one from
// Decode. The zero View, returned alongside errors, has no fields and encodes
// to 0.
type View struct {
	layout *Layout
	values []uint8
	rest   byte
}

// Decode splits raw into the fields declared for reg.
func Decode(reg Register, raw byte) View {
	l := LayoutOf(reg)
	v := View{layout: l, values: make([]uint8, len(l.fields)), rest: raw &^ l.used}
	for i, f := range l.fields {
		v.values[i] = f.Decode(raw)
	}
	return v
}

// Register returns the register the view was decoded for, 0 for the zero
// View.
func (v View) Register() Register {
	if v.layout == nil {
		return 0
	}
	return v.layout.reg
}

// Encode packs the field values back into a register byte. Bits not
// covered by a field keep the value they were decoded with.
func (v View) Encode() byte {
	raw := v.rest
	if v.layout == nil {
		return raw
	}
	for i, f := range v.layout.fields {
		// Values are range checked on Set, so Encode cannot fail here.
		b, _ := f.Encode(v.values[i])
		raw |= b
	}
	return raw
}

// Get returns the value of f. It returns 0 for a field of another register.
func (v View) Get(f Field) uint8 {
	if v.layout == nil {
		return 0
	}
	if i := v.layout.index(f); i >= 0 {
		return v.values[i]
	}
	return 0
}

// Flag reports whether f is non zero.
func (v View) Flag(f Field) bool {
	return v.Get(f) != 0
}

// Set replaces the value of f, leaving every other field untouched.
func (v *View) Set(f Field, value uint8) error {
	if v.layout == nil {
		return fmt.Errorf("%w: %s in an empty view", ErrFieldRegister, f)
	}
	i := v.layout.index(f)
	if i < 0 {
		return fmt.Errorf("%w: %s in %s", ErrFieldRegister, f, v.layout.reg)
	}
	if value > f.Max() {
		return fmt.Errorf("%w: %s=%d, max %d", ErrFieldRange, f.name, value, f.Max())
	}
	v.values = append([]uint8(nil), v.values...)
	v.values[i] = value
	return nil
}

// SetFlag sets a single bit field to 1 when on, 0 otherwise.
func (v *View) SetFlag(f Field, on bool) error {
	var b uint8
	if on {
		b = 1
	}
	return v.Set(f, b)
}

func (v View) String() string {
	if v.layout == nil {
		return "View{}"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(0x%02x){", v.layout.reg, v.Encode())
	for i, f := range v.layout.fields {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s=%d", f.name, v.values[i])
	}
	sb.WriteString("}")
	return sb.String()
}
