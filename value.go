package stage

import (
	"fmt"
	"strconv"
)

// ValueKind identifies the type held by a Value.
type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindVector2
	KindVector3
	KindVector4
	KindQuaternion
	KindMatrix
	KindString
	KindEnum
)

var kindNames = [...]string{
	KindNone:       "none",
	KindBool:       "bool",
	KindInt:        "int",
	KindFloat:      "float",
	KindVector2:    "vector2",
	KindVector3:    "vector3",
	KindVector4:    "vector4",
	KindQuaternion: "quaternion",
	KindMatrix:     "matrix",
	KindString:     "string",
	KindEnum:       "enum",
}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged union over the fixed set of property types. The zero
// Value holds nothing (KindNone).
//
// Conversions between kinds are explicit: int and float convert both ways,
// enum and int are interchangeable, bool converts to int, and vectors widen
// (zero filled) or narrow (truncated) between 2, 3 and 4 components. Any other
// combination fails with ErrPropertyType.
type Value struct {
	kind ValueKind
	f    [16]float32 // numeric payload: vectors, quaternion, matrix, float
	i    int64       // int, enum, bool
	s    string
}

func BoolValue(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.i = 1
	}
	return v
}

func IntValue(i int) Value { return Value{kind: KindInt, i: int64(i)} }

func FloatValue(f float32) Value {
	v := Value{kind: KindFloat}
	v.f[0] = f
	return v
}

// EnumValue stores an enumeration as its integer value.
func EnumValue(e int) Value { return Value{kind: KindEnum, i: int64(e)} }

func StringValue(s string) Value { return Value{kind: KindString, s: s} }

func Vector2Value(x Vector2) Value {
	v := Value{kind: KindVector2}
	v.f[0], v.f[1] = x.X, x.Y
	return v
}

func Vector3Value(x Vector3) Value {
	v := Value{kind: KindVector3}
	v.f[0], v.f[1], v.f[2] = x.X, x.Y, x.Z
	return v
}

func Vector4Value(x Vector4) Value {
	v := Value{kind: KindVector4}
	v.f[0], v.f[1], v.f[2], v.f[3] = x.X, x.Y, x.Z, x.W
	return v
}

// ColorValue stores a color as a Vector4.
func ColorValue(c Color) Value { return Vector4Value(c.Vec4()) }

func QuaternionValue(q Quaternion) Value {
	v := Value{kind: KindQuaternion}
	v.f[0], v.f[1], v.f[2], v.f[3] = q.X, q.Y, q.Z, q.W
	return v
}

func MatrixValue(m Matrix) Value {
	v := Value{kind: KindMatrix}
	v.f = m
	return v
}

// Kind returns the kind of the stored value.
func (v Value) Kind() ValueKind { return v.kind }

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.i != 0)
	case KindInt, KindEnum:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.f[0]), 'g', -1, 32)
	case KindVector2:
		return fmt.Sprintf("[%g, %g]", v.f[0], v.f[1])
	case KindVector3:
		return fmt.Sprintf("[%g, %g, %g]", v.f[0], v.f[1], v.f[2])
	case KindVector4, KindQuaternion:
		return fmt.Sprintf("[%g, %g, %g, %g]", v.f[0], v.f[1], v.f[2], v.f[3])
	case KindMatrix:
		return fmt.Sprint(v.f)
	case KindString:
		return v.s
	}
	return "<none>"
}

func (v Value) typeError(want ValueKind) error {
	return fmt.Errorf("stage: cannot convert %s value to %s: %w", v.kind, want, ErrPropertyType)
}

// Bool returns the value as a bool. Ints and enums convert (non-zero is true).
func (v Value) Bool() (bool, error) {
	switch v.kind {
	case KindBool, KindInt, KindEnum:
		return v.i != 0, nil
	}
	return false, v.typeError(KindBool)
}

// Int returns the value as an int. Floats are truncated, bools are 0 or 1.
func (v Value) Int() (int, error) {
	switch v.kind {
	case KindInt, KindEnum, KindBool:
		return int(v.i), nil
	case KindFloat:
		return int(v.f[0]), nil
	}
	return 0, v.typeError(KindInt)
}

// Float returns the value as a float32. Ints and enums convert.
func (v Value) Float() (float32, error) {
	switch v.kind {
	case KindFloat:
		return v.f[0], nil
	case KindInt, KindEnum:
		return float32(v.i), nil
	}
	return 0, v.typeError(KindFloat)
}

func (v Value) isVector() bool {
	return v.kind == KindVector2 || v.kind == KindVector3 || v.kind == KindVector4
}

func (v Value) Vector2() (Vector2, error) {
	if !v.isVector() {
		return Vector2{}, v.typeError(KindVector2)
	}
	return Vector2{v.f[0], v.f[1]}, nil
}

func (v Value) Vector3() (Vector3, error) {
	if !v.isVector() {
		return Vector3{}, v.typeError(KindVector3)
	}
	r := Vector3{v.f[0], v.f[1], v.f[2]}
	if v.kind == KindVector2 {
		r.Z = 0
	}
	return r, nil
}

func (v Value) Vector4() (Vector4, error) {
	if !v.isVector() {
		return Vector4{}, v.typeError(KindVector4)
	}
	r := Vector4{v.f[0], v.f[1], v.f[2], v.f[3]}
	switch v.kind {
	case KindVector2:
		r.Z, r.W = 0, 0
	case KindVector3:
		r.W = 0
	}
	return r, nil
}

// Color returns a Vector4 (or Vector3, with alpha 1) value as a Color.
func (v Value) Color() (Color, error) {
	switch v.kind {
	case KindVector4:
		return Color{v.f[0], v.f[1], v.f[2], v.f[3]}, nil
	case KindVector3:
		return Color{v.f[0], v.f[1], v.f[2], 1}, nil
	}
	return Color{}, v.typeError(KindVector4)
}

func (v Value) Quaternion() (Quaternion, error) {
	if v.kind != KindQuaternion {
		return Quaternion{}, v.typeError(KindQuaternion)
	}
	return Quaternion{v.f[0], v.f[1], v.f[2], v.f[3]}, nil
}

func (v Value) Matrix() (Matrix, error) {
	if v.kind != KindMatrix {
		return Matrix{}, v.typeError(KindMatrix)
	}
	return v.f, nil
}

// Str returns a string value. Only KindString converts.
func (v Value) Str() (string, error) {
	if v.kind != KindString {
		return "", v.typeError(KindString)
	}
	return v.s, nil
}

// components returns the numeric components of the value for animation.
func (v Value) components() []float32 {
	switch v.kind {
	case KindFloat:
		return v.f[:1]
	case KindInt, KindEnum:
		return []float32{float32(v.i)}
	case KindVector2:
		return v.f[:2]
	case KindVector3:
		return v.f[:3]
	case KindVector4, KindQuaternion:
		return v.f[:4]
	}
	return nil
}

// withComponents returns a copy of v with its numeric components replaced.
func (v Value) withComponents(c []float32) Value {
	switch v.kind {
	case KindInt, KindEnum:
		v.i = int64(c[0])
		return v
	}
	copy(v.f[:], c)
	return v
}
