package stage

import (
	"errors"
	"testing"
)

func TestValueNumericConversions(t *testing.T) {
	if f, err := IntValue(3).Float(); err != nil || f != 3 {
		t.Errorf("IntValue(3).Float() = %v, %v", f, err)
	}
	if i, err := FloatValue(2.7).Int(); err != nil || i != 2 {
		t.Errorf("FloatValue(2.7).Int() = %v, %v", i, err)
	}
	if i, err := EnumValue(2).Int(); err != nil || i != 2 {
		t.Errorf("EnumValue(2).Int() = %v, %v", i, err)
	}
	if i, err := BoolValue(true).Int(); err != nil || i != 1 {
		t.Errorf("BoolValue(true).Int() = %v, %v", i, err)
	}
	if b, err := IntValue(0).Bool(); err != nil || b {
		t.Errorf("IntValue(0).Bool() = %v, %v", b, err)
	}
}

func TestValueVectorWidenNarrow(t *testing.T) {
	v3, err := Vector2Value(Vector2{1, 2}).Vector3()
	if err != nil || v3 != (Vector3{1, 2, 0}) {
		t.Errorf("Vector2 -> Vector3 = %v, %v", v3, err)
	}
	v2, err := Vector4Value(Vector4{1, 2, 3, 4}).Vector2()
	if err != nil || v2 != (Vector2{1, 2}) {
		t.Errorf("Vector4 -> Vector2 = %v, %v", v2, err)
	}
	v4, err := Vector3Value(Vector3{1, 2, 3}).Vector4()
	if err != nil || v4 != (Vector4{1, 2, 3, 0}) {
		t.Errorf("Vector3 -> Vector4 = %v, %v", v4, err)
	}
}

func TestValueColor(t *testing.T) {
	c, err := ColorValue(Color{0.1, 0.2, 0.3, 0.4}).Color()
	if err != nil || c != (Color{0.1, 0.2, 0.3, 0.4}) {
		t.Errorf("ColorValue.Color() = %v, %v", c, err)
	}
	c, err = Vector3Value(Vector3{1, 0, 0}).Color()
	if err != nil || c != (Color{1, 0, 0, 1}) {
		t.Errorf("Vector3 color = %v, want opaque red", c)
	}
}

func TestValueTypeMismatch(t *testing.T) {
	checks := []struct {
		name string
		err  error
	}{
		{"string as float", func() error { _, err := StringValue("x").Float(); return err }()},
		{"float as vector", func() error { _, err := FloatValue(1).Vector3(); return err }()},
		{"vector as quaternion", func() error { _, err := Vector4Value(Vector4{}).Quaternion(); return err }()},
		{"int as string", func() error { _, err := IntValue(1).Str(); return err }()},
		{"none as bool", func() error { _, err := Value{}.Bool(); return err }()},
	}
	for _, c := range checks {
		if !errors.Is(c.err, ErrPropertyType) {
			t.Errorf("%s: err = %v, want ErrPropertyType", c.name, c.err)
		}
	}
}

func TestValueKindAndString(t *testing.T) {
	if IntValue(1).Kind() != KindInt {
		t.Error("IntValue kind")
	}
	if ColorValue(ColorWhite).Kind() != KindVector4 {
		t.Error("colors are stored as Vector4")
	}
	if (Value{}).String() != "<none>" {
		t.Errorf("zero Value String = %q", Value{}.String())
	}
	if got := Vector3Value(Vector3{1, 2, 3}).String(); got != "[1, 2, 3]" {
		t.Errorf("Vector3 String = %q", got)
	}
	if KindQuaternion.String() != "quaternion" {
		t.Errorf("KindQuaternion = %q", KindQuaternion.String())
	}
}

func TestValueComponents(t *testing.T) {
	v := Vector3Value(Vector3{1, 2, 3})
	comps := v.components()
	if len(comps) != 3 {
		t.Fatalf("components len = %d, want 3", len(comps))
	}
	w := v.withComponents([]float32{4, 5, 6})
	if got, _ := w.Vector3(); got != (Vector3{4, 5, 6}) {
		t.Errorf("withComponents = %v", got)
	}
	if got, _ := v.Vector3(); got != (Vector3{1, 2, 3}) {
		t.Errorf("withComponents modified the original: %v", got)
	}
	if BoolValue(true).components() != nil {
		t.Error("bools have no numeric components")
	}
}
