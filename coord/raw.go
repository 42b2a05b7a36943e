package coord

// Raw is the flat field representation of a Value. It exists so that
// encoders outside this package can persist values without knowing the
// per-kind layout.
type Raw struct {
	Kind  Kind
	I1    int64
	I2    int64
	F1    float64
	F2    float64
	Layer bool
}

// Raw returns the flat representation of v.
func (v Value) Raw() Raw {
	return Raw{Kind: v.kind, I1: v.i1, I2: v.i2, F1: v.f1, F2: v.f2, Layer: v.layer}
}

// FromRaw rebuilds a Value from its flat representation.
func FromRaw(r Raw) Value {
	return Value{kind: r.Kind, i1: r.I1, i2: r.I2, f1: r.F1, f2: r.F2, layer: r.Layer}
}
