package coord

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the semantic kind of a coordinate value.
type Kind uint8

const (
	// KindRuntime is a model run (reference) time.
	KindRuntime Kind = iota + 1
	// KindTime is a forecast-time offset.
	KindTime
	// KindTimeInterval is a forecast-time interval [start, end].
	KindTimeInterval
	// KindVertical is a vertical level or layer.
	KindVertical
	// KindEnsemble is an ensemble member.
	KindEnsemble
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRuntime:
		return "runtime"
	case KindTime:
		return "time"
	case KindTimeInterval:
		return "timeIntv"
	case KindVertical:
		return "vert"
	case KindEnsemble:
		return "ens"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k := KindRuntime; k <= KindEnsemble; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Value is one coordinate value on one axis.
//
// The zero Value has no kind and is never a member of an axis.
type Value struct {
	kind Kind
	// runtime: unix nanos; time: offset; interval: start; ensemble: code.
	i1 int64
	// interval: end; ensemble: member number.
	i2 int64
	// vertical: level value or layer bottom.
	f1 float64
	// vertical: layer top.
	f2    float64
	layer bool
}

// Runtime returns a run-time value. The instant is kept at nanosecond
// precision; the location is dropped.
func Runtime(t time.Time) Value {
	return Value{kind: KindRuntime, i1: t.UnixNano()}
}

// TimeOffset returns a forecast-time offset, in the axis unit.
func TimeOffset(offset int64) Value {
	return Value{kind: KindTime, i1: offset}
}

// TimeInterval returns a forecast-time interval [start, end], in the axis unit.
func TimeInterval(start, end int64) Value {
	return Value{kind: KindTimeInterval, i1: start, i2: end}
}

// Level returns a single vertical level.
func Level(v float64) Value {
	return Value{kind: KindVertical, f1: v}
}

// Layer returns a vertical layer bounded by bottom and top.
func Layer(bottom, top float64) Value {
	return Value{kind: KindVertical, f1: bottom, f2: top, layer: true}
}

// Ensemble returns an ensemble member. code is the ensemble type code
// carried as metadata; member is the member number used for ordering.
func Ensemble(code, member int) Value {
	return Value{kind: KindEnsemble, i1: int64(code), i2: int64(member)}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the zero Value.
func (v Value) IsZero() bool { return v == Value{} }

// Time returns the run time of a KindRuntime value, in UTC.
func (v Value) Time() time.Time { return time.Unix(0, v.i1).UTC() }

// Offset returns the offset of a KindTime value.
func (v Value) Offset() int64 { return v.i1 }

// Interval returns the bounds of a KindTimeInterval value.
func (v Value) Interval() (start, end int64) { return v.i1, v.i2 }

// Level returns the value (or bottom), top and layer flag of a KindVertical value.
func (v Value) Level() (value, top float64, isLayer bool) { return v.f1, v.f2, v.layer }

// Member returns the ensemble code and member number of a KindEnsemble value.
func (v Value) Member() (code, member int) { return int(v.i1), int(v.i2) }

// String returns a human-readable form of the value.
func (v Value) String() string {
	switch v.kind {
	case KindRuntime:
		return v.Time().Format(time.RFC3339)
	case KindTime:
		return strconv.FormatInt(v.i1, 10)
	case KindTimeInterval:
		return "(" + strconv.FormatInt(v.i1, 10) + "," + strconv.FormatInt(v.i2, 10) + ")"
	case KindVertical:
		if v.layer {
			return "(" + formatFloat(v.f1) + "," + formatFloat(v.f2) + ")"
		}
		return formatFloat(v.f1)
	case KindEnsemble:
		return fmt.Sprintf("%d/%d", v.i1, v.i2)
	default:
		return "<none>"
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// validate returns a non-empty reason when v is malformed for its kind.
func (v Value) validate() string {
	switch v.kind {
	case KindRuntime, KindTime, KindEnsemble:
		return ""
	case KindTimeInterval:
		if v.i1 > v.i2 {
			return "interval start after end"
		}
	case KindVertical:
		if math.IsNaN(v.f1) || math.IsNaN(v.f2) {
			return "vertical value is NaN"
		}
	default:
		return "unknown kind"
	}
	return ""
}

// Compare orders two values by their domain order. It returns a negative
// number when a sorts before b, a positive number when after and 0 when the
// two occupy the same position.
//
// Values of different kinds are ordered by kind. Two values may compare 0
// without being equal: ensemble members order by member number only, so the
// ensemble code is not part of the position.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case KindRuntime, KindTime:
		return cmp.Compare(a.i1, b.i1)
	case KindTimeInterval:
		if c := cmp.Compare(a.i2, b.i2); c != 0 {
			return c
		}
		return cmp.Compare(a.i1, b.i1)
	case KindVertical:
		if c := cmp.Compare(a.f1, b.f1); c != 0 {
			return c
		}
		if c := cmp.Compare(a.f2, b.f2); c != 0 {
			return c
		}
		return compareBool(a.layer, b.layer)
	case KindEnsemble:
		return cmp.Compare(a.i2, b.i2)
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Tuple is the position of a record, one value per axis in axis order.
type Tuple []Value

// String returns the tuple as "[v0 v1 ...]".
func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range t {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
