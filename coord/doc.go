// Package coord defines coordinate values and the axes built from them.
//
// A Value is a closed tagged union over the coordinate kinds found in
// gridded scientific collections:
//
//   - KindRuntime: the reference (run) time of a model output
//   - KindTime: a forecast-time offset from the run time
//   - KindTimeInterval: a forecast-time interval [start, end]
//   - KindVertical: a vertical level, or a layer [bottom, top]
//   - KindEnsemble: an ensemble member
//
// Values are comparable and can be used as map keys. Equality is exact,
// there is no tolerance.
//
// An Axis is an immutable, duplicate-free, ordered set of values of one kind.
// Axes are produced by an AxisBuilder:
//
//	b := coord.NewAxisBuilder(coord.KindTime, "time", "hours")
//	for _, rec := range records {
//	    b.Add(coord.TimeOffset(rec.Hour))
//	}
//	axis, err := b.Finish()
//
// The builder accepts repeated observations; Finish deduplicates them, sorts
// by the kind's domain order and assigns index i to the i-th sorted value.
package coord
