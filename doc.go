// Package gridex indexes collections of records by their coordinates.
//
// Every record of a collection carries one coordinate value per axis (run
// time, forecast time, time interval, vertical level or layer, ensemble
// member). gridex gathers the distinct values of each axis into a canonical
// ordered axis, combines the axes into an N-dimensional address space and
// records, for every cell of that space, which record owns it. Any
// coordinate tuple then resolves to its record in constant time.
//
// # Quick Start
//
//	specs := []gridex.AxisSpec{
//	    {Kind: coord.KindTime, Name: "time", Unit: "hours"},
//	    {Kind: coord.KindVertical, Name: "isobaric", Unit: "Pa"},
//	}
//	coll, _ := gridex.NewCollection[model.Ref]("temperature", specs)
//
//	g, _ := coll.Build(ctx, gridex.SliceScanner[model.Ref](records))
//	ref, ok := g.Lookup(coord.Tuple{coord.TimeOffset(6), coord.Level(850)})
//
// # Updates
//
// Readers hold positions in a published grid. A rebuilt grid is re-expressed
// in the published index space with Update, so existing positions keep their
// meaning, and swapped in atomically through a Handle:
//
//	h := gridex.NewHandle(g)
//	next, err := coll.Refresh(ctx, h, scanner)
//
// # Layout
//
//   - coord: coordinate values, axes and the axis builder
//   - sparse: the flat track and compact content store
//   - grid: addressing, track population and reindexing
//   - indexfile: binary index files and their publication to a blobstore
//   - blobstore: memory, local, MinIO and S3 storage for index files
package gridex
