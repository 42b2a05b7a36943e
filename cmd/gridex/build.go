package main

import (
	"errors"
	"fmt"

	"github.com/hupe1980/gridex"
	"github.com/hupe1980/gridex/blobstore"
	"github.com/hupe1980/gridex/codec"
	"github.com/hupe1980/gridex/indexfile"
	"github.com/hupe1980/gridex/model"
	"github.com/hupe1980/gridex/resource"
	"github.com/spf13/cobra"
)

type buildFlags struct {
	axes        []string
	input       string
	compression string
	codec       string
	keep        int
	maxRecords  int
	ioLimit     int64
}

func newBuildCommand(root *rootFlags) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build <collection>",
		Short: "Build a collection from a records file and publish it as the next version",
		Long: `Build scans a JSON lines records file and publishes the resulting index as
the next version of the collection. When a version already exists, the new
index is extended from it so published cell positions stay valid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, root, &flags, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&flags.axes, "axis", nil, "Axis as kind:name[:unit], in tuple order. Repeatable.")
	cmd.Flags().StringVar(&flags.input, "input", "-", "Records file (JSON lines), - for stdin.")
	cmd.Flags().StringVar(&flags.compression, "compression", "zstd", "Body compression (none, lz4, zstd).")
	cmd.Flags().StringVar(&flags.codec, "codec", codec.Default.Name(), "Payload codec.")
	cmd.Flags().IntVar(&flags.keep, "keep", 0, "Prune all but the newest N versions after publishing (0 keeps all).")
	cmd.Flags().IntVar(&flags.maxRecords, "max-records", 0, "Fail when the input has more records (0 is unlimited).")
	cmd.Flags().Int64Var(&flags.ioLimit, "io-limit", 0, "Write limit in bytes per second (0 is unlimited).")
	_ = cmd.MarkFlagRequired("axis")

	return cmd
}

func runBuild(cmd *cobra.Command, root *rootFlags, flags *buildFlags, name string) error {
	ctx := cmd.Context()

	specs := make([]gridex.AxisSpec, 0, len(flags.axes))
	for _, s := range flags.axes {
		spec, err := parseAxisSpec(s)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	comp, ok := indexfile.ParseCompression(flags.compression)
	if !ok {
		return fmt.Errorf("unknown compression %q", flags.compression)
	}
	c, ok := codec.ByName(flags.codec)
	if !ok {
		return fmt.Errorf("unknown codec %q", flags.codec)
	}

	log, err := root.logger(cmd)
	if err != nil {
		return err
	}
	store, err := root.store.open(ctx)
	if err != nil {
		return err
	}
	versions, err := root.store.versionLog(ctx)
	if err != nil {
		return err
	}

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: flags.ioLimit})
	pub := indexfile.NewPublisher[model.Ref](store, name,
		indexfile.WithOptions(indexfile.Options{Compression: comp, Codec: c}),
		indexfile.WithVersionLog(versions),
		indexfile.WithResourceController(rc),
	)

	opts := []gridex.Option{gridex.WithLogger(log), gridex.WithResourceController(rc)}
	if flags.maxRecords > 0 {
		opts = append(opts, gridex.WithMaxRecords(flags.maxRecords))
	}
	coll, err := gridex.NewCollection[model.Ref](name, specs, opts...)
	if err != nil {
		return err
	}

	prev, _, err := pub.Latest(ctx)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return err
	}

	h := gridex.NewHandle(prev)
	g, err := coll.Refresh(ctx, h, &fileScanner{path: flags.input, stdin: cmd.InOrStdin()})
	if err != nil {
		return err
	}

	version, err := pub.Publish(ctx, g)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %s: sizes %v, %d of %d cells, density %.6f\n",
		pub.Name(version), g.Sizes(), g.Populated(), g.TotalSize(), g.Density())

	if flags.keep > 0 {
		deleted, err := pub.Prune(ctx, flags.keep)
		if err != nil {
			return err
		}
		if deleted > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d versions\n", deleted)
		}
	}
	return nil
}
