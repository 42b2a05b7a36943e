package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/hashicorp/go-multierror"
	"github.com/hupe1980/gridex/grid"
	"github.com/hupe1980/gridex/indexfile"
	"github.com/spf13/cobra"
)

// Inspection decodes payloads as raw JSON so any collection built with a
// JSON codec can be read without knowing its payload type.
type payload = json.RawMessage

func newInspectCommand(root *rootFlags) *cobra.Command {
	var cells bool

	cmd := &cobra.Command{
		Use:   "inspect <collection> [version]",
		Short: "Print the header, axes and density of a published version",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := root.store.open(ctx)
			if err != nil {
				return err
			}
			pub := indexfile.NewPublisher[payload](store, args[0])

			var version uint64
			if len(args) == 2 {
				version, err = strconv.ParseUint(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[1])
				}
			} else {
				versions, err := pub.Versions(ctx)
				if err != nil {
					return err
				}
				if len(versions) == 0 {
					return fmt.Errorf("collection %q has no versions", args[0])
				}
				version = versions[len(versions)-1]
			}

			data, err := store.Get(ctx, pub.Name(version))
			if err != nil {
				return err
			}
			info, err := indexfile.ReadInfo(bytes.NewReader(data))
			if err != nil {
				return err
			}
			g, err := indexfile.Unmarshal[payload](data, indexfile.Options{})
			if err != nil {
				return err
			}

			printInfo(cmd.OutOrStdout(), pub.Name(version), info, g)
			if cells {
				printCells(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cells, "cells", false, "Also print every populated cell.")
	return cmd
}

func printInfo(w io.Writer, name string, info indexfile.Info, g *grid.ND[payload]) {
	fmt.Fprintf(w, "file:    %s\n", name)
	fmt.Fprintf(w, "format:  v%d %s %s\n", info.Version, info.Compression, info.Codec)
	fmt.Fprintf(w, "body:    %d bytes, crc32 0x%08x\n", info.BodyLen, info.Checksum)
	fmt.Fprintf(w, "cells:   %d of %d, density %.6f\n", g.Populated(), g.TotalSize(), g.Density())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AXIS\tKIND\tUNIT\tSIZE\tSORTED\tVALUES")
	for _, a := range g.Axes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%v\n", a.Name(), a.Kind(), a.Unit(), a.Size(), a.Sorted(), a.Values())
	}
	_ = tw.Flush()
}

func printCells(w io.Writer, g *grid.ND[payload]) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CELL\tTUPLE\tLOCATOR\tPAYLOAD")
	g.Array().Each(func(flat, locator int, content payload) bool {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", flat, g.TupleAt(flat), locator, content)
		return true
	})
	_ = tw.Flush()
}

func newVersionsCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "versions <collection>",
		Short: "List the published versions of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.store.open(cmd.Context())
			if err != nil {
				return err
			}
			versions, err := indexfile.NewPublisher[payload](store, args[0]).Versions(cmd.Context())
			if err != nil {
				return err
			}
			for _, v := range versions {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func newPruneCommand(root *rootFlags) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune <collection>",
		Short: "Delete all but the newest versions of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1")
			}
			store, err := root.store.open(cmd.Context())
			if err != nil {
				return err
			}
			deleted, err := indexfile.NewPublisher[payload](store, args[0]).Prune(cmd.Context(), keep)
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d versions\n", deleted)
			return err
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 1, "Number of versions to keep.")
	return cmd
}

func newVerifyCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <collection>",
		Short: "Decode every published version and report the broken ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := root.store.open(ctx)
			if err != nil {
				return err
			}
			pub := indexfile.NewPublisher[payload](store, args[0])
			versions, err := pub.Versions(ctx)
			if err != nil {
				return err
			}

			var result *multierror.Error
			for _, v := range versions {
				if _, err := pub.Load(ctx, v); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", pub.Name(v), err)
					result = multierror.Append(result, fmt.Errorf("%s: %w", pub.Name(v), err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", pub.Name(v))
			}
			return result.ErrorOrNil()
		},
	}
}
