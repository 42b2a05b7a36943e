package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/gridex/coord"
	"github.com/hupe1980/gridex/indexfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeRecords(t *testing.T, dir, name string, offsets []int, levels []float64) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("# offset x level\n")
	loc := 1
	for _, o := range offsets {
		for _, l := range levels {
			fmt.Fprintf(&sb, `{"coords":[{"kind":"time","offset":%d},{"kind":"vert","level":%g}],"locator":%d,"ref":{"f":1,"o":%d,"n":512}}`+"\n",
				o, l, loc, (loc-1)*512)
			loc++
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

func TestBuildAndInspect(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "store")
	axes := []string{"--axis", "time:time:hours", "--axis", "vert:isobaric:Pa"}

	first := writeRecords(t, dir, "first.jsonl", []int{0, 6}, []float64{85000, 50000})
	out, err := run(t, "", append([]string{"build", "temperature", "--dir", root, "--input", first}, axes...)...)
	require.NoError(t, err)
	assert.Equal(t, "published temperature/1.gdx: sizes [2 2], 4 of 4 cells, density 1.000000\n", out)

	// Offset 3 is new: the axis grows but its cells are not carried.
	second := writeRecords(t, dir, "second.jsonl", []int{0, 3, 6}, []float64{85000, 50000})
	out, err = run(t, "", append([]string{"build", "temperature", "--dir", root, "--input", second, "--compression", "lz4"}, axes...)...)
	require.NoError(t, err)
	assert.Equal(t, "published temperature/2.gdx: sizes [3 2], 4 of 6 cells, density 0.666667\n", out)

	out, err = run(t, "", "versions", "temperature", "--dir", root)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)

	out, err = run(t, "", "inspect", "temperature", "--dir", root, "--cells")
	require.NoError(t, err)
	assert.Contains(t, out, "file:    temperature/2.gdx")
	assert.Contains(t, out, "format:  v1 lz4 go-json")
	assert.Contains(t, out, "[0 6 3]")
	assert.Contains(t, out, "false")
	assert.Contains(t, out, `"n":512`)

	out, err = run(t, "", "inspect", "temperature", "1", "--dir", root)
	require.NoError(t, err)
	assert.Contains(t, out, "format:  v1 zstd go-json")
	assert.Contains(t, out, "cells:   4 of 4, density 1.000000")

	out, err = run(t, "", "verify", "temperature", "--dir", root, "--cache-bytes", "1048576")
	require.NoError(t, err)
	assert.Equal(t, "temperature/1.gdx: ok\ntemperature/2.gdx: ok\n", out)

	out, err = run(t, "", "prune", "temperature", "--dir", root, "--keep", "1")
	require.NoError(t, err)
	assert.Equal(t, "pruned 1 versions\n", out)

	out, err = run(t, "", "versions", "temperature", "--dir", root)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestBuild_Stdin(t *testing.T) {
	root := t.TempDir()
	stdin := `{"coords":[{"kind":"ens","code":3,"member":1}],"locator":1,"ref":{"f":0,"o":0,"n":1}}
{"coords":[{"kind":"ens","code":3,"member":0}],"locator":2,"ref":{"f":0,"o":1,"n":1}}
`
	out, err := run(t, stdin, "build", "members", "--dir", root, "--axis", "ens:member", "--keep", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "published members/1.gdx: sizes [2], 2 of 2 cells")

	out, err = run(t, stdin, "build", "members", "--dir", root, "--axis", "ens:member", "--keep", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "published members/2.gdx")
	assert.Contains(t, out, "pruned 1 versions")
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()
	records := writeRecords(t, dir, "r.jsonl", []int{0}, []float64{1000})
	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte(`{"coords":[{"kind":"time","offset":0}],"locator":1}`+"\n"+`{"coords":[{"kind":"nope"}]}`+"\n"), 0o600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing axis", []string{"build", "c", "--dir", dir, "--input", records}, `required flag(s) "axis" not set`},
		{"bad axis", []string{"build", "c", "--dir", dir, "--input", records, "--axis", "time"}, "want kind:name[:unit]"},
		{"unknown kind", []string{"build", "c", "--dir", dir, "--input", records, "--axis", "depth:d"}, `unknown kind "depth"`},
		{"compression", []string{"build", "c", "--dir", dir, "--input", records, "--axis", "time:t", "--axis", "vert:v", "--compression", "brotli"}, `unknown compression "brotli"`},
		{"codec", []string{"build", "c", "--dir", dir, "--input", records, "--axis", "time:t", "--axis", "vert:v", "--codec", "xml"}, `unknown codec "xml"`},
		{"tuple length", []string{"build", "c", "--dir", dir, "--input", records, "--axis", "time:t"}, "tuple"},
		{"bad line", []string{"build", "c", "--dir", dir, "--input", bad, "--axis", "time:t"}, "bad.jsonl:2: coordinate 0: unknown kind"},
		{"stores", []string{"build", "c", "--s3-bucket", "b", "--minio-endpoint", "m", "--axis", "time:t"}, "mutually exclusive"},
		{"log level", []string{"build", "c", "--dir", dir, "--input", records, "--axis", "time:t", "--log-level", "loud"}, "invalid --log-level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInspect_Errors(t *testing.T) {
	root := t.TempDir()

	_, err := run(t, "", "inspect", "temperature", "--dir", root)
	assert.ErrorContains(t, err, "has no versions")

	_, err = run(t, "", "inspect", "temperature", "x", "--dir", root)
	assert.ErrorContains(t, err, `invalid version "x"`)

	_, err = run(t, "", "prune", "temperature", "--dir", root, "--keep", "0")
	assert.ErrorContains(t, err, "--keep must be at least 1")
}

func TestVerify_Corrupt(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "store")
	records := writeRecords(t, dir, "r.jsonl", []int{0, 6}, []float64{1000})

	_, err := run(t, "", "build", "temperature", "--dir", root, "--input", records, "--axis", "time:t", "--axis", "vert:v")
	require.NoError(t, err)

	path := filepath.Join(root, "temperature", "1"+indexfile.Extension)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o600))

	out, err := run(t, "", "verify", "temperature", "--dir", root)
	require.ErrorIs(t, err, indexfile.ErrChecksum)
	assert.Contains(t, out, "temperature/1.gdx: indexfile: checksum mismatch")
}

func TestCoordJSON(t *testing.T) {
	bottom, top := 0.0, 10.0
	tests := []struct {
		in   coordJSON
		want coord.Value
	}{
		{coordJSON{Kind: "time", Offset: 6}, coord.TimeOffset(6)},
		{coordJSON{Kind: "timeIntv", Start: 0, End: 6}, coord.TimeInterval(0, 6)},
		{coordJSON{Kind: "vert", Bottom: &bottom, Top: &top}, coord.Layer(0, 10)},
		{coordJSON{Kind: "ens", Code: 3, Member: 2}, coord.Ensemble(3, 2)},
	}
	for _, tt := range tests {
		got, err := tt.in.value()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := coordJSON{Kind: "runtime"}.value()
	assert.ErrorContains(t, err, "missing time")
	_, err = coordJSON{Kind: "vert"}.value()
	assert.ErrorContains(t, err, "need level")
}
