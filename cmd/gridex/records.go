package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hupe1980/gridex"
	"github.com/hupe1980/gridex/coord"
	"github.com/hupe1980/gridex/model"
)

// recordLine is one line of a records file:
//
//	{"coords":[{"kind":"time","offset":6},{"kind":"vert","level":85000}],"locator":1,"ref":{"f":0,"o":0,"n":512}}
type recordLine struct {
	Coords  []coordJSON `json:"coords"`
	Locator int         `json:"locator"`
	Ref     model.Ref   `json:"ref"`
}

type coordJSON struct {
	Kind   string     `json:"kind"`
	Time   *time.Time `json:"time,omitempty"`
	Offset int64      `json:"offset,omitempty"`
	Start  int64      `json:"start,omitempty"`
	End    int64      `json:"end,omitempty"`
	Level  *float64   `json:"level,omitempty"`
	Bottom *float64   `json:"bottom,omitempty"`
	Top    *float64   `json:"top,omitempty"`
	Code   int        `json:"code,omitempty"`
	Member int        `json:"member,omitempty"`
}

func (c coordJSON) value() (coord.Value, error) {
	kind, ok := coord.ParseKind(c.Kind)
	if !ok {
		return coord.Value{}, fmt.Errorf("unknown kind %q", c.Kind)
	}

	switch kind {
	case coord.KindRuntime:
		if c.Time == nil {
			return coord.Value{}, fmt.Errorf("%s: missing time", c.Kind)
		}
		return coord.Runtime(*c.Time), nil
	case coord.KindTime:
		return coord.TimeOffset(c.Offset), nil
	case coord.KindTimeInterval:
		return coord.TimeInterval(c.Start, c.End), nil
	case coord.KindVertical:
		switch {
		case c.Level != nil:
			return coord.Level(*c.Level), nil
		case c.Bottom != nil && c.Top != nil:
			return coord.Layer(*c.Bottom, *c.Top), nil
		default:
			return coord.Value{}, fmt.Errorf("%s: need level or bottom and top", c.Kind)
		}
	default:
		return coord.Ensemble(c.Code, c.Member), nil
	}
}

// fileScanner reads records from a JSON lines file, or stdin for "-".
// Every Scan reopens the file.
type fileScanner struct {
	path  string
	stdin io.Reader
}

var _ gridex.Scanner[model.Ref] = (*fileScanner)(nil)

func (s *fileScanner) Scan(ctx context.Context, fn func(gridex.Record[model.Ref]) error) error {
	var r io.Reader
	if s.path == "-" {
		r = s.stdin
	} else {
		f, err := os.Open(s.path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for n := 1; sc.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		rec, err := parseRecord([]byte(text))
		if err != nil {
			return fmt.Errorf("%s:%d: %w", s.path, n, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return sc.Err()
}

func parseRecord(data []byte) (gridex.Record[model.Ref], error) {
	var line recordLine
	if err := json.Unmarshal(data, &line); err != nil {
		return gridex.Record[model.Ref]{}, err
	}

	tuple := make(coord.Tuple, len(line.Coords))
	for i, c := range line.Coords {
		v, err := c.value()
		if err != nil {
			return gridex.Record[model.Ref]{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		tuple[i] = v
	}

	return gridex.Record[model.Ref]{Tuple: tuple, Locator: line.Locator, Payload: line.Ref}, nil
}

// parseAxisSpec parses "kind:name[:unit]".
func parseAxisSpec(s string) (gridex.AxisSpec, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[1] == "" {
		return gridex.AxisSpec{}, fmt.Errorf("invalid axis %q: want kind:name[:unit]", s)
	}
	kind, ok := coord.ParseKind(parts[0])
	if !ok {
		return gridex.AxisSpec{}, fmt.Errorf("invalid axis %q: unknown kind %q", s, parts[0])
	}
	spec := gridex.AxisSpec{Kind: kind, Name: parts[1]}
	if len(parts) == 3 {
		spec.Unit = parts[2]
	}
	return spec, nil
}
