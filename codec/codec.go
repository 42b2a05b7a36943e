// Package codec centralizes payload encoding for index files.
//
// Index files record the name of the codec that encoded their content, so a
// reader picks the matching codec with ByName. Changing the default codec
// never breaks existing files.
package codec

import (
	"errors"
	"fmt"
	"sync"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ErrDuplicateName is returned by Register for a name that is already taken.
var ErrDuplicateName = errors.New("codec: name already registered")

var (
	registryMu sync.RWMutex
	registry   = map[string]Codec{}
)

// Register makes a custom codec available to ByName. Built-in names and
// names registered earlier cannot be replaced.
func Register(c Codec) error {
	if _, ok := builtin(c.Name()); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, c.Name())
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[c.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, c.Name())
	}
	registry[c.Name()] = c
	return nil
}

// ByName returns a codec by its stable name: a built-in one or one added
// with Register.
//
// This is used by the self-describing index file format, which stores the codec
// name in its header.
func ByName(name string) (Codec, bool) {
	if c, ok := builtin(name); ok {
		return c, true
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[name]
	return c, ok
}

func builtin(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
