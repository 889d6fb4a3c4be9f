package store

import (
	"errors"
	"fmt"
	"strings"

	"ashasphere/internal/ports"
)

const (
	EngineSQLite = "sqlite"
	EngineJSON   = "json"
	EngineMemory = "memory"
)

// ErrUnsupportedEngine is returned for unknown engine names.
var ErrUnsupportedEngine = errors.New("unsupported store engine")

// NewByEngine opens the backend named by engine. Callers should close the
// result when it implements io.Closer.
func NewByEngine(engine string, path string) (ports.KeyValueStore, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineSQLite:
		return NewSQLiteStore(path)
	case EngineJSON:
		return NewJSONStore(path)
	case EngineMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEngine, engine)
	}
}
