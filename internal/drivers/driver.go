package drivers

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/quantfold/studio/internal/models"
)

var (
	// ErrUnsupportedType indicates no factory is registered for a connection type.
	ErrUnsupportedType = errors.New("unsupported connection type")

	// ErrProjectRequired indicates a BigQuery connection without a resolvable project.
	ErrProjectRequired = errors.New("bigquery connections require a project in the extra field")
)

// Column describes one column of a result set.
type Column struct {
	Name     string
	TypeName string // driver-reported database type, upper-cased
}

// Result holds the outcome of executing a statement.
type Result struct {
	Columns []Column
	Rows    []map[string]any
}

// Executor runs statements against one live data-source connection.
type Executor interface {
	Execute(ctx context.Context, statement string) (*Result, error)
	Close() error
}

// Factory opens an executor for a connection descriptor.
type Factory func(ctx context.Context, conn models.Connection) (Executor, error)

// Registry maps connection types to executor factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default returns a registry with all built-in executors registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(TypeDuckDB, OpenDuckDB)
	r.Register(TypeBigQuery, OpenBigQuery)
	return r
}

// Register binds a connection type to a factory, replacing any previous binding.
func (r *Registry) Register(connType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[connType] = factory
}

// Open creates an executor for the descriptor's type.
func (r *Registry) Open(ctx context.Context, conn models.Connection) (Executor, error) {
	r.mu.RLock()
	factory, ok := r.factories[conn.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrUnsupportedType
	}
	return factory(ctx, conn)
}

// Supported lists registered connection types in sorted order.
func (r *Registry) Supported() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for name := range r.factories {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
