package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/quantfold/studio/internal/drivers"
	"github.com/quantfold/studio/internal/models"
	apperrors "github.com/quantfold/studio/pkg/errors"
	"github.com/quantfold/studio/pkg/logger"
	"github.com/quantfold/studio/pkg/metrics"
)

// UpsertConnectionInput describes the fields accepted when creating or
// refreshing a connection.
type UpsertConnectionInput struct {
	Name      string
	Type      string
	Model     *string
	FullModel *ModelInput
	Extra     map[string]any
}

// ConnectionListItem is the listing shape returned to the UI.
type ConnectionListItem struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Model  *string `json:"model"`
	Active bool    `json:"active"`
}

type liveExecutor struct {
	exec     drivers.Executor
	lastUsed time.Time
}

// ConnectionService owns the name-keyed collection of connection descriptors
// and the live executors attached to the active ones.
type ConnectionService struct {
	db       *gorm.DB
	registry *drivers.Registry
	catalog  *ModelCatalog
	log      *zap.Logger

	mu          sync.RWMutex
	descriptors map[string]models.Connection
	executors   map[string]*liveExecutor
	now         func() time.Time
}

// NewConnectionService constructs a ConnectionService. The catalog may be nil
// when model binding is not needed.
func NewConnectionService(db *gorm.DB, registry *drivers.Registry, catalog *ModelCatalog) (*ConnectionService, error) {
	if db == nil {
		return nil, errors.New("connection service: db is required")
	}
	if registry == nil {
		return nil, errors.New("connection service: driver registry is required")
	}

	return &ConnectionService{
		db:          db,
		registry:    registry,
		catalog:     catalog,
		log:         logger.WithModule("connections"),
		descriptors: make(map[string]models.Connection),
		executors:   make(map[string]*liveExecutor),
		now:         time.Now,
	}, nil
}

// Upsert registers a connection or refreshes an existing one. Both paths open
// a fresh executor for the descriptor's type, persist the descriptor, and
// mark it active. An unknown model name is not an error; the descriptor
// simply records the binding.
func (s *ConnectionService) Upsert(ctx context.Context, input UpsertConnectionInput) (*models.Connection, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("connection name is required")
	}

	model := input.Model
	if input.FullModel != nil {
		if s.catalog == nil {
			return nil, apperrors.NewBadRequest("inline models are not supported without a catalog")
		}
		if err := s.catalog.Save(ctx, *input.FullModel); err != nil {
			return nil, apperrors.Wrap(err, "failed to register inline model")
		}
		inline := strings.TrimSpace(input.FullModel.Name)
		model = &inline
	}

	conn := models.NewConnection(name, input.Type, true, model, input.Extra)

	exec, err := s.registry.Open(ctx, conn)
	if err != nil {
		switch {
		case errors.Is(err, drivers.ErrUnsupportedType):
			return nil, apperrors.ErrUnsupportedConnectionType
		case errors.Is(err, drivers.ErrProjectRequired):
			return nil, apperrors.NewBadRequest(err.Error())
		default:
			return nil, apperrors.Wrap(err, fmt.Sprintf("failed to open %s connection", conn.Type))
		}
	}

	if err := s.db.WithContext(ctx).Save(&conn).Error; err != nil {
		_ = exec.Close()
		return nil, fmt.Errorf("connection service: persist connection: %w", err)
	}

	s.mu.Lock()
	if old, ok := s.executors[name]; ok {
		_ = old.exec.Close()
		metrics.LiveConnections.Dec()
	}
	s.executors[name] = &liveExecutor{exec: exec, lastUsed: s.now()}
	s.descriptors[name] = conn
	s.mu.Unlock()
	metrics.LiveConnections.Inc()

	s.log.Info("connection ready",
		zap.String("name", conn.Name),
		zap.String("type", conn.Type),
	)
	return &conn, nil
}

// List returns all known connections sorted by name.
func (s *ConnectionService) List(ctx context.Context) []ConnectionListItem {
	s.mu.RLock()
	items := make([]ConnectionListItem, 0, len(s.descriptors))
	for _, conn := range s.descriptors {
		items = append(items, ConnectionListItem{
			Name:   conn.Name,
			Type:   conn.Type,
			Model:  conn.Model,
			Active: conn.Active,
		})
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// Executor returns the live executor for a connection, if any, and records
// the access time for idle pruning.
func (s *ConnectionService) Executor(name string) (drivers.Executor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, ok := s.executors[name]
	if !ok {
		return nil, false
	}
	live.lastUsed = s.now()
	return live.exec, true
}

// Restore rebuilds the in-memory collection from persisted rows. Rows are
// read back as untyped records and projected through the lossy constructor,
// so every restored descriptor comes up inactive and without extra metadata;
// the UI must refresh a connection before querying it again. Stored active
// flags are reset to match.
func (s *ConnectionService) Restore(ctx context.Context) (int, error) {
	var records []map[string]any
	if err := s.db.WithContext(ctx).Table("connections").Find(&records).Error; err != nil {
		return 0, fmt.Errorf("connection service: load persisted connections: %w", err)
	}

	s.mu.Lock()
	for _, record := range records {
		conn := models.ConnectionFromRecord(record)
		if conn.Name == "" {
			continue
		}
		s.descriptors[conn.Name] = conn
	}
	restored := len(s.descriptors)
	s.mu.Unlock()

	if err := s.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("active = ?", true).
		Update("active", false).Error; err != nil {
		return restored, fmt.Errorf("connection service: reset active flags: %w", err)
	}

	if restored > 0 {
		s.log.Info("connections restored from storage", zap.Int("count", restored))
	}
	return restored, nil
}

// Deactivate closes a connection's executor and flips the descriptor to
// inactive. Deactivating an unknown or already inactive connection is a no-op.
func (s *ConnectionService) Deactivate(ctx context.Context, name string) error {
	s.mu.Lock()
	live, ok := s.executors[name]
	if ok {
		delete(s.executors, name)
	}
	conn, known := s.descriptors[name]
	if known {
		conn.Active = false
		s.descriptors[name] = conn
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	metrics.LiveConnections.Dec()

	var errs error
	if err := live.exec.Close(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("close executor for %s: %w", name, err))
	}

	if known {
		if err := s.db.WithContext(ctx).
			Model(&models.Connection{}).
			Where("name = ?", name).
			Update("active", false).Error; err != nil {
			errs = multierr.Append(errs, fmt.Errorf("persist inactive flag for %s: %w", name, err))
		}
	}

	s.log.Info("connection deactivated", zap.String("name", name))
	return errs
}

// PruneIdle deactivates every connection whose executor has not been used
// since the cutoff. Returns the names of pruned connections.
func (s *ConnectionService) PruneIdle(ctx context.Context, cutoff time.Time) ([]string, error) {
	s.mu.RLock()
	var idle []string
	for name, live := range s.executors {
		if live.lastUsed.Before(cutoff) {
			idle = append(idle, name)
		}
	}
	s.mu.RUnlock()

	sort.Strings(idle)

	var errs error
	for _, name := range idle {
		errs = multierr.Append(errs, s.Deactivate(ctx, name))
	}
	return idle, errs
}

// Close shuts down all live executors. Used during server shutdown.
func (s *ConnectionService) Close() error {
	s.mu.Lock()
	executors := s.executors
	s.executors = make(map[string]*liveExecutor)
	s.mu.Unlock()

	var errs error
	for name, live := range executors {
		if err := live.exec.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close executor for %s: %w", name, err))
		}
		metrics.LiveConnections.Dec()
	}
	return errs
}
