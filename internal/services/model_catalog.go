package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/quantfold/studio/internal/models"
	"github.com/quantfold/studio/pkg/logger"
)

// ModelInput describes a model to register in the catalog.
type ModelInput struct {
	Name    string
	Sources []models.ModelSource
}

// ModelSummary is the catalog listing shape returned to the UI.
type ModelSummary struct {
	Name    string   `json:"name"`
	Sources []string `json:"sources"`
}

// ModelCatalog owns the set of named semantic models connections can bind to.
type ModelCatalog struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewModelCatalog constructs a ModelCatalog.
func NewModelCatalog(db *gorm.DB) (*ModelCatalog, error) {
	if db == nil {
		return nil, errors.New("model catalog: db is required")
	}
	return &ModelCatalog{db: db, log: logger.WithModule("catalog")}, nil
}

// Save registers or replaces a model.
func (c *ModelCatalog) Save(ctx context.Context, input ModelInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return errors.New("model catalog: model name is required")
	}

	model := models.StudioModel{Name: name}
	if err := model.SetSources(input.Sources); err != nil {
		return fmt.Errorf("model catalog: encode sources: %w", err)
	}

	if err := c.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("model catalog: save model: %w", err)
	}
	return nil
}

// Get returns a model by name. The second return reports whether it exists.
func (c *ModelCatalog) Get(ctx context.Context, name string) (*ModelInput, bool, error) {
	var model models.StudioModel
	err := c.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("model catalog: load model: %w", err)
	}

	sources, err := model.SourceList()
	if err != nil {
		return nil, false, fmt.Errorf("model catalog: decode sources: %w", err)
	}
	return &ModelInput{Name: model.Name, Sources: sources}, true, nil
}

// List returns all registered models with their source aliases.
func (c *ModelCatalog) List(ctx context.Context) ([]ModelSummary, error) {
	var stored []models.StudioModel
	if err := c.db.WithContext(ctx).Order("name").Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("model catalog: list models: %w", err)
	}

	summaries := make([]ModelSummary, 0, len(stored))
	for _, model := range stored {
		sources, err := model.SourceList()
		if err != nil {
			return nil, fmt.Errorf("model catalog: decode sources for %s: %w", model.Name, err)
		}

		aliases := make([]string, 0, len(sources))
		for _, source := range sources {
			aliases = append(aliases, source.Alias)
		}
		summaries = append(summaries, ModelSummary{Name: model.Name, Sources: aliases})
	}
	return summaries, nil
}

// LoadDir walks a directory tree and registers each matching source file as a
// model. The model name is the file's relative path with separators replaced
// by dots and the extension stripped, so "finance/holdings.sql" becomes
// "finance.holdings". Returns the number of models registered.
func (c *ModelCatalog) LoadDir(ctx context.Context, dir, ext string) (int, error) {
	if strings.TrimSpace(dir) == "" {
		return 0, nil
	}
	if ext == "" {
		ext = ".sql"
	}

	loaded := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			return nil
		}

		contents, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.ReplaceAll(filepath.ToSlash(strings.TrimSuffix(rel, ext)), "/", ".")

		alias := strings.TrimSuffix(entry.Name(), ext)
		input := ModelInput{
			Name:    name,
			Sources: []models.ModelSource{{Alias: alias, Contents: string(contents)}},
		}
		if err := c.Save(ctx, input); err != nil {
			return err
		}

		loaded++
		return nil
	})
	if err != nil {
		return loaded, fmt.Errorf("model catalog: load dir %s: %w", dir, err)
	}

	if loaded > 0 {
		c.log.Info("models loaded from disk", zap.String("dir", dir), zap.Int("count", loaded))
	}
	return loaded, nil
}
