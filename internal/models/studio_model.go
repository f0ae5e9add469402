package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// StudioModel is a named semantic model connections can bind to: a set of
// aliased source definitions the query layer exposes to the UI.
type StudioModel struct {
	Name    string         `gorm:"primaryKey" json:"name"`
	Sources datatypes.JSON `json:"sources"`
}

// ModelSource is one aliased source file within a model.
type ModelSource struct {
	Alias    string `json:"alias"`
	Contents string `json:"contents"`
}

// SourceList decodes the stored sources. A model with no sources yields nil.
func (m *StudioModel) SourceList() ([]ModelSource, error) {
	if len(m.Sources) == 0 {
		return nil, nil
	}

	var sources []ModelSource
	if err := json.Unmarshal(m.Sources, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// SetSources encodes and stores the source list.
func (m *StudioModel) SetSources(sources []ModelSource) error {
	data, err := json.Marshal(sources)
	if err != nil {
		return err
	}
	m.Sources = datatypes.JSON(data)
	return nil
}
