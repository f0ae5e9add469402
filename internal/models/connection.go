package models

import (
	"gorm.io/datatypes"
)

// Connection describes one configured external data-source link: a brokerage
// or database adapter the studio UI reads portfolio data through. It is a
// plain value record; callers replace descriptors rather than mutating them
// in place. Name uniqueness is the owning collection's concern (primary key
// in storage, map key in the registry), not this type's.
type Connection struct {
	Name   string            `gorm:"primaryKey" json:"name"`
	Type   string            `gorm:"not null" json:"type"`
	Active bool              `gorm:"not null" json:"active"`
	Model  *string           `json:"model"`
	Extra  datatypes.JSONMap `json:"extra,omitempty"`
}

// Truthy reports whether v counts as true when normalising the active flag.
//
// Truth table:
//
//	nil                      -> false
//	bool                     -> the value itself
//	string                   -> false when empty, true otherwise
//	signed/unsigned integers -> false when zero, true otherwise
//	float32/float64          -> false when zero, true otherwise
//	any other non-nil value  -> true
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int8:
		return t != 0
	case int16:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case uint:
		return t != 0
	case uint8:
		return t != 0
	case uint16:
		return t != 0
	case uint32:
		return t != 0
	case uint64:
		return t != 0
	case float32:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

// NewConnection builds a descriptor from typed fields. All fields are stored
// verbatim except active, which is normalised through Truthy; extra defaults
// to absent when nil. The descriptor performs no content validation and
// construction cannot fail.
func NewConnection(name, connType string, active any, model *string, extra map[string]any) Connection {
	return Connection{
		Name:   name,
		Type:   connType,
		Active: Truthy(active),
		Model:  model,
		Extra:  datatypes.JSONMap(extra),
	}
}

// ConnectionFromRecord projects an untyped record onto a descriptor. It is an
// allow-list transformation: only the name, type and model keys are read, and
// everything else in the record, extra included, is discarded. The result is
// always inactive; a restored descriptor has no live executor until the UI
// refreshes it. Missing keys leave the zero value and the projection never
// fails.
func ConnectionFromRecord(record map[string]any) Connection {
	var c Connection
	if name, ok := record["name"].(string); ok {
		c.Name = name
	}
	if kind, ok := record["type"].(string); ok {
		c.Type = kind
	}
	if model, ok := record["model"].(string); ok {
		c.Model = &model
	}
	return c
}
