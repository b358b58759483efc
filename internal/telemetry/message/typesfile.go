package message

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// The full field-type table is versioned data, not code: deployments carry
// additional message layouts in a JSON file next to the daemon config and
// load them at startup. The JSON schema mirrors MessageType/FieldSpec.

type typesFile struct {
	Messages []typeDef `json:"messages"`
}

type typeDef struct {
	FourCC string     `json:"fourcc"`
	Name   string     `json:"name"`
	Fields []fieldDef `json:"fields"`
}

type fieldDef struct {
	Name  string   `json:"name"`
	Kind  string   `json:"kind"`
	Width int      `json:"width"`
	Units *unitDef `json:"units,omitempty"`
}

type unitDef struct {
	MKS     string  `json:"mks,omitempty"`
	ScaleBy float64 `json:"scale_by,omitempty"`
	Bias    float64 `json:"bias,omitempty"`
}

// LoadTypesFile reads message type definitions from a JSON data file. The
// file must have a .json extension and be under 1MB.
func LoadTypesFile(path string) ([]*MessageType, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("types file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat types file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("types file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read types file: %w", err)
	}

	var tf typesFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse types file: %w", err)
	}

	types := make([]*MessageType, 0, len(tf.Messages))
	for _, def := range tf.Messages {
		fields := make([]FieldSpec, 0, len(def.Fields))
		for _, fd := range def.Fields {
			kind, err := KindFromString(fd.Kind)
			if err != nil {
				return nil, fmt.Errorf("type %s field %s: %w", def.FourCC, fd.Name, err)
			}
			spec := FieldSpec{Name: fd.Name, Kind: kind, Width: fd.Width}
			if fd.Units != nil {
				spec.Units = &UnitSpec{MKS: fd.Units.MKS, ScaleBy: fd.Units.ScaleBy, Bias: fd.Units.Bias}
			}
			fields = append(fields, spec)
		}
		t, err := NewMessageType(def.FourCC, def.Name, fields)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// RegisterTypesFile loads a types file and registers every definition into
// reg, failing on the first conflict with an already registered fourcc.
func RegisterTypesFile(reg *Registry, path string) error {
	types, err := LoadTypesFile(path)
	if err != nil {
		return err
	}
	return reg.RegisterAll(types...)
}
