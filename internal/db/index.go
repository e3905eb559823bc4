package db

import (
	"errors"
	"strconv"
)

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldTag is an exact-match TAG field.
	IndexFieldTag IndexFieldType = iota
	// IndexFieldNumeric is a NUMERIC field.
	IndexFieldNumeric
	// IndexFieldVector is an HNSW FLOAT32 cosine VECTOR field.
	IndexFieldVector
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// VECTOR options
	Dim         int
	M           int // max edges per node, 0 = server default
	EFConstruct int // build-time candidate list size, 0 = server default
}

// IndexDefinition is an FT index over HASH documents sharing a key prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []IndexField
}

// NewIndex starts an index definition.
func NewIndex(name, prefix string) *IndexDefinition {
	return &IndexDefinition{Name: name, Prefix: prefix}
}

// Tag adds TAG fields.
func (d *IndexDefinition) Tag(names ...string) *IndexDefinition {
	for _, n := range names {
		d.Fields = append(d.Fields, IndexField{Name: n, Type: IndexFieldTag})
	}
	return d
}

// Numeric adds NUMERIC fields.
func (d *IndexDefinition) Numeric(names ...string) *IndexDefinition {
	for _, n := range names {
		d.Fields = append(d.Fields, IndexField{Name: n, Type: IndexFieldNumeric})
	}
	return d
}

// Vector adds the HNSW vector field.
func (d *IndexDefinition) Vector(name string, dim, m, efConstruct int) *IndexDefinition {
	d.Fields = append(d.Fields, IndexField{
		Name: name, Type: IndexFieldVector, Dim: dim, M: m, EFConstruct: efConstruct,
	})
	return d
}

// Validate checks that the definition is well-formed.
func (d *IndexDefinition) Validate() error {
	if !IsValidIdentifier(d.Name) {
		return errors.New("index name must match [a-zA-Z0-9_:-]+")
	}
	if d.Prefix == "" {
		return errors.New("index prefix is required")
	}
	if len(d.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	seen := make(map[string]bool, len(d.Fields))
	vectors := 0
	for i, f := range d.Fields {
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true
		if f.Type == IndexFieldVector {
			vectors++
			if f.Dim <= 0 {
				return errors.New("vector field requires positive DIM")
			}
		}
	}
	if vectors != 1 {
		return errors.New("exactly one vector field is required")
	}
	return nil
}

// CreateArgs renders the FT.CREATE arguments (without the command name).
func (d *IndexDefinition) CreateArgs() ([]string, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	args := []string{d.Name, "ON", "HASH", "PREFIX", "1", d.Prefix, "SCHEMA"}
	for _, f := range d.Fields {
		switch f.Type {
		case IndexFieldTag:
			args = append(args, f.Name, "TAG")
		case IndexFieldNumeric:
			args = append(args, f.Name, "NUMERIC")
		case IndexFieldVector:
			attrs := []string{
				"TYPE", "FLOAT32",
				"DIM", strconv.Itoa(f.Dim),
				"DISTANCE_METRIC", "COSINE",
			}
			if f.M > 0 {
				attrs = append(attrs, "M", strconv.Itoa(f.M))
			}
			if f.EFConstruct > 0 {
				attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.EFConstruct))
			}
			args = append(args, f.Name, "VECTOR", "HNSW", strconv.Itoa(len(attrs)))
			args = append(args, attrs...)
		}
	}
	return args, nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != ':' && r != '-' {
			return false
		}
	}
	return true
}
