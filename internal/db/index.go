package db

import (
	"errors"
	"fmt"
	"strings"
)

// FieldKind is the FT schema type of an indexed JSON attribute.
type FieldKind int

const (
	// FieldText is tokenized and matched by full-text queries.
	FieldText FieldKind = iota + 1
	// FieldTag is matched exactly, e.g. SKUs and catalog tags.
	FieldTag
)

func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "TEXT"
	case FieldTag:
		return "TAG"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// IndexField maps a JSON path of a stored document to a query attribute.
type IndexField struct {
	Path   string // JSON path, e.g. "$.title" or "$.tags[*]"
	Alias  string // attribute name used in queries, e.g. @title
	Kind   FieldKind
	Weight float64 // TEXT relevance weight; 0 keeps the server default
}

// IndexDefinition is an FT index over JSON documents sharing a key prefix.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks the definition before it is sent to FT.CREATE.
// Every field needs a JSON path and an alias; queries address fields by alias only.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if strings.ContainsFunc(idx.Name, notIdentRune) {
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if !strings.HasPrefix(f.Path, "$") {
			return fmt.Errorf("field %d: JSON path must start with $, got %q", i, f.Path)
		}
		if f.Alias == "" {
			return fmt.Errorf("field %s: alias is required", f.Path)
		}
		if _, dup := seen[f.Alias]; dup {
			return fmt.Errorf("duplicate field alias: %s", f.Alias)
		}
		seen[f.Alias] = struct{}{}

		switch f.Kind {
		case FieldText:
			if f.Weight < 0 {
				return fmt.Errorf("field %s: text weight must not be negative", f.Alias)
			}
		case FieldTag:
			if f.Weight != 0 {
				return fmt.Errorf("field %s: weight applies to TEXT fields only", f.Alias)
			}
		default:
			return fmt.Errorf("field %s: unknown kind %s", f.Alias, f.Kind)
		}
	}
	return nil
}

// notIdentRune reports runes outside [a-zA-Z0-9_:-].
func notIdentRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case r == '_' || r == ':' || r == '-':
		return false
	default:
		return true
	}
}
