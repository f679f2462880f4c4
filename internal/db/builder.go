package db

import (
	"strconv"
	"strings"
)

// IndexBuilder assembles an FT index definition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a JSON index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix restricts the index to keys with the given prefixes.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// TextAs indexes path as a full-text attribute. weight 0 keeps the server default.
func (b *IndexBuilder) TextAs(path, alias string, weight float64) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Path: path, Alias: alias, Kind: FieldText, Weight: weight})
	return b
}

// TagAs indexes path as an exact-match attribute. Array paths index every element.
func (b *IndexBuilder) TagAs(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Path: path, Alias: alias, Kind: FieldTag})
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	return &def, nil
}

// MustBuild is Build for static schemas; it panics on an invalid definition.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String renders the definition the way FT.CREATE receives it.
func (idx *IndexDefinition) String() string {
	return "FT.CREATE " + strings.Join(idx.Args(), " ")
}

// Args returns the FT.CREATE arguments following the command name.
func (idx *IndexDefinition) Args() []string {
	args := []string{idx.Name, "ON", "JSON"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for _, f := range idx.Fields {
		args = append(args, f.Path, "AS", f.Alias, f.Kind.String())
		if f.Kind == FieldText && f.Weight > 0 {
			args = append(args, "WEIGHT", strconv.FormatFloat(f.Weight, 'g', -1, 64))
		}
	}
	return args
}
