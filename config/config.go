// Package config loads table and filter settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/asaidimu/go-colfilter/core/filter"
	"github.com/asaidimu/go-colfilter/plugin"
	"github.com/asaidimu/go-colfilter/table"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Column configures one table column.
type Column struct {
	Title      string `yaml:"title" validate:"required"`
	Searchable *bool  `yaml:"searchable"`
	SearchType string `yaml:"searchType" validate:"omitempty,oneof=text select multiselect"`
}

// Persistence configures where filter state is kept.
type Persistence struct {
	// Driver is "memory" or "sqlite". Empty disables state saving.
	Driver string `yaml:"driver" validate:"omitempty,oneof=memory sqlite"`

	// DSN is the SQLite data source, required for the sqlite driver.
	DSN       string `yaml:"dsn" validate:"required_if=Driver sqlite"`
	TableName string `yaml:"tableName"`
}

// Config is the root of a configuration file.
type Config struct {
	TableID      string               `yaml:"tableId" validate:"required"`
	Columns      []Column             `yaml:"columns" validate:"required,min=1,dive"`
	Persistence  Persistence          `yaml:"persistence"`
	Localization *plugin.Localization `yaml:"localization"`

	// Filters are initial specs keyed by column index, decoded from
	// RawFilters. A string is a substring filter, a list is a multi-value
	// filter.
	Filters    map[int]filter.Spec `yaml:"-"`
	RawFilters map[int]yaml.Node   `yaml:"filters"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.decodeFilters(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeFilters() error {
	c.Filters = make(map[int]filter.Spec, len(c.RawFilters))
	for col, node := range c.RawFilters {
		switch node.Kind {
		case yaml.ScalarNode:
			var s string
			if err := node.Decode(&s); err != nil {
				return fmt.Errorf("decoding filter of column %d: %w", col, err)
			}
			c.Filters[col] = filter.Single(s)
		case yaml.SequenceNode:
			var values []string
			if err := node.Decode(&values); err != nil {
				return fmt.Errorf("decoding filter of column %d: %w", col, err)
			}
			c.Filters[col] = filter.Many(values...)
		default:
			return fmt.Errorf("decoding filter of column %d: want a string or a list", col)
		}
	}
	return nil
}

// Validate checks field constraints and that filters address existing,
// searchable columns.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	defs := c.ColumnDefs()
	for col := range c.Filters {
		if col < 0 || col >= len(defs) {
			return fmt.Errorf("invalid config: filter on column %d, table has %d columns", col, len(defs))
		}
		if !defs[col].Searchable {
			return fmt.Errorf("invalid config: filter on column %d, %s is not searchable", col, defs[col].Title)
		}
	}
	return nil
}

// ColumnDefs converts the column settings to table definitions. Columns are
// searchable unless searchable is set to false.
func (c *Config) ColumnDefs() []table.ColumnDef {
	defs := make([]table.ColumnDef, len(c.Columns))
	for i, col := range c.Columns {
		searchable := col.Searchable == nil || *col.Searchable
		defs[i] = table.ColumnDef{
			Title:      col.Title,
			Searchable: searchable,
			SearchType: table.SearchType(col.SearchType),
		}
	}
	return defs
}

// StateSave reports whether a persistence driver is configured.
func (c *Config) StateSave() bool {
	return c.Persistence.Driver != ""
}
