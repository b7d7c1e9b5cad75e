// Package config loads the YAML pipeline description of spec.md §6 and
// builds a runnable internal/pipeline.Pipeline from it. Grounded on the
// teacher's cmd/ide configuration plumbing and generalised with the plain
// yaml.v3-plus-validator pattern the pack's alexisbeaulieu97-Streamy repo
// uses for its own declarative config (internal/config/parser.go,
// internal/config/validator_instance.go).
package config

import (
	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/update"
)

// Config is the root document: a channel capacity and an ordered step list.
type Config struct {
	ChannelCapacity int          `yaml:"channel_capacity,omitempty"`
	LogLevel        string       `yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Pretty          bool         `yaml:"pretty,omitempty"`
	Steps           []StepConfig `yaml:"steps" validate:"required,min=1,dive"`
}

// StepConfig is one node of the pipeline graph, discriminated by Type.
// Fields not meaningful for a given type are simply left zero.
type StepConfig struct {
	Type     string `yaml:"type" validate:"required,oneof=reader writer transformer validator eraser generator"`
	Name     string `yaml:"name"`
	DataType string `yaml:"data_type,omitempty" validate:"omitempty,oneof=ok err"`
	Threads  int    `yaml:"threads,omitempty"`

	// reader, writer, eraser; Build checks presence per Type since
	// validator's required_if only tests a single field/value pair.
	Connector *ConnectorConfig `yaml:"connector,omitempty"`

	// reader
	Paginator *PaginatorConfig `yaml:"paginator,omitempty"`
	Counter   *CounterConfig   `yaml:"counter,omitempty"`

	// writer
	BatchSize int `yaml:"batch_size,omitempty"`

	// transformer, validator
	Actions    []update.Action            `yaml:"actions,omitempty" validate:"omitempty,dive"`
	References map[string]ConnectorConfig `yaml:"references,omitempty" validate:"omitempty,dive"`

	// validator
	Rules     []RuleConfig `yaml:"rules,omitempty" validate:"omitempty,dive"`
	Separator string       `yaml:"separator,omitempty"`

	// generator
	DatasetSize int `yaml:"dataset_size,omitempty"`
}

// RuleConfig mirrors step.Rule with yaml tags; Build converts it directly.
type RuleConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Pattern string `yaml:"pattern" validate:"required"`
	Message string `yaml:"message,omitempty"`
}

// ConnectorConfig describes a named resource: its transport, the document
// it reads/writes, and transport-specific options (spec.md §4.5).
type ConnectorConfig struct {
	Kind     string            `yaml:"kind" validate:"required,oneof=http local inmemory"`
	Path     string            `yaml:"path" validate:"required"`
	Method   string            `yaml:"method,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Auth     *AuthConfig       `yaml:"auth,omitempty"`
	Seed     string            `yaml:"seed,omitempty"`
	Document DocumentConfig    `yaml:"document" validate:"required"`
}

// AuthConfig selects one of the teacher's authenticator strategies
// (connector/authenticator.go).
type AuthConfig struct {
	Kind         string   `yaml:"kind" validate:"required,oneof=basic bearer oauth2_client_credentials"`
	Username     string   `yaml:"username,omitempty"`
	Password     string   `yaml:"password,omitempty"`
	Token        string   `yaml:"token,omitempty"`
	ClientID     string   `yaml:"client_id,omitempty"`
	ClientSecret string   `yaml:"client_secret,omitempty"`
	TokenURL     string   `yaml:"token_url,omitempty"`
	Scopes       []string `yaml:"scopes,omitempty"`
}

// DocumentConfig selects a codec and its format-specific options
// (spec.md §4.4/§6).
type DocumentConfig struct {
	Format   string `yaml:"format" validate:"required,oneof=csv jsonl json yaml toml xml text raw"`
	Metadata document.Metadata `yaml:"metadata,omitempty"`

	Pretty   bool   `yaml:"pretty,omitempty"`   // json, xml
	Flexible bool   `yaml:"flexible,omitempty"` // csv
	Quote    string `yaml:"quote_style,omitempty" validate:"omitempty,oneof=always never necessary not_numeric"`
	Trim     string `yaml:"trim,omitempty" validate:"omitempty,oneof=all headers fields none"`

	EntryPath  string `yaml:"entry_path,omitempty"`  // xml
	IndentChar string `yaml:"indent_char,omitempty"` // xml
	IndentSize int    `yaml:"indent_size,omitempty"` // xml
}

// PaginatorConfig selects one of the four pagination strategies
// (spec.md §4.5).
type PaginatorConfig struct {
	Kind      string `yaml:"kind" validate:"required,oneof=once wildcard offset cursor"`
	Skip      int    `yaml:"skip,omitempty"`
	Limit     int    `yaml:"limit,omitempty"`
	Count     int    `yaml:"count,omitempty"`
	EntryPath string `yaml:"entry_path,omitempty"` // cursor
}

// CounterConfig fills an Offset paginator's Count at build time when the
// config omits it (spec.md §4.5's counter companion strategies).
type CounterConfig struct {
	Kind      string `yaml:"kind" validate:"required,oneof=header body scan metadata"`
	Name      string `yaml:"name,omitempty"`      // header
	EntryPath string `yaml:"entry_path,omitempty"` // body
}
