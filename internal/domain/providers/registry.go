package providers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrConfiguration = errors.New("providers: invalid configuration")

// ConfigurationError names the provider and field that made the configuration unusable.
type ConfigurationError struct {
	Provider string
	Field    string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Provider == "" && e.Field == "":
		return fmt.Sprintf("providers: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("providers: %s: %s", e.Provider, e.Reason)
	default:
		return fmt.Sprintf("providers: %s.%s: %s", e.Provider, e.Field, e.Reason)
	}
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

type SourceMode string

const (
	SourceStorage SourceMode = "storage"
	SourceAPI     SourceMode = "api"
)

// Config identifies one quote source.
type Config struct {
	ID      string
	Enabled bool
	Source  SourceMode
	APIURL  string
	APIKey  string
}

// Registry holds provider configuration in the order it was declared.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	order []string
	byID  map[string]Config
}

// NewRegistry builds a registry from already validated configs.
func NewRegistry(configs ...Config) (*Registry, error) {
	r := &Registry{byID: make(map[string]Config, len(configs))}
	for _, cfg := range configs {
		if err := validate(cfg); err != nil {
			return nil, err
		}
		if _, dup := r.byID[cfg.ID]; dup {
			return nil, &ConfigurationError{Provider: cfg.ID, Reason: "duplicate provider id"}
		}
		r.order = append(r.order, cfg.ID)
		r.byID[cfg.ID] = cfg
	}
	return r, nil
}

// ListEnabled returns enabled providers in declaration order.
func (r *Registry) ListEnabled() []Config {
	out := make([]Config, 0, len(r.order))
	for _, id := range r.order {
		if cfg := r.byID[id]; cfg.Enabled {
			out = append(out, cfg)
		}
	}
	return out
}

func (r *Registry) All() []Config {
	out := make([]Config, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *Registry) Lookup(id string) (Config, bool) {
	cfg, ok := r.byID[id]
	return cfg, ok
}

// Enabled reports whether id is configured and switched on.
func (r *Registry) Enabled(id string) (Config, bool) {
	cfg, ok := r.byID[id]
	if !ok || !cfg.Enabled {
		return Config{}, false
	}
	return cfg, true
}

type document struct {
	Providers yaml.Node `yaml:"providers"`
}

type providerDocument struct {
	Enabled     *bool   `yaml:"enabled"`
	Source      *string `yaml:"source"`
	FetchFromDB *bool   `yaml:"fetch_from_db"`
	APIURL      string  `yaml:"api_url"`
	APIKey      string  `yaml:"api_key"`
}

// LoadFile reads a YAML provider file. See Load for the format.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("providers: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a YAML document of the form
//
//	providers:
//	  acme:
//	    enabled: true
//	    source: storage   # or api; fetch_from_db: true|false is also accepted
//	    api_url: https://...
//	    api_key: ...
//
// Provider order follows the document.
func Load(r io.Reader) (*Registry, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigurationError{Reason: "empty provider configuration"}
		}
		return nil, &ConfigurationError{Reason: "parse: " + err.Error()}
	}
	node := doc.Providers
	if node.Kind == 0 {
		return nil, &ConfigurationError{Field: "providers", Reason: "missing providers section"}
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ConfigurationError{Field: "providers", Reason: "must be a mapping of provider id to settings"}
	}
	configs := make([]Config, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		id := strings.TrimSpace(node.Content[i].Value)
		var pd providerDocument
		if err := node.Content[i+1].Decode(&pd); err != nil {
			return nil, &ConfigurationError{Provider: id, Reason: "decode: " + err.Error()}
		}
		cfg, err := pd.toConfig(id)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return NewRegistry(configs...)
}

func (d providerDocument) toConfig(id string) (Config, error) {
	cfg := Config{ID: id, APIURL: strings.TrimSpace(d.APIURL), APIKey: d.APIKey}
	if d.Enabled != nil {
		cfg.Enabled = *d.Enabled
	}
	switch {
	case d.Source != nil:
		mode := SourceMode(strings.ToLower(strings.TrimSpace(*d.Source)))
		cfg.Source = mode
	case d.FetchFromDB != nil:
		cfg.Source = SourceAPI
		if *d.FetchFromDB {
			cfg.Source = SourceStorage
		}
	default:
		return Config{}, &ConfigurationError{Provider: id, Field: "source", Reason: "required (storage or api)"}
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return &ConfigurationError{Field: "id", Reason: "provider id cannot be empty"}
	}
	switch cfg.Source {
	case SourceStorage:
	case SourceAPI:
		if cfg.Enabled && cfg.APIURL == "" {
			return &ConfigurationError{Provider: cfg.ID, Field: "api_url", Reason: "required for api providers"}
		}
	default:
		return &ConfigurationError{Provider: cfg.ID, Field: "source", Reason: fmt.Sprintf("unknown source %q", cfg.Source)}
	}
	return nil
}
