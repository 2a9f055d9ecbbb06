package provider

import (
	"fmt"

	"github.com/jonesrussell/newsfuse/internal/logger"
)

// Kind identifies a provider implementation. The set of kinds is closed:
// implementations are registered here at compile time and resolved once at
// construction, never by string dispatch at call time.
type Kind string

const (
	// KindHTTP is the HTTP model-service provider.
	KindHTTP Kind = "http"
	// KindStatic is a deterministic in-process provider for tests and
	// offline runs.
	KindStatic Kind = "static"
)

// Config selects and configures a provider implementation.
type Config struct {
	// Kind selects the implementation.
	Kind Kind `yaml:"kind" mapstructure:"kind"`
	// HTTP configures the HTTP provider when Kind is "http".
	HTTP HTTPConfig `yaml:"http" mapstructure:"http"`
}

// Providers bundles the resolved capabilities handed to components.
type Providers struct {
	Embedder  Embedder
	Generator Generator
}

// Build resolves the configured provider kind into concrete capability
// objects. Unknown kinds fail here, at startup, not during processing.
func Build(cfg Config, log logger.Interface) (*Providers, error) {
	switch cfg.Kind {
	case KindHTTP:
		client := NewHTTPClient(cfg.HTTP, log)
		return &Providers{Embedder: client, Generator: client}, nil
	case KindStatic:
		static := NewStatic()
		return &Providers{Embedder: static, Generator: static}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
