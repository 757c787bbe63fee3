package analyzer

import (
	"fmt"

	"crack-go/internal/config"
)

// New builds the analyzer selected by cfg.Kind.
func New(cfg config.AnalyzerConfig) (Analyzer, error) {
	switch cfg.Kind {
	case "", "stub":
		return NewStubAnalyzer(nil), nil
	case "remote":
		return NewRemoteAnalyzer(cfg.Endpoint, cfg.APIKey, cfg.GetTimeout(), cfg.MaxConcurrency), nil
	default:
		return nil, fmt.Errorf("unsupported analyzer kind: %q", cfg.Kind)
	}
}
