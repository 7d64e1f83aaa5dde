package reranker

import (
	"github.com/kart-io/logger/core"

	"docqa/internal/config"
	"docqa/internal/domain"
)

// New builds the configured strategy. Without a credential the refinement
// stage is an identity pass-through.
func New(cfg config.RerankerConfig, log core.Logger) domain.Reranker {
	if cfg.Type != "apininjas" {
		return Noop{}
	}
	key := cfg.APIKey()
	if key == "" {
		log.Infow("similarity refinement disabled, no credential", "env", cfg.APIKeyEnv)
		return Noop{}
	}
	return NewNinjas(NinjasConfig{URL: cfg.URL, APIKey: key, Timeout: cfg.Timeout()}, log)
}
