package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kart-io/logger/core"
)

// DefaultNinjasURL is the API Ninjas text-similarity endpoint.
const DefaultNinjasURL = "https://api.api-ninjas.com/v1/textsimilarity"

// NinjasConfig configures the API Ninjas client.
type NinjasConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Ninjas reorders chunks by the API Ninjas text-similarity score.
// Calls are never retried; a failed call scores the chunk 0.
type Ninjas struct {
	url     string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	log     core.Logger
}

func NewNinjas(cfg NinjasConfig, log core.Logger) *Ninjas {
	if cfg.URL == "" {
		cfg.URL = DefaultNinjasURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &Ninjas{
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		client:  &http.Client{},
		log:     log,
	}
}

func (n *Ninjas) Name() string { return "apininjas" }

func (n *Ninjas) Rerank(ctx context.Context, query string, chunks []string) []string {
	return sortBySimilarity(ctx, query, chunks, n.Similarity, func(i int, err error) {
		n.log.Warnw("similarity call failed, scoring chunk 0", "chunk", i, "error", err.Error())
	})
}

// Similarity asks the service how similar query and candidate are.
func (n *Ninjas) Similarity(ctx context.Context, query, candidate string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	data, err := json.Marshal(map[string]string{"text_1": query, "text_2": candidate})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", n.apiKey)
	resp, err := n.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("%w: textsimilarity POST failed: %s", ErrUnavailable, resp.Status)
	}
	var out struct {
		Similarity *float64 `json:"similarity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if out.Similarity == nil {
		return 0, fmt.Errorf("%w: missing similarity", ErrInvalidResponse)
	}
	return *out.Similarity, nil
}
