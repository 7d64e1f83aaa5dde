package main

import (
	"context"
	"fmt"

	"github.com/kart-io/logger/core"

	"docqa/internal/cache"
	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/corpus"
	"docqa/internal/extract"
	"docqa/internal/generator/provider"
	"docqa/internal/logging"
	"docqa/internal/ranker"
	"docqa/internal/reranker"
	"docqa/internal/service"
	"docqa/internal/summarizer"
)

// app holds the assembled components for one command invocation.
type app struct {
	cfg      *config.AppConfig
	log      core.Logger
	pipeline *service.Pipeline
	closers  []func() error
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	var store cache.Store
	switch cfg.Cache.Type {
	case "memory", "":
		store = cache.NewMemoryStore()
	case "redis":
		rc := cfg.Cache.Redis
		rs, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:      rc.Addr,
			Password:  rc.Password,
			DB:        rc.DB,
			KeyPrefix: rc.KeyPrefix,
			TTL:       rc.TTL(),
		})
		if err != nil {
			return nil, err
		}
		store = rs
	default:
		return nil, fmt.Errorf("unknown cache: %s", cfg.Cache.Type)
	}
	a.closers = append(a.closers, store.Close)
	memo := cache.NewMemo(store, log)

	gen, release, err := provider.New(ctx, cfg.Generator, log)
	if err != nil {
		_ = a.close()
		return nil, err
	}
	a.closers = append(a.closers, release)

	src := corpus.NewDirectory(cfg.Corpus.Dir)
	ext := extract.NewExtractor(src, memo, log)
	sentences := chunker.NewSentenceChunker(cfg.Chunker.MaxWordsPerChunk)
	chk := chunker.NewMemoized(sentences, memo)

	a.pipeline = service.NewPipeline(service.Deps{
		Corpus:    src,
		Extractor: ext,
		Chunker:   chk,
		Retriever: ranker.NewRanker(ext, chk, cfg.Retrieval.TopK, log),
		Reranker:  reranker.New(cfg.Reranker, log),
		Generator: gen,
		Outliner:  summarizer.NewExtractive(sentences),
	}, service.Options{
		CorpusLabel: cfg.Corpus.Dir,
		MinScore:    cfg.Retrieval.MinScore,
	}, log)

	log.Debugw("pipeline assembled",
		"corpus", cfg.Corpus.Dir,
		"cache", cfg.Cache.Type,
		"provider", cfg.Generator.Provider,
		"degraded", gen.Degraded(),
	)
	return a, nil
}

func (a *app) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	_ = a.log.Flush()
	return first
}
