package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/cache"
	"github.com/kevinraymond/homeschool/internal/config"
	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/llm"
	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/store"
	"github.com/kevinraymond/homeschool/internal/tutor"
)

// env holds what most commands need: configuration, a logger and, once
// opened, the store and response cache.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.Store
	cache *cache.Cache
}

// loadEnv reads configuration and builds the logger. It does not touch the
// database.
func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("curriculum"); dir != "" {
		cfg.Curriculum.Dir = dir
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}

	log, err := logger.New(cfg.LoggerOptions())
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &env{cfg: cfg, log: log}, nil
}

// openEnv is loadEnv plus an open store.
func openEnv(cmd *cobra.Command) (*env, error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := e.cfg.StorePath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	e.store = s
	return e, nil
}

func (e *env) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
	if e.store != nil {
		e.store.Close()
	}
	e.log.Sync()
}

func (e *env) catalog() (*curriculum.Catalog, error) {
	c, err := curriculum.LoadCatalog(e.cfg.Curriculum.Dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (e *env) eventRepo() store.EventRepo {
	if e.store == nil {
		return nil
	}
	return e.store.EventRepo()
}

// responseCache connects to redis when cache.redis_url is set. A cache that
// cannot be reached is logged and skipped.
func (e *env) responseCache(ctx context.Context) llm.Cache {
	if e.cache != nil {
		return e.cache
	}
	if e.cfg.Cache.RedisURL == "" {
		return nil
	}
	c, err := cache.New(ctx, e.cfg.Cache.RedisURL)
	if err != nil {
		e.log.Warn("response cache unavailable", "error", err)
		return nil
	}
	e.cache = c
	return c
}

func (e *env) tutor(ctx context.Context) (tutor.Tutor, error) {
	opts := []tutor.Option{
		tutor.WithLogger(e.log),
		tutor.WithEventRepo(e.eventRepo()),
	}
	if c := e.responseCache(ctx); c != nil {
		opts = append(opts, tutor.WithCache(c, e.cfg.Cache.TTL))
	}
	return tutor.New(ctx, e.cfg.TutorConfig(), opts...)
}

// llmGenerator builds the topic problem generator on the hosted provider.
func (e *env) llmGenerator(ctx context.Context) (*problemgen.LLMGenerator, error) {
	p, err := llm.NewProvider(ctx, e.cfg.LLMConfig(), llm.Options{
		EventRepo: e.eventRepo(),
		Logger:    e.log,
		Cache:     e.responseCache(ctx),
		CacheTTL:  e.cfg.Cache.TTL,
	})
	if err != nil {
		return nil, err
	}
	return problemgen.NewLLMGenerator(p, problemgen.DefaultConfig()), nil
}
