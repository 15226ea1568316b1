package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/codec"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/company"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/config"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/fixture"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/macro"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/runlog"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/service"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/stages"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/websearch"
)

// #region runtime

// runtime is the wired service plus everything that must be closed with it.
type runtime struct {
	svc     *service.Service
	store   *runlog.Store
	fixture *fixture.Fixture
	closers []func() error
}

func (r *runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

// openRuntime validates cfg and wires collaborators, the run log and the
// service. The caller must Close the result.
func openRuntime(cfg *config.Config, logger *zap.Logger) (*runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rt := &runtime{}
	deps, err := rt.collaborators(cfg, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}

	opts := []service.Option{service.WithLogger(logger)}
	if cfg.RunLog.Path != "" {
		store, err := openStore(cfg.RunLog.Path)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.store = store
		rt.closers = append(rt.closers, store.Close)
		opts = append(opts, service.WithStore(store))
	}
	rt.svc = service.New(deps, opts...)
	return rt, nil
}

func openStore(path string) (*runlog.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create run log dir: %w", err)
		}
	}
	store, err := runlog.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open run log %s: %w", path, err)
	}
	return store, nil
}

// #endregion runtime

// #region collaborators

func (r *runtime) collaborators(cfg *config.Config, logger *zap.Logger) (stages.Deps, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout()}

	if cfg.Search.Provider == "fixture" || cfg.Macro.Provider == "fixture" {
		fx, err := fixture.Load(cfg.Fixture.Path)
		if err != nil {
			return stages.Deps{}, err
		}
		r.fixture = fx
	}

	var remote *codec.CollaboratorClient
	if cfg.Search.Provider == "grpc" || cfg.Macro.Provider == "grpc" || cfg.Collaborator.Summarize {
		c, err := codec.NewCollaboratorClient(cfg.Collaborator.Addr, cfg.CollaboratorTimeout(), logger)
		if err != nil {
			return stages.Deps{}, err
		}
		remote = c
		r.closers = append(r.closers, c.Close)
	}

	var search websearch.Searcher
	switch cfg.Search.Provider {
	case "grpc":
		search = remote
	case "fixture":
		search = r.fixture
	default:
		s, err := websearch.Open(websearch.Config{
			Provider:       cfg.Search.Provider,
			TavilyAPIKey:   cfg.Search.TavilyAPIKey,
			TavilyEndpoint: cfg.Search.TavilyEndpoint,
			DDGEndpoint:    cfg.Search.DDGEndpoint,
			Timeout:        cfg.SearchTimeout(),
		}, nil, logger)
		if err != nil {
			return stages.Deps{}, err
		}
		search = s
	}

	var indicators macro.Provider
	switch cfg.Macro.Provider {
	case "grpc":
		indicators = remote
	case "fixture":
		indicators = r.fixture
	case "disabled":
		indicators = macro.Disabled{}
	default:
		indicators = macro.NewWorldBank(cfg.Macro.Endpoint, httpClient, logger)
	}

	var summarizer company.Summarizer
	switch {
	case cfg.Collaborator.Summarize:
		summarizer = remote
	case r.fixture != nil && r.fixture.Summary != nil:
		summarizer = r.fixture
	}

	return stages.Deps{
		Search:       search,
		Macro:        macro.NewCache(indicators),
		Company:      company.NewBuilder(httpClient, summarizer, logger),
		ReferenceDir: cfg.References.Dir,
		PerCountry:   cfg.Concurrency.PerCountry,
		Logger:       logger,
	}, nil
}

// #endregion collaborators
