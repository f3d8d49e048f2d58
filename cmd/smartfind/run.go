package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/entrhq/smartfind/pkg/config"
	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/driver/playwright"
	"github.com/entrhq/smartfind/pkg/driver/rod"
	"github.com/entrhq/smartfind/pkg/llm"
	"github.com/entrhq/smartfind/pkg/logging"
	"github.com/entrhq/smartfind/pkg/markup"
	"github.com/entrhq/smartfind/pkg/report"
	"github.com/entrhq/smartfind/pkg/resolver"
	"github.com/entrhq/smartfind/pkg/suggest"
	"github.com/entrhq/smartfind/pkg/worker"
)

// outcome is what happened to one element.
type outcome struct {
	Element  string        `json:"element"`
	Worker   string        `json:"worker"`
	Kind     string        `json:"outcome"`
	Locator  string        `json:"locator,omitempty"`
	Healed   bool          `json:"healed"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// run resolves the selected elements and returns how many failed.
//
//nolint:gocyclo
func run(ctx context.Context, cli *CLIConfig, out io.Writer) (int, error) {
	if err := config.LoadEnv(cli.EnvFile); err != nil {
		return 0, err
	}

	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return 0, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.LogDir != "" {
		if err := logging.SetLogDirectory(cfg.LogDir); err != nil {
			return 0, err
		}
	}
	logger, err := logging.NewLogger("smartfind")
	if err != nil {
		return 0, err
	}
	defer logger.Close()

	name, project, err := cfg.ResolveProject(cli.Project)
	if err != nil {
		return 0, err
	}
	if cli.URL != "" {
		p := *project
		p.BaseURL = cli.URL
		project = &p
	}

	elements, err := project.Select(cli.Patterns())
	if err != nil {
		return 0, err
	}
	if len(elements) == 0 {
		return 0, fmt.Errorf("project %q has no elements matching %q", name, cli.Match)
	}

	if cli.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cli.Timeout)
		defer cancel()
	}

	client := buildSuggestionClient(cfg, cli, logger)

	resultsDir := cli.ResultsDir
	if resultsDir == "" {
		resultsDir = cfg.ResultsDir
	}
	sink, err := report.NewDirSink(resultsDir, logger)
	if err != nil {
		return 0, err
	}

	r := resolver.New(
		resolver.WithSuggester(client),
		resolver.WithSuggestionLog(suggest.NewFileLog(cfg.SuggestionLog)),
		resolver.WithReportSink(sink),
		resolver.WithLogger(logger),
	)

	factory, shutdown, err := sessionFactory(project, cli.Workers, logger)
	if err != nil {
		return 0, err
	}
	defer shutdown()

	if cfg.LLM.CleanMarkup {
		factory = cleaningFactory(factory, cfg.LLM.MaxMarkupChars, logger)
	}

	logger.Infof("project %s: resolving %d elements on %d workers (session %s)",
		name, len(elements), cli.Workers, logger.SessionID())

	outcomes := make([]outcome, len(elements))
	tasks := make([]worker.Task, len(elements))
	for i, el := range elements {
		i, el := i, el
		outcomes[i] = outcome{Element: el.Name}
		tasks[i] = worker.Task{
			Name: el.Name,
			Run: func(ctx context.Context, wc *worker.Context) error {
				res, err := wc.Resolve(ctx, el.Candidates)
				if err != nil {
					return err
				}
				outcomes[i].Locator = res.Locator.String()
				outcomes[i].Healed = res.Healed
				return nil
			},
		}
	}

	pool := worker.NewPool(cli.Workers, factory, r, worker.WithSink(sink), worker.WithLogger(logger))
	results, err := pool.Run(ctx, tasks)
	if err != nil {
		return 0, err
	}

	failed := 0
	for i, res := range results {
		o := &outcomes[i]
		o.Worker = res.Worker
		o.Duration = res.Duration
		o.Kind = resolver.KindOf(res.Err).String()
		if res.Err != nil {
			o.Error = res.Err.Error()
			failed++
		}
	}

	fmt.Fprintln(out, renderOutcomes(name, outcomes))

	if err := report.AttachCSV(sink, "outcomes", outcomeRows(outcomes)); err != nil {
		logger.Warnf("failed to attach outcome table: %v", err)
	}
	if err := report.AttachJSON(sink, "outcomes json", outcomes); err != nil {
		logger.Warnf("failed to attach outcomes: %v", err)
	}
	if err := sink.WriteIndex(); err != nil {
		logger.Warnf("failed to write attachment index: %v", err)
	}

	logger.Infof("%d of %d elements resolved, attachments in %s", len(outcomes)-failed, len(outcomes), sink.Dir())
	return failed, nil
}

// buildSuggestionClient never fails: without a provider the client reports
// the missing key when healing is first needed.
func buildSuggestionClient(cfg *config.Config, cli *CLIConfig, logger *logging.Logger) *suggest.Client {
	opts := []suggest.Option{
		suggest.WithTimeout(cfg.LLM.SuggestTimeout),
		suggest.WithLogger(logger),
	}

	var provider llm.Provider
	p, err := cfg.BuildProvider(config.LLMOverrides{Model: cli.Model, BaseURL: cli.BaseURL, APIKey: cli.APIKey})
	switch {
	case errors.Is(err, suggest.ErrMissingAPIKey):
		logger.Warnf("locator healing unavailable: %v", err)
	case err != nil:
		logger.Errorf("locator healing unavailable: %v", err)
	default:
		provider = p
		tokenizer, err := markup.NewTokenizer(p.GetModel())
		if err != nil {
			logger.Warnf("token counting disabled: %v", err)
		} else {
			opts = append(opts, suggest.WithTokenCounter(tokenizer))
		}
	}

	return suggest.NewClient(provider, opts...)
}

// sessionFactory returns the project's driver as a worker session factory
// and a function releasing whatever the driver holds.
func sessionFactory(project *config.Project, workers int, logger *logging.Logger) (worker.SessionFactory, func(), error) {
	switch project.DriverName() {
	case config.DriverRod:
		opts := rod.Options{
			RemoteURL: project.RemoteURL,
			Headless:  project.IsHeadless(),
			Width:     project.Viewport.Width,
			Height:    project.Viewport.Height,
			BaseURL:   project.BaseURL,
		}
		return rod.Factory(opts, logger), func() {}, nil

	default:
		opts := project.SessionOptions()
		browser, err := playwright.NormalizeBrowser(opts.Browser)
		if err != nil {
			return nil, nil, err
		}

		manager := playwright.NewSessionManager(logger)
		if workers > playwright.DefaultMaxSessions {
			manager.SetMaxSessions(workers)
		}
		if err := manager.Initialize(browser); err != nil {
			return nil, nil, err
		}
		shutdown := func() {
			if err := manager.Shutdown(); err != nil {
				logger.Warnf("playwright shutdown: %v", err)
			}
		}
		return manager.Factory(opts), shutdown, nil
	}
}

func cleaningFactory(next worker.SessionFactory, maxChars int, logger *logging.Logger) worker.SessionFactory {
	return func(ctx context.Context, name string) (driver.Session, error) {
		s, err := next(ctx, name)
		if err != nil {
			return nil, err
		}
		return markup.NewCleaningSession(s, maxChars, logger), nil
	}
}
