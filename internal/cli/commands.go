package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video_trend_ranker/config"
	"video_trend_ranker/internal/domain"
)

// state converts view flags into a query
func (f QueryFlags) state() (domain.QueryState, error) {
	state := domain.DefaultQueryState(time.Now())
	state.Search = f.Search

	filter, err := domain.ParseGradeFilter(f.Filter)
	if err != nil {
		return state, err
	}
	state.Filter = filter

	if state.Sort.Key, err = domain.ParseSortKey(f.Sort); err != nil {
		return state, err
	}
	direction, err := domain.ParseSortDirection(f.Direction)
	if err != nil {
		return state, err
	}
	state.Sort.Direction = direction
	return state, nil
}

func (f QueryFlags) limit(videos []domain.EnrichedVideo) []domain.EnrichedVideo {
	if f.Limit > 0 && len(videos) > f.Limit {
		return videos[:f.Limit]
	}
	return videos
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Execute runs the trending command.
func (c *TrendingCommand) Execute(args []string) error {
	state, err := c.state()
	if err != nil {
		return err
	}

	a, err := c.env.open(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := interruptContext()
	defer cancel()

	if _, err := a.collection.Refresh(ctx, domain.FetchRequest{Mode: domain.FetchModeTrending, RegionCode: c.Region}); err != nil {
		return err
	}
	return printVideos(c.env.out, c.limit(a.collection.Query(state)), a.collection.Stats(), c.env.globals.JSON)
}

// Execute runs the search command.
func (c *SearchCommand) Execute(args []string) error {
	state, err := c.state()
	if err != nil {
		return err
	}
	dateRange, err := domain.ParseDateRange(c.StartDate, c.EndDate, time.Local)
	if err != nil {
		return err
	}

	a, err := c.env.open(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := interruptContext()
	defer cancel()

	req := domain.FetchRequest{
		Mode:      domain.FetchModeSearch,
		Keyword:   c.Keyword,
		DateRange: dateRange,
	}
	if _, err := a.collection.Refresh(ctx, req); err != nil {
		return err
	}
	return printVideos(c.env.out, c.limit(a.collection.Query(state)), a.collection.Stats(), c.env.globals.JSON)
}

// Execute runs the analyze command.
func (c *AnalyzeCommand) Execute(args []string) error {
	a, err := c.env.open(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := interruptContext()
	defer cancel()

	req := domain.FetchRequest{Mode: domain.FetchModeTrending, RegionCode: c.Region}
	if c.Keyword != "" {
		req = domain.FetchRequest{Mode: domain.FetchModeSearch, Keyword: c.Keyword}
	}
	if _, err := a.collection.Refresh(ctx, req); err != nil {
		return err
	}

	analysis, err := a.analysis.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("trend analysis failed: %w", err)
	}
	return printAnalysis(c.env.out, analysis, c.env.globals.JSON)
}

// Execute runs the credential set command.
func (c *CredentialSetCommand) Execute(args []string) error {
	a, err := c.env.open(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.credentials.Set(c.Args.APIKey); err != nil {
		return err
	}
	masked, err := a.credentials.Masked()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.env.out, "API key saved (%s)\n", masked)
	return err
}

// Execute runs the credential show command.
func (c *CredentialShowCommand) Execute(args []string) error {
	a, err := c.env.open(true)
	if err != nil {
		return err
	}
	defer a.Close()

	masked, err := a.credentials.Masked()
	if err != nil {
		return err
	}
	if masked == "" {
		_, err = fmt.Fprintln(c.env.out, "No API key configured")
		return err
	}
	_, err = fmt.Fprintln(c.env.out, masked)
	return err
}

// Execute runs the credential clear command.
func (c *CredentialClearCommand) Execute(args []string) error {
	a, err := c.env.open(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.credentials.Clear(); err != nil {
		return err
	}
	if a.credentials.HasKey() {
		_, err = fmt.Fprintln(c.env.out, "Stored API key removed; the key from config or YOUTUBE_API_KEY is still active")
		return err
	}
	_, err = fmt.Fprintln(c.env.out, "API key removed")
	return err
}


// Execute runs the config set command.
func (c *ConfigSetCommand) Execute(args []string) error {
	manager := config.GetManager()
	if c.env.globals.Config != "" {
		manager = config.NewManager(c.env.globals.Config)
	}
	if _, err := manager.Load(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := manager.Update(map[string]interface{}{c.Args.Key: c.Args.Value}); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.env.out, "%s updated in %s\n", c.Args.Key, manager.Path())
	return err
}
