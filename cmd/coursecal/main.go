package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/config"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/ics"
	appLog "github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/log"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/model"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/schedule"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/term"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	coursePath string
	outPath    string
	mode       string
	verbose    bool
}

func main() {
	flags := parseFlags()
	if flags.verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("coursecal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	cal := loadCalendar(ctx, conf)

	// One-shot mode: expand a course definition file straight to an .ics
	// and exit. No HTTP server, no cron.
	if flags.coursePath != "" {
		if err := runOnce(flags, conf, cal); err != nil {
			appLog.Error("export failed", err, "course", flags.coursePath)
			os.Exit(1)
		}
		return
	}

	srv := web.NewServer(conf, cal)

	// Periodic refresh of the terms file and holiday feeds. New calendars
	// replace the server's snapshot wholesale.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(conf.RefreshCron, func() {
		srv.SetCalendar(loadCalendar(ctx, conf))
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	httpSrv := &http.Server{
		Addr:              conf.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("http shutdown failed", err)
		}
	}()

	appLog.Info("starting HTTP server",
		"listen", "http://"+conf.Listen,
		"refresh", conf.RefreshCron,
		"feeds", len(conf.Feeds),
	)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLog.Error("http server failed", err)
		os.Exit(1)
	}

	appLog.Info("coursecal exiting")
}

// loadCalendar assembles the effective term calendar: builtin terms,
// overridden by the terms file, enriched by any configured holiday
// feeds. Failures degrade to whatever loaded successfully; the engine
// always has a working calendar.
func loadCalendar(ctx context.Context, conf *config.Config) *term.Calendar {
	cal := term.BuiltinCalendar()

	fileTerms, err := term.LoadFile(conf.TermsFile)
	if err != nil {
		appLog.Error("terms file load failed, using builtin terms", err, "terms_file", conf.TermsFile)
	}
	for _, t := range fileTerms {
		cal = cal.WithTerm(t)
	}

	if len(conf.Feeds) == 0 {
		return cal
	}

	sources := make([]term.FeedSource, 0, len(conf.Feeds))
	for _, fc := range conf.Feeds {
		if fc.URL == "" || fc.Term == "" {
			continue
		}
		id := fc.ID
		if id == "" {
			id = fc.Term
		}
		sources = append(sources, term.FeedSource{ID: id, Term: fc.Term, URL: fc.URL})
	}

	fetcher := term.NewFeedFetcher(conf.CacheDir)
	results, errs := fetcher.FetchAll(ctx, sources)
	if len(errs) > 0 {
		appLog.Warn("some holiday feeds failed to load", "failed", len(errs), "loaded", len(results))
	}
	for _, res := range results {
		cal = cal.WithHolidays(res.Source.Term, res.Entries)
	}

	return cal
}

// runOnce reads a course definition JSON file and writes its .ics.
func runOnce(flags flagConfig, conf *config.Config, cal *term.Calendar) error {
	data, err := os.ReadFile(flags.coursePath)
	if err != nil {
		return err
	}

	var course model.CourseDefinition
	if err := json.Unmarshal(data, &course); err != nil {
		return err
	}
	if course.ReminderMinutes <= 0 {
		course.ReminderMinutes = conf.DefaultReminderMinutes
	}

	opts := ics.BuildOptions{
		CalendarName: course.ClassName,
		Timestamp:    time.Now(),
	}

	var (
		out      []byte
		warnings []schedule.Warning
	)
	switch flags.mode {
	case "recurring":
		out, warnings, err = ics.SerializeRecurring(course, cal, opts)
	default:
		var result schedule.Result
		result, err = schedule.Generate(course, cal)
		if err == nil {
			warnings = result.Warnings
			out, err = ics.Serialize(result.Events, opts)
		}
	}
	if err != nil {
		return err
	}

	for _, warn := range warnings {
		appLog.Warn("skipped malformed slot", "weekday", warn.Weekday, "label", warn.Label, "reason", warn.Reason)
	}

	outPath := flags.outPath
	if outPath == "" {
		outPath = ics.Filename(course.ClassName)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return err
	}

	appLog.Info("wrote calendar file", "path", outPath, "bytes", len(out))
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/coursecal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.coursePath, "course", "", "Course definition JSON; expand it to an .ics file and exit")
	flag.StringVar(&cfg.outPath, "out", "", "Output path for -course mode (default <className>.ics)")
	flag.StringVar(&cfg.mode, "mode", "expanded", "Export mode for -course mode: expanded or recurring")
	flag.BoolVar(&cfg.verbose, "v", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
