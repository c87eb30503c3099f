package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"security-suite/internal/classify"
	"security-suite/internal/config"
	"security-suite/internal/engine"
	"security-suite/internal/model"
	"security-suite/internal/parser"
	"security-suite/internal/router"
	"security-suite/internal/scan"
	"security-suite/internal/session"
)

var (
	configFile string
	logLevel   string
	logFile    string
	listenAddr string
	ticks      int
	seed       uint64
)

const shutdownTimeout = 5 * time.Second

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "security-suite",
		Short: "A demo security suite: file threat scanning and a simulated firewall",
		Long: `security-suite serves a dashboard API over a simulated firewall and a
file threat scanner. Traffic is synthetic and classified against a small
rule set; files are classified by a language model or a local heuristic.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with live traffic monitoring",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides config)")

	scanCmd := &cobra.Command{
		Use:   "scan PATH...",
		Short: "Scan files and print one CSV row per file",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScan,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate synthetic traffic against the rule set and print the log",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	simulateCmd.Flags().IntVarP(&ticks, "ticks", "n", 10, "Number of connections to generate")
	simulateCmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for a reproducible sequence (0: random)")

	rootCmd.AddCommand(serveCmd, scanCmd, simulateCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// suite is the wired set of components behind one session.
type suite struct {
	rules   *engine.RuleStore
	log     *engine.TrafficLog
	sim     *engine.Simulator
	scanner *scan.Orchestrator
	session *session.Session
}

// setup loads the configuration, installs the default logger and wires
// the components.
func setup(ctx context.Context, simOpts ...engine.SimulatorOption) (*config.Config, *suite, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.File)
	slog.SetDefault(logger)

	slog.Info("Loading rules...", "provider", cfg.Firewall.Provider)
	rules, err := loadRules(cfg.Firewall.Provider, cfg.Firewall.RulesFile, cfg.Firewall.DSN)
	if err != nil {
		slog.Error("Failed to load rules", "error", err)
		return nil, nil, err
	}
	slog.Info("Successfully loaded rules", "count", len(rules))

	catalog, err := loadCatalog(cfg.Firewall.CatalogFile)
	if err != nil {
		slog.Error("Failed to load traffic catalog", "path", cfg.Firewall.CatalogFile, "error", err)
		return nil, nil, err
	}

	classifier, err := classify.New(ctx, classify.Config{
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		CacheTTL: cfg.AI.CacheTTL,
	}, logger)
	if err != nil {
		slog.Error("Failed to create classifier", "error", err)
		return nil, nil, err
	}

	s := &suite{
		rules: engine.NewRuleStore(rules),
		log:   engine.NewTrafficLog(engine.DefaultLogCapacity),
	}
	opts := append([]engine.SimulatorOption{
		engine.WithCatalog(catalog),
		engine.WithLogger(logger),
	}, simOpts...)
	s.sim = engine.NewSimulator(s.rules, s.log, opts...)
	s.scanner = scan.NewOrchestrator(classifier, scan.WithDelay(cfg.Scan.Delay), scan.WithLogger(logger))
	s.session = session.New(s.rules, s.log, s.sim, s.scanner, logger)
	return cfg, s, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- 1. Wire components ---
	cfg, s, err := setup(ctx)
	if err != nil {
		return err
	}
	defer s.session.Close()
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}

	// --- 2. Start monitoring ---
	s.session.SetFirewallEnabled(cfg.Firewall.Enabled)

	// --- 3. Serve until interrupted ---
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router.Configure(s.session, slog.Default(), cfg.Debug),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting HTTP server", "listen", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Websocket streams end when the session closes its subscribers.
		s.session.Close()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		return err
	}
	slog.Info("Server stopped")
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	_, s, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer s.session.Close()

	files := make([]scan.File, 0, len(args))
	for _, path := range args {
		f, err := scan.FromPath(path)
		if err != nil {
			slog.Error("Failed to open file", "path", path, "error", err)
			return err
		}
		files = append(files, f)
	}

	report, err := s.session.Scan(cmd.Context(), files)
	if err != nil {
		return err
	}
	if err := writeScanResults(cmd.OutOrStdout(), report.Results); err != nil {
		return err
	}
	slog.Info("Scan summary",
		"files_scanned", report.Summary.FilesScanned,
		"threats_found", report.Summary.ThreatsFound,
		"scan_time", report.Summary.ScanTime,
	)
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if ticks < 0 {
		return fmt.Errorf("ticks cannot be negative: %d", ticks)
	}
	var opts []engine.SimulatorOption
	if seed != 0 {
		opts = append(opts, engine.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}
	_, s, err := setup(cmd.Context(), opts...)
	if err != nil {
		return err
	}
	defer s.session.Close()

	for i := 0; i < ticks; i++ {
		s.sim.Tick()
	}
	slog.Info("Simulation complete",
		"ticks", ticks,
		"retained", s.log.Len(),
		"blocked", s.log.CountStatus(model.Blocked),
		"needs_review", s.log.CountStatus(model.NeedsReview),
	)
	return writeLogEntries(cmd.OutOrStdout(), s.log.Entries())
}

func writeScanResults(w io.Writer, results []model.ScanResult) error {
	out := csv.NewWriter(w)
	out.Write([]string{"file", "size", "is_threat", "threat_type", "recommendation"})
	for _, r := range results {
		out.Write([]string{
			r.File.Name,
			strconv.FormatInt(r.File.Size, 10),
			strconv.FormatBool(r.IsThreat),
			r.ThreatType,
			r.Recommendation,
		})
	}
	out.Flush()
	return out.Error()
}

func writeLogEntries(w io.Writer, entries []model.NetworkLogEntry) error {
	out := csv.NewWriter(w)
	out.Write([]string{"timestamp", "app", "ip", "port", "service", "protocol", "direction", "status", "rule_id"})
	for _, e := range entries {
		ruleID := ""
		if e.RuleID != 0 {
			ruleID = strconv.Itoa(e.RuleID)
		}
		out.Write([]string{
			e.Timestamp,
			e.AppName,
			e.IP,
			strconv.Itoa(e.Port),
			e.Service,
			string(e.Protocol),
			string(e.Direction),
			string(e.Status),
			ruleID,
		})
	}
	out.Flush()
	return out.Error()
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// The logger isn't set up yet, so a failed open just falls back
		// to stderr.
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}

func loadRules(provider, rulesPath, dsn string) ([]model.FirewallRule, error) {
	switch strings.ToLower(provider) {
	case "", "builtin":
		return parser.BuiltinRules(), nil
	case "fortigate":
		if rulesPath == "" {
			return nil, fmt.Errorf("rules file path must be provided for fortigate provider")
		}
		file, err := os.Open(rulesPath)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		p := parser.NewFortiGateParser(file)
		if err := p.Parse(); err != nil {
			return nil, err
		}
		return p.Rules, nil
	case "mariadb":
		if dsn == "" {
			return nil, fmt.Errorf("database connection string must be provided for mariadb provider")
		}
		p, err := parser.NewMariaDBParser(dsn)
		if err != nil {
			return nil, err
		}
		defer p.Close()
		if err := p.Parse(); err != nil {
			return nil, err
		}
		return p.Rules, nil
	default:
		return nil, fmt.Errorf("unknown rule provider: %s", provider)
	}
}

func loadCatalog(path string) (engine.Catalog, error) {
	base := engine.DefaultCatalog()
	if path == "" {
		return base, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return base, err
	}
	defer f.Close()
	return parser.ParseCatalog(f, base)
}
