package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/exitsurvey/internal/analytics"
	"github.com/pavelanni/exitsurvey/internal/auth"
	"github.com/pavelanni/exitsurvey/internal/feedback"
	"github.com/pavelanni/exitsurvey/internal/handler"
	appI18n "github.com/pavelanni/exitsurvey/internal/i18n"
	"github.com/pavelanni/exitsurvey/internal/metrics"
	"github.com/pavelanni/exitsurvey/internal/model"
	"github.com/pavelanni/exitsurvey/internal/report"
	"github.com/pavelanni/exitsurvey/internal/roster"
	"github.com/pavelanni/exitsurvey/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "exitsurvey",
		Short: "Student exit survey collection and reporting",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd(), reportCmd(), importCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `exitsurvey --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP survey server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "exitsurvey.db", "SQLite database path")
	f.StringP("lang", "l", "en", "Default language (en, ta)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /survey)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("institution", "", "Institution name printed on reports")
	f.String("term", "", "Academic term printed on reports (e.g. 2025-2026)")
	f.Bool("metrics", true, "Expose Prometheus metrics on /metrics")
	addLogFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export roster, submissions and analytics as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "exitsurvey.db", "SQLite database path")
	f.String("term", "", "Academic term included in the export")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a department report as PDF or CSV",
		RunE:  runReport,
	}
	f := cmd.Flags()
	f.String("db", "exitsurvey.db", "SQLite database path")
	f.String("dept", "", "Department code (CIVIL, MECH, EEE, ECE, CSE, IT) (required)")
	f.StringP("output", "o", "", "Output file; .csv writes CSV, anything else PDF (default <dept>.pdf)")
	f.StringP("lang", "l", "en", "Report language (en, ta)")
	f.String("institution", "", "Institution name printed on the report")
	f.String("term", "", "Academic term printed on the report")
	addLogFlags(cmd)

	_ = cmd.MarkFlagRequired("dept")

	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <roster.csv>",
		Short: "Add students from a CSV roster",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	f := cmd.Flags()
	f.String("db", "exitsurvey.db", "SQLite database path")
	addLogFlags(cmd)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXITSURVEY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("exitsurvey")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/exitsurvey")
	v.AddConfigPath("/etc/exitsurvey")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var m *metrics.Metrics
	var loginObserver auth.Observer
	var onSubmit func(model.FeedbackSubmission)
	if v.GetBool("metrics") {
		m = metrics.New()
		loginObserver = m
		onSubmit = m.SubmissionRecorded
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.ServerConfig{
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		Institution:   v.GetString("institution"),
		Term:          v.GetString("term"),
	}

	h, err := handler.New(handler.Deps{
		Gate:      auth.NewGate(db, loginObserver),
		Feedback:  feedback.NewService(db, feedback.NewRecorder(db, onSubmit)),
		Analytics: analytics.NewService(db),
		Importer:  roster.NewImporter(db),
		Roster:    db,
		Metrics:   m,
	}, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(appI18n.Middleware)

	if basePath != "" {
		r.Route(basePath, h.Routes)
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", addr,
			"lang", lang,
			"base_path", basePath,
			"metrics", m != nil,
			"institution", cfg.Institution,
			"term", cfg.Term,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// surveyExport is the document written by the export command.
type surveyExport struct {
	model.SurveyExport
	Analytics analytics.Summary `json:"analytics"`
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	exp, err := db.Export(ctx)
	if err != nil {
		return fmt.Errorf("export survey: %w", err)
	}
	exp.Term = v.GetString("term")

	students, err := db.Students(ctx)
	if err != nil {
		return fmt.Errorf("load students: %w", err)
	}
	doc := surveyExport{
		SurveyExport: exp,
		Analytics:    analytics.DepartmentAnalytics(students, exp.Submissions),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	// Ensure trailing newline.
	data = append(data, '\n')

	if err := writeOutput(v.GetString("output"), data); err != nil {
		return err
	}
	slog.Info("exported survey", "students", len(exp.Students), "submissions", len(exp.Submissions))
	return nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dept, ok := model.ParseDepartment(v.GetString("dept"))
	if !ok {
		return fmt.Errorf("unknown department %q", v.GetString("dept"))
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rep, err := analytics.NewService(db).Report(ctx, dept)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	outPath := v.GetString("output")
	if outPath == "" {
		outPath = strings.ToLower(string(dept)) + ".pdf"
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(outPath), ".csv") {
		data, err = report.CSV(rep)
	} else {
		data, err = report.PDF(rep, report.Options{
			Institution: v.GetString("institution"),
			Term:        v.GetString("term"),
			Date:        time.Now(),
			T:           appI18n.Translator(appI18n.WithLocalizer(ctx, appI18n.NewLocalizer(lang))),
		})
	}
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if err := writeOutput(outPath, data); err != nil {
		return err
	}
	slog.Info("wrote report", "department", dept, "responses", rep.Responses, "path", outPath)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	students, err := roster.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	res, err := roster.NewImporter(db).Import(ctx, students)
	if err != nil {
		return fmt.Errorf("import roster: %w", err)
	}
	slog.Info("imported roster", "path", args[0], "added", res.Added, "skipped", res.Skipped)
	return nil
}

// writeOutput writes data to path, or to stdout when path is "-" or empty.
func writeOutput(path string, data []byte) error {
	var w io.Writer
	if path == "" || path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
