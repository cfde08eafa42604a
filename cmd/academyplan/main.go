// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/academyplan/academyplan-mcp/internal/config"
	"github.com/academyplan/academyplan-mcp/internal/engine"
	"github.com/academyplan/academyplan-mcp/internal/export"
	"github.com/academyplan/academyplan-mcp/internal/logger"
	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/conform"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
	"github.com/academyplan/academyplan-mcp/internal/tool"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:          "academyplan",
	Short:        "Extract training schedules from coaching documents",
	Long:         "academyplan detects the structure of a coaching document's plain text and turns it into a week/day/session training schedule.",
	SilenceUsage: true,
}

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract the training schedule of one or more text files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

var detectCmd = &cobra.Command{
	Use:   "detect FILE",
	Short: "Show the detected language and structure of a text file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

var dateCmd = &cobra.Command{
	Use:   "date WEEK DAY",
	Short: "Compute the calendar date of a training day",
	Args:  cobra.ExactArgs(2),
	RunE:  runDate,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction tools over MCP on stdio",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/academyplan/config.toml)")
	rootCmd.PersistentFlags().String("log-mode", "", "Log mode: development or production")

	extractCmd.Flags().String("plan-id", "", "Training plan id")
	extractCmd.Flags().String("title", "", "Plan title")
	extractCmd.Flags().String("category", "", "Sport or plan category")
	extractCmd.Flags().String("difficulty", "", "Plan difficulty")
	extractCmd.Flags().String("academy", "", "Academy name")
	extractCmd.Flags().String("base-date", "", "Start of week 1 (YYYY-MM-DD or e.g. \"next monday\")")
	extractCmd.Flags().String("format", "", "Output format: json, yaml or ics (default from config)")
	extractCmd.Flags().String("coaching-plan", "", "Coaching plan name merged into every node")
	extractCmd.Flags().String("entity", "", "Entity name merged into every node")
	extractCmd.Flags().String("training-time", "", "Training time merged into every node")
	extractCmd.Flags().Bool("alternative", false, "Use the best-scoring alternative strategy")
	extractCmd.Flags().Bool("check-schema", false, "Validate results against the result schema")

	dateCmd.Flags().String("base-date", "", "Start of week 1 (YYYY-MM-DD or e.g. \"next monday\")")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(dateCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if mode, _ := cmd.Flags().GetString("log-mode"); mode != "" {
		cfg.Log.Mode = mode
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	flags := cmd.Flags()
	formatName, _ := flags.GetString("format")
	if formatName == "" {
		formatName = cfg.Output.Format
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	baseDate, _ := flags.GetString("base-date")
	base, err := schedule.ParseBaseDate(baseDate, time.Now().In(loc))
	if err != nil {
		return err
	}
	alternative, _ := flags.GetBool("alternative")
	checkSchema, _ := flags.GetBool("check-schema")

	var plan schedule.PlanMetadata
	plan.ID, _ = flags.GetString("plan-id")
	plan.Title, _ = flags.GetString("title")
	plan.Category, _ = flags.GetString("category")
	plan.Difficulty, _ = flags.GetString("difficulty")
	plan.AcademyName, _ = flags.GetString("academy")

	var enrichment schedule.Enrichment
	enrichment.CoachingPlanName, _ = flags.GetString("coaching-plan")
	enrichment.EntityName, _ = flags.GetString("entity")
	enrichment.TrainingTime, _ = flags.GetString("training-time")

	eng, err := engine.New(cfg.Engine, log)
	if err != nil {
		return err
	}
	var checker *conform.Checker
	if checkSchema {
		if checker, err = conform.New(); err != nil {
			return err
		}
	}

	results := make([]*schedule.Result, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.NumCPU())
	for i, path := range args {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			doc := schedule.Document{
				Text:     string(data),
				ID:       filepath.Base(path),
				Plan:     plan,
				BaseDate: base,
			}
			var res *schedule.Result
			if alternative {
				res, err = eng.ExtractAlternative(ctx, doc)
			} else {
				res, err = eng.Extract(ctx, doc)
			}
			if err != nil {
				return fmt.Errorf("extracting %s: %w", path, err)
			}
			if checker != nil {
				if err := checker.Check(res); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			if enrichment != (schedule.Enrichment{}) {
				res.Sessions = schedule.Enrich(res.Sessions, enrichment)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		if err := export.Write(out, res, format, loc); err != nil {
			return err
		}
	}
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	eng, err := engine.New(cfg.Engine, log)
	if err != nil {
		return err
	}
	det, analysis := eng.Analyze(string(data))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Language  schedule.Detection         `json:"language"`
		Structure schedule.StructureAnalysis `json:"structureAnalysis"`
	}{det, analysis})
}

func runDate(cmd *cobra.Command, args []string) error {
	week, err := strconv.Atoi(args[0])
	if err != nil || week < 1 {
		return fmt.Errorf("invalid week number %q", args[0])
	}
	day, ok := patterns.Default().CanonicalDay(args[1])
	if !ok {
		return fmt.Errorf("unknown weekday %q", args[1])
	}
	baseDate, _ := cmd.Flags().GetString("base-date")
	base, err := schedule.ParseBaseDate(baseDate, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), schedule.FormatDate(week, day, base))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	eng, err := engine.New(cfg.Engine, log)
	if err != nil {
		return err
	}
	checker, err := conform.New()
	if err != nil {
		return err
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "academyplan-mcp", Version: version}, nil)
	tool.Register(server, tool.NewHandlers(eng, checker, log))

	log.Info("serving MCP on stdio", "version", version)
	if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil && cmd.Context().Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
