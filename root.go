package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"texturefinder/config"
	"texturefinder/database"
	"texturefinder/imageprocessor"
	"texturefinder/logging"
	"texturefinder/results"
	"texturefinder/scanner"
	"texturefinder/signalhandler"
	"texturefinder/types"
	"texturefinder/utils"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type searchFlags struct {
	configPath string
	threads    int
	verbose    bool
	dbPath     string
	history    bool
	logDir     string
	debug      bool
	logFile    string
	noProgress bool
}

func newRootCommand() *cobra.Command {
	var flags searchFlags

	configUsage := "Configuration file path"
	if path, err := config.DefaultConfigPath(); err == nil {
		configUsage = fmt.Sprintf("Configuration file path (default %s, then ./texturefinder.toml)", path)
	}

	rootCmd := &cobra.Command{
		Use:   "texturefinder REFERENCE DIRECTORY MODE",
		Short: "Find the image in a directory that matches a reference image",
		Long: fmt.Sprintf(`Find the image in DIRECTORY that matches REFERENCE.

Modes:
  highlowres  find the same image at an equal or higher resolution
  compare     find perceptually similar images and rank them

Formats: %s`, strings.Join(imageprocessor.GetSupportedExtensions(), " ")),
		Example:       "  texturefinder low/brick.png textures/ highlowres --threads 4",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, flags)
		},
	}

	rootCmd.Flags().StringVarP(&flags.configPath, "config", "c", "", configUsage)
	rootCmd.Flags().IntVarP(&flags.threads, "threads", "t", 0, "Parallel workers (0 or 1 sequential, 2-4 parallel)")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Print every comparison and run timing")
	rootCmd.Flags().StringVar(&flags.dbPath, "db", "", "Record runs and matches in this sqlite database")
	rootCmd.Flags().BoolVar(&flags.history, "history", false, "Record history in texturefinder.db next to the executable unless --db is set")
	rootCmd.Flags().StringVar(&flags.logDir, "log-dir", "", "Directory for the match log (default current directory)")
	rootCmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&flags.logFile, "logfile", "", "Debug log file path (default texturefinder.log)")
	rootCmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable the progress bar")

	return rootCmd
}

// loadConfig reads the configuration file and applies command line overrides
func loadConfig(cmd *cobra.Command, flags searchFlags) (*config.Config, error) {
	cfg, _, _, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("threads") {
		if err := utils.ValidateThreads(flags.threads); err != nil {
			return nil, err
		}
		cfg.Search.Threads = flags.threads
	}
	if changed("verbose") {
		cfg.Search.Verbose = flags.verbose
	}
	if changed("db") {
		cfg.Paths.Database = flags.dbPath
	}
	if flags.history && cfg.Paths.Database == "" {
		cfg.Paths.Database = utils.GetDefaultDatabasePath()
	}
	if changed("log-dir") {
		cfg.Paths.LogDir = flags.logDir
	}
	if changed("logfile") {
		cfg.Logging.File = flags.logFile
	}
	if flags.noProgress {
		cfg.Display.Progress = false
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSearch(cmd *cobra.Command, args []string, flags searchFlags) error {
	out := cmd.OutOrStdout()
	referencePath, err := config.ExpandPath(args[0])
	if err != nil {
		return err
	}
	directory, err := config.ExpandPath(args[1])
	if err != nil {
		return err
	}

	mode, err := types.ParseMode(args[2])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	if err := utils.ValidateInputs(referencePath, directory); err != nil {
		return err
	}

	runID := uuid.NewString()
	startedAt := time.Now()

	if flags.debug {
		err := logging.SetupLogger(logging.Options{
			Path:   cfg.Logging.File,
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			RunID:  runID,
		})
		if err != nil {
			fmt.Fprintf(out, "Warning: Failed to setup logging: %v\n", err)
		} else {
			defer logging.CloseLogger()
			fmt.Fprintf(out, "Debug mode enabled. Logging to: %s\n", cfg.Logging.File)
		}
	}

	matchLog := results.NewMatchLog(cfg.Paths.LogDir, startedAt)
	console := results.NewConsole(out, cfg.Search.Verbose)
	sinks := []results.Sink{matchLog, console}

	if cfg.Display.Progress && !cfg.Search.Verbose && isTerminal(os.Stderr) {
		progress := results.NewProgress(os.Stderr)
		console.BeforePrint(progress.Clear)
		sinks = append(sinks, progress)
	}

	history, err := openHistory(cfg.Paths.Database, database.Run{
		ID:        runID,
		Reference: referencePath,
		Directory: directory,
		Mode:      mode,
		Threads:   cfg.Search.Threads,
		StartedAt: startedAt,
	})
	if err != nil {
		return err
	}
	if history != nil {
		defer history.close()
		sinks = append(sinks, results.NewHistory(history.db, runID))
	}

	aggregator := results.NewAggregator(sinks...)
	defer aggregator.Close()

	registry := imageprocessor.NewImageLoaderRegistry()
	defer registry.Close()

	ctx, stop := signalhandler.SetupHandler(commandContext(cmd))
	defer stop()

	opts := scanner.Options{
		ReferencePath: referencePath,
		Directory:     directory,
		Mode:          mode,
		Threads:       cfg.Search.Threads,
		DebugMode:     flags.debug,
	}
	printStartupInfo(out, opts, cfg.Search.Verbose)

	stats, runErr := scanner.New(registry, aggregator).Run(ctx, opts)

	// Finish the progress bar before the summary is printed
	if err := aggregator.Close(); err != nil {
		logging.LogWarning("Closing result sinks: %v", err)
	}

	if history != nil {
		history.finish(stats)
	}

	switch {
	case errors.Is(runErr, types.ErrEmptyCandidateSet):
		fmt.Fprintln(out, "No match found.")
		return nil
	case runErr != nil:
		return runErr
	}

	printSummary(out, mode, stats, aggregator.Matches(), matchLog.Path(), cfg.Search.Verbose)
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printStartupInfo(out io.Writer, opts scanner.Options, verbose bool) {
	if !verbose {
		return
	}
	fmt.Fprintf(out, "Reference: %s\n", opts.ReferencePath)
	fmt.Fprintf(out, "Directory: %s\n", opts.Directory)
	fmt.Fprintf(out, "Mode: %s, workers: %d\n", opts.Mode, scanner.WorkerCount(opts.Threads))
}
