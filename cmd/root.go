package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/wifibear/capcheck/internal/config"
	"github.com/wifibear/capcheck/internal/handshake"
	"github.com/wifibear/capcheck/internal/result"
	"github.com/wifibear/capcheck/internal/scan"
	"github.com/wifibear/capcheck/internal/tools"
	"github.com/wifibear/capcheck/ui"
)

const longHelp = `checks that capture files hold what WPA-SEC and hashcat need:
a radiotap pcap, a beacon and a crackable EAPOL handshake pair.

Directories are searched (non-recursively) for *.pcap, *.cap and *.pcapng.
Exits 0 only when every file passes.`

// ExitError asks main to exit with Code without printing anything.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd(config.DefaultConfig(), version).ExecuteContext(ctx)
}

func newRootCmd(cfg *config.Config, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "capcheck [flags] <file|dir>...",
		Short:   "Check pcap captures for WPA-SEC upload compatibility",
		Long:    "capcheck v" + version + " - " + longHelp,
		Version: version,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Show SSID, nonces and diagnostics per file")
	pf.BoolVar(&cfg.Debug, "debug", false, "Log every handshake message found")

	// Check flags
	f := rootCmd.Flags()
	f.BoolVar(&cfg.JSON, "json", false, "Print results as JSON instead of a text report")
	f.StringVarP(&cfg.Output.ReportFile, "output", "o", cfg.Output.ReportFile, "Save results to a JSON report file")
	f.BoolVar(&cfg.Tshark, "tshark", false, "Cross-check EAPOL frame counts with tshark")

	// Subcommands
	rootCmd.AddCommand(stripCmd(cfg))
	rootCmd.AddCommand(depsCmd())

	return rootCmd
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel()}))
}

func collect(stderr io.Writer, cfg *config.Config, args []string) ([]string, error) {
	files, missing, err := scan.CollectFiles(args, cfg.Scan.Extensions)
	if err != nil {
		return nil, err
	}
	for _, p := range missing {
		fmt.Fprintf(stderr, "Not found: %s\n", p)
	}
	if len(files) == 0 {
		return nil, errors.New("no capture files found")
	}
	return files, nil
}

func runCheck(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, args []string) error {
	log := newLogger(stderr, cfg)

	files, err := collect(stderr, cfg, args)
	if err != nil {
		return err
	}

	var store *result.Store
	if cfg.Output.ReportFile != "" {
		store, err = result.NewStore(cfg.Output.ReportFile)
		if err != nil {
			return err
		}
	}

	var counter handshake.Counter
	if cfg.Tshark {
		if tools.NewChecker().Available("tshark") {
			counter = handshake.NewTsharkCounter(tools.NewTshark())
		} else {
			log.Warn("tshark not found, skipping cross-check", "hint", tools.InstallHint())
		}
	}

	if !cfg.JSON {
		fmt.Fprint(stdout, ui.FormatHeader())
	}

	opts := handshake.Options{Logger: log}
	results := make([]handshake.Result, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		r := handshake.AnalyzeFile(file, opts)
		results = append(results, r)

		if store != nil {
			rec := result.NewCheckRecord(r, time.Since(start), start)
			if prev := store.FindByFile(file); prev != nil && prev.Status != rec.Status {
				log.Warn("status changed since last report", "file", file, "was", prev.Status, "now", rec.Status)
			}
			if err := store.Add(rec); err != nil {
				return err
			}
		}

		if cfg.JSON {
			continue
		}
		fmt.Fprint(stdout, ui.FormatResult(r, cfg.Verbose))

		if counter != nil {
			n, err := counter.CountEAPOL(ctx, file)
			if err != nil {
				log.Warn("cross-check failed", "file", file, "tool", counter.Name(), "err", err)
				continue
			}
			fmt.Fprint(stdout, ui.FormatCrossCheck(counter.Name(), len(r.Messages), n))
		}
	}

	summary := result.Summarize(results)
	switch {
	case cfg.JSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
	case len(results) > 1:
		fmt.Fprintln(stdout, ui.FormatSummary(summary))
	}
	if store != nil && !cfg.JSON {
		fmt.Fprintf(stdout, "Report: %s (%d files, %d failing)\n", cfg.Output.ReportFile, store.Count(), len(store.Failed()))
	}

	if !summary.AllCompatible() {
		return &ExitError{Code: 1}
	}
	return nil
}

// stripCmd writes reduced copies of captures.
func stripCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strip <file|dir>...",
		Short: "Write copies of captures holding only beacons and handshake frames",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			log := newLogger(stderr, cfg)

			files, err := collect(stderr, cfg, args)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Strip.OutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			failed := 0
			for _, file := range files {
				base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
				out := filepath.Join(cfg.Strip.OutputDir, base+cfg.Strip.Suffix)

				kept, err := handshake.StripCapture(file, out)
				if err != nil {
					failed++
					log.Error("strip failed", "file", file, "err", err)
					if kept == 0 {
						continue
					}
				}
				fmt.Fprintf(stdout, "  %s -> %s (%d packets)\n", filepath.Base(file), out, kept)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d captures could not be stripped", failed, len(files))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.Strip.OutputDir, "out-dir", cfg.Strip.OutputDir, "Directory for stripped captures")
	return cmd
}

// depsCmd shows dependency status.
func depsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check optional downstream tools",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "  Dependency Check:")
			checker := tools.NewChecker()
			fmt.Fprint(out, tools.FormatStatus(checker.CheckAll()))
			if missing := checker.Missing(); len(missing) > 0 {
				fmt.Fprintf(out, "\n  Missing %s. Install with: %s\n", strings.Join(missing, ", "), tools.InstallHint())
			}
		},
	}
}
