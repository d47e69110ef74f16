package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/dispatch-board/internal/board"
	"github.com/imrishuroy/dispatch-board/internal/client"
	"github.com/imrishuroy/dispatch-board/internal/config"
	"github.com/imrishuroy/dispatch-board/internal/logger"
	"github.com/imrishuroy/dispatch-board/internal/reconciler"
)

var (
	cfgPath       string
	dashboardName string
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Terminal dispatch board",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.Flags().StringVarP(&dashboardName, "name", "n", "hospital", "dashboard label")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Configure(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		// stdout belongs to the board
		Out: os.Stderr,
	})
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("dashboard")

	pollMetrics, metricsHandler, err := newPollMetrics(cfg)
	if err != nil {
		return fmt.Errorf("poll metrics: %w", err)
	}

	b := board.New()
	session := NewSession(dashboardName, b, cmd.OutOrStdout())
	rec := reconciler.New(dashboardName,
		client.New(cfg.Client.BaseURL, cfg.Client.RequestTimeout),
		b,
		cfg.Client.PollInterval,
		reconciler.WithLogger(log),
		reconciler.WithMetrics(pollMetrics),
		reconciler.WithNotice(session.Notify),
		reconciler.WithOnChange(session.Changed),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if metricsHandler != nil {
		go serveMetrics(ctx, cfg.Client.MetricsAddr, metricsHandler, log)
	}

	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()

	fmt.Fprintf(cmd.OutOrStdout(), "%s dashboard on %s, type 'help' for commands\n", dashboardName, cfg.Client.BaseURL)
	readCommands(ctx, cancel, cmd.InOrStdin(), session, log)

	return <-done
}

// readCommands feeds lines from in to the session until EOF, quit or ctx ends.
func readCommands(ctx context.Context, cancel context.CancelFunc, in io.Reader, s *Session, log logger.Logger) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			log.Warnf("read commands: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				cancel()
				return
			}
			err := s.Exec(line)
			if errors.Is(err, errQuit) {
				cancel()
				return
			}
			if err != nil {
				s.printf("error: %v\n", err)
			}
		}
	}
}
