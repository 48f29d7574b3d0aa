package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/ragchat"
	bt "github.com/fwojciec/ragchat/bubbletea"
	"github.com/fwojciec/ragchat/fs"
	raghttp "github.com/fwojciec/ragchat/http"
	ragjson "github.com/fwojciec/ragchat/json"
	ragzap "github.com/fwojciec/ragchat/zap"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newRootCmd builds the command tree. environ replaces the process
// environment when non-nil.
func newRootCmd(environ map[string]string) *cobra.Command {
	opts := &options{environ: environ}

	cmd := &cobra.Command{
		Use:   "ragchat",
		Short: "Chat with your documents through a RAG backend",
		Long: `ragchat uploads local files to a retrieval-augmented chat backend and
lets you ask questions about them.

Run without arguments to start the interactive interface. Ctrl+O picks a
file, Ctrl+U uploads it, Enter sends a message.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.backendURL, "backend-url", "", "backend base URL (overrides BACKEND_URL)")
	flags.StringVar(&opts.logFile, "log-file", "", "log file (default ~/.ragchat/ragchat.log for the TUI, stderr otherwise)")
	flags.BoolVar(&opts.debug, "debug", false, "log session events at debug level")
	flags.StringVar(&opts.transcript, "transcript", "", "save the transcript to this path on exit")
	cmd.Flags().StringVar(&opts.file, "file", "", "file to select for upload on start")

	cmd.AddCommand(
		newAskCmd(opts),
		newUploadCmd(opts),
		newTranscriptCmd(),
	)
	return cmd
}

// newSession wires a Session to the HTTP backend, logging every event to
// logger. Extra handlers run after the logger.
func newSession(cfg ragchat.Config, logger *zap.Logger, handlers ...func(ragchat.Event)) (*ragchat.Session, error) {
	client, err := raghttp.New(cfg)
	if err != nil {
		return nil, err
	}
	sessOpts := []ragchat.Option{ragchat.WithEventHandler(ragzap.NewEventHandler(logger))}
	for _, h := range handlers {
		sessOpts = append(sessOpts, ragchat.WithEventHandler(h))
	}
	return ragchat.NewSession(client, client, sessOpts...), nil
}

// cliLogger returns the logger used by non-interactive commands. Only
// failures are logged unless --debug is set.
func cliLogger(opts *options) (*zap.Logger, error) {
	path := opts.logFile
	if path == "" {
		path = "stderr"
	}
	return newLogger(path, zapcore.ErrorLevel, opts.debug)
}

func runTUI(ctx context.Context, opts *options) error {
	cfg, err := resolveConfig(opts.backendURL, opts.environ)
	if err != nil {
		return err
	}
	logPath := opts.logFile
	if logPath == "" {
		logPath = defaultLogPath()
	}
	logger, err := newLogger(logPath, zapcore.InfoLevel, opts.debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	events := bt.NewEvents()
	defer events.Close()

	session, err := newSession(cfg, logger, events.Publish)
	if err != nil {
		return err
	}
	if opts.file != "" {
		f, err := fs.Open(opts.file)
		if err != nil {
			return err
		}
		session.SelectFile(f)
	}

	// Requests outlive a keypress but not the program.
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	startDir, err := os.Getwd()
	if err != nil {
		startDir = "."
	}
	model := bt.New(session, ragchat.DefaultTheme(),
		bt.WithEvents(events),
		bt.WithOpenFunc(fs.Open),
		bt.WithStartDir(startDir),
		bt.WithContext(reqCtx),
	)
	logger.Info("starting", zap.String("backend_url", cfg.BackendURL))
	if err := bt.Run(ctx, model); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	cancel()
	session.Wait()
	return exportTranscript(opts.transcript, cfg, session)
}

// exportTranscript saves the session's transcript to path. An empty path
// is a no-op.
func exportTranscript(path string, cfg ragchat.Config, session *ragchat.Session) error {
	if path == "" {
		return nil
	}
	exp := ragjson.FromSession(uuid.NewString(), cfg.BackendURL, session, time.Now())
	if err := ragjson.Save(path, exp); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}
