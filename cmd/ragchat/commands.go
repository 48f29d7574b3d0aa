package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/ragchat"
	"github.com/fwojciec/ragchat/fs"
	ragjson "github.com/fwojciec/ragchat/json"
	"github.com/spf13/cobra"
)

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts.backendURL, opts.environ)
			if err != nil {
				return err
			}
			logger, err := cliLogger(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			session, err := newSession(cfg, logger)
			if err != nil {
				return err
			}
			turn, err := session.SendMessage(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			session.Wait()

			if err := exportTranscript(opts.transcript, cfg, session); err != nil {
				return err
			}
			reply, err := replyFor(session, turn)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
}

// replyFor returns the bot reply for a resolved turn, or the error the turn
// failed with.
func replyFor(session *ragchat.Session, turn int) (string, error) {
	status, ok := session.TurnStatus(turn)
	if !ok {
		return "", fmt.Errorf("unknown turn %d", turn)
	}
	if status.State == ragchat.TurnFailed {
		return "", status.Err
	}
	for _, m := range session.Transcript().Log() {
		if m.Turn == turn && m.Sender == ragchat.SenderBot {
			return m.Text, nil
		}
	}
	return "", fmt.Errorf("turn %d has no reply", turn)
}

func newUploadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <pattern...>",
		Short: "Upload every file matching the patterns and print the responses",
		Long: `Upload every file matching the given paths or glob patterns ("**" is
supported). Files are uploaded one at a time; the JSON response for each is
printed as "<path>: <json>".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts.backendURL, opts.environ)
			if err != nil {
				return err
			}
			paths, err := expandPatterns(args)
			if err != nil {
				return err
			}
			logger, err := cliLogger(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			u := &batchUploader{open: fs.Open, stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()}
			session, err := newSession(cfg, logger, u.handle)
			if err != nil {
				return err
			}
			u.session = session

			failed := u.run(cmd.Context(), paths)
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(paths))
			}
			return nil
		},
	}
}

// expandPatterns resolves each pattern with fs.Glob, keeping first-seen
// order and dropping duplicates.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, p := range patterns {
		matches, err := fs.Glob(p)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", p)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

// batchUploader uploads files one at a time through a single session,
// reporting each outcome as it resolves.
type batchUploader struct {
	session *ragchat.Session
	open    func(path string) (ragchat.File, error)
	stdout  io.Writer
	stderr  io.Writer

	// outcome is the last upload result; written by handle before Wait
	// returns.
	outcome ragchat.Event
}

func (u *batchUploader) handle(e ragchat.Event) {
	switch e.(type) {
	case ragchat.EventUploadSucceeded, ragchat.EventUploadFailed:
		u.outcome = e
	}
}

// run uploads every path and returns how many failed. A file that cannot be
// opened counts as a failure and does not stop the batch.
func (u *batchUploader) run(ctx context.Context, paths []string) int {
	var failed int
	for _, path := range paths {
		f, err := u.open(path)
		if err != nil {
			fmt.Fprintf(u.stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		u.outcome = nil
		u.session.SelectFile(f)
		if err := u.session.UploadFile(ctx); err != nil {
			fmt.Fprintf(u.stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		u.session.Wait()
		if !reportUpload(u.stdout, u.stderr, path, u.outcome) {
			failed++
		}
	}
	return failed
}

func reportUpload(stdout, stderr io.Writer, path string, outcome ragchat.Event) bool {
	switch e := outcome.(type) {
	case ragchat.EventUploadSucceeded:
		fmt.Fprintf(stdout, "%s: %s\n", path, e.Payload)
		return true
	case ragchat.EventUploadFailed:
		fmt.Fprintf(stderr, "%s: %v\n", path, e.Err)
		return false
	default:
		fmt.Fprintf(stderr, "%s: no upload outcome\n", path)
		return false
	}
}

func newTranscriptCmd() *cobra.Command {
	var threaded bool
	cmd := &cobra.Command{
		Use:   "transcript <path>",
		Short: "Print a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := ragjson.Load(args[0])
			if err != nil {
				return fmt.Errorf("load transcript: %w", err)
			}
			return printTranscript(cmd.OutOrStdout(), exp, threaded)
		},
	}
	cmd.Flags().BoolVar(&threaded, "threaded", false, "group each reply under the message that asked for it")
	return cmd
}

func printTranscript(w io.Writer, exp ragjson.Export, threaded bool) error {
	msgs := exp.Messages
	if threaded {
		msgs = ragchat.NewTranscript(msgs...).Threaded()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n", exp.ID, exp.ExportedAt.Format("2006-01-02 15:04:05"))
	for _, m := range msgs {
		fmt.Fprintf(&b, "\n[%d] %s: %s\n", m.Turn, m.Sender, m.Text)
		if msg, failed := exp.Failures[m.Turn]; failed && m.Sender == ragchat.SenderUser {
			fmt.Fprintf(&b, "[%d] failed: %s\n", m.Turn, msg)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
