// Command ragchat is a terminal client for a document question-answering
// backend: upload files, then chat about them.
//
// Usage:
//
//	BACKEND_URL=http://localhost:5000 ragchat [flags]
//	ragchat ask <message...>
//	ragchat upload <pattern...>
//	ragchat transcript <path>
//
// Flags:
//
//	--backend-url string  Backend base URL (overrides BACKEND_URL)
//	--log-file string     Log file for the TUI (default ~/.ragchat/ragchat.log)
//	--debug               Log session events at debug level
//	--file string         File to select for upload on start
//	--transcript string   Save the transcript to this path on exit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(nil).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ragchat: %v\n", err)
		os.Exit(1)
	}
}
