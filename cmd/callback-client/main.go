package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"callback/internal/engine/callback"
	"callback/internal/pkg/errors"
	"callback/internal/pkg/logger"
	"callback/internal/platform/config"
)

const (
	exitOK        = 0
	exitHTTP      = 1
	exitConfig    = 2
	exitTransport = 3
	exitUsage     = 64
	exitOutput    = 74
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, &http.Client{})
	stop()
	os.Exit(code)
}

// splitArgs separates client flags from the forwarded arguments. Without a
// "--" every token is forwarded; with one, only the tokens after the first
// "--" are forwarded and the tokens before it are client flags.
func splitArgs(argv []string) (flags, args []string) {
	for i, arg := range argv {
		if arg == "--" {
			return argv[:i], argv[i+1:]
		}
	}
	return nil, argv
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("callback-client", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: callback-client [flags --] [args...]")
		fs.PrintDefaults()
	}

	fs.String("config", os.Getenv("CALLBACK_CONFIG"), "Path to config file")
	fs.String("host", "", "Callback host")
	fs.Int("port", 0, "Callback port")
	fs.String("path", "", "Callback path")
	fs.Duration("timeout", 0, "Round-trip timeout (0 disables)")
	fs.String("secret-file", "", "Path to the shared secret file")
	fs.String("log-level", "", "Log level: debug, info, warn, error")
	return fs
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer, doer callback.Doer) int {
	flagArgs, args := splitArgs(argv)

	fs := newFlagSet(stderr)
	if err := fs.Parse(flagArgs); err != nil {
		if err == pflag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "error: unexpected argument %q before --\n", fs.Arg(0))
		return exitUsage
	}

	configPath, _ := fs.GetString("config")
	cfg, err := config.Load(configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitConfig
	}

	logger.Init(cfg.Logging)

	resp, err := callback.NewCaller(cfg, doer).Call(ctx, args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.IsConfiguration(err) {
			return exitConfig
		}
		return exitTransport
	}

	if err := writeBody(stdout, resp.Body); err != nil {
		fmt.Fprintf(stderr, "error: write response: %v\n", err)
		return exitOutput
	}

	if resp.Failed() {
		log.Debug().Str("delivery_id", resp.DeliveryID).Str("status", resp.Status).Msg("callback endpoint rejected request")
		fmt.Fprintf(stderr, "error: callback endpoint returned %s\n", resp.Status)
		return exitHTTP
	}
	return exitOK
}

// writeBody prints the response body, newline-terminated.
func writeBody(w io.Writer, body []byte) error {
	if _, err := w.Write(body); err != nil {
		return err
	}
	if n := len(body); n == 0 || body[n-1] != '\n' {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
