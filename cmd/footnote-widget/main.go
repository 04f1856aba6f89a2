// Command footnote-widget prints what the home-screen widget would show: the
// WidgetContent slot of a shared storage group, decoded.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/EcMscS/Footnote/internal/adapters/shared/filegroup"
	"github.com/EcMscS/Footnote/internal/app"
	"github.com/EcMscS/Footnote/internal/domain"
	"github.com/EcMscS/Footnote/internal/platform/config"
)

type options struct {
	dir   string
	group string
	key   string
	watch bool
	raw   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	opts, code := parseFlags(errOut, args)
	if code >= 0 {
		return code
	}

	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelWarn}))

	group, err := filegroup.Open(opts.dir, opts.group, logger)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	// Watch before the first read so a replace in between is not missed.
	var changes <-chan []byte
	if opts.watch {
		changes, err = group.Watch(ctx, opts.key)
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
	}

	data, err := group.Get(ctx, opts.key)
	switch {
	case err == nil:
		if err := printContent(out, data, opts.raw); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
	case domain.IsNotFound(err):
		fmt.Fprintln(out, "(nothing published yet)")
	default:
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	if !opts.watch {
		return 0
	}

	for data := range changes {
		fmt.Fprintln(out, "---")

		if err := printContent(out, data, opts.raw); err != nil {
			fmt.Fprintln(errOut, "error:", err)
		}
	}

	return 0
}

// parseFlags returns the options and -1, or an exit code when the program
// should stop.
func parseFlags(errOut io.Writer, args []string) (options, int) {
	var opts options

	flagSet := flag.NewFlagSet("footnote-widget", flag.ContinueOnError)
	flagSet.SetOutput(errOut)

	flagSet.StringVar(&opts.dir, "dir", "./data/shared", "Shared storage base directory")
	flagSet.StringVar(&opts.group, "group", config.DefaultWidgetGroup, "Shared storage group")
	flagSet.StringVar(&opts.key, "key", config.DefaultWidgetKey, "Key holding the widget content")
	flagSet.BoolVarP(&opts.watch, "watch", "w", false, "Print again on every replace until interrupted")
	flagSet.BoolVar(&opts.raw, "raw", false, "Print the stored bytes instead of decoding them")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, 0
		}

		return opts, 2
	}

	if flagSet.NArg() > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument %q\n", flagSet.Arg(0))
		return opts, 2
	}

	return opts, -1
}

func printContent(out io.Writer, data []byte, raw bool) error {
	if raw {
		_, err := fmt.Fprintf(out, "%s\n", data)
		return err
	}

	entries, err := app.WidgetCodec{}.Decode(data)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "(no quotes)")
		return err
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(out, "%s  %q\n    %s, %s\n",
			e.Date.UTC().Format(time.DateTime), e.Text, e.Author, e.Title); err != nil {
			return err
		}
	}

	return nil
}
