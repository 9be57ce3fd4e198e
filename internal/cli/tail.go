package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnevik/settlebench/internal/channel"
	"github.com/arnevik/settlebench/internal/engine"
)

// TailOptions holds flags for the tail command.
type TailOptions struct {
	*RootOptions
	Dir       string
	FromStart bool
}

// NewTailCommand creates the tail command: follow the status log, printing
// each new line with its classified kind.
func NewTailCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TailOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow the engine status log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTail(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "runtime", "runtime directory for the channel artifacts")
	cmd.Flags().BoolVar(&opts.FromStart, "from-start", false, "print existing content before following")
	return cmd
}

func runTail(cmd *cobra.Command, opts *TailOptions) error {
	out := cmd.OutOrStdout()
	channels := channel.New(opts.Dir)

	f, err := os.OpenFile(channels.StatusPath, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open status log", err)
	}
	defer f.Close()

	if !opts.FromStart {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			return WrapExitError(ExitCommandError, "failed to seek status log", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := bufio.NewReader(f)
	var partial strings.Builder
	for {
		chunk, err := reader.ReadString('\n')
		switch {
		case err == nil:
			partial.WriteString(chunk)
			line := strings.TrimRight(partial.String(), "\n")
			partial.Reset()
			fmt.Fprintf(out, "[%s] %s\n", engine.Classify(line), line)
		case err == io.EOF:
			// Keep any partial line and wait for the writer to finish it.
			partial.WriteString(chunk)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(engine.DefaultInterval):
			}
		default:
			return WrapExitError(ExitCommandError, "failed to read status log", err)
		}
	}
}
