package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnevik/settlebench/internal/channel"
	"github.com/arnevik/settlebench/internal/dataset"
)

// FeedOptions holds flags shared by the feed subcommands.
type FeedOptions struct {
	*RootOptions
	Dir string
}

// NewFeedCommand creates the feed command group: manual one-record appends
// to the engine's input feeds, for poking at a running engine by hand.
func NewFeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Append single records to the engine input feeds",
	}
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "runtime", "runtime directory for the channel artifacts")

	cmd.AddCommand(newFeedObligationCommand(opts))
	cmd.AddCommand(newFeedEventCommand(opts))
	return cmd
}

func newFeedObligationCommand(opts *FeedOptions) *cobra.Command {
	var o dataset.Obligation

	cmd := &cobra.Command{
		Use:   "obligation",
		Short: "Append one obligation record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channels := channel.New(opts.Dir)
			if err := channels.AppendObligation(o); err != nil {
				return WrapExitError(ExitCommandError, "failed to append obligation", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote obligation: %s\n", dataset.EncodeObligation(o))
			return nil
		},
	}

	cmd.Flags().StringVar(&o.ID, "id", "", "obligation identifier")
	cmd.Flags().StringVar(&o.Venue, "venue", "", "venue")
	cmd.Flags().StringVar(&o.ISIN, "isin", "", "instrument identifier")
	cmd.Flags().StringVar(&o.Account, "account", "", "account")
	cmd.Flags().StringVar(&o.SettleDate, "settle-date", "", "settlement date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&o.IntendedQty, "qty", 0, "intended quantity")
	for _, flag := range []string{"id", "venue", "isin", "account", "settle-date", "qty"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}

func newFeedEventCommand(opts *FeedOptions) *cobra.Command {
	var e dataset.MarketEvent
	var code, at string

	cmd := &cobra.Command{
		Use:   "event",
		Short: "Append one market-event record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dataset.ValidCode(code) {
				return NewExitError(ExitCommandError, fmt.Sprintf(
					"invalid status code %q (want ACK, MATCHED, PARTIAL_SETTLED, or SETTLED)", code))
			}
			e.Code = dataset.StatusCode(code)

			if at == "" {
				e.At = time.Now().UTC()
			} else {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --at timestamp", err)
				}
				e.At = parsed
			}

			channels := channel.New(opts.Dir)
			if err := channels.AppendEvent(e); err != nil {
				return WrapExitError(ExitCommandError, "failed to append event", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote event: %s\n", dataset.EncodeEvent(e))
			return nil
		},
	}

	cmd.Flags().StringVar(&e.MsgID, "msg-id", "", "message identifier")
	cmd.Flags().IntVar(&e.Seq, "seq", 0, "sequence number")
	cmd.Flags().StringVar(&code, "code", "", "status code (ACK|MATCHED|PARTIAL_SETTLED|SETTLED)")
	cmd.Flags().StringVar(&e.ISIN, "isin", "", "instrument identifier")
	cmd.Flags().StringVar(&e.Account, "account", "", "account")
	cmd.Flags().StringVar(&e.SettleDate, "settle-date", "", "settlement date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&e.Qty, "qty", 0, "quantity")
	cmd.Flags().StringVar(&at, "at", "", "event timestamp (RFC 3339, default: now)")
	for _, flag := range []string{"msg-id", "seq", "code", "isin", "account", "settle-date", "qty"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}
