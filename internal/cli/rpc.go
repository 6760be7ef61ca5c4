package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/LeJamon/programtest/internal/config"
	"github.com/LeJamon/programtest/internal/programtest"
	"github.com/LeJamon/programtest/internal/rpc"
)

var rpcURL string

// rpcCmd represents the rpc command group
var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "RPC client commands",
	Long:  `Query and drive a running ledger over JSON-RPC.`,
}

func init() {
	rootCmd.AddCommand(rpcCmd)
	rpcCmd.PersistentFlags().StringVar(&rpcURL, "url", "http://"+config.DefaultListen, "ledger JSON-RPC endpoint")

	rpcCmd.AddCommand(
		&cobra.Command{
			Use:   "blockhash",
			Short: "Print the latest blockhash",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				h, err := newRPCClient().LatestBlockhash(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), h)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clock",
			Short: "Print the clock sysvar",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := newRPCClient().GetClock(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, c)
			},
		},
		&cobra.Command{
			Use:   "account <address>",
			Short: "Print an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				addr, err := solana.PublicKeyFromBase58(args[0])
				if err != nil {
					return fmt.Errorf("invalid address %q: %w", args[0], err)
				}
				acct, err := programtest.GetAccount(cmd.Context(), newRPCClient(), addr)
				if err != nil {
					return err
				}
				return printJSON(cmd, acct)
			},
		},
		&cobra.Command{
			Use:   "program-accounts <owner>",
			Short: "List the accounts owned by a program",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, err := solana.PublicKeyFromBase58(args[0])
				if err != nil {
					return fmt.Errorf("invalid owner %q: %w", args[0], err)
				}
				accts, err := newRPCClient().GetProgramAccounts(cmd.Context(), owner)
				if err != nil {
					return err
				}
				return printJSON(cmd, accts)
			},
		},
		&cobra.Command{
			Use:   "warp-slot <slot>",
			Short: "Jump the ledger forward to a slot",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				slot, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid slot %q: %w", args[0], err)
				}
				c := newRPCClient()
				if err := c.WarpToSlot(cmd.Context(), slot); err != nil {
					return err
				}
				return printClock(cmd, c)
			},
		},
		&cobra.Command{
			Use:   "warp-time <unix-seconds|+duration>",
			Short: "Move the ledger clock to a timestamp",
			Long: `Move the ledger clock to a unix timestamp, or forward by a duration when the
argument starts with "+" (for example +1h30m).`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				c := newRPCClient()
				cfg, err := c.Genesis(ctx)
				if err != nil {
					return err
				}
				target, err := parseTarget(ctx, c, args[0])
				if err != nil {
					return err
				}
				env := programtest.NewContext(c, c, nil, cfg)
				if err := env.WarpToTimestamp(ctx, target); err != nil {
					return err
				}
				return printClock(cmd, c)
			},
		},
	)
}

func newRPCClient() *rpc.Client {
	return rpc.NewClient(rpcURL, nil)
}

func parseTarget(ctx context.Context, c *rpc.Client, arg string) (int64, error) {
	if rest, ok := strings.CutPrefix(arg, "+"); ok {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", rest, err)
		}
		clock, err := c.GetClock(ctx)
		if err != nil {
			return 0, err
		}
		return clock.UnixTimestamp + int64(d/time.Second), nil
	}
	ts, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", arg, err)
	}
	return ts, nil
}

func printClock(cmd *cobra.Command, c *rpc.Client) error {
	clock, err := c.GetClock(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, clock)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
