package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"signal_bot/internal/archive"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/okx_client/service"
	"signal_bot/internal/pipeline"
	"signal_bot/internal/replay"
	"signal_bot/pkg/logger"
)

var (
	candlesPath string
	configPath  string
	outDir      string
)

var cmdRoot = &cobra.Command{
	Use:   "replay",
	Short: "Replay historical candles through the signal pipeline",
}

var cmdRun = &cobra.Command{
	Use:   "run",
	Short: "Run a CSV of candles against a paper venue and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := logger.Init(logger.Config{Level: cfg.Log.Level, Development: true}); err != nil {
			return err
		}
		defer logger.Sync()

		f, err := os.Open(candlesPath)
		if err != nil {
			return err
		}
		defer f.Close()

		candles, err := archive.ReadCandlesCSV(f)
		if err != nil {
			return err
		}

		p, err := pipeline.New(cfg.PipelineConfig())
		if err != nil {
			return err
		}

		var sink archive.Sink = archive.Nop{}
		if outDir != "" {
			if sink, err = archive.NewCSV(outDir); err != nil {
				return err
			}
		}
		defer sink.Close()

		s, err := replay.Run(cmd.Context(), p, service.NewPaper(), sink, candles)
		if err != nil {
			logger.Warn("[REPLAY] archive: %v", err)
		}
		printSummary(cmd.OutOrStdout(), cfg.Symbol, s)
		return nil
	},
}

func printSummary(out io.Writer, symbol string, s replay.Summary) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OPENED\tCLOSED\tENTRY\tEXIT\tQTY\tREASON\tPNL")
	for _, c := range s.Closed {
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f\t%s\t%.4f\n",
			c.OpenedAt.Format(time.RFC3339), c.ClosedAt.Format(time.RFC3339),
			c.EntryPrice, c.ExitPrice, c.Quantity, c.Reason, c.PnL)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\n%s: candles=%d rejected=%d signals=%d degenerate=%d rollbacks=%d\n",
		symbol, s.Candles, s.Rejected, s.Signals, s.Degenerate, s.Rollbacks)
	fmt.Fprintf(out, "trades=%d wins=%d losses=%d pnl=%.4f\n", len(s.Closed), s.Wins, s.Losses, s.PnL)
	if s.Open != nil {
		fmt.Fprintf(out, "still open: qty=%.4f @ %.4f SL=%.4f TP=%.4f\n",
			s.Open.Quantity, s.Open.EntryPrice, s.Open.StopLoss, s.Open.TakeProfit)
	}
}

func init() {
	cmdRun.Flags().StringVar(&candlesPath, "candles", "", "CSV: open_time,close_time,open,high,low,close,volume")
	cmdRun.Flags().StringVar(&configPath, "config", "configs/values_local.yaml", "config file")
	cmdRun.Flags().StringVar(&outDir, "out", "", "directory for order_history.csv / kline_data.csv")
	_ = cmdRun.MarkFlagRequired("candles")
	cmdRoot.AddCommand(cmdRun)
}

func main() {
	if err := cmdRoot.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
