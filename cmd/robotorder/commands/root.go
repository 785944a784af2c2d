package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"robotorder/lib/orders"
	"robotorder/lib/restyutil"
	"robotorder/lib/serviceutil"
	"robotorder/lib/telemetry"
	"robotorder/services/robotorder"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	headed     *bool
	chromePath *string

	// set up in PersistentPreRunE, flushed once the command returns
	tel telemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "robotorder",
	Short: "robotorder orders robots from RobotSpareBin Industries and archives the receipts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		ctx := cmd.Context()
		var err error
		tel, err = telemetry.SetupFromEnv(ctx, "robotorder")
		if err != nil {
			slog.Warn("failed to setup telemetry", "err", err)
		}
		telemetry.InstrumentPerfStats(ctx, 5*time.Second)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCmd.RunE(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "robotorder.json5", "The config file, defaults are used for everything it leaves out.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level and dump raw http messages into .dev/resty.")
	headed = rootCmd.PersistentFlags().Bool("headed", false, "Show the browser window.")
	chromePath = rootCmd.PersistentFlags().String("chrome", "", "Path to the chrome or chromium binary.")
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := tel.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}

	if err != nil {
		serviceutil.Fatal("run failed", err)
	}
}

func loadConfig() (robotorder.Config, error) {
	return robotorder.LoadConfig(*configPath)
}

func newHttpClient(cfg robotorder.Config) (*resty.Client, error) {
	var output restyutil.InstrumentOutput
	if *verbose {
		out, err := restyutil.NewFilesystemOutput(filepath.Join(".dev", "resty", "orders"))
		if err != nil {
			return nil, err
		}
		output = out
	}
	return orders.NewClient(orders.ClientOptions{
		Output:           output,
		CloudflareBypass: !cfg.DisableCloudflareBypass,
	}), nil
}
