package commands

import (
	"fmt"
	"log/slog"
	"os"
	"robotorder/lib/browser"
	"robotorder/services/robotorder"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--headed] [--chrome <path>]",
	Short: "Orders every robot in the order file, then zips the receipts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if *headed {
			cfg.Headed = true
		}

		client, err := newHttpClient(cfg)
		if err != nil {
			return err
		}

		chromeOpts := browser.ChromeOptions{
			Headed:   cfg.Headed,
			ExecPath: *chromePath,
		}
		if *verbose {
			chromeOpts.Logf = func(format string, args ...any) {
				slog.Debug(fmt.Sprintf(format, args...))
			}
		}
		chrome, err := browser.NewChrome(ctx, chromeOpts)
		if err != nil {
			return err
		}
		defer chrome.Close()

		report, err := robotorder.Run(ctx, robotorder.Session{
			Page:     chrome,
			Renderer: chrome,
			Config:   cfg,
		}, client)
		if err != nil {
			return err
		}

		robotorder.WriteSummary(os.Stdout, report)
		return nil
	},
}
