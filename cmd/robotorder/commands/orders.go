package commands

import (
	"log/slog"
	"os"
	"robotorder/lib/orders"
	"robotorder/services/robotorder"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ordersCmd)
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Downloads the order file and prints the orders it contains.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newHttpClient(cfg)
		if err != nil {
			return err
		}

		list, err := orders.Fetch(cmd.Context(), client, cfg.OrdersUrl, cfg.OrdersFile)
		if err != nil {
			return err
		}
		slog.Info("read order file", "path", cfg.OrdersFile, "orders", len(list))
		robotorder.WriteOrders(os.Stdout, list)
		return nil
	},
}
