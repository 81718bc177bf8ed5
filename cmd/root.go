package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/school-finder/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "school-finder",
	Short: "Find Singapore secondary schools by PSLE AL score",
	Long:  "Filters secondary schools by PSLE Achievement Level score, posting group, gender, higher mother tongue and distance, and maintains the cut-off dataset.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
