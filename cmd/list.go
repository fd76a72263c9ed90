package cmd

import (
	"fmt"
	"strings"

	"github.com/signalnine/benchlit/internal/config"
	"github.com/signalnine/benchlit/internal/runner"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured tests and available test modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			reg, err := runner.LoadModules(cfg.ModuleParams)
			if err != nil {
				return err
			}
			fmt.Println("Modules:")
			for _, name := range reg.Names() {
				fmt.Printf("  - %s\n", name)
			}
			fmt.Println("\nTests:")
			for _, t := range cfg.Tests {
				where := "local"
				if t.Image != "" {
					where = "image: " + t.Image
				}
				mods := strings.Join(t.Modules, ",")
				if mods == "" {
					mods = "none"
				}
				fmt.Printf("  - %s (%s) [%s] %s\n", t.Name, where, mods, t.Dir)
			}
			return nil
		},
	}
}
