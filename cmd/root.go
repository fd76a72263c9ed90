package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "benchlit",
		Short: "Run benchmark test suites and build executable documentation",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "benchlit.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newDocsCmd())
	return root
}
