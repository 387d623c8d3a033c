package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "cratedock",
	Short: "Self-hosted sparse package registry manager",
	Long: "Manage a sparse package registry as a plain directory tree: initialize it,\n" +
		"publish archives into it, and serve it verbatim over HTTP.",
	SilenceUsage: true,
}

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
})

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("registry", ".", "registry root directory")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	viper.BindPFlag("registry", rootCmd.PersistentFlags().Lookup("registry"))
	viper.SetEnvPrefix("CRATEDOCK")
	viper.AutomaticEnv()

	cobra.OnInitialize(func() {
		if v, _ := rootCmd.PersistentFlags().GetBool("verbose"); v {
			logger.SetLevel(log.DebugLevel)
		}
	})
}

func registryRoot() string {
	return viper.GetString("registry")
}
