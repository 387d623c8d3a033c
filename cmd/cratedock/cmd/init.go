package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cratedock/cratedock"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Create a registry",
	Long:  "Create a registry at the given path, writing its config document.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("base-url", "", "public URL the registry will be served under (required)")
	initCmd.Flags().Bool("force", false, "overwrite the config of an existing registry")
	initCmd.Flags().Bool("enable-api", false, "advertise an API endpoint in the config document")
	initCmd.Flags().StringSlice("default", nil, "default feature flags to record in the config")
	initCmd.MarkFlagRequired("base-url")
}

func runInit(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("base-url")
	force, _ := cmd.Flags().GetBool("force")
	enableAPI, _ := cmd.Flags().GetBool("enable-api")
	defaults, _ := cmd.Flags().GetStringSlice("default")

	var opts []cratedock.InitOption
	if force {
		opts = append(opts, cratedock.WithForce())
	}
	if enableAPI {
		opts = append(opts, cratedock.WithAPI())
	}
	if len(defaults) > 0 {
		opts = append(opts, cratedock.WithDefaults(defaults...))
	}

	reg, err := cratedock.Initialize(args[0], baseURL, opts...)
	if err != nil {
		return err
	}

	logger.Info("registry initialized", "path", reg.Root(), "base-url", baseURL)
	return nil
}
