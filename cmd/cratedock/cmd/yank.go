package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cratedock/cratedock"
)

var yankCmd = &cobra.Command{
	Use:   "yank <name> <version>",
	Short: "Yank a published version",
	Long: "Mark a published version as yanked, excluding it from new resolution\n" +
		"without deleting its history. Use --undo to clear the flag.",
	Args: cobra.ExactArgs(2),
	RunE: runYank,
}

func init() {
	rootCmd.AddCommand(yankCmd)

	yankCmd.Flags().Bool("undo", false, "clear the yanked flag instead of setting it")
}

func runYank(cmd *cobra.Command, args []string) error {
	undo, _ := cmd.Flags().GetBool("undo")

	reg, err := cratedock.Open(registryRoot())
	if err != nil {
		return err
	}

	if err := reg.Yank(args[0], args[1], !undo); err != nil {
		return err
	}

	if undo {
		logger.Info("unyanked", "name", args[0], "version", args[1])
	} else {
		logger.Info("yanked", "name", args[0], "version", args[1])
	}
	return nil
}
