package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cratedock/cratedock"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check index entries against stored archives",
	Long: "Cross-check every index entry with content storage: archives must exist\n" +
		"and hash to their recorded checksum. Reports problems without repairing.",
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	reg, err := cratedock.Open(registryRoot())
	if err != nil {
		return err
	}

	problems, err := reg.Verify(cmd.Context())
	if err != nil {
		return err
	}

	for _, p := range problems {
		logger.Warn(p.Kind, "name", p.Name, "version", p.Version, "detail", p.Detail)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) found", len(problems))
	}

	logger.Info("registry consistent")
	return nil
}
