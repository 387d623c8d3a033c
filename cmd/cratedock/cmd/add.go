package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cratedock/cratedock"
)

var addCmd = &cobra.Command{
	Use:   "add <crate-file>...",
	Short: "Publish archives into the registry",
	Long: "Publish one or more package archives: each embedded manifest becomes an\n" +
		"index entry and the archive is copied into content storage.",
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	reg, err := cratedock.Open(registryRoot())
	if err != nil {
		return err
	}

	for _, path := range args {
		entry, err := reg.Publish(path)
		if err != nil {
			return err
		}
		logger.Info("published", "name", entry.Name, "version", entry.Version, "cksum", entry.Checksum)
	}
	return nil
}
