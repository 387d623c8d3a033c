package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cratedock/cratedock"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List published releases",
	Long:  "List every published (name, version) pair in the registry, one per line.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	reg, err := cratedock.Open(registryRoot())
	if err != nil {
		return err
	}

	count := 0
	for rel, err := range reg.List() {
		if err != nil {
			return err
		}
		if rel.Yanked {
			fmt.Printf("%s\t%s\t(yanked)\n", rel.Name, rel.Version)
		} else {
			fmt.Printf("%s\t%s\n", rel.Name, rel.Version)
		}
		count++
	}

	if count == 0 {
		fmt.Println("(no packages)")
	}
	return nil
}
