package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createDescription string

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := OpenBackend()
		if err != nil {
			return err
		}
		defer be.Close()

		b, err := be.CreateBoard(args[0], createDescription)
		if err != nil {
			return fmt.Errorf("creating board: %w", err)
		}
		fmt.Printf("Created board %s (%s)\n", b.Name, shortID(b.ID))
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Board description")
	rootCmd.AddCommand(createCmd)
}
