package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mulberry/canvas/internal/board"
)

var renameCmd = &cobra.Command{
	Use:   "rename <board> <new-name>",
	Short: "Rename a board",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := OpenBackend()
		if err != nil {
			return err
		}
		defer be.Close()

		boardID, err := ResolveBoard(be, args[0])
		if err != nil {
			return err
		}
		name := args[1]
		b, err := be.UpdateBoard(boardID, board.BoardUpdate{Name: &name})
		if err != nil {
			return fmt.Errorf("renaming board: %w", err)
		}
		fmt.Printf("Renamed %s to %s\n", shortID(b.ID), b.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
