package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <board>",
	Short: "Delete a board and everything on it",
	Args:  cobra.ExactArgs(1),
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
		data, err := be.GetBoard(boardID)
		if err != nil {
			return fmt.Errorf("loading board: %w", err)
		}

		if !deleteForce {
			fmt.Printf("Delete board %q with %d nodes and %d edges? [y/N] ",
				data.Board.Name, len(data.Nodes), len(data.Edges))
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := be.DeleteBoard(boardID); err != nil {
			return fmt.Errorf("deleting board: %w", err)
		}
		fmt.Printf("Deleted board %s\n", data.Board.Name)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
	rootCmd.AddCommand(deleteCmd)
}
