package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	listJSON     bool
	listArchived bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List boards",
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := OpenBackend()
		if err != nil {
			return err
		}
		defer be.Close()

		boards, err := be.ListBoards()
		if err != nil {
			return fmt.Errorf("listing boards: %w", err)
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(boards)
		}

		count := 0
		for _, b := range boards {
			if b.Archived && !listArchived {
				continue
			}
			modified := time.Unix(b.ModifiedAt, 0).Format("2006-01-02 15:04")
			marker := ""
			if b.Archived {
				marker = " (archived)"
			}
			fmt.Printf("%s  %-30s %s%s\n", shortID(b.ID), b.Name, modified, marker)
			count++
		}
		if count == 0 {
			fmt.Println("No boards. Create one with: canvas create <name>")
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVarP(&listArchived, "all", "a", false, "Include archived boards")
	rootCmd.AddCommand(listCmd)
}
