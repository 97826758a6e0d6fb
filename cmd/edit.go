package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"mulberry/canvas/internal/config"
	"mulberry/canvas/internal/session"
	"mulberry/canvas/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit <board>",
	Short: "Open a board in the interactive editor",
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

		s := session.New(be)
		if err := s.Open(boardID); err != nil {
			return err
		}
		defer s.Close()

		p := tea.NewProgram(tui.New(s, config.Load()), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running editor: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
