package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mulberry/canvas/internal/config"
	"mulberry/canvas/internal/render"
	"mulberry/canvas/internal/session"
)

var (
	exportOut  string
	exportFont string
)

var exportCmd = &cobra.Command{
	Use:   "export <board>",
	Short: "Export a board to a PNG image",
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

		font := exportFont
		if font == "" {
			font = config.Load().FontPath
		}

		out := exportOut
		if out == "" {
			name := strings.ReplaceAll(strings.ToLower(s.Board().Name), " ", "-")
			out = name + ".png"
		}

		ex := &render.Exporter{FontPath: font}
		if err := ex.Export(s, out); err != nil {
			return err
		}
		fmt.Printf("Exported %s to %s\n", s.Board().Name, out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (defaults to <board-name>.png)")
	exportCmd.Flags().StringVar(&exportFont, "font", "", "TTF font for labels (overrides ~/.canvasrc)")
	rootCmd.AddCommand(exportCmd)
}
