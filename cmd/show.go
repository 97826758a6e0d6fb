package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"mulberry/canvas/internal/board"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <board>",
	Short: "Show a board's nodes and edges",
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

		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		}

		fmt.Printf("%s (%s)\n", data.Board.Name, shortID(data.Board.ID))
		if data.Board.Description != "" {
			fmt.Println(data.Board.Description)
		}
		fmt.Printf("%d nodes, %d edges\n\n", len(data.Nodes), len(data.Edges))

		nodes := append([]board.Node(nil), data.Nodes...)
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].ZIndex < nodes[j].ZIndex })
		for _, n := range nodes {
			w, h := n.Size()
			label := board.Label(n.Payload)
			if label != "" {
				label = " " + label
			}
			fmt.Printf("  %s %-8s (%.0f,%.0f) %gx%g z=%d%s\n",
				shortID(n.ID), n.Type, n.X, n.Y, w, h, n.ZIndex, label)
		}
		if len(data.Edges) > 0 {
			fmt.Println()
			for _, e := range data.Edges {
				routed := ""
				if e.HasWaypoints() {
					routed = fmt.Sprintf(" via %d waypoints", len(e.Style.Waypoints))
				}
				fmt.Printf("  %s %s -> %s (%s)%s\n",
					shortID(e.ID), shortID(e.Source), shortID(e.Target), e.Type, routed)
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(showCmd)
}
