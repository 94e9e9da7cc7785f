package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"emojisaic/internal/palette"
)

func newPaletteCommand(ctx *commandContext) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "List the glyphs in the configured palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			pal, err := palette.NewCache(cfg.Paths.PaletteDir).For(resolveInt(size, cfg.Mosaic.CellSize))
			if err != nil {
				return err
			}

			rows := make([]table.Row, 0, pal.Len())
			for i := 0; i < pal.Len(); i++ {
				entry := pal.Entry(i)
				rows = append(rows, table.Row{
					i,
					entry.Name,
					fmt.Sprintf("#%02x%02x%02x", int(entry.Color.R), int(entry.Color.G), int(entry.Color.B)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(table.Row{"#", "Glyph", "Average Color"}, rows))
			fmt.Fprintf(cmd.OutOrStdout(), "%d glyphs at cell size %d\n", pal.Len(), pal.CellSize())
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "Cell size to build the palette at")

	return cmd
}
