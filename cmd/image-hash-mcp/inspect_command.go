package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-hash-mcp/internal/fingerprint"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <image>",
		Short: "Show quadrant thresholds and the bit grid of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, _, err := ctx.hasher()
			if err != nil {
				return err
			}
			fp, err := h.HashFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeInspect(out, args[0], fp, isTerminal(out))
			return nil
		},
	}
}

func writeInspect(out io.Writer, path string, fp *fingerprint.Fingerprint, fancy bool) {
	fmt.Fprintf(out, "%s\n%s\n\n", path, fp.Hex())
	fmt.Fprintln(out, renderTable([]string{"Quadrant", "Threshold", "Set bits"}, quadrantRows(fp), fancy))
	fmt.Fprintln(out)
	fmt.Fprint(out, bitGrid(fp))
}

func quadrantRows(fp *fingerprint.Fingerprint) [][]string {
	bits := fp.Bits()
	var set [len(fingerprint.Quadrants)]int
	for i, b := range bits {
		set[fingerprint.QuadrantOf(i)] += int(b)
	}

	thresholds := fp.Thresholds()
	rows := make([][]string, 0, len(fingerprint.Quadrants))
	for _, q := range fingerprint.Quadrants {
		rows = append(rows, []string{
			q.String(),
			strconv.Itoa(int(thresholds.Get(q))),
			fmt.Sprintf("%d/%d", set[q], fingerprint.Pixels/4),
		})
	}
	return rows
}

// bitGrid draws the bits row by row, '#' for 1 and '.' for 0.
func bitGrid(fp *fingerprint.Fingerprint) string {
	bits := fp.Bits()
	var sb strings.Builder
	for y := 0; y < fingerprint.Size; y++ {
		for x := 0; x < fingerprint.Size; x++ {
			if bits[y*fingerprint.Size+x] == 1 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
