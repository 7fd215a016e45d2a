package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-hash-mcp/internal/fingerprint"
	"github.com/ironsheep/image-hash-mcp/internal/hasher"
)

type hashJSON struct {
	Path  string `json:"path"`
	Hex   string `json:"hex,omitempty"`
	Bits  string `json:"bits,omitempty"`
	Error string `json:"error,omitempty"`
}

func newHashCommand(ctx *commandContext) *cobra.Command {
	var bits, asJSON bool
	var workers int

	cmd := &cobra.Command{
		Use:   "hash <image>...",
		Short: "Print the fingerprint of each image",
		Long: "Print one line per image: the 64-digit hex hash followed by the path.\n" +
			"Images are hashed in parallel; output keeps the argument order.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, cfg, err := ctx.hasher()
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Workers
			}

			results := h.HashFiles(cmd.Context(), args, workers)
			if asJSON {
				return writeHashJSON(cmd.OutOrStdout(), results, bits)
			}
			return writeHashLines(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, bits)
		},
	}

	cmd.Flags().BoolVar(&bits, "bits", false, "Print the 256-character bit string instead of hex")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Images hashed in parallel (default from configuration)")

	return cmd
}

func renderHash(fp *fingerprint.Fingerprint, bits bool) string {
	if bits {
		return fp.String()
	}
	return fp.Hex()
}

// errHashFailed reports that at least one image could not be hashed.
var errHashFailed = errors.New("some images could not be hashed")

func writeHashLines(out, errOut io.Writer, results []hasher.Result, bits bool) error {
	failed := false
	for _, r := range results {
		if r.Err != nil {
			failed = true
			fmt.Fprintf(errOut, "%s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s  %s\n", renderHash(r.Fingerprint, bits), r.Path)
	}
	if failed {
		return errHashFailed
	}
	return nil
}

func writeHashJSON(out io.Writer, results []hasher.Result, bits bool) error {
	items := make([]hashJSON, 0, len(results))
	failed := false
	for _, r := range results {
		item := hashJSON{Path: r.Path}
		switch {
		case r.Err != nil:
			failed = true
			item.Error = r.Err.Error()
		case bits:
			item.Bits = r.Fingerprint.String()
		default:
			item.Hex = r.Fingerprint.Hex()
		}
		items = append(items, item)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(items); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if failed {
		return errHashFailed
	}
	return nil
}

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Print the bit string of a hex fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := fingerprint.FromHex(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fp.String())
			return nil
		},
	}
}
