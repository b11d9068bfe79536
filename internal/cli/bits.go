package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/twinfer/combo/pkg/binary"
)

// NewBitsCommand creates the bits command.
func NewBitsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bits <bitstring>...",
		Short: "Pack a bit string into bytes",
		Long: `Pack '0'/'1' characters into bytes, eight per byte, first bit most
significant. Whitespace, underscores and argument boundaries are ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBits(cmd, rootOpts, args)
		},
	}
}

// PackResult is the JSON payload of the bits command.
type PackResult struct {
	Hex   string `json:"hex"`
	Bytes int    `json:"bytes"`
}

func runBits(cmd *cobra.Command, opts *RootOptions, args []string) error {
	f := opts.formatter(cmd)
	for _, arg := range args {
		if err := checkBits(arg); err != nil {
			return err
		}
	}
	data := binary.AsBinary(strings.ReplaceAll(strings.Join(args, ""), "_", ""))
	res := PackResult{Hex: hex.EncodeToString(data), Bytes: len(data)}
	return f.Success(res, func(w io.Writer) {
		fmt.Fprintln(w, res.Hex)
	})
}

// checkBits rejects anything but '0', '1', '_' and whitespace.
func checkBits(bits string) error {
	if strings.IndexFunc(bits, func(r rune) bool {
		return r != '0' && r != '1' && r != '_' && !unicode.IsSpace(r)
	}) >= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid bit string %q", bits))
	}
	return nil
}
