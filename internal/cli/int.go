package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twinfer/combo/pkg/binary"
)

type intOptions struct {
	bits      int
	signed    bool
	bigEndian bool
	offset    int
}

// NewIntCommand creates the int command.
func NewIntCommand(rootOpts *RootOptions) *cobra.Command {
	o := &intOptions{}

	cmd := &cobra.Command{
		Use:   "int --bits N <bitstring>",
		Short: "Read an integer from a bit string",
		Long: `Read an integer of any width from a packed bit string, starting at
--offset bits. --be folds the bits in reverse reading order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInt(cmd, rootOpts, o, args[0])
		},
	}

	cmd.Flags().IntVarP(&o.bits, "bits", "n", 0, "field width in bits (required)")
	cmd.Flags().BoolVarP(&o.signed, "signed", "s", false, "two's complement")
	cmd.Flags().BoolVar(&o.bigEndian, "be", false, "reverse the fold order")
	cmd.Flags().IntVar(&o.offset, "offset", 0, "bit offset to start at")
	_ = cmd.MarkFlagRequired("bits")

	return cmd
}

// IntResult is the JSON payload of the int command.
type IntResult struct {
	Value any `json:"value"`
	Index int `json:"index"`
}

func runInt(cmd *cobra.Command, opts *RootOptions, o *intOptions, bits string) error {
	f := opts.formatter(cmd)
	if o.bits < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--bits must be at least 1, %d given", o.bits))
	}
	if err := checkBits(bits); err != nil {
		return err
	}
	if o.offset < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--offset must not be negative, %d given", o.offset))
	}

	var p *binary.Parser
	switch {
	case o.bits <= binary.MaxNativeBits && o.signed:
		p = binary.Int(o.bits, o.bigEndian)
	case o.bits <= binary.MaxNativeBits:
		p = binary.Uint(o.bits, o.bigEndian)
	case o.signed:
		p = binary.BigInt(o.bits, o.bigEndian)
	default:
		p = binary.BigUint(o.bits, o.bigEndian)
	}

	data := binary.AsBinary(strings.ReplaceAll(bits, "_", ""))
	f.VerboseLog("Reading %d bits at offset %d from %d bytes", o.bits, o.offset, len(data))

	s := p.Run(binary.State{Source: data, Index: o.offset})
	if s.IsError {
		return f.Failure(fmt.Sprint(s.Error), s.Index)
	}
	res := IntResult{Value: s.Result, Index: s.Index}
	return f.Success(res, func(w io.Writer) {
		fmt.Fprintln(w, res.Value)
	})
}
