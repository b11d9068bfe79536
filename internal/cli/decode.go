package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/twinfer/combo/pkg/layout"
)

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		layoutPath string
		trace      bool
	)

	cmd := &cobra.Command{
		Use:   "decode --layout <layout.yaml> <data-file>",
		Short: "Decode a binary file with a YAML layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, rootOpts, layoutPath, args[0], trace)
		},
	}

	cmd.Flags().StringVarP(&layoutPath, "layout", "l", "", "layout file (required)")
	cmd.Flags().BoolVar(&trace, "trace", false, "log every field read (with --verbose)")
	_ = cmd.MarkFlagRequired("layout")

	return cmd
}

func runDecode(cmd *cobra.Command, opts *RootOptions, layoutPath, dataPath string, trace bool) error {
	f := opts.formatter(cmd)

	data, err := os.ReadFile(dataPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading data file", err)
	}

	loader := layout.NewLoader(
		layout.WithLogger(opts.logger(cmd.ErrOrStderr())),
		layout.WithTrace(trace),
		layout.WithoutCaching(),
	)
	dec, err := loader.Load(layoutPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading layout", err)
	}
	f.VerboseLog("Decoding %d bytes with layout %s", len(data), dec.Layout().Meta.ID)

	rec, err := dec.Decode(cmd.Context(), data)
	if err != nil {
		index := 0
		var fe *layout.FieldError
		if errors.As(err, &fe) {
			index = fe.Index
		}
		return f.Failure(err.Error(), index)
	}

	return f.Success(rec, func(w io.Writer) {
		for _, field := range dec.Layout().Seq {
			if v, ok := rec[field.ID]; ok {
				fmt.Fprintf(w, "%s: %s\n", field.ID, formatValue(v))
			}
		}
	})
}

// formatValue renders byte strings as hex and everything else with %v.
func formatValue(v any) string {
	switch x := v.(type) {
	case []byte:
		return "0x" + hex.EncodeToString(x)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = formatValue(item)
		}
		return fmt.Sprintf("%v", parts)
	default:
		return fmt.Sprintf("%v", v)
	}
}
