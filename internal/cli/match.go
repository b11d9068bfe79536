package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/twinfer/combo/pkg/text"
)

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "match <pattern> <input>",
		Short: "Match a literal or pattern at the start of some text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, rootOpts, mode, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", text.ModeLiteral, "matcher (literal|fold|regexp)")

	return cmd
}

// MatchResult is the JSON payload of the match command.
type MatchResult struct {
	Match string `json:"match"`
	Index int    `json:"index"`
}

func runMatch(cmd *cobra.Command, opts *RootOptions, mode, pattern, input string) error {
	f := opts.formatter(cmd)

	p, err := text.NewMatcher(mode, pattern)
	if err != nil {
		return WrapExitError(ExitCommandError, "building matcher", err)
	}

	s := p.Parse(input)
	if s.IsError {
		return f.Failure(fmt.Sprint(s.Error), s.Index)
	}
	res := MatchResult{Match: s.Result.(string), Index: s.Index}
	return f.Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "%q @ %d\n", res.Match, res.Index)
	})
}
