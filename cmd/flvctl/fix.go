package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
	"example.com/flvgate/internal/splice"
)

func newFixCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fix IN OUT",
		Short: "Drop invalid data and backward timestamps",
		Long: `Copy every valid tag of IN to OUT, skipping invalid bytes and
dropping tags whose timestamp goes backwards.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, outPath := args[0], args[1]
			defer a.finish("fix")
			if err := common.CheckOutputFree(outPath); err != nil {
				return err
			}
			src, closeSrc, err := a.openSource(in)
			if err != nil {
				return err
			}
			defer closeSrc()

			opts := splice.FixOptions{
				OnError: a.logTagError(in, true),
				OnDrop: func(tag flv.Tag, last uint32) {
					common.Debugf("%s: backward timestamp, dropping %s tag at offset %d (%s < %s)",
						in, tag.Kind, tag.Offset, flv.FormatClock(tag.Timestamp), flv.FormatClock(last))
				},
				Metrics: a.metrics,
			}
			var res splice.FixResult
			err = a.writeOutput("fix", outPath, func(e *splice.Emitter) error {
				var err error
				res, err = splice.Fix(src, e, opts)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fix: %d tags kept, %d dropped, %d bytes skipped -> %s (%s)\n",
				res.Tags, res.Dropped, res.Skipped, outPath, common.FormatBytes(res.Written))
			return nil
		},
	}
}
