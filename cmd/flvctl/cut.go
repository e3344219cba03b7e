package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
	"example.com/flvgate/internal/splice"
)

func newCutCmd(a *app) *cobra.Command {
	var (
		tolerant bool
		begin    string
		end      string
	)
	cmd := &cobra.Command{
		Use:   "cut IN OUT",
		Short: "Keep the tags within a time range",
		Long: `Copy the header of IN and every tag whose timestamp lies within
[--begin, --end] to OUT. Times use the mm:ss:ms format. Timestamps are
copied unchanged.

Example:
  flvctl cut --begin 01:30:000 --end 02:00:000 rec.flv clip.flv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, outPath := args[0], args[1]
			defer a.finish("cut")
			opts := splice.CutOptions{End: splice.NoEnd, Tolerant: tolerant, Metrics: a.metrics}
			var err error
			if begin != "" {
				if opts.Begin, err = flv.ParseClock(begin); err != nil {
					return err
				}
			}
			if end != "" {
				if opts.End, err = flv.ParseClock(end); err != nil {
					return err
				}
			}
			if opts.Begin > opts.End {
				return fmt.Errorf("begin %s is after end %s", begin, end)
			}
			if err := common.CheckOutputFree(outPath); err != nil {
				return err
			}
			src, closeSrc, err := a.openSource(in)
			if err != nil {
				return err
			}
			defer closeSrc()
			opts.OnError = a.logTagError(in, opts.Tolerant)

			var res splice.CutResult
			err = a.writeOutput("cut", outPath, func(e *splice.Emitter) error {
				var err error
				res, err = splice.Cut(src, e, opts)
				return err
			})
			if err != nil {
				return err
			}
			if res.Skipped > 0 {
				common.Warnf("%s: skipped %d bytes of invalid data", in, res.Skipped)
			}
			if res.Tags == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "cut: no tags in range, %s holds the header only\n", outPath)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cut: %d tags [%s, %s] -> %s (%s)\n",
				res.Tags, flv.FormatClock(res.First), flv.FormatClock(res.Last), outPath, common.FormatBytes(res.Written))
			return nil
		},
	}
	cmd.Flags().BoolVar(&tolerant, "tolerant", false, "skip invalid data instead of aborting")
	cmd.Flags().StringVar(&begin, "begin", "", "first timestamp to keep (mm:ss:ms)")
	cmd.Flags().StringVar(&end, "end", "", "last timestamp to keep (mm:ss:ms)")
	return cmd
}
