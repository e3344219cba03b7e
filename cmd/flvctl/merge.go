package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
	"example.com/flvgate/internal/splice"
)

func newMergeCmd(a *app) *cobra.Command {
	var (
		skip     int
		timeClue string
	)
	cmd := &cobra.Command{
		Use:   "merge HEAD TAIL OUT",
		Short: "Join two overlapping recordings",
		Long: `Join HEAD and TAIL at the video frame they have in common. The frame
is taken from TAIL, either after skipping --skip video frames or as the first
one within the configured tolerance of --time-clue, and must appear exactly
once in HEAD.

Example:
  flvctl merge --skip 250 part1.flv part2.flv joined.flv`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			headPath, tailPath, outPath := args[0], args[1], args[2]
			defer a.finish("merge")

			opts := splice.MergeOptions{
				SkipFrames:    *a.cfg.Merge.SkipFrames,
				ClueTolerance: uint32(a.cfg.Merge.ClueToleranceMs),
				TailTolerance: a.cfg.Merge.TailTolerancePercent,
				WarnBelow:     a.cfg.Merge.WarnBelowPercent,
				OnError: func(te *flv.TagError) {
					common.Warnf("%s: invalid data before the end of the file: %v", headPath, te)
				},
				Metrics: a.metrics,
			}
			if cmd.Flags().Changed("skip") {
				if skip < 0 {
					return fmt.Errorf("--skip must not be negative")
				}
				opts.SkipFrames = skip
			}
			if timeClue != "" {
				clue, err := flv.ParseClock(timeClue)
				if err != nil {
					return err
				}
				opts.UseTimeClue = true
				opts.TimeClue = clue
			}
			if err := common.CheckOutputFree(outPath); err != nil {
				return err
			}
			head, closeHead, err := a.openSource(headPath)
			if err != nil {
				return err
			}
			defer closeHead()
			tail, closeTail, err := a.openSource(tailPath)
			if err != nil {
				return err
			}
			defer closeTail()

			var j splice.Junction
			err = a.writeOutput("merge", outPath, func(e *splice.Emitter) error {
				var err error
				j, err = splice.Merge(head, tail, e, opts)
				return err
			})
			if err != nil {
				return err
			}
			common.Logf("searching frame %d of %s (%d bytes at %s) in %s, time range [%s, %s]",
				j.NeedleIndex, tailPath, j.NeedleLength, flv.FormatClock(j.NeedleTimestamp), headPath,
				flv.FormatClock(j.MinTimestamp), flv.FormatClock(j.MaxTimestamp))
			if j.TrailingErrors > 0 {
				common.Logf("%s: %d invalid offsets in the last %d%% of the file, as expected for an interrupted recording",
					headPath, j.TrailingErrors, 100-opts.TailTolerance)
			}
			if j.Low {
				common.Warnf("match at %d%% of %s, below %d%%: check the output or choose another frame",
					j.HeadPercent, headPath, opts.WarnBelow)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "merge: %s[0:%d] + %s[%d:] -> %s (%s)\n",
				headPath, j.HeadOffset, tailPath, j.NeedleOffset, outPath, common.FormatBytes(j.OutputLength))
			return nil
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "video frames of TAIL to skip before taking the fingerprint (default from config, 100)")
	cmd.Flags().StringVar(&timeClue, "time-clue", "", "take the fingerprint near this TAIL timestamp (mm:ss:ms)")
	cmd.MarkFlagsMutuallyExclusive("skip", "time-clue")
	return cmd
}
