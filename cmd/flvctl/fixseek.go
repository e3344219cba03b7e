package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
	"example.com/flvgate/internal/splice"
)

func newFixSeekCmd(a *app) *cobra.Command {
	var anchorTags int
	cmd := &cobra.Command{
		Use:   "fix-seek HEAD BROKEN OUT",
		Short: "Restore the header of a recording that lost its metadata",
		Long: `Write the header, metadata and first --anchor-tags tags of HEAD,
followed by BROKEN from its first video tag. HEAD must be a healthy recording
with the same encoding settings. Nothing checks that the two line up.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			headPath, brokenPath, outPath := args[0], args[1], args[2]
			defer a.finish("fix-seek")
			opts := splice.SeekOptions{AnchorTags: a.cfg.FixSeek.AnchorTags}
			if cmd.Flags().Changed("anchor-tags") {
				if anchorTags <= 0 {
					return fmt.Errorf("--anchor-tags must be positive")
				}
				opts.AnchorTags = anchorTags
			}
			if err := common.CheckOutputFree(outPath); err != nil {
				return err
			}
			head, closeHead, err := a.openSource(headPath)
			if err != nil {
				return err
			}
			defer closeHead()
			broken, closeBroken, err := a.openSource(brokenPath)
			if err != nil {
				return err
			}
			defer closeBroken()

			var sj splice.SeekJunction
			err = a.writeOutput("fix-seek", outPath, func(e *splice.Emitter) error {
				var err error
				sj, err = splice.FixSeek(head, broken, e, opts)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fix-seek: %s[0:%d] + %s[%d:] (first video at %s) -> %s\n",
				headPath, sj.HeadOffset, brokenPath, sj.BrokenOffset, flv.FormatClock(sj.BrokenTimestamp), outPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&anchorTags, "anchor-tags", 0, "tags of HEAD kept after its metadata (default from config, 2)")
	return cmd
}
