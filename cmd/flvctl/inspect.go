package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
	"example.com/flvgate/internal/report"
	"example.com/flvgate/internal/splice"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		tolerant bool
		dumpTags bool
		jsonOut  string
		pdfOut   string
	)
	cmd := &cobra.Command{
		Use:   "inspect IN",
		Short: "Summarise the tags and time ranges of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			defer a.finish("inspect")
			src, closeSrc, err := a.openSource(in)
			if err != nil {
				return err
			}
			defer closeSrc()
			src.SHA256 = common.Sha256OfBytes(src.Data)

			w := cmd.OutOrStdout()
			opts := splice.InspectOptions{
				Tolerant:     tolerant,
				GapThreshold: uint32(a.cfg.Inspect.GapThresholdMs),
				OnError:      a.logTagError(in, tolerant),
				Metrics:      a.metrics,
			}
			if dumpTags {
				opts.OnTag = func(tag flv.Tag) {
					fmt.Fprintf(w, "%10d  %-8s  %s  %8d bytes\n", tag.Offset, tag.Kind, flv.FormatClock(tag.Timestamp), tag.BodyLength)
				}
			}
			stop := a.startProgress()
			res, err := splice.Inspect(src, opts)
			stop()
			if err != nil {
				return err
			}
			printInspection(w, res)

			if jsonOut != "" {
				if err := report.SaveInspectionJSON(res, jsonOut); err != nil {
					return fmt.Errorf("write json report: %w", err)
				}
			}
			if pdfOut != "" {
				if err := report.SaveInspectionPDF(res, pdfOut); err != nil {
					return fmt.Errorf("write pdf report: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tolerant, "tolerant", false, "skip invalid data instead of stopping")
	cmd.Flags().BoolVar(&dumpTags, "tags", false, "print one line per tag")
	cmd.Flags().StringVar(&jsonOut, "json", "", "write the inspection as JSON to this file")
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "write the inspection as PDF to this file")
	return cmd
}

func printInspection(w io.Writer, in splice.Inspection) {
	fmt.Fprintf(w, "%s: %s, sha256 %s\n", in.Name, common.FormatBytes(int64(in.Size)), in.SHA256)
	fmt.Fprintf(w, "tags: %d (video %d, audio %d, metadata %d)\n", in.Tags, in.Video, in.Audio, in.Metadata)
	if !in.FirstMetadata {
		fmt.Fprintln(w, "first tag is not metadata")
	}
	for i, r := range in.Ranges {
		fmt.Fprintf(w, "range %d: %s - %s\n", i+1, flv.FormatClock(r.Start), flv.FormatClock(r.End))
	}
	if in.Backward > 0 {
		fmt.Fprintf(w, "backward timestamps: %d\n", in.Backward)
	}
	if in.SkippedBytes > 0 {
		fmt.Fprintf(w, "skipped bytes: %d\n", in.SkippedBytes)
	}
	if in.Complete {
		fmt.Fprintln(w, "scan: complete")
		return
	}
	fmt.Fprintf(w, "scan: stopped at offset %d (%d%%): %s\n", in.StopOffset, in.StopPercent, in.StopReason)
}
