package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
	"example.com/flvgate/internal/splice"
)

func newReplayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "replay OUT",
		Short: "Rebuild the output of the last journaled run",
		Long: `Read the journal given with --journal and copy the byte ranges of its
most recent completed run into OUT. Runs that failed are ignored. Sources must be unchanged: their SHA-256 is checked
against the journal before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath := args[0]
			defer a.finish("replay")
			if a.journalPath == "" {
				return errors.New("replay needs --journal")
			}
			entries, err := common.ReadJournal(a.journalPath)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			run, done, ok := common.LastRun(entries)
			if !ok {
				return fmt.Errorf("journal %s has no completed runs", a.journalPath)
			}
			if err := common.CheckOutputFree(outPath); err != nil {
				return err
			}

			sources := make(map[string]splice.Source)
			for _, entry := range run {
				if _, ok := sources[entry.Source]; ok {
					continue
				}
				src, closeSrc, err := openVerified(entry)
				if err != nil {
					return err
				}
				defer closeSrc()
				sources[entry.Source] = src
			}

			// The journal is the input of this run, not a record of it.
			a.journal = nil
			err = a.writeOutput("replay", outPath, func(e *splice.Emitter) error {
				for i, entry := range run {
					if entry.OutOffset != e.Written() {
						return fmt.Errorf("journal entry %d: output offset %d, expected %d", i, entry.OutOffset, e.Written())
					}
					r := flv.ByteRange{Start: int(entry.Offset), Length: int(entry.Length)}
					if err := e.Copy(sources[entry.Source], r); err != nil {
						return fmt.Errorf("journal entry %d: %w", i, err)
					}
				}
				if err := e.Flush(); err != nil {
					return err
				}
				if e.Written() != done.Length {
					return fmt.Errorf("journal ranges cover %d bytes, run wrote %d", e.Written(), done.Length)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "replay: %d ranges of %s run %s -> %s\n",
				len(run), done.Op, done.RunID, outPath)
			return nil
		},
	}
}

// openVerified maps the source of entry and checks it still has the digest
// recorded in the journal.
func openVerified(entry common.JournalEntry) (splice.Source, func(), error) {
	src, closeSrc, err := openSource(entry.Source, true)
	if err != nil {
		return src, nil, err
	}
	if entry.SourceSHA256 == "" {
		common.Warnf("%s: no digest in journal, source not verified", entry.Source)
		return src, closeSrc, nil
	}
	if src.SHA256 != entry.SourceSHA256 {
		closeSrc()
		return src, nil, fmt.Errorf("%s: source changed since the run (sha256 %s, journal %s)", entry.Source, src.SHA256, entry.SourceSHA256)
	}
	return src, closeSrc, nil
}
