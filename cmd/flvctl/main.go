package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/config"
	"example.com/flvgate/internal/flv"
	"example.com/flvgate/internal/mapfile"
	"example.com/flvgate/internal/splice"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath  string
	quiet       bool
	progress    bool
	metricsFile string
	journalPath string
	keepPartial bool

	cfg     config.Config
	metrics *common.Metrics
	journal *common.Journal
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "flvctl",
		Short: "Repair, cut and splice FLV recordings",
		Long: `flvctl rebuilds FLV files from byte ranges of their inputs.

Outputs are never overwritten: every writing command refuses an existing
output path before doing any work.`,
		Version:           fmt.Sprintf("%s (built %s)", version, buildDate),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress per-tag diagnostics")
	flags.BoolVar(&a.progress, "progress", false, "display progress updates on stderr")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	flags.StringVar(&a.journalPath, "journal", "", "JSONL journal of the byte ranges written")
	flags.BoolVar(&a.keepPartial, "keep-partial", false, "keep a partially written output after a failure")

	root.AddCommand(
		newCutCmd(a),
		newFixCmd(a),
		newMergeCmd(a),
		newFixSeekCmd(a),
		newInspectCmd(a),
		newReplayCmd(a),
	)
	return root
}

// setup loads the configuration and lets explicit flags override it.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	flags := cmd.Flags()
	if !flags.Changed("metrics-file") {
		a.metricsFile = cfg.Metrics.Textfile
	}
	if !flags.Changed("journal") {
		a.journalPath = cfg.Journal.Path
	}
	if !flags.Changed("keep-partial") {
		a.keepPartial = cfg.Output.KeepPartial
	}
	common.SetQuiet(a.quiet)
	if err := setupLogging(cfg.Logs); err != nil {
		return err
	}
	a.metrics = common.NewMetrics()
	a.metrics.Start()
	if a.journalPath != "" {
		a.journal = common.NewJournal(a.journalPath)
	}
	return nil
}

func setupLogging(logs config.LogConfig) error {
	if logs.File == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(logs.File), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   logs.File,
		MaxSize:    logs.MaxSizeMB,
		MaxAge:     logs.MaxAgeDays,
		MaxBackups: logs.MaxBackups,
		Compress:   logs.Compress,
	}
	common.SetLogOutput(io.MultiWriter(os.Stderr, rotator))
	return nil
}

// finish stops the run clock and exports metrics when requested.
func (a *app) finish(op string) {
	if a.metrics == nil {
		return
	}
	a.metrics.Stop()
	if a.metricsFile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.metricsFile, op); err != nil {
		common.Warnf("write metrics %s: %v", a.metricsFile, err)
	}
}

func (a *app) startProgress() func() {
	if !a.progress {
		return func() {}
	}
	return common.StartProgressPrinter(os.Stderr, a.metrics, 500*time.Millisecond)
}

// openSource maps path read-only. The digest is only computed when a journal
// will record it.
func (a *app) openSource(path string) (splice.Source, func(), error) {
	return openSource(path, a.journal != nil)
}

func openSource(path string, digest bool) (splice.Source, func(), error) {
	f, err := mapfile.Open(path)
	if err != nil {
		return splice.Source{}, nil, err
	}
	src := splice.Source{Name: path, Data: f.Bytes()}
	if digest {
		src.SHA256 = common.Sha256OfBytes(src.Data)
	}
	return src, func() { f.Close() }, nil
}

// writeOutput creates path and runs fn against an Emitter writing to it. The
// file is committed when fn succeeds and removed otherwise, unless partial
// output was asked for.
func (a *app) writeOutput(op, path string, fn func(*splice.Emitter) error) error {
	out, err := common.CreateOutput(path)
	if err != nil {
		return err
	}
	stop := a.startProgress()
	e := splice.NewEmitter(out, splice.EmitterOptions{
		Op:      op,
		Output:  path,
		Journal: a.journal,
		Metrics: a.metrics,
	})
	err = fn(e)
	stop()
	if err == nil {
		err = out.Commit()
	}
	if err == nil {
		if a.journal != nil {
			if jerr := a.journal.Complete(op, path, e.Written()); jerr != nil {
				return fmt.Errorf("record %s run in journal: %w", op, jerr)
			}
		}
		return nil
	}
	if a.keepPartial {
		if cerr := out.Commit(); cerr == nil {
			common.Warnf("keeping partial output %s (%s)", path, common.FormatBytes(e.Written()))
		}
		return err
	}
	if rerr := out.Abort(); rerr != nil {
		common.Warnf("remove partial output %s: %v", path, rerr)
	}
	return err
}

// logTagError reports a structural error. With resync the walk goes on one
// byte further; otherwise it stops at te.
func (a *app) logTagError(name string, resync bool) func(*flv.TagError) {
	if resync {
		return func(te *flv.TagError) {
			common.Debugf("%s: skipping %v", name, te)
		}
	}
	return func(te *flv.TagError) {
		common.Warnf("%s: stopping at %v", name, te)
	}
}
