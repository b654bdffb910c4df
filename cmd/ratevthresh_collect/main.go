package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/ratevthresh_go/internal/collector"
	"github.com/user/ratevthresh_go/internal/config"
	"github.com/user/ratevthresh_go/internal/parser"
	"github.com/user/ratevthresh_go/internal/report"
)

const usageText = `Usage: ratevthresh_collect <suffix> [<suffix2> ... ]
   where <suffix> is the 5-character string that is found
   in the output filenames from ratevsthreshold_allchan,
   as in 'DSC_ratevthresh_roctagm2_<suffix>_s05c09.txt'
   (put -- before suffixes that start with '-')
`

// Exit statuses.
const (
	exitOK      = 0
	exitUsage   = 1
	exitFailure = 2
)

// flagError marks a command line that could not be parsed.
type flagError struct{ err error }

func (e flagError) Error() string { return e.err.Error() }
func (e flagError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr))
}

func run(args []string, fsys afero.Fs, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCommand(fsys, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	if errors.As(err, &collector.UsageError{}) {
		return exitUsage
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if errors.As(err, &flagError{}) {
		return exitUsage
	}
	return exitFailure
}

func newRootCommand(fsys afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "ratevthresh_collect <suffix> [<suffix2> ...]",
		Short: "Collect DSC rate-vs-threshold scan files into one table",
		Long: `ratevthresh_collect reads the per-channel files written by
ratevsthreshold_allchan for slots 4-11, channels 0-15 and prints one table:

  threshold <t>
  slot <s>:  <rate ch0> ... <rate ch15>

Suffixes starting with '-' must follow "--", e.g. ratevthresh_collect -- -ab12.

Optionally a PDF report with rate curves and a slot/channel heatmap is written.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprint(stdout, usageText)
				return collector.UsageError{}
			}
			if err := config.ReadFile(v, fsys, cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			logger := newLogger(stderr, cfg.Verbose)
			defer logger.Sync()

			return NewApp(fsys, cfg, stdout, logger).Run(args)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return flagError{err}
	})

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultConfigName+".yaml)")
	flags.String(config.KeyDir, ".", "directory holding the scan files")
	flags.String(config.KeyPrefix, parser.DefaultFilePrefix, "scan filename prefix")
	flags.String(config.KeyMissing, string(report.MissingFail), "what to do with channels without a value (fail, placeholder)")
	flags.String(config.KeyPlaceholder, report.DefaultPlaceholder, "text printed for channels without a value")
	flags.String(config.KeyPDF, "", "write a PDF report to this path")
	flags.Int(config.KeyHeatmapThreshold, 0, "threshold shown in the PDF heatmap (default lowest scanned)")
	flags.Float64(config.KeyTargetRate, config.DefaultTargetRate, "rate used to pick a threshold per channel in the PDF report")
	flags.BoolP(config.KeyVerbose, "v", false, "verbose output on stderr")

	config.SetDefaults(v)
	if err := v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("binding flags: %v", err))
	}
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}
