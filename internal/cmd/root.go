package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/advisory"
	"github.com/nixpkgs-monitor/updatetool/config"
	"github.com/nixpkgs-monitor/updatetool/corpus"
	"github.com/nixpkgs-monitor/updatetool/report"
	"github.com/nixpkgs-monitor/updatetool/store"
)

type options struct {
	configPath string
	verbosity  int
	outputCSV  string
	distro     string
}

// app is the state shared by the subcommands of one run.
type app struct {
	opts options
	fs   afero.Fs
	out  io.Writer

	conf       config.Config
	advisories *advisory.Cache
	corpora    *corpus.Cache
}

func Execute() error {
	return NewRootCmd(afero.NewOsFs(), os.Stdout).ExecuteContext(context.Background())
}

func NewRootCmd(fs afero.Fs, out io.Writer) *cobra.Command {
	a := &app{fs: fs, out: out}

	cmd := &cobra.Command{
		Use:           "updatetool",
		Short:         "Match security advisories and upstream releases against a package collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd.ErrOrStderr(), a.opts.verbosity)
			return a.init()
		},
	}
	cmd.SetOut(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "path to a YAML config file")
	flags.CountVarP(&a.opts.verbosity, "verbose", "v", "verbose output, can be specified multiple times")
	flags.StringVar(&a.opts.outputCSV, "output-csv", "", "write report in CSV format to `FILE`")
	flags.StringVar(&a.opts.distro, "distro", "nix", "distribution whose packages are checked")

	addCVEUpdate(cmd, a)
	addGLSASync(cmd, a)
	addCVECheck(cmd, a)
	addFindUnmatchedAdvisories(cmd, a)
	addCoverage(cmd, a)
	addCheckUpdates(cmd, a)
	addCheckPackage(cmd, a)
	addCheckPkgVersionMatch(cmd, a)
	addListCorpus(cmd, a)

	return cmd
}

func (a *app) init() error {
	conf, err := config.Load(a.fs, a.opts.configPath)
	if err != nil {
		return xerrors.Errorf("failed to load config: %w", err)
	}
	a.conf = conf

	a.advisories = advisory.NewCache(a.fs, advisory.Sources{
		FeedDir:         conf.FeedDir,
		NVDFeeds:        conf.NVDFeeds,
		GLSADir:         conf.GLSADir,
		GLSAYearPattern: conf.GLSAYearPattern,
		CSAFDir:         conf.CSAFDir,
	})

	providers := map[string]corpus.Provider{}
	for distro, path := range conf.Corpus {
		providers[distro] = corpus.JSONFile{AppFs: a.fs, Path: path}
	}
	a.corpora = corpus.NewCache(providers)
	return nil
}

// packages returns the corpus of the distribution being checked.
func (a *app) packages() (*corpus.Corpus, error) {
	c, err := a.corpora.Get(a.opts.distro)
	if err != nil {
		return nil, xerrors.Errorf("failed to load packages: %w", err)
	}
	return c, nil
}

func (a *app) openDB() (*store.DB, error) {
	db, err := store.Open(a.conf.DBPath)
	if err != nil {
		return nil, xerrors.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (a *app) csv() report.CSV {
	return report.NewCSV(a.fs, a.opts.outputCSV)
}

// setupLogging prints warnings and worse by default. Each -v shows one more
// level.
func setupLogging(w io.Writer, verbosity int) {
	level := log.WarnLevel + log.Level(verbosity)
	if level > log.TraceLevel {
		level = log.TraceLevel
	}
	log.SetOutput(w)
	log.SetLevel(level)
	log.SetFormatter(severityFormatter{})
}

// severityFormatter writes "LEVEL: message key=value ...".
type severityFormatter struct{}

func (severityFormatter) Format(e *log.Entry) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", strings.ToUpper(e.Level.String()), e.Message)

	keys := maps.Keys(e.Data)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}
