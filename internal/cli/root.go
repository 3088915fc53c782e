// Package cli implements the pipis command tree
package cli

import (
	"context"
	"embed"
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	"github.com/arthur-debert/pipis/internal/version"
	"github.com/arthur-debert/pipis/pkg/cobrax/topics"
	"github.com/arthur-debert/pipis/pkg/config"
	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/executil"
	"github.com/arthur-debert/pipis/pkg/filesystem"
	"github.com/arthur-debert/pipis/pkg/logging"
	"github.com/arthur-debert/pipis/pkg/manager"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/arthur-debert/pipis/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

// annotationNoConfig marks commands that run without resolving the configuration
const annotationNoConfig = "pipis/no-config"

// Deps are the external resources a command tree works with
type Deps struct {
	Runner executil.Runner
	FS     types.FS
	In     io.Reader
	Out    io.Writer
	Err    io.Writer

	// SystemConfigDir and UserConfigDir replace the default config
	// directories when set
	SystemConfigDir string
	UserConfigDir   string
}

// DefaultDeps wires the real interpreter, filesystem and standard streams.
// Subprocess output goes to stderr so stdout only carries results.
func DefaultDeps() Deps {
	return Deps{
		Runner: executil.NewExecRunner(os.Stderr, os.Stderr),
		FS:     filesystem.NewOS(),
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
}

type globalFlags struct {
	verbosity  int
	format     string
	configFile string
	venvs      string
	bin        string
	python     string
}

// app holds the state shared by the commands of one invocation
type app struct {
	deps  Deps
	flags globalFlags

	// started is set once flag and argument parsing succeeded
	started bool
	cfg     *config.Config
	mgr     *manager.Manager
	out     ui.Renderer
	errOut  ui.Renderer
}

// NewRootCmd creates the root command
func NewRootCmd(deps Deps) *cobra.Command {
	rootCmd, _ := newRoot(deps)
	return rootCmd
}

func newRoot(deps Deps) (*cobra.Command, *app) {
	initTemplateFormatting()
	a := &app{deps: deps}

	rootCmd := &cobra.Command{
		Use:     "pipis",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrUsage, MsgErrNoCommand)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}
	rootCmd.SetIn(deps.In)
	rootCmd.SetOut(deps.Out)
	rootCmd.SetErr(deps.Err)
	rootCmd.SetVersionTemplate("pipis version: {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrUsage, err.Error())
	})

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&a.flags.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.StringVar(&a.flags.format, "format", "auto", MsgFlagFormat)
	pf.StringVar(&a.flags.configFile, "config", "", MsgFlagConfig)
	pf.StringVar(&a.flags.venvs, "venvs", "", MsgFlagVenvs)
	pf.StringVar(&a.flags.bin, "bin", "", MsgFlagBin)
	pf.StringVar(&a.flags.python, "python", "", MsgFlagPython)
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return ui.FormatNames, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{ID: "packages", Title: "Package commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "Misc:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(a.newInstallCmd())
	rootCmd.AddCommand(a.newUpdateCmd())
	rootCmd.AddCommand(a.newUninstallCmd())
	rootCmd.AddCommand(a.newListCmd())
	rootCmd.AddCommand(a.newFreezeCmd())
	rootCmd.AddCommand(a.newSearchCmd())
	rootCmd.AddCommand(a.newVersionCmd())
	rootCmd.AddCommand(a.newGenconfigCmd())
	rootCmd.AddCommand(a.newCompletionCmd())

	if sub, err := fs.Sub(topicFiles, "topics"); err == nil {
		if _, err := topics.Initialize(rootCmd, sub, topics.Options{Renderer: topics.NewGlamourRenderer()}); err != nil {
			log.Warn().Err(err).Msg("Help topics unavailable")
		}
	}

	return rootCmd, a
}

// setup runs after argument parsing: logging, renderers, configuration
func (a *app) setup(cmd *cobra.Command) error {
	a.started = true
	logging.SetupLoggerWithOutput(a.flags.verbosity, a.deps.Err)
	log.Debug().Str("command", cmd.CommandPath()).Msg("Command started")

	format, err := ui.ParseFormat(a.flags.format)
	if err != nil {
		return err
	}
	if a.out, err = ui.NewRenderer(format, a.deps.Out); err != nil {
		return err
	}
	if a.errOut, err = ui.NewRenderer(format, a.deps.Err); err != nil {
		return err
	}

	if cmd.Annotations[annotationNoConfig] != "" || cmd.Name() == "help" {
		return nil
	}

	a.cfg, err = config.Load(config.Options{
		ConfigFile: a.flags.configFile,
		Overrides: config.Config{
			Venvs:  a.flags.venvs,
			Bin:    a.flags.bin,
			Python: a.flags.python,
		},
		SystemDir: a.deps.SystemConfigDir,
		UserDir:   a.deps.UserConfigDir,
	})
	if err != nil {
		return err
	}

	a.mgr = manager.New(a.cfg, a.deps.Runner, a.deps.FS)
	if f, ok := a.deps.Out.(*os.File); ok && ui.IsTerminal(f) && format != ui.FormatJSON {
		a.mgr.WithProgress(newProgressBar(a.deps.Err))
	}
	return nil
}

// Execute runs the command line and renders any error. The returned error
// carries the code that decides the exit status.
func Execute(ctx context.Context, deps Deps, args []string) error {
	rootCmd, a := newRoot(deps)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	err = a.classify(ctx, err)
	a.renderError(err)
	return err
}

// classify gives errors that do not carry a code one: failures before the
// command ran are usage errors
func (a *app) classify(ctx context.Context, err error) error {
	if errors.GetErrorCode(err) != errors.ErrUnknown {
		return err
	}
	switch {
	case ctx.Err() != nil || stderrors.Is(err, context.Canceled):
		return errors.Wrap(err, errors.ErrInternal, MsgErrInterrupted)
	case !a.started:
		return errors.Wrap(err, errors.ErrUsage, err.Error())
	default:
		return errors.Wrap(err, errors.ErrInternal, err.Error())
	}
}

func (a *app) renderError(err error) {
	r := a.errOut
	if r == nil {
		r, _ = ui.NewRenderer(ui.FormatText, a.deps.Err)
	}
	if rerr := r.RenderError(err); rerr != nil {
		log.Error().Err(rerr).AnErr("original", err).Msg("Cannot render error")
	}
}
