package cli

import (
	"fmt"

	"github.com/arthur-debert/pipis/internal/version"
	"github.com/arthur-debert/pipis/pkg/config"
	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/manager"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/arthur-debert/pipis/pkg/ui/confirmations"
	"github.com/spf13/cobra"
)

// usageArgs turns argument validation failures into usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.Wrap(err, errors.ErrUsage, err.Error())
		}
		return nil
	}
}

// installedCompletion completes names of installed packages
func (a *app) installedCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if a.mgr == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	pkgs, err := a.mgr.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, p := range pkgs {
		if !contains(args, p.Name) {
			names = append(names, p.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func (a *app) newInstallCmd() *cobra.Command {
	var (
		opts manager.InstallOptions
		yes  bool
	)

	cmd := &cobra.Command{
		Use:     "install [flags] <package>... | -r <file>",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		GroupID: "packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Names = args
			opts.Verbose = a.flags.verbosity > 0

			names, err := a.mgr.PlanInstall(opts)
			if err != nil {
				return err
			}
			if ok, err := a.confirm(yes, names, "installed"); !ok || err != nil {
				return err
			}

			results, err := a.mgr.Install(cmd.Context(), opts)
			return a.report(types.CommandInstall, results, err)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	f.StringVarP(&opts.Dependency, "dependency", "d", "", MsgFlagDependency)
	f.BoolVarP(&opts.System, "system", "s", false, MsgFlagSystem)
	f.BoolVarP(&opts.Upgrade, "upgrade", "U", false, MsgFlagUpgrade)
	f.BoolVarP(&opts.IgnoreInstalled, "ignore-installed", "I", false, MsgFlagIgnoreInstalled)
	f.StringVarP(&opts.Requirement, "requirement", "r", "", MsgFlagRequirement)
	return cmd
}

func (a *app) newUpdateCmd() *cobra.Command {
	var (
		opts manager.UpdateOptions
		yes  bool
	)

	cmd := &cobra.Command{
		Use:               "update [flags] [<package>... | -r <file>]",
		Short:             MsgUpdateShort,
		Long:              MsgUpdateLong,
		GroupID:           "packages",
		ValidArgsFunction: a.installedCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Names = args
			opts.Verbose = a.flags.verbosity > 0

			names, err := a.mgr.PlanUpdate(opts)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return a.out.RenderMessage(MsgNothingToDo)
			}
			if ok, err := a.confirm(yes, names, "updated"); !ok || err != nil {
				return err
			}

			results, err := a.mgr.Update(cmd.Context(), opts)
			return a.report(types.CommandUpdate, results, err)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	f.BoolVarP(&opts.IgnoreInstalled, "ignore-installed", "I", false, MsgFlagIgnoreInstalled)
	f.StringVarP(&opts.Requirement, "requirement", "r", "", MsgFlagRequirement)
	return cmd
}

func (a *app) newUninstallCmd() *cobra.Command {
	var (
		opts manager.UninstallOptions
		yes  bool
	)

	cmd := &cobra.Command{
		Use:               "uninstall [flags] <package>... | -r <file>",
		Short:             MsgUninstallShort,
		Long:              MsgUninstallLong,
		GroupID:           "packages",
		ValidArgsFunction: a.installedCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Names = args

			names, err := a.mgr.PlanUninstall(opts)
			if err != nil {
				return err
			}
			if ok, err := a.confirm(yes, names, "uninstalled"); !ok || err != nil {
				return err
			}

			results, err := a.mgr.Uninstall(cmd.Context(), opts)
			return a.report(types.CommandUninstall, results, err)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	f.StringVarP(&opts.Requirement, "requirement", "r", "", MsgFlagRequirement)
	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		GroupID: "packages",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs, err := a.mgr.List()
			if err != nil {
				return err
			}
			return a.out.RenderResult(types.Listing{Packages: pkgs})
		},
	}
}

func (a *app) newFreezeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "freeze",
		Short:   MsgFreezeShort,
		GroupID: "packages",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := a.mgr.Freeze()
			if err != nil {
				return err
			}
			return a.out.RenderResult(types.FreezeList{Requirements: lines})
		},
	}
}

func (a *app) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "search <query>",
		Short:   MsgSearchShort,
		Long:    MsgSearchLong,
		GroupID: "packages",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.mgr.Search(cmd.Context(), args[0], a.flags.verbosity > 0)
			if err != nil {
				return err
			}
			return a.out.RenderResult(result)
		},
	}
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       MsgVersionShort,
		GroupID:     "misc",
		Args:        usageArgs(cobra.NoArgs),
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.out.RenderResult(types.VersionInfo{
				Version: version.Version,
				Commit:  version.Commit,
				Date:    version.Date,
			})
		},
	}
}

func (a *app) newGenconfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenconfigShort,
		GroupID: "misc",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := config.Generate(a.cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(a.deps.Out, content)
			return err
		},
	}
}

func (a *app) newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  usageArgs(cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)),
		Annotations:           map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// confirm asks before a mutating command unless yes is set. Declining
// prints the exit message and reports false with no error.
func (a *app) confirm(yes bool, names []string, verb string) (bool, error) {
	if yes {
		return true, nil
	}

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf(MsgConfirmPackage, name, verb)
	}

	ok, err := confirmations.NewConsoleDialog(a.deps.In, a.deps.Out).Confirm(lines...)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, a.out.RenderMessage(MsgExit)
	}
	return true, nil
}

// report renders the packages processed so far and passes err through
func (a *app) report(command string, results []types.PackageResult, err error) error {
	if len(results) > 0 {
		if rerr := a.out.RenderResult(types.Report{Command: command, Packages: results}); rerr != nil && err == nil {
			return rerr
		}
	}
	return err
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
