package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Install Python CLI packages in isolated environments"
	MsgInstallShort    = "Install packages"
	MsgUpdateShort     = "Update installed packages"
	MsgUninstallShort  = "Uninstall packages"
	MsgListShort       = "List installed packages"
	MsgFreezeShort     = "Output installed packages in requirements format"
	MsgSearchShort     = "Search the package index"
	MsgVersionShort    = "Show version and exit"
	MsgGenconfigShort  = "Print the resolved configuration as a config file"
	MsgCompletionShort = "Generate shell completion script"

	// Flag descriptions
	MsgFlagVerbose         = "Increase verbosity (-v INFO and verbose pip, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat          = "Output format: auto, term, text or json"
	MsgFlagConfig          = "Config file loaded after the system and user config files"
	MsgFlagVenvs           = "Directory holding one environment per package"
	MsgFlagBin             = "Directory receiving the script links"
	MsgFlagPython          = "Base interpreter used to create environments"
	MsgFlagYes             = "Do not ask for confirmation"
	MsgFlagDependency      = "Add a dependency to the package environment"
	MsgFlagSystem          = "Give the environment access to the system site-packages"
	MsgFlagUpgrade         = "Upgrade the package and replace existing links"
	MsgFlagIgnoreInstalled = "Reinstall packages even if they are already installed"
	MsgFlagRequirement     = "Read package names from a requirements file"

	// Confirmation
	MsgConfirmPackage = "Package '%s' will be %s."
	MsgExit           = "Exit."

	// Status messages
	MsgNothingToDo = "No packages installed"

	// Error messages
	MsgErrNoCommand   = "no command specified"
	MsgErrInterrupted = "interrupted"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample    = strings.TrimRight(msgInstallExampleRaw, "\n")

	//go:embed msgs/update-long.txt
	msgUpdateLongRaw string
	MsgUpdateLong    = strings.TrimSpace(msgUpdateLongRaw)

	//go:embed msgs/uninstall-long.txt
	msgUninstallLongRaw string
	MsgUninstallLong    = strings.TrimSpace(msgUninstallLongRaw)

	//go:embed msgs/search-long.txt
	msgSearchLongRaw string
	MsgSearchLong    = strings.TrimSpace(msgSearchLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
