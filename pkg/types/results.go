package types

// LinkStatus is the outcome of reconciling one script link
type LinkStatus string

const (
	// LinkCreated means a new link was made where nothing existed
	LinkCreated LinkStatus = "created"
	// LinkReplaced means an existing entry was atomically replaced
	LinkReplaced LinkStatus = "replaced"
	// LinkUnchanged means the link already pointed at the script
	LinkUnchanged LinkStatus = "unchanged"
	// LinkSkipped means a foreign entry was left in place
	LinkSkipped LinkStatus = "skipped"
	// LinkRemoved means the link was deleted on uninstall
	LinkRemoved LinkStatus = "removed"
)

// LinkResult records what happened to the link for one script
type LinkResult struct {
	Script string     `json:"script"`
	Link   string     `json:"link"`
	Status LinkStatus `json:"status"`
	// Existing is the previous target when a link was replaced or skipped
	Existing string `json:"existing,omitempty"`
}

// InstalledPackage describes one environment under the environments root
type InstalledPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
	// Known is false when the package metadata could not be read
	Known bool `json:"-"`
}

// UnknownVersion is shown for packages whose metadata cannot be read
const UnknownVersion = "unknown"

// PackageOutcome is the result kind of processing one package
type PackageOutcome string

const (
	OutcomeInstalled    PackageOutcome = "installed"
	OutcomeUpgraded     PackageOutcome = "upgraded"
	OutcomeDowngraded   PackageOutcome = "downgraded"
	OutcomeUnchanged    PackageOutcome = "unchanged"
	OutcomeUninstalled  PackageOutcome = "uninstalled"
	OutcomeNotInstalled PackageOutcome = "not-installed"
)

// PackageResult is the per-package report of a mutating command
type PackageResult struct {
	Name            string         `json:"name"`
	Outcome         PackageOutcome `json:"outcome"`
	PreviousVersion string         `json:"previous_version,omitempty"`
	Version         string         `json:"version,omitempty"`
	Links           []LinkResult   `json:"links,omitempty"`
	// Suggestion is a close installed name for a package that is not installed
	Suggestion string `json:"suggestion,omitempty"`
}

// Command names carried by reports
const (
	CommandInstall   = "install"
	CommandUpdate    = "update"
	CommandUninstall = "uninstall"
)

// Report is the result of a mutating command, one entry per package in
// processing order
type Report struct {
	Command  string          `json:"command"`
	Packages []PackageResult `json:"packages"`
}

// Listing is the result of list
type Listing struct {
	Packages []InstalledPackage `json:"packages"`
}

// FreezeList holds name==version requirement lines
type FreezeList struct {
	Requirements []string `json:"requirements"`
}

// SearchResult is the outcome of a package index search
type SearchResult struct {
	Query  string `json:"query"`
	Found  bool   `json:"found"`
	Output string `json:"output"`
}

// VersionInfo describes the running binary
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}
