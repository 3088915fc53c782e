package manager

import (
	"github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/pipis/pkg/types"
)

// compareVersions classifies a version change. Versions that are not
// semver-like only distinguish equal from different.
func compareVersions(previous, current string) types.PackageOutcome {
	if previous == "" {
		return types.OutcomeInstalled
	}
	if previous == current {
		return types.OutcomeUnchanged
	}

	prev, errPrev := semver.NewVersion(previous)
	cur, errCur := semver.NewVersion(current)
	if errPrev != nil || errCur != nil {
		return types.OutcomeUpgraded
	}

	switch cur.Compare(prev) {
	case 1:
		return types.OutcomeUpgraded
	case -1:
		return types.OutcomeDowngraded
	default:
		return types.OutcomeUnchanged
	}
}
