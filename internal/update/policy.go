package update

import (
	"github.com/nebula-desktop/nebula/internal/types"
)

// SkipUpdateFlag disables update checks for one launch. Launch scripts pass it
// verbatim, so the spelling must not change.
const SkipUpdateFlag = "--skip-update"

// SkipRequested reports whether SkipUpdateFlag appears anywhere in args.
// The match is literal; "--skip-update=false" does not count.
func SkipRequested(args []string) bool {
	for _, arg := range args {
		if arg == SkipUpdateFlag {
			return true
		}
	}
	return false
}

// IsDev reports whether version belongs to a development build.
func IsDev(version string) bool {
	return version == "" || version == "dev"
}

// PolicyInput is everything a Policy is derived from.
type PolicyInput struct {
	Args []string
	// Skip is the parsed skip flag. It also covers "--skip-update=true",
	// which the literal scan of Args does not match.
	Skip    bool
	Build   types.BuildMode
	Version string
	Trigger types.Trigger
	Prompt  types.PromptMode
}

// NewPolicy derives the policy for one invocation. Suppression comes from
// the skip flag or a debug build; announcing "up to date" only makes sense
// when the user asked for the check.
func NewPolicy(in PolicyInput) Policy {
	prompt := in.Prompt
	if prompt == "" {
		prompt = types.PromptInformational
		if in.Trigger.IsManual() {
			prompt = types.PromptMandatory
		}
	}

	return Policy{
		Suppressed:       in.Skip || SkipRequested(in.Args) || in.Build.IsDebug() || IsDev(in.Version),
		AnnounceUpToDate: in.Trigger.IsManual(),
		Prompt:           prompt,
		Trigger:          in.Trigger,
	}
}
