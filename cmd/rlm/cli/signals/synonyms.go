package signals

import "github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"

// intentSynonyms maps prompt vocabulary to intents. Data, not code: keep
// additions here so they stay reviewable.
var intentSynonyms = map[string]commit.Intent{
	// enable-capability
	"add":       commit.IntentEnableCapability,
	"implement": commit.IntentEnableCapability,
	"create":    commit.IntentEnableCapability,
	"build":     commit.IntentEnableCapability,
	"support":   commit.IntentEnableCapability,
	"introduce": commit.IntentEnableCapability,
	"feature":   commit.IntentEnableCapability,
	"enable":    commit.IntentEnableCapability,
	"new":       commit.IntentEnableCapability,

	// fix-defect
	"fix":        commit.IntentFixDefect,
	"bug":        commit.IntentFixDefect,
	"bugfix":     commit.IntentFixDefect,
	"broken":     commit.IntentFixDefect,
	"crash":      commit.IntentFixDefect,
	"error":      commit.IntentFixDefect,
	"failing":    commit.IntentFixDefect,
	"failure":    commit.IntentFixDefect,
	"regression": commit.IntentFixDefect,
	"defect":     commit.IntentFixDefect,
	"repair":     commit.IntentFixDefect,
	"patch":      commit.IntentFixDefect,
	"wrong":      commit.IntentFixDefect,

	// improve-quality
	"improve":  commit.IntentImproveQuality,
	"optimize": commit.IntentImproveQuality,
	"speed":    commit.IntentImproveQuality,
	"perf":     commit.IntentImproveQuality,
	"faster":   commit.IntentImproveQuality,
	"cleanup":  commit.IntentImproveQuality,
	"clean":    commit.IntentImproveQuality,
	"polish":   commit.IntentImproveQuality,
	"quality":  commit.IntentImproveQuality,
	"tests":    commit.IntentImproveQuality,
	"test":     commit.IntentImproveQuality,
	"coverage": commit.IntentImproveQuality,
	"lint":     commit.IntentImproveQuality,

	// restructure
	"refactor":     commit.IntentRestructure,
	"restructure":  commit.IntentRestructure,
	"reorganize":   commit.IntentRestructure,
	"extract":      commit.IntentRestructure,
	"rename":       commit.IntentRestructure,
	"move":         commit.IntentRestructure,
	"split":        commit.IntentRestructure,
	"merge":        commit.IntentRestructure,
	"consolidate":  commit.IntentRestructure,
	"rewrite":      commit.IntentRestructure,
	"architecture": commit.IntentRestructure,

	// configure-infra
	"configure":  commit.IntentConfigureInfra,
	"config":     commit.IntentConfigureInfra,
	"deploy":     commit.IntentConfigureInfra,
	"deployment": commit.IntentConfigureInfra,
	"docker":     commit.IntentConfigureInfra,
	"pipeline":   commit.IntentConfigureInfra,
	"infra":      commit.IntentConfigureInfra,
	"setup":      commit.IntentConfigureInfra,
	"install":    commit.IntentConfigureInfra,
	"upgrade":    commit.IntentConfigureInfra,
	"dependency": commit.IntentConfigureInfra,

	// document
	"document":      commit.IntentDocument,
	"docs":          commit.IntentDocument,
	"documentation": commit.IntentDocument,
	"readme":        commit.IntentDocument,
	"comment":       commit.IntentDocument,
	"explain":       commit.IntentDocument,

	// explore
	"explore":    commit.IntentExplore,
	"experiment": commit.IntentExplore,
	"prototype":  commit.IntentExplore,
	"spike":      commit.IntentExplore,
	"try":        commit.IntentExplore,
	"research":   commit.IntentExplore,

	// resolve-blocker
	"unblock":     commit.IntentResolveBlocker,
	"blocker":     commit.IntentResolveBlocker,
	"blocked":     commit.IntentResolveBlocker,
	"workaround":  commit.IntentResolveBlocker,
	"hotfix":      commit.IntentResolveBlocker,
	"urgent":      commit.IntentResolveBlocker,
}

// stopWords are tokens that carry no signal on their own.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "this": true, "that": true,
	"these": true, "those": true, "it": true, "its": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "am": true, "do": true, "does": true, "did": true,
	"can": true, "could": true, "should": true, "would": true, "will": true,
	"shall": true, "may": true, "might": true, "must": true, "have": true,
	"has": true, "had": true, "and": true, "or": true, "but": true,
	"not": true, "no": true, "nor": true, "so": true, "if": true,
	"then": true, "than": true, "too": true, "very": true, "just": true,
	"about": true, "for": true, "with": true, "without": true, "from": true,
	"into": true, "onto": true, "of": true, "on": true, "in": true,
	"at": true, "by": true, "to": true, "up": true, "out": true,
	"over": true, "under": true, "again": true, "also": true, "all": true,
	"any": true, "some": true, "how": true, "what": true, "when": true,
	"where": true, "which": true, "who": true, "why": true, "me": true,
	"my": true, "we": true, "our": true, "you": true, "your": true,
	"please": true, "make": true, "let": true, "lets": true, "now": true,
	"need": true, "needs": true, "want": true, "like": true, "get": true,
	"there": true, "here": true, "more": true, "most": true, "other": true,
	"same": true, "such": true, "only": true, "own": true, "because": true,
	"while": true, "during": true, "before": true, "after": true,
	"code": true, "file": true, "files": true, "thing": true, "things": true,
	"way": true, "work": true, "working": true, "still": true, "really": true,
}
