package cli

import (
	"strings"

	"github.com/google/uuid"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/sessionid"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/validation"
)

// currentSessionID resolves the session ID shared across hook and CLI
// invocations. Preference order: the persisted current-session marker, a
// session derived from the agent's envelope session id, a fresh random slug.
// The chosen ID is persisted so later invocations in the same session agree.
func currentSessionID(envelopeID string) (string, error) {
	persisted, err := paths.ReadCurrentSession()
	if err == nil && persisted != "" && validation.ValidateSessionID(persisted) == nil {
		return persisted, nil
	}
	if err != nil {
		return "", err
	}

	slug := sessionSlugFromEnvelope(envelopeID)
	if slug == "" {
		slug = uuid.NewString()[:8]
	}
	id := sessionid.New(slug)
	if err := paths.WriteCurrentSession(id); err != nil {
		return "", err
	}
	return id, nil
}

// sessionSlugFromEnvelope derives a short path-safe slug from an agent
// session UUID, or "" when the input is unusable.
func sessionSlugFromEnvelope(envelopeID string) string {
	slug := strings.TrimSpace(envelopeID)
	if len(slug) > 8 {
		slug = slug[:8]
	}
	if slug == "" || validation.ValidateSlug(slug) != nil {
		return ""
	}
	return slug
}
