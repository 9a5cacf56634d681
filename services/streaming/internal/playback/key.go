package playback

import "strings"

// Key identifies one playback session: (user, profile, content[, episode]).
// EpisodeID is set only for episodic content; a key with an episode segment
// and one without are distinct sessions even when the other fields match.
type Key struct {
	UserID    string
	ProfileID string
	ContentID string
	EpisodeID string
}

// SessionID renders the key as the canonical session identifier string.
// It is a pure function of the identity fields, so starting the same
// identity twice always maps to the same store key.
func (k Key) SessionID() string {
	parts := []string{k.UserID, k.ProfileID, k.ContentID}
	if k.EpisodeID != "" {
		parts = append(parts, k.EpisodeID)
	}
	return strings.Join(parts, ":")
}

// Identity renders the logical continue-watching identity (content[, episode])
// used as the recency index member.
func (k Key) Identity() string {
	if k.EpisodeID == "" {
		return k.ContentID
	}
	return k.ContentID + ":" + k.EpisodeID
}

// splitIdentity decodes an index member back into (contentID, episodeID).
func splitIdentity(member string) (contentID, episodeID string) {
	i := strings.IndexByte(member, ':')
	if i < 0 {
		return member, ""
	}
	return member[:i], member[i+1:]
}
