package playback

import "testing"

func TestSessionID_Movie(t *testing.T) {
	k := Key{UserID: "u1", ProfileID: "p1", ContentID: "c1"}
	if got := k.SessionID(); got != "u1:p1:c1" {
		t.Fatalf("expected 'u1:p1:c1', got %q", got)
	}
}

func TestSessionID_Episode(t *testing.T) {
	k := Key{UserID: "u1", ProfileID: "p1", ContentID: "c1", EpisodeID: "e1"}
	if got := k.SessionID(); got != "u1:p1:c1:e1" {
		t.Fatalf("expected 'u1:p1:c1:e1', got %q", got)
	}
}

func TestSessionID_EpisodeShapeIsDistinct(t *testing.T) {
	movie := Key{UserID: "u1", ProfileID: "p1", ContentID: "c1"}
	episodic := Key{UserID: "u1", ProfileID: "p1", ContentID: "c1", EpisodeID: "e1"}
	if movie.SessionID() == episodic.SessionID() {
		t.Fatal("keys with and without an episode must be distinct sessions")
	}
}

func TestSessionID_Deterministic(t *testing.T) {
	a := Key{UserID: "u1", ProfileID: "p1", ContentID: "c1", EpisodeID: "e1"}
	b := Key{UserID: "u1", ProfileID: "p1", ContentID: "c1", EpisodeID: "e1"}
	if a.SessionID() != b.SessionID() {
		t.Fatal("session id must be a pure function of the identity fields")
	}
}

func TestIdentity_RoundTrip(t *testing.T) {
	k := Key{UserID: "u1", ProfileID: "p1", ContentID: "c1", EpisodeID: "e1"}
	contentID, episodeID := splitIdentity(k.Identity())
	if contentID != "c1" || episodeID != "e1" {
		t.Fatalf("expected (c1, e1), got (%q, %q)", contentID, episodeID)
	}

	m := Key{UserID: "u1", ProfileID: "p1", ContentID: "c1"}
	contentID, episodeID = splitIdentity(m.Identity())
	if contentID != "c1" || episodeID != "" {
		t.Fatalf("expected (c1, ''), got (%q, %q)", contentID, episodeID)
	}
}
