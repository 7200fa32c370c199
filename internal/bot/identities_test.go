package bot

import "testing"

func TestGetBotIdentityFallbackIsRecognized(t *testing.T) {
	if len(botIdentities) != 0 {
		t.Skip("identity pool loaded, fallback path not reachable")
	}

	identity := GetBotIdentity(2)
	if identity.UserID == "" {
		t.Fatal("fallback identity has no user ID")
	}
	if !IsBot(identity.UserID) {
		t.Errorf("IsBot(%q) = false for a minted bot identity", identity.UserID)
	}
	cfg, ok := GetBotConfig(identity.UserID)
	if !ok {
		t.Fatalf("GetBotConfig(%q) missing for a minted bot identity", identity.UserID)
	}
	if LevelFor(cfg) != BotLevelHeuristic {
		t.Errorf("fallback level = %v, want heuristic", LevelFor(cfg))
	}

	// The same seat index mints the same identity without duplicating it.
	again := GetBotIdentity(2)
	if again.UserID != identity.UserID {
		t.Errorf("minted identity not stable: %q then %q", identity.UserID, again.UserID)
	}
}
