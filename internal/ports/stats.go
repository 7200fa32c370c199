package ports

import "context"

// RoundResult summarizes one finished round for record keeping.
type RoundResult struct {
	MatchID      string
	WinnerID     string
	Participants []string
	Reason       string
}

// StatsPort defines the interface for persisting per-player results.
type StatsPort interface {
	// RecordResult stores the outcome of a finished round for every human
	// participant. Implementations must tolerate repeated calls for the
	// same round without double counting humans that already left.
	RecordResult(ctx context.Context, result RoundResult) error
}
