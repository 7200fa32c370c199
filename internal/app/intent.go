package app

import "ringo/internal/domain"

// IntentKind names the one intent contract per turn action. Bots and human
// clients submit the same shape; there is exactly one validation path.
type IntentKind string

const (
	IntentPlay            IntentKind = "play"
	IntentDraw            IntentKind = "draw"
	IntentRingo           IntentKind = "ringo"
	IntentInsertDrawn     IntentKind = "insert_drawn"
	IntentDiscardDrawn    IntentKind = "discard_drawn"
	IntentCaptureDecision IntentKind = "capture_decision"
)

// CaptureAction is the sub-action of a capture decision.
type CaptureAction string

const (
	CaptureDiscardAll CaptureAction = "discard_all"
	CaptureInsertOne  CaptureAction = "insert_one"
	CaptureInsertAll  CaptureAction = "insert_all"
)

// Intent is one phase-specific request from a seat. Unused fields are zero.
type Intent struct {
	Kind IntentKind `json:"kind"`

	// Play / ringo: the ordered index run (post-splice for ringo) and any
	// split-card value choices.
	Indices     []int                  `json:"indices,omitempty"`
	Resolutions domain.SplitResolution `json:"resolutions,omitempty"`

	// Ringo / insert-drawn / capture insert: where to splice the card.
	InsertPos int `json:"insert_pos"`

	// Capture decision.
	Capture CaptureAction `json:"capture,omitempty"`
	CardID  int           `json:"card_id"`
}
