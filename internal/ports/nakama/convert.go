package nakama

import (
	"encoding/json"
	"errors"

	"ringo/internal/app"
	"ringo/internal/domain"
)

// Client request payloads. All intents travel as JSON; the opcode fixes the
// intent kind so clients cannot smuggle a different action in the body.

type playRequest struct {
	Indices     []int       `json:"indices"`
	Resolutions map[int]int `json:"resolutions,omitempty"`
}

type ringoRequest struct {
	InsertPos   int         `json:"insert_pos"`
	Indices     []int       `json:"indices"`
	Resolutions map[int]int `json:"resolutions,omitempty"`
}

type insertRequest struct {
	InsertPos int `json:"insert_pos"`
}

type captureRequest struct {
	Action    string `json:"action"`
	CardID    int    `json:"card_id"`
	InsertPos int    `json:"insert_pos"`
}

// intentFromMessage decodes the payload for the given opcode into the single
// intent shape the app service validates. An empty payload is allowed for
// opcodes that carry no fields.
func intentFromMessage(opCode int64, data []byte) (app.Intent, error) {
	switch opCode {
	case OpPlayCombo:
		var req playRequest
		if err := unmarshalRequest(data, &req); err != nil {
			return app.Intent{}, err
		}
		return app.Intent{
			Kind:        app.IntentPlay,
			Indices:     req.Indices,
			Resolutions: domain.SplitResolution(req.Resolutions),
		}, nil
	case OpDrawCard:
		return app.Intent{Kind: app.IntentDraw}, nil
	case OpPlayRingo:
		var req ringoRequest
		if err := unmarshalRequest(data, &req); err != nil {
			return app.Intent{}, err
		}
		return app.Intent{
			Kind:        app.IntentRingo,
			InsertPos:   req.InsertPos,
			Indices:     req.Indices,
			Resolutions: domain.SplitResolution(req.Resolutions),
		}, nil
	case OpInsertDrawn:
		var req insertRequest
		if err := unmarshalRequest(data, &req); err != nil {
			return app.Intent{}, err
		}
		return app.Intent{Kind: app.IntentInsertDrawn, InsertPos: req.InsertPos}, nil
	case OpDiscardDrawn:
		return app.Intent{Kind: app.IntentDiscardDrawn}, nil
	case OpCaptureDecision:
		var req captureRequest
		if err := unmarshalRequest(data, &req); err != nil {
			return app.Intent{}, err
		}
		return app.Intent{
			Kind:      app.IntentCaptureDecision,
			Capture:   app.CaptureAction(req.Action),
			CardID:    req.CardID,
			InsertPos: req.InsertPos,
		}, nil
	}
	return app.Intent{}, errors.New("unknown intent opcode")
}

func unmarshalRequest(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// errorCode maps a rejection to a stable numeric code for clients. Codes
// distinguish turn/phase problems from selection problems so a client UI can
// react without string matching.
func errorCode(err error) int {
	switch {
	case errors.Is(err, app.ErrNotYourTurn), errors.Is(err, app.ErrNotCaptureOwner):
		return 403
	case errors.Is(err, app.ErrWrongPhase), errors.Is(err, app.ErrOpportunityExpired):
		return 409
	case errors.Is(err, app.ErrGameOver):
		return 410
	case errors.Is(err, domain.ErrInvalidSelection), errors.Is(err, domain.ErrIllegalBeat),
		errors.Is(err, app.ErrEmptyDrawPile):
		return 422
	case errors.Is(err, domain.ErrCorruptState):
		return 500
	}
	return 400
}
