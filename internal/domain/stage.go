package domain

import "strings"

// StageKey identifies a qualification stage. Board stages are rendered as columns;
// alias stages are carried by older task data and remapped onto board stages.
type StageKey string

// Board stages in display order.
const (
	StageURS StageKey = "URS"
	StageFRS StageKey = "FRS"
	StageDQ  StageKey = "DQ"
	StageIQ  StageKey = "IQ"
	StagePQ  StageKey = "PQ"
	StageOQ  StageKey = "OQ"
)

// Alias stages.
const (
	StageCompleted    StageKey = "Completed"
	StageExecution    StageKey = "Execution"
	StageSignoff      StageKey = "Signoff"
	StageVerification StageKey = "Verification"
)

var boardStages = []StageKey{StageURS, StageFRS, StageDQ, StageIQ, StagePQ, StageOQ}

// BoardStages returns the canonical board stages in display order.
func BoardStages() []StageKey {
	out := make([]StageKey, len(boardStages))
	copy(out, boardStages)
	return out
}

// IsBoardStage reports whether s is one of the six canonical board stages.
func IsBoardStage(s StageKey) bool {
	for _, stage := range boardStages {
		if stage == s {
			return true
		}
	}
	return false
}

// IsAliasStage reports whether s is a recognized legacy stage value.
func IsAliasStage(s StageKey) bool {
	switch s {
	case StageCompleted, StageExecution, StageSignoff, StageVerification:
		return true
	default:
		return false
	}
}

// IsKnownStage reports whether s is a board stage or a recognized alias.
func IsKnownStage(s StageKey) bool {
	return IsBoardStage(s) || IsAliasStage(s)
}

// NormalizeStageKey trims s and matches board/alias stages case-insensitively.
// Unrecognized values are returned trimmed but otherwise untouched.
func NormalizeStageKey(s string) StageKey {
	s = strings.TrimSpace(s)
	for _, stage := range boardStages {
		if strings.EqualFold(string(stage), s) {
			return stage
		}
	}
	for _, stage := range []StageKey{StageCompleted, StageExecution, StageSignoff, StageVerification} {
		if strings.EqualFold(string(stage), s) {
			return stage
		}
	}
	return StageKey(s)
}

// Label classifies a task card.
type Label string

// Label values.
const (
	LabelNone         Label = ""
	LabelCreation     Label = "Creation"
	LabelVerification Label = "Verification"
	LabelExecution    Label = "Execution"
	LabelSignoff      Label = "Signoff"
	LabelCompleted    Label = "Completed"
)

// NormalizeLabel validates and canonicalizes a label value.
func NormalizeLabel(raw string) (Label, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LabelNone, nil
	}
	for _, label := range []Label{LabelCreation, LabelVerification, LabelExecution, LabelSignoff, LabelCompleted} {
		if strings.EqualFold(string(label), raw) {
			return label, nil
		}
	}
	return LabelNone, ErrInvalidLabel
}
