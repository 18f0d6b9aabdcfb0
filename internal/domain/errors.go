package domain

import "errors"

var (
	// ErrInvalidInput is returned when a draw is requested over an empty pool.
	ErrInvalidInput = errors.New("invalid draw input")
	// ErrNoEligibleCandidates means no submission passed the competition's eligibility rules.
	ErrNoEligibleCandidates = errors.New("no eligible candidates")
	// ErrCompetitionNotFound indicates the competition could not be loaded.
	ErrCompetitionNotFound = errors.New("competition not found")
	// ErrDrawNotFound is returned when a competition has not been drawn yet.
	ErrDrawNotFound = errors.New("draw not found")
	// ErrDrawAlreadyExists guards the one-draw-per-competition rule.
	ErrDrawAlreadyExists = errors.New("competition already drawn")
	// ErrUnknownDecayFunction rejects bonus configs with an unsupported decay.
	ErrUnknownDecayFunction = errors.New("unknown decay function")
	// ErrUnknownWeightMode rejects competitions with an unsupported weight mode.
	ErrUnknownWeightMode = errors.New("unknown weight mode")
)
