package domain

import (
	"fmt"
	"strings"
	"time"
)

// DecayFunction selects how the early-submission bonus shrinks across the window.
type DecayFunction string

const (
	DecayLinear      DecayFunction = "linear"
	DecayExponential DecayFunction = "exponential"
)

// ParseDecayFunction normalizes a configured decay name.
func ParseDecayFunction(raw string) (DecayFunction, error) {
	switch DecayFunction(strings.ToLower(strings.TrimSpace(raw))) {
	case DecayLinear:
		return DecayLinear, nil
	case DecayExponential:
		return DecayExponential, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDecayFunction, raw)
}

// EarlyBonusConfig describes the multiplier granted to early submissions.
type EarlyBonusConfig struct {
	MaxMultiplier float64       `json:"max_multiplier" yaml:"max_multiplier"`
	DecayFunction DecayFunction `json:"decay_function" yaml:"decay_function"`
	// Window is the length of the bonus window ending at the competition end.
	// Zero means the default 30 days.
	Window time.Duration `json:"window,omitempty" yaml:"window"`
}

// WeightMode controls how a submission is converted into draw entries.
type WeightMode string

const (
	WeightTickets          WeightMode = "tickets"
	WeightEarlyBonus       WeightMode = "early_bonus"
	WeightTicketsWithBonus WeightMode = "tickets_with_bonus"
)

// ParseWeightMode normalizes a weight mode; empty means tickets.
func ParseWeightMode(raw string) (WeightMode, error) {
	switch WeightMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", WeightTickets:
		return WeightTickets, nil
	case WeightEarlyBonus:
		return WeightEarlyBonus, nil
	case WeightTicketsWithBonus:
		return WeightTicketsWithBonus, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWeightMode, raw)
}

// Competition holds the draw-relevant settings of a trivia competition.
type Competition struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	StartsAt          time.Time        `json:"startsAt"`
	EndsAt            time.Time        `json:"endsAt"`
	WeightMode        WeightMode       `json:"weightMode"`
	MinCorrectAnswers int              `json:"minCorrectAnswers"`
	MinTickets        int              `json:"minTickets"`
	WinnerCount       int              `json:"winnerCount"`
	EarlyBonus        EarlyBonusConfig `json:"earlyBonus"`
}

// Submission is one student's entry into a competition.
type Submission struct {
	ID              string    `json:"id"`
	CompetitionID   string    `json:"competitionId"`
	ParticipantName string    `json:"participantName"`
	CorrectAnswers  int       `json:"correctAnswers"`
	Tickets         int       `json:"tickets"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// Candidate is a weighted entry in a draw pool.
type Candidate struct {
	SubmissionID    string    `json:"submissionId"`
	ParticipantName string    `json:"participantName"`
	Weight          float64   `json:"weight"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// Winner is a selected candidate. Probability is a percentage of the weight
// still in the pool when the winner was drawn.
type Winner struct {
	SubmissionID    string  `json:"submissionId"`
	ParticipantName string  `json:"participantName"`
	Position        int     `json:"position"`
	Weight          float64 `json:"weight"`
	Probability     float64 `json:"probability"`
	TotalCandidates int     `json:"totalCandidates"`
}

// DrawResult is the persisted outcome of a competition draw.
type DrawResult struct {
	ID               string    `json:"id"`
	CompetitionID    string    `json:"competitionId"`
	RequestedWinners int       `json:"requestedWinners"`
	TotalCandidates  int       `json:"totalCandidates"`
	Winners          []Winner  `json:"winners"`
	DrawnAt          time.Time `json:"drawnAt"`
	Hash             string    `json:"hash"`
}

// Shortfall reports how many requested prizes could not be awarded.
func (r DrawResult) Shortfall() int {
	if missing := r.RequestedWinners - len(r.Winners); missing > 0 {
		return missing
	}
	return 0
}

// Verification compares a stored hash against one recomputed from stored data.
type Verification struct {
	CompetitionID string `json:"competitionId"`
	Valid         bool   `json:"valid"`
	StoredHash    string `json:"storedHash"`
	ComputedHash  string `json:"computedHash"`
}
