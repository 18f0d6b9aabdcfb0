// Package draw selects competition winners and fingerprints the outcome.
//
// Selection is weighted sampling without replacement driven by crypto/rand.
// The draw hash is an integrity fingerprint only: anyone able to rewrite the
// stored winners can also rewrite the stored hash, so it does not replace
// access control or audit logging on the storage side.
package draw

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"competition-service/internal/domain"
)

const uint32Range = 1 << 32

// Engine draws winners using randomness read from src.
type Engine struct {
	src io.Reader
}

// NewEngine returns an engine backed by crypto/rand.
func NewEngine() *Engine {
	return &Engine{src: rand.Reader}
}

// NewEngineWithReader is used by tests to replay fixed random bytes.
func NewEngineWithReader(src io.Reader) *Engine {
	return &Engine{src: src}
}

var defaultEngine = NewEngine()

// SelectMultipleWinners draws with the crypto/rand backed engine.
func SelectMultipleWinners(candidates []domain.Candidate, count int) ([]domain.Winner, error) {
	return defaultEngine.SelectMultipleWinners(candidates, count)
}

// SelectMultipleWinners draws up to count distinct winners, each with
// probability proportional to its weight among the candidates not yet drawn.
// Fewer than count winners are returned when the pool runs out. The input
// slice is never modified.
func (e *Engine) SelectMultipleWinners(candidates []domain.Candidate, count int) ([]domain.Winner, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: empty candidate pool", domain.ErrInvalidInput)
	}

	pool := make([]domain.Candidate, len(candidates))
	copy(pool, candidates)

	winners := make([]domain.Winner, 0, min(max(count, 0), len(pool)))
	for position := 1; position <= count && len(pool) > 0; position++ {
		totalWeight := totalWeightOf(pool)
		if totalWeight <= 0 {
			// only unreachable candidates remain
			break
		}

		u, err := e.uniform()
		if err != nil {
			return nil, err
		}
		idx := pick(pool, u*totalWeight)

		selected := pool[idx]
		winners = append(winners, domain.Winner{
			SubmissionID:    selected.SubmissionID,
			ParticipantName: selected.ParticipantName,
			Position:        position,
			Weight:          selected.Weight,
			Probability:     selected.Weight / totalWeight * 100,
			TotalCandidates: len(candidates),
		})
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return winners, nil
}

// uniform returns a value in [0, 1) built from four random bytes.
func (e *Engine) uniform() (float64, error) {
	var buf [4]byte
	if _, err := io.ReadFull(e.src, buf[:]); err != nil {
		return 0, fmt.Errorf("draw: read random: %w", err)
	}
	return float64(binary.BigEndian.Uint32(buf[:])) / uint32Range, nil
}

// drawable reports whether a weight can take part in a draw. Non-positive,
// infinite and NaN weights cannot.
func drawable(weight float64) bool {
	return weight > 0 && !math.IsInf(weight, 1)
}

// pick walks cumulative weights and returns the first candidate whose
// cumulative weight reaches r (ties go to the earlier candidate). Candidates
// that are not drawable are never returned.
func pick(pool []domain.Candidate, r float64) int {
	cumulative := 0.0
	last := -1
	for i, c := range pool {
		if !drawable(c.Weight) {
			continue
		}
		cumulative += c.Weight
		last = i
		if r <= cumulative {
			return i
		}
	}
	// rounding left r just above the final sum
	return last
}

func totalWeightOf(pool []domain.Candidate) float64 {
	total := 0.0
	for _, c := range pool {
		if drawable(c.Weight) {
			total += c.Weight
		}
	}
	return total
}

// Probabilities returns each candidate's chance, in percent, of being drawn
// next from the given pool. Weights that are not drawable get zero.
func Probabilities(pool []domain.Candidate) []float64 {
	out := make([]float64, len(pool))
	total := totalWeightOf(pool)
	if total <= 0 {
		return out
	}
	for i, c := range pool {
		if drawable(c.Weight) {
			out[i] = c.Weight / total * 100
		}
	}
	return out
}
