package draw

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"competition-service/internal/domain"
)

// fingerprint fixes the field order of the hashed document.
type fingerprint struct {
	CompetitionID string          `json:"competitionId"`
	Winners       []domain.Winner `json:"winners"`
	Timestamp     string          `json:"timestamp"`
}

// GenerateDrawHash returns the lowercase hex SHA-256 of the canonical JSON
// encoding of a draw. Winners carrying NaN or infinite numbers have no
// canonical encoding and yield domain.ErrInvalidInput.
func GenerateDrawHash(competitionID string, winners []domain.Winner, timestamp string) (string, error) {
	if winners == nil {
		winners = []domain.Winner{}
	}
	payload, err := json.Marshal(fingerprint{
		CompetitionID: competitionID,
		Winners:       winners,
		Timestamp:     timestamp,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode draw: %v", domain.ErrInvalidInput, err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyDrawHash reports whether hash matches the given draw data. Data that
// cannot be hashed never matches.
func VerifyDrawHash(competitionID string, winners []domain.Winner, timestamp, hash string) bool {
	computed, err := GenerateDrawHash(competitionID, winners, timestamp)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
