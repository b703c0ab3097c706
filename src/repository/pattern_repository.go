package repository

import (
	"database/sql"
	"encoding/json"
	"log"

	"gitlab.com/open-quant/go-fractal-engine/src/model"
)

type PatternStorageInterface interface {
	CreatePattern(pattern model.HistoricalPattern) error
	GetPatterns() []model.HistoricalPattern
	TruncatePatterns() error
}

// PatternRepository persists exported memory patterns as flat records.
// It is an optional collaborator wired in main; the tick pipeline never
// touches it.
type PatternRepository struct {
	DB           *sql.DB
	InstanceUuid string
}

func (repo *PatternRepository) CreatePattern(pattern model.HistoricalPattern) error {
	fingerprint, err := json.Marshal(pattern.Fingerprint)
	if err != nil {
		return err
	}
	outcome, err := json.Marshal(pattern.Outcome)
	if err != nil {
		return err
	}

	_, err = repo.DB.Exec(`
		INSERT INTO pattern (id, instance_uuid, timestamp, regime, fingerprint, outcome)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		    timestamp = VALUES(timestamp),
		    regime = VALUES(regime),
		    fingerprint = VALUES(fingerprint),
		    outcome = VALUES(outcome)
	`,
		pattern.ID,
		repo.InstanceUuid,
		pattern.Timestamp.Value(),
		string(pattern.Regime),
		string(fingerprint),
		string(outcome),
	)

	if err != nil {
		log.Printf("CreatePattern: %s", err.Error())
	}

	return err
}

func (repo *PatternRepository) GetPatterns() []model.HistoricalPattern {
	patterns := make([]model.HistoricalPattern, 0)

	res, err := repo.DB.Query(`
		SELECT
		    p.id as Id,
		    p.timestamp as Timestamp,
		    p.regime as Regime,
		    p.fingerprint as Fingerprint,
		    p.outcome as Outcome
		FROM pattern p
		WHERE p.instance_uuid = ?
		ORDER BY p.timestamp ASC, p.id ASC
	`, repo.InstanceUuid)

	if err != nil {
		log.Printf("GetPatterns: %s", err.Error())
		return patterns
	}

	defer res.Close()

	for res.Next() {
		var pattern model.HistoricalPattern
		var timestamp int64
		var regime string
		var fingerprint string
		var outcome string

		err := res.Scan(&pattern.ID, &timestamp, &regime, &fingerprint, &outcome)
		if err != nil {
			log.Printf("GetPatterns: %s", err.Error())
			continue
		}

		pattern.Timestamp = model.TimestampMilli(timestamp)
		pattern.Regime = model.RegimeType(regime)
		pattern.Similarity = 1.00

		if err := json.Unmarshal([]byte(fingerprint), &pattern.Fingerprint); err != nil {
			log.Printf("GetPatterns, fingerprint: %s", err.Error())
			continue
		}
		if err := json.Unmarshal([]byte(outcome), &pattern.Outcome); err != nil {
			log.Printf("GetPatterns, outcome: %s", err.Error())
			continue
		}

		patterns = append(patterns, pattern)
	}

	return patterns
}

func (repo *PatternRepository) TruncatePatterns() error {
	_, err := repo.DB.Exec("DELETE FROM pattern WHERE instance_uuid = ?", repo.InstanceUuid)
	if err != nil {
		log.Printf("TruncatePatterns: %s", err.Error())
	}

	return err
}
