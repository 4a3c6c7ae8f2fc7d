package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/logger"
	"github.com/teranos/namedargs/processor"
	"github.com/teranos/namedargs/version"
)

// Status is the state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one recorded generation pass.
type Run struct {
	ID               string     `json:"id" yaml:"id"`
	Source           string     `json:"source" yaml:"source"`
	Inputs           []string   `json:"inputs" yaml:"inputs"`
	Languages        []string   `json:"languages" yaml:"languages"`
	GeneratorVersion string     `json:"generator_version" yaml:"generator_version"`
	StartedAt        time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Status           Status     `json:"status" yaml:"status"`
	Written          int        `json:"written" yaml:"written"`
	Skipped          int        `json:"skipped" yaml:"skipped"`
	Ignored          int        `json:"ignored" yaml:"ignored"`
	Deferred         int        `json:"deferred" yaml:"deferred"`
	Error            string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// UnitRecord is a unit emitted by a run.
type UnitRecord struct {
	Seq     int    `json:"seq" yaml:"seq"`
	Package string `json:"package" yaml:"package"`
	Carrier string `json:"carrier" yaml:"carrier"`
	Wrapper string `json:"wrapper" yaml:"wrapper"`
	Kind    string `json:"kind" yaml:"kind"`
	Origin  string `json:"origin" yaml:"origin"`
}

// Store reads and writes the ledger tables.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: logger.OrNop(log), now: func() time.Time { return time.Now().UTC() }}
}

// StartRun inserts a running run and returns it.
func (s *Store) StartRun(ctx context.Context, source string, inputs, languages []string) (*Run, error) {
	run := &Run{
		ID:               uuid.NewString(),
		Source:           source,
		Inputs:           inputs,
		Languages:        languages,
		GeneratorVersion: version.Version,
		StartedAt:        s.now(),
		Status:           StatusRunning,
	}

	inputsJSON, err := json.Marshal(nonNil(inputs))
	if err != nil {
		return nil, errors.Wrap(err, "marshal inputs")
	}
	languagesJSON, err := json.Marshal(nonNil(languages))
	if err != nil {
		return nil, errors.Wrap(err, "marshal languages")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, inputs, languages, generator_version, started_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, string(inputsJSON), string(languagesJSON), run.GeneratorVersion, run.StartedAt, string(run.Status))
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert run")
	}

	s.logger.Debugw("Run started", logger.FieldRunID, run.ID, "source", source)
	return run, nil
}

// RecordUnit stores a unit of a run. A second unit with the same package and
// carrier in one run is a collision.
func (s *Store) RecordUnit(ctx context.Context, runID string, seq int, unit *emit.Unit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO units (run_id, seq, package, carrier, wrapper, kind, origin)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, seq, unit.Key.Package, unit.Carrier.Name, unit.Wrapper.Name,
		unit.Wrapper.Call.Kind.String(), unit.Origin)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.WithHint(
				errors.NewCollision("%s already recorded in run %s", unit.Key, runID),
				"two declarations in one package produce the same carrier name; rename one of them")
		}
		return errors.Wrapf(err, "failed to record unit %s", unit.Key)
	}
	return nil
}

// FinishRun stores the outcome of a run. res may be nil when the run failed
// before processing.
func (s *Store) FinishRun(ctx context.Context, runID string, res *processor.Result, runErr error) error {
	status := StatusSucceeded
	var errText sql.NullString
	if runErr != nil {
		status = StatusFailed
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	var written, skipped, ignored, deferred int
	if res != nil {
		written, skipped, ignored, deferred = len(res.Written), len(res.Skips), res.Ignored, res.Deferred.Len()
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, status = ?, written = ?, skipped = ?, ignored = ?, deferred = ?, error = ?
		WHERE id = ?`,
		s.now(), string(status), written, skipped, ignored, deferred, errText, runID)
	if err != nil {
		return errors.Wrap(err, "failed to finish run")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(ErrRunNotFound, "%s", runID)
	}

	s.logger.Debugw("Run finished", logger.FieldRunID, runID, "status", string(status))
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, inputs, languages, generator_version, started_at, finished_at,
		       status, written, skipped, ignored, deferred, error
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate runs")
	}
	return runs, nil
}

// Units returns the units of a run in emission order.
func (s *Store) Units(ctx context.Context, runID string) ([]UnitRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, package, carrier, wrapper, kind, origin
		FROM units
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query units")
	}
	defer rows.Close()

	var units []UnitRecord
	for rows.Next() {
		var u UnitRecord
		if err := rows.Scan(&u.Seq, &u.Package, &u.Carrier, &u.Wrapper, &u.Kind, &u.Origin); err != nil {
			return nil, errors.Wrap(err, "failed to scan unit")
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate units")
	}
	return units, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run               Run
		inputs, languages string
		status            string
		finishedAt        sql.NullTime
		errText           sql.NullString
	)
	if err := rows.Scan(&run.ID, &run.Source, &inputs, &languages, &run.GeneratorVersion, &run.StartedAt,
		&finishedAt, &status, &run.Written, &run.Skipped, &run.Ignored, &run.Deferred, &errText); err != nil {
		return Run{}, errors.Wrap(err, "failed to scan run")
	}
	if err := json.Unmarshal([]byte(inputs), &run.Inputs); err != nil {
		return Run{}, errors.Wrapf(err, "run %s: inputs", run.ID)
	}
	if err := json.Unmarshal([]byte(languages), &run.Languages); err != nil {
		return Run{}, errors.Wrapf(err, "run %s: languages", run.ID)
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	run.Status = Status(status)
	run.Error = errText.String
	return run, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
