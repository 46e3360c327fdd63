package trace

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadRun returns all invocations and outcomes for a run token, each ordered
// by seq with the content ID as tie-break so reads are deterministic. Empty
// slices, not nil, when the run has no records.
func (s *Store) ReadRun(ctx context.Context, runToken string) ([]Invocation, []Outcome, error) {
	invocations, err := s.readRunInvocations(ctx, runToken)
	if err != nil {
		return nil, nil, err
	}
	outcomes, err := s.readRunOutcomes(ctx, runToken)
	if err != nil {
		return nil, nil, err
	}
	return invocations, outcomes, nil
}

func (s *Store) readRunInvocations(ctx context.Context, runToken string) ([]Invocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_token, circuit, caller, args, seq
		FROM invocations
		WHERE run_token = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	invocations := []Invocation{}
	for rows.Next() {
		var inv Invocation
		if err := rows.Scan(&inv.ID, &inv.RunToken, &inv.Circuit, &inv.Caller, &inv.Args, &inv.Seq); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		invocations = append(invocations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return invocations, nil
}

func (s *Store) readRunOutcomes(ctx context.Context, runToken string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.invocation_id, o.status, o.result, o.error, o.seq
		FROM outcomes o
		JOIN invocations i ON o.invocation_id = i.id
		WHERE i.run_token = ?
		ORDER BY o.seq ASC, o.id COLLATE BINARY ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []Outcome{}
	for rows.Next() {
		var out Outcome
		if err := rows.Scan(&out.ID, &out.InvocationID, &out.Status, &out.Result, &out.Error, &out.Seq); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

// CountInvocations returns how many times a circuit was invoked in a run.
func (s *Store) CountInvocations(ctx context.Context, runToken, circuit string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invocations
		WHERE run_token = ? AND circuit = ?
	`, runToken, circuit).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invocations: %w", err)
	}
	return n, nil
}

// FirstSeq returns the seq of the earliest invocation of a circuit in a run.
// The second return is false when the circuit never ran.
func (s *Store) FirstSeq(ctx context.Context, runToken, circuit string) (int64, bool, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT seq FROM invocations
		WHERE run_token = ? AND circuit = ?
		ORDER BY seq ASC
		LIMIT 1
	`, runToken, circuit).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("first seq: %w", err)
	}
	return seq, true, nil
}
