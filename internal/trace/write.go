package trace

import (
	"context"
	"fmt"
)

// WriteInvocation inserts an invocation record. Duplicate IDs are silently
// ignored: records are content-addressed, so a duplicate is the same record.
func (s *Store) WriteInvocation(ctx context.Context, inv Invocation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations (id, run_token, circuit, caller, args, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, inv.ID, inv.RunToken, inv.Circuit, inv.Caller, inv.Args, inv.Seq)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}
	return nil
}

// WriteOutcome inserts an outcome record. An invocation has exactly one
// outcome; the UNIQUE constraint plus ON CONFLICT DO NOTHING make a second
// write for the same invocation a no-op. The referenced invocation must
// already exist.
func (s *Store) WriteOutcome(ctx context.Context, out Outcome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outcomes (id, invocation_id, status, result, error, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, out.ID, out.InvocationID, out.Status, out.Result, out.Error, out.Seq)
	if err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}
	return nil
}
