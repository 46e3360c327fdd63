package harness

import "github.com/google/uuid"

// TokenGenerator supplies run tokens. A run token names one scenario
// execution; every trace record of the run carries it.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator issues time-sortable UUIDv7 run tokens, the default for
// interactive runs. Sorting tokens sorts runs by start time.
type UUIDv7Generator struct{}

// Generate returns a fresh UUIDv7 as a hyphenated string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator always returns the same token. Scenarios with a fixed
// run_token use it so golden traces compare bytewise across runs.
type FixedGenerator struct {
	token string
}

// NewFixedGenerator returns a generator pinned to token, or to
// "run-default" when token is empty.
func NewFixedGenerator(token string) *FixedGenerator {
	if token == "" {
		token = "run-default"
	}
	return &FixedGenerator{token: token}
}

// Generate returns the fixed token.
func (g *FixedGenerator) Generate() string {
	return g.token
}
