package manifest

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/quietforge/circuitsim/ledger"
)

// ConvertArgs converts a scenario-supplied argument list against declared
// kinds, checking arity. Scenario files carry scalars only; the composite
// kinds cannot be expressed there.
func ConvertArgs(kinds []string, raws []any) ([]ledger.Value, error) {
	if len(raws) != len(kinds) {
		return nil, fmt.Errorf("want %d args, got %d", len(kinds), len(raws))
	}
	out := make([]ledger.Value, len(raws))
	for i, raw := range raws {
		v, err := ConvertArg(kinds[i], raw)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// ConvertArg turns one scenario-supplied argument into the ledger value its
// declared kind calls for.
func ConvertArg(kind string, raw any) (ledger.Value, error) {
	switch kind {
	case "bool":
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", raw)
		}
		return ledger.Bool(b), nil
	case "uint":
		return convertUint(raw)
	case "string":
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", raw)
		}
		return ledger.Str(s), nil
	case "bytes":
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("want 0x-hex string, got %T", raw)
		}
		hexPart, ok := strings.CutPrefix(s, "0x")
		if !ok {
			return nil, fmt.Errorf("bytes %q missing 0x prefix", s)
		}
		b, err := hex.DecodeString(hexPart)
		if err != nil {
			return nil, fmt.Errorf("bytes %q: %w", s, err)
		}
		return ledger.NewBytes(b), nil
	case "address":
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("want address string, got %T", raw)
		}
		return ledger.ParseAddress(s)
	case "list", "map", "unit":
		return nil, fmt.Errorf("kind %s cannot be supplied as a scenario argument", kind)
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

func convertUint(raw any) (ledger.Value, error) {
	switch n := raw.(type) {
	case int:
		if n < 0 {
			return nil, fmt.Errorf("uint argument is negative: %d", n)
		}
		return ledger.NewUint(uint64(n)), nil
	case int64:
		if n < 0 {
			return nil, fmt.Errorf("uint argument is negative: %d", n)
		}
		return ledger.NewUint(uint64(n)), nil
	case uint64:
		return ledger.NewUint(n), nil
	case string:
		// Decimal strings carry values past what YAML integers hold.
		return ledger.UintFromDecimal(n)
	default:
		return nil, fmt.Errorf("want uint, got %T", raw)
	}
}
