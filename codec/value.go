package codec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

// timestampPattern matches ISO-8601 strings as emitted by time.Time's JSON
// encoding (RFC 3339, optional fractional seconds, Z or numeric offset).
var timestampPattern = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)

// Marshal encodes v as JSON text. Big integers anywhere in a map/slice graph
// are rendered as decimal strings, since JSON numbers cannot carry arbitrary
// precision. time.Time marshals to ISO-8601 natively. For struct fields use
// the BigInt wrapper; plain big.Int struct fields would marshal as numbers.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(replaceBigInts(v))
}

func replaceBigInts(v any) any {
	switch t := v.(type) {
	case *big.Int:
		return t.String()
	case big.Int:
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = replaceBigInts(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = replaceBigInts(vv)
		}
		return out
	default:
		return v
	}
}

// Unmarshal decodes JSON text into an untyped value, converting ISO-8601
// shaped strings back to time.Time at every depth, inside objects and arrays.
//
// The big-integer conversion is not reversed: decimal strings written by
// Marshal come back string-typed, and callers re-parse where they expect one.
func Unmarshal(b []byte) (any, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return reviveTimestamps(v), nil
}

func reviveTimestamps(v any) any {
	switch t := v.(type) {
	case string:
		if timestampPattern.MatchString(t) {
			if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
				return ts
			}
		}
		return t
	case map[string]any:
		for k, vv := range t {
			t[k] = reviveTimestamps(vv)
		}
		return t
	case []any:
		for i, vv := range t {
			t[i] = reviveTimestamps(vv)
		}
		return t
	default:
		return v
	}
}

// BigInt round-trips through JSON as a quoted decimal string, so typed
// payload structs can carry arbitrary-precision values (token amounts,
// tip totals) symmetrically. Decode also accepts a bare JSON number for
// values written before the string convention.
type BigInt struct {
	big.Int
}

func NewBigInt(i *big.Int) BigInt {
	var b BigInt
	if i != nil {
		b.Set(i)
	}
	return b
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("codec: %q is not a decimal integer", s)
	}
	return nil
}
