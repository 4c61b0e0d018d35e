package codec

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Timestamps come back timestamp-typed at every nesting depth, inside
// objects and arrays alike.
func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	in := map[string]any{
		"timestamp": ts,
		"nested": map[string]any{
			"updatedAt": ts.Add(time.Hour),
			"deep":      []any{map[string]any{"seenAt": ts.Add(2 * time.Hour)}},
		},
		"items": []any{ts.Add(3 * time.Hour)},
		"text":  "hello",
		"count": 3.0,
	}

	b, err := Marshal(in)
	require.NoError(t, err)
	out, err := Unmarshal(b)
	require.NoError(t, err)

	m := out.(map[string]any)
	require.Equal(t, ts, m["timestamp"])
	nested := m["nested"].(map[string]any)
	require.Equal(t, ts.Add(time.Hour), nested["updatedAt"])
	deep := nested["deep"].([]any)[0].(map[string]any)
	require.Equal(t, ts.Add(2*time.Hour), deep["seenAt"])
	require.Equal(t, ts.Add(3*time.Hour), m["items"].([]any)[0])
	require.Equal(t, "hello", m["text"])
	require.Equal(t, 3.0, m["count"])
}

func TestFractionalAndOffsetTimestamps(t *testing.T) {
	for _, raw := range []string{
		`{"t":"2024-05-17T10:30:00.123Z"}`,
		`{"t":"2024-05-17T10:30:00+02:00"}`,
	} {
		out, err := Unmarshal([]byte(raw))
		require.NoError(t, err)
		_, ok := out.(map[string]any)["t"].(time.Time)
		require.True(t, ok, "expected %s to revive as a timestamp", raw)
	}
}

// Timestamp-shaped is a narrow pattern: ordinary strings, dates without
// times, and invalid calendar values stay strings.
func TestNonTimestampsStayStrings(t *testing.T) {
	for _, s := range []string{
		"hello",
		"2024-05-17",
		"10:30:00",
		"2024-99-99T10:30:00Z",
		"999999999999999999999999",
	} {
		out, err := Unmarshal([]byte(`{"v":` + mustQuote(s) + `}`))
		require.NoError(t, err)
		require.Equal(t, s, out.(map[string]any)["v"])
	}
}

// Big integers encode to decimal strings and are NOT converted back on read;
// callers re-parse where they expect one.
func TestBigIntOneWay(t *testing.T) {
	amount, ok := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	require.True(t, ok)

	b, err := Marshal(map[string]any{
		"amount":  amount,
		"amounts": []any{amount},
	})
	require.NoError(t, err)
	require.JSONEq(t,
		`{"amount":"340282366920938463463374607431768211456","amounts":["340282366920938463463374607431768211456"]}`,
		string(b))

	out, err := Unmarshal(b)
	require.NoError(t, err)
	got := out.(map[string]any)["amount"].(string)

	reparsed, ok := new(big.Int).SetString(got, 10)
	require.True(t, ok)
	require.Zero(t, amount.Cmp(reparsed))
}

// The BigInt wrapper gives typed structs a symmetric round trip.
func TestBigIntWrapper(t *testing.T) {
	type tip struct {
		Amount BigInt `json:"amount"`
	}

	amount, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	b, err := json.Marshal(tip{Amount: NewBigInt(amount)})
	require.NoError(t, err)
	require.JSONEq(t, `{"amount":"123456789012345678901234567890"}`, string(b))

	var got tip
	require.NoError(t, json.Unmarshal(b, &got))
	require.Zero(t, amount.Cmp(&got.Amount.Int))

	// bare numbers from before the string convention still decode
	require.NoError(t, json.Unmarshal([]byte(`{"amount":42}`), &got))
	require.Equal(t, int64(42), got.Amount.Int64())

	var bad tip
	require.Error(t, json.Unmarshal([]byte(`{"amount":"4.2"}`), &bad))
}

func TestUnmarshalCorrupt(t *testing.T) {
	_, err := Unmarshal([]byte(`{"broken`))
	require.Error(t, err)
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
