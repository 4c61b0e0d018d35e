package codec

import "encoding/json"

// JSON is the default codec for typed payloads. time.Time fields round-trip
// through their native ISO-8601 encoding; use BigInt for big-integer fields.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
