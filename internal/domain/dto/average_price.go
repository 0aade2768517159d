package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// nullMarker is the literal sent in place of an average that was suppressed.
// It is a JSON string, distinct from both a numeric zero and JSON null.
const nullMarker = "null"

// AveragePrice is an integer average or the "null" marker.
type AveragePrice struct {
	Value int64
	Null  bool
}

// NullPrice returns the suppressed-average marker.
func NullPrice() AveragePrice { return AveragePrice{Null: true} }

// MarshalJSON writes either the integer or the string "null".
func (p AveragePrice) MarshalJSON() ([]byte, error) {
	if p.Null {
		return json.Marshal(nullMarker)
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON accepts an integer or the string "null".
func (p *AveragePrice) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s != nullMarker {
			return fmt.Errorf("average_price: unexpected string %q", s)
		}
		*p = NullPrice()
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("average_price: %w", err)
	}
	*p = AveragePrice{Value: v}
	return nil
}
