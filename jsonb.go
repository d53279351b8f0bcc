package thematic

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Excerpts is a list of quoted passages stored as a jsonb array.
// Implements sql.Scanner and driver.Valuer for database compatibility.
type Excerpts []string

// Scan implements sql.Scanner.
func (e *Excerpts) Scan(src any) error {
	raw, err := jsonBytes(src, "Excerpts")
	if err != nil || raw == nil {
		*e = nil
		return err
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode excerpts: %w", err)
	}
	*e = out
	return nil
}

// Value implements driver.Valuer.
func (e Excerpts) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(e))
	if err != nil {
		return nil, fmt.Errorf("failed to encode excerpts: %w", err)
	}
	return string(raw), nil
}

// TheoryDocument is a GroundedTheoryResult stored as a jsonb document.
type TheoryDocument GroundedTheoryResult

// Scan implements sql.Scanner.
func (d *TheoryDocument) Scan(src any) error {
	raw, err := jsonBytes(src, "TheoryDocument")
	if err != nil {
		return err
	}
	if raw == nil {
		*d = TheoryDocument{}
		return nil
	}
	if err := json.Unmarshal(raw, (*GroundedTheoryResult)(d)); err != nil {
		return fmt.Errorf("failed to decode theory: %w", err)
	}
	return nil
}

// Value implements driver.Valuer.
func (d TheoryDocument) Value() (driver.Value, error) {
	raw, err := json.Marshal(GroundedTheoryResult(d))
	if err != nil {
		return nil, fmt.Errorf("failed to encode theory: %w", err)
	}
	return string(raw), nil
}

func jsonBytes(src any, target string) ([]byte, error) {
	switch val := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	default:
		return nil, fmt.Errorf("cannot scan %T into %s", src, target)
	}
}
