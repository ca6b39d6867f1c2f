package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexID is an identifier that upstream stores serialize inconsistently as a JSON
// number or string. It always normalizes to string form so id comparisons never
// depend on the wire representation.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*f = ""
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	// Drop a float suffix like 123.0 that some upstream serializers produce
	if fv, err := n.Float64(); err == nil && fv == float64(int64(fv)) {
		*f = FlexID(strconv.FormatInt(int64(fv), 10))
		return nil
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func (f FlexID) String() string {
	return string(f)
}

// IsSentinel reports whether the id is a placeholder meaning "no real identifier".
func (f FlexID) IsSentinel() bool {
	return f == "" || f == "-1" || f == "0"
}

func (f FlexID) Value() (driver.Value, error) {
	return string(f), nil
}

func (f *FlexID) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*f = ""
	case string:
		*f = FlexID(v)
	case []byte:
		*f = FlexID(v)
	case int64:
		*f = FlexID(strconv.FormatInt(v, 10))
	case float64:
		*f = FlexID(strconv.FormatInt(int64(v), 10))
	default:
		return fmt.Errorf("cannot scan %T into FlexID", value)
	}
	return nil
}
