package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/cadencehq/cadence/internal/domain"
)

// selectorToDB converts a schedule selector to the int4[] column shape.
func selectorToDB(sel []int) []int32 {
	out := make([]int32, len(sel))
	for i, v := range sel {
		out[i] = int32(v)
	}
	return out
}

// selectorFromDB converts the int4[] column back to a selector.
func selectorFromDB(col []int32) []int {
	if len(col) == 0 {
		return nil
	}
	out := make([]int, len(col))
	for i, v := range col {
		out[i] = int(v)
	}
	return out
}

// dateKeysToDB renders a date-key set as its JSONB column value, a
// sorted array.
func dateKeysToDB(s domain.DateKeySet) ([]byte, error) {
	if s == nil {
		s = domain.NewDateKeySet()
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal date keys: %w", err)
	}
	return data, nil
}

// dateKeysFromDB parses the JSONB column value into a set.
func dateKeysFromDB(data []byte) (domain.DateKeySet, error) {
	if len(data) == 0 {
		return domain.NewDateKeySet(), nil
	}
	var s domain.DateKeySet
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal date keys: %w", err)
	}
	return s, nil
}
