package common

import (
	"encoding/json"
	"io"
)

// WriteJSONLines writes every value as one line of JSON.
func WriteJSONLines[T any](w io.Writer, values []T) error {
	encoder := json.NewEncoder(w)
	for _, value := range values {
		err := encoder.Encode(value)
		if err != nil {
			return err
		}
	}
	return nil
}
