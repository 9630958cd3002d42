package encoding

import "encoding/json"

// LoadAndUnmarshalJSON loads data from the specified path and decodes it into
// the specified structure. Readers of the resulting documents must tolerate
// unknown keys, so this intentionally does not use a strict decoder.
func LoadAndUnmarshalJSON(path string, value interface{}) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		return json.Unmarshal(data, value)
	})
}

// MarshalAndSaveJSON marshals the specified value as JSON and saves it to the
// specified path.
func MarshalAndSaveJSON(path string, value interface{}) error {
	return MarshalAndSave(path, 0600, func() ([]byte, error) {
		return json.Marshal(value)
	})
}
