package encoding

import (
	"gopkg.in/yaml.v2"
)

// LoadAndUnmarshalYAML loads data from the specified path and decodes it into
// the specified structure. Unknown keys cause an error (strict decoding),
// which catches typos in hand-edited configuration files early.
func LoadAndUnmarshalYAML(path string, value interface{}) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		return yaml.UnmarshalStrict(data, value)
	})
}

// MarshalAndSaveYAML marshals the specified value as YAML and saves it to the
// specified path.
func MarshalAndSaveYAML(path string, value interface{}) error {
	return MarshalAndSave(path, 0600, func() ([]byte, error) {
		return yaml.Marshal(value)
	})
}
