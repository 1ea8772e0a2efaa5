package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	serr "github.com/matzehuels/starscape/pkg/errors"
)

// LoadOptions builds Options from an optional config file and key=value
// overrides, starting from [DefaultOptions] so explicit zeros are kept. The file format follows its extension (.toml, .yaml or .yml).
// Overrides win over file values. Keys are the mapstructure names of the
// Options fields, e.g. "seed", "grid" or "universe_age"; axis triples may be
// written as "32,128,128" or "32x128x128".
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadOptions(path string, overrides []string) (Options, error) {
	raw := map[string]any{}
	if path != "" {
		var err error
		if raw, err = readConfigFile(path); err != nil {
			return Options{}, err
		}
	}
	for _, kv := range overrides {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return Options{}, serr.New(serr.ErrCodeInvalidConfig, "override %q is not key=value", kv)
		}
		raw[strings.ReplaceAll(k, "-", "_")] = strings.TrimSpace(v)
	}

	opts := DefaultOptions()
	if err := decodeOptions(raw, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func readConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serr.Wrap(serr.ErrCodeNotFound, err, "config file %s", path)
		}
		return nil, serr.Wrap(serr.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	raw := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, serr.Wrap(serr.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, serr.Wrap(serr.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return nil, serr.New(serr.ErrCodeUnsupported, "config format %q (use .toml, .yaml or .yml)", ext)
	}
	return raw, nil
}

func decodeOptions(raw map[string]any, opts *Options) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       splitTriple,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           opts,
	})
	if err != nil {
		return serr.Wrap(serr.ErrCodeInternal, err, "config decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return serr.Wrap(serr.ErrCodeInvalidConfig, err, "decode options")
	}
	return nil
}

// splitTriple turns "a,b,c" or "axbxc" into a string slice when the target is
// an array, leaving element conversion to weak typing.
func splitTriple(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Array {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	s = strings.Trim(s, "[]{}()")
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == 'x' || r == 'X' || r == ' '
	})
	return parts, nil
}
