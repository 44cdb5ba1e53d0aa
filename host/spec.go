package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/easegress-io/easegress-go-sdk/program"
)

// Spec defaults.
const (
	DefaultMaxConcurrency = 10
	DefaultTimeout        = 100 * time.Millisecond
)

// ErrUnknownFormat is returned for spec files with an unsupported
// extension.
var ErrUnknownFormat = errors.New("unknown spec format")

var validate = validator.New()

// Spec describes a WasmHost filter: the plugin to load, how many instances
// to pool and the parameters every instance is initialized with.
type Spec struct {
	Name string `json:"name" yaml:"name" toml:"name" validate:"required" jsonschema:"description=Filter name"`

	// Code is the path of the compiled plugin. Relative paths resolve
	// against the directory of the spec file.
	Code string `json:"code" yaml:"code" toml:"code" validate:"required" jsonschema:"description=Path of the wasm plugin"`

	MaxConcurrency int      `json:"maxConcurrency,omitempty" yaml:"maxConcurrency" toml:"maxConcurrency" validate:"min=1" jsonschema:"default=10,minimum=1"`
	Timeout        Duration `json:"timeout,omitempty" yaml:"timeout" toml:"timeout" jsonschema:"default=100ms"`

	// Parameters are passed to wasm_init in document order.
	Parameters *program.Params `json:"parameters,omitempty" yaml:"parameters" toml:"-"`
}

// Duration is a time.Duration written as a Go duration string ("250ms").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

func (s *Spec) applyDefaults() {
	if s.MaxConcurrency == 0 {
		s.MaxConcurrency = DefaultMaxConcurrency
	}
	if s.Timeout == 0 {
		s.Timeout = Duration(DefaultTimeout)
	}
	if s.Parameters == nil {
		s.Parameters = program.NewParams()
	}
}

// Validate checks the spec's constraints.
func (s *Spec) Validate() error {
	return s.check()
}

// check validates every field but the named ones.
func (s *Spec) check(except ...string) error {
	var err error
	if len(except) > 0 {
		err = validate.StructExcept(s, except...)
	} else {
		err = validate.Struct(s)
	}
	if err != nil {
		return fmt.Errorf("invalid spec: %w", err)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("invalid spec: negative timeout %s", time.Duration(s.Timeout))
	}
	return nil
}

// ParseSpec decodes a spec in the given format ("yaml", "toml" or "json"),
// applies defaults and validates it.
func ParseSpec(data []byte, format string) (*Spec, error) {
	var spec Spec
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("failed to parse yaml spec: %w", err)
		}
	case "toml":
		if err := decodeTOML(data, &spec); err != nil {
			return nil, fmt.Errorf("failed to parse toml spec: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("failed to parse json spec: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// LoadSpec reads a spec file, picking the format from its extension.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec: %w", err)
	}
	spec, err := ParseSpec(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !filepath.IsAbs(spec.Code) {
		spec.Code = filepath.Join(filepath.Dir(path), spec.Code)
	}
	return spec, nil
}

// decodeTOML decodes data into spec. TOML tables decode into unordered maps,
// so parameters are rebuilt from the key order recorded in the metadata.
func decodeTOML(data []byte, spec *Spec) error {
	var raw struct {
		Parameters map[string]any `toml:"parameters"`
	}
	meta, err := toml.Decode(string(data), spec)
	if err != nil {
		return err
	}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return err
	}
	if !meta.IsDefined("parameters") {
		return nil
	}

	params := program.NewParams()
	for _, key := range meta.Keys() {
		if len(key) != 2 || key[0] != "parameters" {
			continue
		}
		v, ok := raw.Parameters[key[1]]
		if !ok {
			continue
		}
		if _, nested := v.(map[string]any); nested {
			return fmt.Errorf("parameter %q: nested tables are not supported", key[1])
		}
		params.Set(key[1], fmt.Sprint(v))
	}
	spec.Parameters = params
	return nil
}

// SpecSchema returns the JSON schema of Spec.
func SpecSchema() ([]byte, error) {
	paramsType := reflect.TypeFor[program.Params]()
	durationType := reflect.TypeFor[Duration]()

	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case paramsType, reflect.PointerTo(paramsType):
				return &jsonschema.Schema{
					Type:                 "object",
					Description:          "Parameters passed to wasm_init, in order",
					AdditionalProperties: &jsonschema.Schema{Type: "string"},
				}
			case durationType:
				return &jsonschema.Schema{
					Type:        "string",
					Description: "Go duration, for example 100ms",
				}
			}
			return nil
		},
	}
	schema := reflector.Reflect(&Spec{})

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return out, nil
}
