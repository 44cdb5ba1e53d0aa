package program

import (
	"errors"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// ErrOddParams is raised when a parameter list does not hold whole
// key/value pairs.
var ErrOddParams = errors.New("program: parameter list has an odd number of elements")

// ParamError reports a missing or malformed parameter.
type ParamError struct {
	Err error
	Key string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter '%s': %v", e.Key, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// Params holds the construction parameters of a program in the order the
// host supplied them. Setting an existing key replaces its value but keeps
// its position.
type Params struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewParams returns an empty parameter set.
func NewParams() *Params {
	return &Params{m: orderedmap.New[string, string]()}
}

// ParamsFromPairs builds parameters from alternating keys and values.
func ParamsFromPairs(pairs ...string) (*Params, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrOddParams, len(pairs))
	}
	p := NewParams()
	for i := 0; i < len(pairs); i += 2 {
		p.Set(pairs[i], pairs[i+1])
	}
	return p, nil
}

func (p *Params) init() {
	if p.m == nil {
		p.m = orderedmap.New[string, string]()
	}
}

// Set stores value under key.
func (p *Params) Set(key, value string) {
	p.init()
	p.m.Set(key, value)
}

// Get returns the value under key.
func (p *Params) Get(key string) (string, bool) {
	if p == nil || p.m == nil {
		return "", false
	}
	return p.m.Get(key)
}

// Len returns the number of keys.
func (p *Params) Len() int {
	if p == nil || p.m == nil {
		return 0
	}
	return p.m.Len()
}

// Range calls fn for each pair in order until fn returns false.
func (p *Params) Range(fn func(key, value string) bool) {
	if p == nil || p.m == nil {
		return
	}
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Keys returns the keys in order.
func (p *Params) Keys() []string {
	keys := make([]string, 0, p.Len())
	p.Range(func(k, _ string) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Pairs flattens the parameters into alternating keys and values, the
// layout used on the wire.
func (p *Params) Pairs() []string {
	pairs := make([]string, 0, 2*p.Len())
	p.Range(func(k, v string) bool {
		pairs = append(pairs, k, v)
		return true
	})
	return pairs
}

// Map copies the parameters into an unordered map.
func (p *Params) Map() map[string]string {
	m := make(map[string]string, p.Len())
	p.Range(func(k, v string) bool {
		m[k] = v
		return true
	})
	return m
}

func (p *Params) MarshalJSON() ([]byte, error) {
	p.init()
	return p.m.MarshalJSON()
}

func (p *Params) UnmarshalJSON(data []byte) error {
	p.m = orderedmap.New[string, string]()
	return p.m.UnmarshalJSON(data)
}

// UnmarshalYAML reads a mapping of scalars, keeping document order.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: parameters must be a mapping", node.Line)
	}
	p.m = orderedmap.New[string, string]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: parameter '%s' must be a scalar", v.Line, k.Value)
		}
		p.m.Set(k.Value, v.Value)
	}
	return nil
}

// GetString returns the value under key.
func (p *Params) GetString(key string) (string, bool) {
	return p.Get(key)
}

// GetInt parses the value under key as a base-10 integer.
// Returns false if the key is missing or the value is not an integer.
func (p *Params) GetInt(key string) (int, bool) {
	s, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetFloat parses the value under key as a float64.
func (p *Params) GetFloat(key string) (float64, bool) {
	s, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// GetBool parses the value under key with strconv.ParseBool.
func (p *Params) GetBool(key string) (bool, bool) {
	s, ok := p.Get(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}

func (p *Params) GetStringDefault(key, defaultValue string) string {
	if s, ok := p.GetString(key); ok {
		return s
	}
	return defaultValue
}

func (p *Params) GetIntDefault(key string, defaultValue int) int {
	if n, ok := p.GetInt(key); ok {
		return n
	}
	return defaultValue
}

func (p *Params) GetFloatDefault(key string, defaultValue float64) float64 {
	if f, ok := p.GetFloat(key); ok {
		return f
	}
	return defaultValue
}

func (p *Params) GetBoolDefault(key string, defaultValue bool) bool {
	if b, ok := p.GetBool(key); ok {
		return b
	}
	return defaultValue
}

// MustGetString returns the value under key or a *ParamError if it is
// missing. Use this when the parameter is required.
func (p *Params) MustGetString(key string) (string, error) {
	s, ok := p.GetString(key)
	if !ok {
		return "", &ParamError{Key: key, Err: errors.New("required parameter is missing")}
	}
	return s, nil
}

// MustGetInt returns the integer under key or a *ParamError.
func (p *Params) MustGetInt(key string) (int, error) {
	n, ok := p.GetInt(key)
	if !ok {
		return 0, &ParamError{Key: key, Err: errors.New("required integer parameter is missing or not a number")}
	}
	return n, nil
}

// MustGetFloat returns the float under key or a *ParamError.
func (p *Params) MustGetFloat(key string) (float64, error) {
	f, ok := p.GetFloat(key)
	if !ok {
		return 0, &ParamError{Key: key, Err: errors.New("required float parameter is missing or not a number")}
	}
	return f, nil
}

// MustGetBool returns the boolean under key or a *ParamError.
func (p *Params) MustGetBool(key string) (bool, error) {
	b, ok := p.GetBool(key)
	if !ok {
		return false, &ParamError{Key: key, Err: errors.New("required boolean parameter is missing or not a boolean")}
	}
	return b, nil
}
