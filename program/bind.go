package program

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is a package-level singleton; building a validator is expensive.
var validate = validator.New()

// BindParams decodes params into target, a pointer to a struct, and runs
// its `validate` tags.
//
// Fields are matched by their `yaml` tag. Each value is resolved as a plain
// YAML scalar, so "8080" fills an int field and "true" a bool.
func BindParams(params *Params, target any) error {
	node := &yaml.Node{Kind: yaml.MappingNode}
	params.Range(func(k, v string) bool {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: v},
		)
		return true
	})

	if err := node.Decode(target); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	return nil
}
