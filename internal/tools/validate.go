package tools

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/xeipuuv/gojsonschema"
)

// compileSchema builds the argument validator for a definition.
func compileSchema(def Definition) (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.InputSchema()))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile schema for %q", def.Name)
	}
	return schema, nil
}

// validateArgs checks args against schema and reports every violation in one error
// marked as ErrInvalidArguments.
func validateArgs(schema *gojsonschema.Schema, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return errors.Mark(errors.Wrap(err, "schema validation error"), ErrInvalidArguments)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return errors.Mark(errors.Newf("invalid arguments: %s", strings.Join(errs, ", ")), ErrInvalidArguments)
}
