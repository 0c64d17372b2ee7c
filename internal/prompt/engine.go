package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/solenne/roadmapper/internal/apperror"
)

// placeholderPattern matches {name} and {name.field} references. Indexed
// array placeholders ({name[i].field}) are produced by templates aimed at the
// array substitution pass and resolve during Substitute.
var placeholderPattern = regexp.MustCompile(`\{(\w+)(?:\.(\w+))?\}`)

// Variables maps a referenced variable name to the set of nested fields the
// template dereferences on it.
type Variables map[string]map[string]struct{}

// Engine validates prompt templates against a variable catalog and performs
// placeholder substitution. Validation runs before substitution so a
// partially-rendered prompt can never reach the completion API.
type Engine struct {
	catalog *Catalog
}

func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// ExtractVariables scans the template for placeholders and rejects any
// variable name outside the catalog.
func (e *Engine) ExtractVariables(template string) (Variables, error) {
	variables := make(Variables)

	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		name, field := match[1], match[2]
		if _, ok := e.catalog.Lookup(name); !ok {
			return nil, apperror.Validation("template", "variable not allowed: %s", name)
		}
		if variables[name] == nil {
			variables[name] = make(map[string]struct{})
		}
		if field != "" {
			variables[name][field] = struct{}{}
		}
	}
	return variables, nil
}

// ValidateTemplate extracts the template's variables and additionally checks
// that every declared nested field of each referenced required variable is
// used, which catches templates that silently ignore mandatory inputs.
func (e *Engine) ValidateTemplate(template string) (Variables, error) {
	variables, err := e.ExtractVariables(template)
	if err != nil {
		return nil, err
	}

	for name, fields := range variables {
		def, _ := e.catalog.Lookup(name)
		if !def.Required || len(def.NestedFields) == 0 {
			continue
		}
		var missing []string
		for _, declared := range def.NestedFields {
			if _, ok := fields[declared]; !ok {
				missing = append(missing, declared)
			}
		}
		if len(missing) > 0 {
			return nil, apperror.Validation("template", "required fields missing for %s: %s", name, strings.Join(missing, ", "))
		}
	}
	return variables, nil
}

// ValidateData confirms the substitution data satisfies the referenced
// variables: presence for required variables, runtime type against the
// catalog type, and every referenced nested field present on the object or
// on every array element.
func (e *Engine) ValidateData(variables Variables, data map[string]any) error {
	for name, fields := range variables {
		def, ok := e.catalog.Lookup(name)
		if !ok {
			return apperror.Validation("template", "variable not allowed: %s", name)
		}

		value, present := data[name]
		if !present {
			if def.Required {
				return apperror.Validation("data", "required variable missing: %s", name)
			}
			continue
		}

		if err := checkVariableType(name, value, def.Type); err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := checkNestedFields(name, value, fields); err != nil {
				return err
			}
		}
	}
	return nil
}

// Substitute renders template against data. With safeMode, extraction and
// data validation run first. Passes are ordered array, object, scalar;
// placeholders that survive every pass are left verbatim, which is the
// deliberate leniency for optional context blocks.
func (e *Engine) Substitute(template string, data map[string]any, safeMode bool) (string, error) {
	if safeMode {
		variables, err := e.ExtractVariables(template)
		if err != nil {
			return "", err
		}
		if err := e.ValidateData(variables, data); err != nil {
			return "", err
		}
	}

	result := template
	for name, value := range data {
		if items, ok := asArray(value); ok {
			result = substituteArray(result, name, items)
		}
	}
	for name, value := range data {
		if obj, ok := value.(map[string]any); ok {
			result = substituteObject(result, name, obj)
		}
	}
	for name, value := range data {
		if _, isArr := asArray(value); isArr {
			continue
		}
		if _, isObj := value.(map[string]any); isObj {
			continue
		}
		result = strings.ReplaceAll(result, "{"+name+"}", formatValue(value))
	}
	return result, nil
}

func substituteArray(template, name string, items []any) string {
	result := template
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for key, value := range obj {
			placeholder := fmt.Sprintf("{%s[%d].%s}", name, i, key)
			result = strings.ReplaceAll(result, placeholder, formatValue(value))
		}
	}
	return result
}

func substituteObject(template, name string, obj map[string]any) string {
	result := template
	for key, value := range obj {
		placeholder := fmt.Sprintf("{%s.%s}", name, key)
		result = strings.ReplaceAll(result, placeholder, formatValue(value))
	}
	return result
}

// formatValue renders a substitution value. Lists join with ", " so array
// fields such as category sets read naturally inside prose prompts.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatValue(item)
		}
		return strings.Join(parts, ", ")
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

func asArray(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []map[string]any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return items, true
	}
	return nil, false
}

func checkVariableType(name string, value any, expected VariableType) error {
	switch expected {
	case TypeArray:
		if _, ok := asArray(value); !ok {
			return apperror.Validation("data", "%s must be an array", name)
		}
	case TypeObject:
		if _, ok := value.(map[string]any); !ok {
			return apperror.Validation("data", "%s must be an object", name)
		}
	case TypeNumber:
		switch value.(type) {
		case int, int64, float64:
		default:
			return apperror.Validation("data", "%s must be a number", name)
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return apperror.Validation("data", "%s must be a boolean", name)
		}
	case TypeString:
		if _, ok := value.(string); !ok {
			return apperror.Validation("data", "%s must be a string", name)
		}
	}
	return nil
}

func checkNestedFields(name string, value any, fields map[string]struct{}) error {
	if items, ok := asArray(value); ok {
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return apperror.Validation("data", "%s elements must be objects", name)
			}
			for field := range fields {
				if _, present := obj[field]; !present {
					return apperror.Validation("data", "field %s missing in %s", field, name)
				}
			}
		}
		return nil
	}
	if obj, ok := value.(map[string]any); ok {
		for field := range fields {
			if _, present := obj[field]; !present {
				return apperror.Validation("data", "field %s missing in %s", field, name)
			}
		}
	}
	return nil
}
