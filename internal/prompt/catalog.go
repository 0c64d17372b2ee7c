package prompt

// VariableType enumerates the runtime types a template variable may carry.
type VariableType string

const (
	TypeString  VariableType = "string"
	TypeNumber  VariableType = "number"
	TypeBoolean VariableType = "boolean"
	TypeArray   VariableType = "array"
	TypeObject  VariableType = "object"
)

// VariableDefinition declares one allowed top-level template variable.
type VariableDefinition struct {
	Name         string
	Type         VariableType
	Required     bool
	Description  string
	NestedFields []string
}

// Catalog is the fixed set of variables a template may reference. It is
// read-only after construction and injected into the engine, never a mutable
// global.
type Catalog struct {
	vars  map[string]VariableDefinition
	order []string
}

func NewCatalog(defs ...VariableDefinition) *Catalog {
	c := &Catalog{vars: make(map[string]VariableDefinition, len(defs))}
	for _, def := range defs {
		if _, dup := c.vars[def.Name]; dup {
			continue
		}
		c.vars[def.Name] = def
		c.order = append(c.order, def.Name)
	}
	return c
}

// DefaultCatalog returns the variable set used for roadmap prompts.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		VariableDefinition{
			Name:         "user",
			Type:         TypeObject,
			Required:     true,
			Description:  "User information",
			NestedFields: []string{"username", "role"},
		},
		VariableDefinition{
			Name:         "questions",
			Type:         TypeArray,
			Required:     true,
			Description:  "Questionnaire questions",
			NestedFields: []string{"text", "type"},
		},
		VariableDefinition{
			Name:         "responses",
			Type:         TypeArray,
			Required:     true,
			Description:  "User responses",
			NestedFields: []string{"content", "is_valid"},
		},
		VariableDefinition{
			Name:        "context",
			Type:        TypeObject,
			Description: "Additional context",
		},
		VariableDefinition{
			Name:        "metadata",
			Type:        TypeObject,
			Description: "Generation metadata",
		},
	)
}

// Lookup returns the definition for name.
func (c *Catalog) Lookup(name string) (VariableDefinition, bool) {
	def, ok := c.vars[name]
	return def, ok
}

// Definitions returns the declared variables in registration order.
func (c *Catalog) Definitions() []VariableDefinition {
	defs := make([]VariableDefinition, 0, len(c.order))
	for _, name := range c.order {
		defs = append(defs, c.vars[name])
	}
	return defs
}
