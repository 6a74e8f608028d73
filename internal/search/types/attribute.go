package types

// AttributeType is the data type of a custom attribute definition.
type AttributeType string

const (
	AttributeText    AttributeType = "text"
	AttributeNumber  AttributeType = "number"
	AttributeDate    AttributeType = "date"
	AttributeEnum    AttributeType = "enum"
	AttributeBoolean AttributeType = "boolean"
)

// AttributeDefinition describes one filterable custom attribute. It is
// supplied by an external catalog service and read-only here.
type AttributeDefinition struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Type       AttributeType `json:"type"`
	Options    []string      `json:"options,omitempty"`
	Required   bool          `json:"required,omitempty"`
	Searchable bool          `json:"searchable,omitempty"`
	Filterable bool          `json:"filterable,omitempty"`
}

// Operators usable in attribute filter rules. Each attribute type
// admits a fixed subset; see compose.AllowedOperators.
const (
	OpEquals     = "equals"
	OpNotEquals  = "not_equals"
	OpContains   = "contains"
	OpStartsWith = "starts_with"
	OpEndsWith   = "ends_with"
	OpGt         = "gt"
	OpGte        = "gte"
	OpLt         = "lt"
	OpLte        = "lte"
	OpBetween    = "between"
	OpBefore     = "before"
	OpAfter      = "after"
	OpIn         = "in"
	OpNotIn      = "not_in"
)
