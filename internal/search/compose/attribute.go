package compose

import (
	"fmt"

	"github.com/merchware/unisearch/internal/search/types"
)

// AttributeRule is one active predicate against a custom attribute. It
// lives only while the composer is open; on apply it is serialized into
// the inventory sub-filter's custom attribute map.
type AttributeRule struct {
	AttributeName string
	AttributeType types.AttributeType
	Operator      string
	Value         interface{}
	Values        []interface{}
}

var allowedOperators = map[types.AttributeType][]string{
	types.AttributeText: {
		types.OpEquals, types.OpNotEquals, types.OpContains,
		types.OpStartsWith, types.OpEndsWith,
	},
	types.AttributeNumber: {
		types.OpEquals, types.OpNotEquals, types.OpGt, types.OpGte,
		types.OpLt, types.OpLte, types.OpBetween,
	},
	types.AttributeDate: {
		types.OpEquals, types.OpBefore, types.OpAfter, types.OpBetween,
	},
	types.AttributeEnum: {
		types.OpEquals, types.OpIn, types.OpNotIn,
	},
	types.AttributeBoolean: {
		types.OpEquals,
	},
}

var defaultOperators = map[types.AttributeType]string{
	types.AttributeText:    types.OpContains,
	types.AttributeNumber:  types.OpEquals,
	types.AttributeDate:    types.OpEquals,
	types.AttributeEnum:    types.OpIn,
	types.AttributeBoolean: types.OpEquals,
}

// AllowedOperators returns the fixed operator set for an attribute
// type. Operators outside this set must not be offered.
func AllowedOperators(t types.AttributeType) []string {
	return append([]string(nil), allowedOperators[t]...)
}

// DefaultOperator returns the operator preselected for an attribute
// type.
func DefaultOperator(t types.AttributeType) string {
	return defaultOperators[t]
}

// AttributeComposer builds filter predicates against a caller-supplied
// attribute schema. At most one active rule exists per attribute name.
type AttributeComposer struct {
	schema map[string]types.AttributeDefinition
	rules  []AttributeRule
}

// NewAttributeComposer creates a composer over the given schema.
// Non-filterable definitions are excluded up front.
func NewAttributeComposer(defs []types.AttributeDefinition) *AttributeComposer {
	c := &AttributeComposer{schema: make(map[string]types.AttributeDefinition, len(defs))}
	for _, d := range defs {
		if d.Filterable {
			c.schema[d.Name] = d
		}
	}
	return c
}

// Definitions returns the filterable attribute definitions not yet
// bound to an active rule.
func (c *AttributeComposer) Definitions() []types.AttributeDefinition {
	var out []types.AttributeDefinition
	for name, def := range c.schema {
		if c.rule(name) == nil {
			out = append(out, def)
		}
	}
	return out
}

// AddRule activates a rule for the named attribute with its default
// operator and returns a copy of it. Fails when the attribute is
// unknown or already has a rule. Later edits go through SetOperator,
// SetValue and SetValues.
func (c *AttributeComposer) AddRule(attributeName string) (AttributeRule, error) {
	def, ok := c.schema[attributeName]
	if !ok {
		return AttributeRule{}, fmt.Errorf("attribute %q is not filterable", attributeName)
	}
	if c.rule(attributeName) != nil {
		return AttributeRule{}, fmt.Errorf("attribute %q already has an active rule", attributeName)
	}
	rule := AttributeRule{
		AttributeName: def.Name,
		AttributeType: def.Type,
		Operator:      DefaultOperator(def.Type),
	}
	c.rules = append(c.rules, rule)
	return rule, nil
}

// SetOperator changes the operator of an active rule, rejecting
// operators outside the attribute type's fixed set.
func (c *AttributeComposer) SetOperator(attributeName, operator string) error {
	rule := c.rule(attributeName)
	if rule == nil {
		return fmt.Errorf("no active rule for attribute %q", attributeName)
	}
	for _, op := range allowedOperators[rule.AttributeType] {
		if op == operator {
			rule.Operator = operator
			return nil
		}
	}
	return fmt.Errorf("operator %q is not valid for %s attributes", operator, rule.AttributeType)
}

// SetValue sets the single value of an active rule.
func (c *AttributeComposer) SetValue(attributeName string, value interface{}) error {
	rule := c.rule(attributeName)
	if rule == nil {
		return fmt.Errorf("no active rule for attribute %q", attributeName)
	}
	rule.Value = value
	rule.Values = nil
	return nil
}

// SetValues sets the value list of an active rule, used by between and
// in/not_in operators. For between, either bound may be nil for an
// open-ended range.
func (c *AttributeComposer) SetValues(attributeName string, values []interface{}) error {
	rule := c.rule(attributeName)
	if rule == nil {
		return fmt.Errorf("no active rule for attribute %q", attributeName)
	}
	rule.Values = append([]interface{}(nil), values...)
	rule.Value = nil
	return nil
}

// RemoveRule deactivates the rule for the named attribute.
func (c *AttributeComposer) RemoveRule(attributeName string) {
	for i := range c.rules {
		if c.rules[i].AttributeName == attributeName {
			c.rules = append(c.rules[:i], c.rules[i+1:]...)
			return
		}
	}
}

// Rules returns the active rules in activation order.
func (c *AttributeComposer) Rules() []AttributeRule {
	return append([]AttributeRule(nil), c.rules...)
}

// Build serializes the active rules into a custom-attribute condition
// map. A rule with an empty or unset value is skipped entirely, so
// clearing a field removes the constraint instead of encoding null.
func (c *AttributeComposer) Build() map[string]types.AttributeCondition {
	out := make(map[string]types.AttributeCondition)
	for _, rule := range c.rules {
		cond, ok := ruleCondition(rule)
		if !ok {
			continue
		}
		out[rule.AttributeName] = cond
	}
	return out
}

// Patch derives the inventory filter patch for the active rules.
func (c *AttributeComposer) Patch() types.FilterPatch {
	return types.FilterPatch{
		Inventory: &types.InventoryFilter{CustomAttributes: c.Build()},
	}
}

func ruleCondition(rule AttributeRule) (types.AttributeCondition, bool) {
	if len(rule.Values) > 0 {
		values := make([]interface{}, 0, len(rule.Values))
		any := false
		for _, v := range rule.Values {
			if emptyValue(v) {
				// Open-ended bound for between; keep position.
				values = append(values, nil)
				continue
			}
			any = true
			values = append(values, v)
		}
		if !any {
			return types.AttributeCondition{}, false
		}
		return types.AttributeCondition{Operator: rule.Operator, Values: values}, true
	}
	if emptyValue(rule.Value) {
		return types.AttributeCondition{}, false
	}
	return types.AttributeCondition{Operator: rule.Operator, Value: rule.Value}, true
}

func emptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

func (c *AttributeComposer) rule(name string) *AttributeRule {
	for i := range c.rules {
		if c.rules[i].AttributeName == name {
			return &c.rules[i]
		}
	}
	return nil
}
