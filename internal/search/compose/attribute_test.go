package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchware/unisearch/internal/search/types"
)

func fixtureDefinitions() []types.AttributeDefinition {
	return []types.AttributeDefinition{
		{ID: "1", Name: "brand", Type: types.AttributeText, Filterable: true},
		{ID: "2", Name: "weight", Type: types.AttributeNumber, Filterable: true},
		{ID: "3", Name: "expiry", Type: types.AttributeDate, Filterable: true},
		{ID: "4", Name: "grade", Type: types.AttributeEnum, Options: []string{"a", "b", "c"}, Filterable: true},
		{ID: "5", Name: "fragile", Type: types.AttributeBoolean, Filterable: true},
		{ID: "6", Name: "internal_note", Type: types.AttributeText, Filterable: false},
	}
}

func TestAttributeComposerExcludesNonFilterable(t *testing.T) {
	c := NewAttributeComposer(fixtureDefinitions())

	_, err := c.AddRule("internal_note")
	assert.Error(t, err)
	assert.Len(t, c.Definitions(), 5)
}

func TestAddRuleUsesDefaultOperator(t *testing.T) {
	c := NewAttributeComposer(fixtureDefinitions())

	rule, err := c.AddRule("brand")
	require.NoError(t, err)
	assert.Equal(t, types.OpContains, rule.Operator)

	rule, err = c.AddRule("grade")
	require.NoError(t, err)
	assert.Equal(t, types.OpIn, rule.Operator)
}

func TestAddRuleReturnsDetachedCopy(t *testing.T) {
	c := NewAttributeComposer(fixtureDefinitions())

	first, err := c.AddRule("brand")
	require.NoError(t, err)

	// Growing the rule set and editing through the composer must not
	// disturb the copy handed out earlier.
	_, err = c.AddRule("weight")
	require.NoError(t, err)
	_, err = c.AddRule("grade")
	require.NoError(t, err)
	require.NoError(t, c.SetOperator("brand", types.OpEquals))

	assert.Equal(t, types.OpContains, first.Operator)
	rules := c.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, types.OpEquals, rules[0].Operator)
}

func TestAddRuleTwiceFails(t *testing.T) {
	c := NewAttributeComposer(fixtureDefinitions())

	_, err := c.AddRule("brand")
	require.NoError(t, err)
	_, err = c.AddRule("brand")
	assert.Error(t, err)
}

func TestSetOperatorRejectsOutsideTypeSet(t *testing.T) {
	c := NewAttributeComposer(fixtureDefinitions())
	_, err := c.AddRule("fragile")
	require.NoError(t, err)

	assert.Error(t, c.SetOperator("fragile", types.OpContains))
	assert.NoError(t, c.SetOperator("fragile", types.OpEquals))

	_, err = c.AddRule("weight")
	require.NoError(t, err)
	assert.NoError(t, c.SetOperator("weight", types.OpBetween))
}

func TestBuildSkipsEmptyValues(t *testing.T) {
	c := NewAttributeComposer(fixtureDefinitions())

	_, err := c.AddRule("brand")
	require.NoError(t, err)
	// No value set yet: the rule is active in the UI but must not
	// constrain the query.
	assert.Empty(t, c.Build())

	require.NoError(t, c.SetValue("brand", "acme"))
	out := c.Build()
	require.Contains(t, out, "brand")
	assert.Equal(t, types.OpContains, out["brand"].Operator)
	assert.Equal(t, "acme", out["brand"].Value)

	// Clearing the field removes the constraint again.
	require.NoError(t, c.SetValue("brand", ""))
	assert.Empty(t, c.Build())
}

func TestBuildBetweenOpenEnded(t *testing.T) {
	c := NewAttributeComposer(fixtureDefinitions())
	_, err := c.AddRule("weight")
	require.NoError(t, err)
	require.NoError(t, c.SetOperator("weight", types.OpBetween))

	// Only the lower bound set: the condition survives with the upper
	// bound kept open in place.
	require.NoError(t, c.SetValues("weight", []interface{}{10.0, nil}))
	out := c.Build()
	require.Contains(t, out, "weight")
	assert.Equal(t, []interface{}{10.0, nil}, out["weight"].Values)

	// Both bounds empty: no condition at all.
	require.NoError(t, c.SetValues("weight", []interface{}{nil, nil}))
	assert.Empty(t, c.Build())
}

func TestRemoveRule(t *testing.T) {
	c := NewAttributeComposer(fixtureDefinitions())
	_, err := c.AddRule("brand")
	require.NoError(t, err)
	require.NoError(t, c.SetValue("brand", "acme"))

	c.RemoveRule("brand")
	assert.Empty(t, c.Build())
	assert.Empty(t, c.Rules())

	// The attribute is offered again after removal.
	_, err = c.AddRule("brand")
	assert.NoError(t, err)
}

func TestAttributePatch(t *testing.T) {
	c := NewAttributeComposer(fixtureDefinitions())
	_, err := c.AddRule("grade")
	require.NoError(t, err)
	require.NoError(t, c.SetValues("grade", []interface{}{"a", "b"}))

	patch := c.Patch()
	require.NotNil(t, patch.Inventory)
	require.Contains(t, patch.Inventory.CustomAttributes, "grade")
	assert.Equal(t, types.OpIn, patch.Inventory.CustomAttributes["grade"].Operator)
}

func TestAllowedOperatorsPerType(t *testing.T) {
	assert.Contains(t, AllowedOperators(types.AttributeText), types.OpStartsWith)
	assert.NotContains(t, AllowedOperators(types.AttributeText), types.OpGt)
	assert.Contains(t, AllowedOperators(types.AttributeDate), types.OpBefore)
	assert.Equal(t, []string{types.OpEquals}, AllowedOperators(types.AttributeBoolean))
}
