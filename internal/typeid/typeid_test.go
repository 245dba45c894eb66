package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIDs(t *testing.T) {
	el := NewElementID()
	assert.True(t, strings.HasPrefix(el, PrefixElement+"_"), el)
	assert.NoError(t, Validate(el, PrefixElement))

	plan := NewPlanID()
	assert.NoError(t, Validate(plan, PrefixPlan))
	assert.NotEqual(t, plan, NewPlanID())
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(NewElementID(), PrefixPlan), "wrong prefix")
	assert.Error(t, Validate("plan_ghost", PrefixPlan), "bad suffix")
	assert.Error(t, Validate("", PrefixPlan))
}
