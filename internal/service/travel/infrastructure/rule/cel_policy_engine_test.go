package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tripFact(passengers int) map[string]interface{} {
	return map[string]interface{}{
		"customerId":        int64(7),
		"passengerCount":    passengers,
		"departureLocation": "Airport",
		"destination":       "Hotel",
		"date":              "2026-09-14",
	}
}

func TestEvaluatePassengerLimit(t *testing.T) {
	engine, err := NewCELPolicyEngine()
	require.NoError(t, err)

	ok, err := engine.Evaluate("passengerCount <= 4", tripFact(3))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.Evaluate("passengerCount <= 4", tripFact(6))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateCompoundExpression(t *testing.T) {
	engine, err := NewCELPolicyEngine()
	require.NoError(t, err)

	expr := `departureLocation == "Airport" && destination != "" && customerId > 0`
	ok, err := engine.Evaluate(expr, tripFact(1))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateRejectsBrokenExpression(t *testing.T) {
	engine, err := NewCELPolicyEngine()
	require.NoError(t, err)

	_, err = engine.Evaluate("passengerCount <= ", tripFact(1))
	assert.Error(t, err)
}

func TestEvaluateRejectsNonBoolExpression(t *testing.T) {
	engine, err := NewCELPolicyEngine()
	require.NoError(t, err)

	_, err = engine.Evaluate("passengerCount + 1", tripFact(1))
	assert.Error(t, err)
}

func TestEvaluateReusesCompiledProgram(t *testing.T) {
	engine, err := NewCELPolicyEngine()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ok, err := engine.Evaluate("passengerCount <= 4", tripFact(i))
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Len(t, engine.programs, 1)
}
