package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "fallback", Get("AF_UNSET_VAR", "fallback"))

	t.Setenv("AF_SET_VAR", "value")
	assert.Equal(t, "value", Get("AF_SET_VAR", "fallback"))
}

func TestGetAsInt(t *testing.T) {
	t.Setenv("AF_INT_VAR", "42")
	assert.Equal(t, 42, GetAsInt("AF_INT_VAR", 7))

	t.Setenv("AF_INT_VAR", "not a number")
	assert.Equal(t, 7, GetAsInt("AF_INT_VAR", 7))
}

func TestGetAsDuration(t *testing.T) {
	t.Setenv("AF_DUR_VAR", "90s")
	assert.Equal(t, 90*time.Second, GetAsDuration("AF_DUR_VAR", "5s"))

	assert.Equal(t, 5*time.Second, GetAsDuration("AF_UNSET_DUR", "5s"))
}
