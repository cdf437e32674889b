package configuration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvUsesDefaults(t *testing.T) {
	assert.Equal(t, "host: localhost", expandEnv("host: ${UNSET_TEST_VAR:localhost}"))
	assert.Equal(t, "host: ", expandEnv("host: ${UNSET_TEST_VAR:}"))
	assert.Equal(t, "host: ", expandEnv("host: ${UNSET_TEST_VAR}"))
}

func TestExpandEnvPrefersEnvironment(t *testing.T) {
	t.Setenv("AF_TEST_HOST", "db.internal")

	assert.Equal(t, "host: db.internal", expandEnv("host: ${AF_TEST_HOST:localhost}"))
}

func TestExpandEnvLeavesPlainTextAlone(t *testing.T) {
	assert.Equal(t, "threshold: 0.85", expandEnv("threshold: 0.85"))
}

func TestExpandEnvHandlesMultipleReferences(t *testing.T) {
	t.Setenv("AF_TEST_USER", "svc")

	expanded := expandEnv("dsn: ${AF_TEST_USER:root}@${AF_TEST_DB_HOST:localhost}")
	assert.Equal(t, "dsn: svc@localhost", expanded)
}
