package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestAppGraph_IsComplete(t *testing.T) {
	require.NoError(t, fx.ValidateApp(append(appOptions(), fx.NopLogger)...))
}
