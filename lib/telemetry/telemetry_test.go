package telemetry

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupFromEnvWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	tel, err := SetupFromEnv(context.Background(), "test:telemetry")
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}
