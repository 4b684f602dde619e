package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/charlesng35/orgdirectory/pkg/logger"
)

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(func() { logger.Set(nil) })

	require.NoError(t, ConfigureLogging(" DEBUG "))
	require.True(t, logger.Logger().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, ConfigureLogging(""))
	require.False(t, logger.Logger().Core().Enabled(zapcore.DebugLevel))
	require.True(t, logger.Logger().Core().Enabled(zapcore.InfoLevel))
}
