package flags_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alexflags "github.com/sophiatx/alexandria/libs/cli/flags"
	"github.com/sophiatx/alexandria/libs/log"
)

const (
	defaultLogLevelValue = "info"
)

func TestParseLogLevel(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger := log.NewJSONLoggerNoTS(&buf)

	correctLogLevels := []struct {
		lvl              string
		expectedLogLines []string
	}{
		{"engine:error", []string{
			``, // if no default is given, assume info
			``,
			`{"level":"ERROR","msg":"sign failed","module":"engine"}`,
			`{"level":"INFO","msg":"listening","module":"rpc-server"}`, // if no default is given, assume info
			``,
		}},

		{"engine:error,*:debug", []string{
			`{"level":"DEBUG","msg":"key zeroed","module":"engine","module":"keystore"}`,
			``,
			`{"level":"ERROR","msg":"sign failed","module":"engine"}`,
			`{"level":"INFO","msg":"listening","module":"rpc-server"}`,
			`{"level":"DEBUG","msg":"config loaded"}`,
		}},

		{"*:debug,keystore:none", []string{
			``,
			`{"level":"INFO","msg":"key pair generated","module":"engine"}`,
			`{"level":"ERROR","msg":"sign failed","module":"engine"}`,
			`{"level":"INFO","msg":"listening","module":"rpc-server"}`,
			`{"level":"DEBUG","msg":"config loaded"}`,
		}},

		{"warn", []string{
			``,
			``,
			`{"level":"ERROR","msg":"sign failed","module":"engine"}`,
			``,
			``,
		}},
	}

	for _, c := range correctLogLevels {
		logger, err := alexflags.ParseLogLevel(c.lvl, jsonLogger, defaultLogLevelValue)
		require.NoError(t, err)

		emitted := func(emit func()) string {
			buf.Reset()
			emit()
			return strings.TrimSpace(buf.String())
		}

		assert.Equal(t, c.expectedLogLines[0], emitted(func() {
			logger.With("module", "engine").With("module", "keystore").Debug("key zeroed")
		}), c.lvl)
		assert.Equal(t, c.expectedLogLines[1], emitted(func() {
			logger.With("module", "engine").Info("key pair generated")
		}), c.lvl)
		assert.Equal(t, c.expectedLogLines[2], emitted(func() {
			logger.With("module", "engine").Error("sign failed")
		}), c.lvl)
		assert.Equal(t, c.expectedLogLines[3], emitted(func() {
			logger.With("module", "rpc-server").Info("listening")
		}), c.lvl)
		assert.Equal(t, c.expectedLogLines[4], emitted(func() {
			logger.Debug("config loaded")
		}), c.lvl)
	}

	incorrectLogLevel := []string{"", "some", "engine:some", "*:some,engine:error", "engine:info:extra"}
	for _, lvl := range incorrectLogLevel {
		_, err := alexflags.ParseLogLevel(lvl, jsonLogger, defaultLogLevelValue)
		assert.Error(t, err, "expected %q to produce error", lvl)
	}
}
