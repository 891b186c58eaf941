package log_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sophiatx/alexandria/libs/log"
)

func TestVariousLevels(t *testing.T) {
	testCases := []struct {
		name    string
		allowed log.Option
		want    string
	}{
		{
			"AllowAll",
			log.AllowAll(),
			strings.Join([]string{
				`{"level":"DEBUG","msg":"keystore","event":"key loaded"}`,
				`{"level":"INFO","msg":"keystore","event":"key created"}`,
				`{"level":"WARN","msg":"keystore","event":"key overwritten"}`,
				`{"level":"ERROR","msg":"keystore","event":"key unreadable"}`,
			}, "\n"),
		},
		{
			"AllowError",
			log.AllowError(),
			strings.Join([]string{
				`{"level":"ERROR","msg":"keystore","event":"key unreadable"}`,
			}, "\n"),
		},
		{
			"AllowInfo",
			log.AllowInfo(),
			strings.Join([]string{
				`{"level":"INFO","msg":"keystore","event":"key created"}`,
				`{"level":"WARN","msg":"keystore","event":"key overwritten"}`,
				`{"level":"ERROR","msg":"keystore","event":"key unreadable"}`,
			}, "\n"),
		},
		{
			"AllowDebug",
			log.AllowDebug(),
			strings.Join([]string{
				`{"level":"DEBUG","msg":"keystore","event":"key loaded"}`,
				`{"level":"INFO","msg":"keystore","event":"key created"}`,
				`{"level":"WARN","msg":"keystore","event":"key overwritten"}`,
				`{"level":"ERROR","msg":"keystore","event":"key unreadable"}`,
			}, "\n"),
		},
		{
			"AllowNone",
			log.AllowNone(),
			``,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.NewFilter(log.NewJSONLoggerNoTS(&buf), tc.allowed)

			logger.Debug("keystore", "event", "key loaded")
			logger.Info("keystore", "event", "key created")
			logger.Warn("keystore", "event", "key overwritten")
			logger.Error("keystore", "event", "key unreadable")

			if want, have := tc.want, strings.TrimSpace(buf.String()); want != have {
				t.Errorf("\nwant:\n%s\nhave:\n%s", want, have)
			}
		})
	}
}

func TestLevelContext(t *testing.T) {
	var buf bytes.Buffer

	logger := log.NewJSONLoggerNoTS(&buf)
	logger = log.NewFilter(logger, log.AllowError())
	logger = logger.With("module", "rpc")

	logger.Error("request", "method", "sign_digest")

	want := `{"level":"ERROR","msg":"request","module":"rpc","method":"sign_digest"}`
	have := strings.TrimSpace(buf.String())
	if want != have {
		t.Errorf("\nwant '%s'\nhave '%s'", want, have)
	}

	buf.Reset()
	logger.Info("request", "method", "sign_digest")
	if want, have := ``, strings.TrimSpace(buf.String()); want != have {
		t.Errorf("\nwant '%s'\nhave '%s'", want, have)
	}
}

func TestVariousAllowWith(t *testing.T) {
	var buf bytes.Buffer

	logger := log.NewJSONLoggerNoTS(&buf)

	logger1 := log.NewFilter(logger, log.AllowError(), log.AllowInfoWith("module", "rpc"))
	logger1.With("module", "rpc").Info("request", "method", "sign_digest")

	want := `{"level":"INFO","msg":"request","module":"rpc","method":"sign_digest"}`
	have := strings.TrimSpace(buf.String())
	if want != have {
		t.Errorf("\nwant '%s'\nhave '%s'", want, have)
	}

	buf.Reset()

	logger2 := log.NewFilter(
		logger,
		log.AllowError(),
		log.AllowInfoWith("module", "rpc"),
		log.AllowNoneWith("account", "alice"),
	)

	logger2.With("module", "rpc", "account", "alice").Info("request", "method", "sign_digest")
	if want, have := ``, strings.TrimSpace(buf.String()); want != have {
		t.Errorf("\nwant '%s'\nhave '%s'", want, have)
	}

	buf.Reset()

	logger3 := log.NewFilter(
		logger,
		log.AllowError(),
		log.AllowInfoWith("module", "rpc"),
		log.AllowNoneWith("account", "alice"),
	)

	logger3.With("account", "alice").With("module", "rpc").Info("request", "method", "sign_digest")

	want = `{"level":"INFO","msg":"request","account":"alice","module":"rpc","method":"sign_digest"}`
	have = strings.TrimSpace(buf.String())
	if want != have {
		t.Errorf("\nwant '%s'\nhave '%s'", want, have)
	}
}
