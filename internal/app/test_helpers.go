package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/modgen/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Logs are
// captured at debug level in the returned buffer.
func SetupAppTest(t *testing.T, cfg *Config, opts ...Option) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	testApp := NewApp(logBuffer, cfg, opts...)

	t.Cleanup(func() {
		if os.Getenv("MODGEN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
