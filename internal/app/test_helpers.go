package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/pohcalc/internal/registry"
	"github.com/specialistvlad/pohcalc/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. It returns
// the app, its result output and its debug log.
func SetupAppTest(t *testing.T, appConfig *AppConfig, modules ...registry.Module) (*App, *testutil.SafeBuffer, *testutil.SafeBuffer) {
	t.Helper()

	out := &testutil.SafeBuffer{}
	logBuffer := &testutil.SafeBuffer{}
	cfg, err := NewConfig(*appConfig)
	if err != nil {
		t.Fatalf("invalid test app config: %v", err)
	}
	cfg.LogLevel = "debug"
	testApp := NewApp(out, logBuffer, cfg, modules...)

	t.Cleanup(func() {
		if os.Getenv("POHCALC_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, out, logBuffer
}
