package testutil

import "testing"

// zooEnv lists every variable that changes how zoo resolves its layout.
var zooEnv = []string{
	"ZOO_ROOT", "ZOO_CONFIG_PATH", "ZOO_PACKAGES_PATH", "ZOO_PACKAGE_VERSION_PATH",
	"ZOO_CMD_PATH", "ZOO_LOG_LEVEL", "ZOO_GIT_TIMEOUT", "ZOO_ADMIN", "ZOO_HOST", "MAYA_LOCATION",
}

// ClearZooEnv blanks the ZOO_* variables for the duration of the test.
func ClearZooEnv(t *testing.T) {
	t.Helper()
	for _, key := range zooEnv {
		t.Setenv(key, "")
	}
}
