package config

import (
	"os"
	"strings"
)

// Host identifies the runtime zoo was started from.
type Host string

const (
	HostStandalone Host = "standalone"
	HostMaya       Host = "maya"
)

// DetectHost picks the host from an explicit setting, else from MAYA_LOCATION.
func DetectHost(explicit string) Host {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case string(HostMaya):
		return HostMaya
	case string(HostStandalone):
		return HostStandalone
	}
	if os.Getenv("MAYA_LOCATION") != "" {
		return HostMaya
	}
	return HostStandalone
}
