package instance

import (
	"os"

	"github.com/angelmondragon/authdash-backend/pkg/env"
)

// ID returns the process instance identifier used in startup logs. It
// prefers DASHBOARD_INSTANCE_ID, then the platform's DYNO, then the host name.
func ID() string {
	if id := env.First("", "DASHBOARD_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
