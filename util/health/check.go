// Package health names the readiness checks served on the probe endpoint
package health

const (
	// DashboardConfigSynced checks that the plugin table was loaded from the dashboard config at least once
	DashboardConfigSynced = "dashboard-config-synced"
)
