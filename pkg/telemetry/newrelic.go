package telemetry

import (
	"log"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"

	"trekbooking/pkg/config"
)

// NewRelic starts the APM agent when a license key is configured. It returns nil otherwise;
// api.Transactions treats a nil app as disabled.
func NewRelic(cfg config.Config) *newrelic.Application {
	key := strings.TrimSpace(cfg.NewRelic.LicenseKey)
	if key == "" {
		return nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.NewRelic.AppName),
		newrelic.ConfigLicense(key),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(cfg.IsProd()),
	)
	if err != nil {
		log.Printf("[telemetry] action=init_newrelic err=%v", err)
		return nil
	}
	return app
}
