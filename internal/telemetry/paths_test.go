package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathsFor(t *testing.T) {
	p := PathsFor("health-tracker")
	assert.Equal(t, Paths{
		Root:          "health-tracker",
		CurrentStatus: "health-tracker/current-status",
		LatestHealth:  "health-tracker/latest-health",
		GPS:           "health-tracker/gps",
		Heartbeat:     "health-tracker/heartbeat",
	}, p)
}
