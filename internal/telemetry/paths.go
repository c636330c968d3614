package telemetry

// Paths store locations written by the tracker under one root.
type Paths struct {
	Root          string
	CurrentStatus string
	LatestHealth  string
	GPS           string
	Heartbeat     string
}

func PathsFor(root string) Paths {
	return Paths{
		Root:          root,
		CurrentStatus: root + "/current-status",
		LatestHealth:  root + "/latest-health",
		GPS:           root + "/gps",
		Heartbeat:     root + "/heartbeat",
	}
}
