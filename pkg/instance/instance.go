package instance

import "os"

// GetID returns the process instance identifier. WORKER_ID wins over the
// platform-provided DYNO name; local runs fall back to "local".
func GetID() string {
	for _, key := range []string{"WORKER_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
