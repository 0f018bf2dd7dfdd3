package runner

import (
	"fmt"

	"github.com/notargets/gocca"
	log "github.com/sirupsen/logrus"
)

// DefaultBackends is the order CreateDevice tries when no properties are given
var DefaultBackends = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// CreateDevice returns the first OCCA device that opens, trying props in order
// and falling back to DefaultBackends
func CreateDevice(props ...string) (*gocca.OCCADevice, error) {
	backends := props
	if len(backends) == 0 {
		backends = DefaultBackends
	}

	var lastErr error
	for _, p := range backends {
		device, err := gocca.NewDevice(p)
		if err == nil {
			log.Infof("created %s device", device.Mode())
			return device, nil
		}
		log.Debugf("device %s unavailable: %v", p, err)
		lastErr = err
	}
	return nil, fmt.Errorf("no OCCA device could be created: %w", lastErr)
}
