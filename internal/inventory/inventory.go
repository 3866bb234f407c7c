// Package inventory supplies the device list a run operates on, either
// from a NetBox directory lookup or from a static YAML file. Failure to
// obtain the inventory is the pipeline's only fatal error.
package inventory

import (
	"context"

	"mirrorlab/internal/domain"
)

// Source returns the ordered device list for one site
type Source interface {
	Devices(ctx context.Context, site string) ([]*domain.Device, error)
}
