package pipeline

import (
	"fmt"
	"time"

	"github.com/guidewalk/go-guidewalk/pkg/alert"
	"github.com/guidewalk/go-guidewalk/pkg/detect"
	"github.com/guidewalk/go-guidewalk/pkg/fusion"
	"github.com/guidewalk/go-guidewalk/pkg/proximity"
	"github.com/guidewalk/go-guidewalk/pkg/threat"
)

// Config aggregates the tuning of every pipeline stage. Zero values
// are not usable; start from DefaultConfig.
type Config struct {
	// DetectorTimeout bounds each detector call per frame. A slow
	// detector contributes nothing to that frame.
	DetectorTimeout time.Duration

	Adapter   detect.AdapterConfig
	Stairs    detect.StairConfig
	Potholes  detect.PotholeConfig
	Surface   detect.SurfaceConfig
	Fusion    fusion.Config
	Proximity proximity.Config
	Threat    threat.Config
	Alert     alert.Config
	PathClear alert.PathClearConfig
}

// DefaultConfig returns production defaults for every stage.
func DefaultConfig() Config {
	return Config{
		DetectorTimeout: 200 * time.Millisecond,
		Adapter:         detect.DefaultAdapterConfig(),
		Stairs:          detect.DefaultStairConfig(),
		Potholes:        detect.DefaultPotholeConfig(),
		Surface:         detect.DefaultSurfaceConfig(),
		Fusion:          fusion.DefaultConfig(),
		Proximity:       proximity.DefaultConfig(),
		Threat:          threat.DefaultConfig(),
		Alert:           alert.DefaultConfig(),
		PathClear:       alert.DefaultPathClearConfig(),
	}
}

// Validate checks every stage configuration. An invalid configuration
// is fatal at construction; the pipeline never starts with one.
func (c Config) Validate() error {
	if c.DetectorTimeout < 0 {
		return fmt.Errorf("pipeline: detector timeout must be >= 0, got %v", c.DetectorTimeout)
	}
	if err := c.Proximity.Validate(); err != nil {
		return err
	}
	if err := c.Alert.Validate(); err != nil {
		return err
	}
	if err := c.PathClear.Validate(); err != nil {
		return err
	}
	return nil
}
