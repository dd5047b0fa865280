package haptic

import (
	"context"
	"fmt"
	"sync"

	"go.bug.st/serial"
)

// SerialConfig holds the serial link settings for the vibration
// controller.
type SerialConfig struct {
	// Port is the device path, e.g. /dev/ttyUSB0.
	Port string

	// BaudRate for the link. The reference controller runs at 9600.
	BaudRate int
}

// DefaultSerialConfig returns production defaults.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		Port:     "/dev/ttyUSB0",
		BaudRate: 9600,
	}
}

// SerialDriver drives a vibration controller over a serial link. The
// wire protocol is a single byte per command: the pattern code.
type SerialDriver struct {
	mu   sync.Mutex
	port serial.Port
	name string
}

// NewSerialDriver opens the serial port.
func NewSerialDriver(cfg SerialConfig) (*SerialDriver, error) {
	mode := &serial.Mode{BaudRate: cfg.BaudRate}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("haptic: open %s: %w", cfg.Port, err)
	}
	return &SerialDriver{port: port, name: cfg.Port}, nil
}

// Pulse writes the pattern code to the controller.
func (d *SerialDriver) Pulse(ctx context.Context, p Pattern) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.port == nil {
		return ErrUnavailable
	}
	if _, err := d.port.Write([]byte{byte(p)}); err != nil {
		return fmt.Errorf("haptic: write %s: %w", d.name, err)
	}
	return nil
}

// Close closes the serial port.
func (d *SerialDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.port == nil {
		return nil
	}
	err := d.port.Close()
	d.port = nil
	return err
}

// Verify SerialDriver implements Driver at compile time.
var _ Driver = (*SerialDriver)(nil)
