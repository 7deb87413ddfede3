package at24mac

import (
	"time"

	"github.com/moffa90/go-at24mac/protocol"
)

// Config holds the device configuration.
type Config struct {
	// Model selects the part; it decides the MAC location and length
	Model protocol.Model

	// Geometry overrides the array layout of the model (optional)
	Geometry protocol.Geometry

	// AddressPins is the A2..A0 strapping of the chip
	AddressPins uint8

	// Address is the 7-bit array address; when set it takes precedence
	// over AddressPins
	Address uint16

	// WriteCycle is the fixed wait after every write transaction
	WriteCycle time.Duration

	// AckPollTimeout enables acknowledge polling instead of the fixed
	// wait when positive
	AckPollTimeout time.Duration

	// AckPollInterval is the pause between two polls
	AckPollInterval time.Duration

	// MaxReadLength caps the bytes read in one transaction (0 = no cap)
	MaxReadLength int

	// SkipUnchanged reads each page back before writing it and skips
	// the write when the contents already match
	SkipUnchanged bool

	// Probe checks at construction that the chip acknowledges
	Probe bool

	// ProgressCallback is called after each page of a range write (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging bus transactions (optional)
	Logger Logger
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Model:           protocol.ModelAT24MAC402,
		AddressPins:     protocol.DefaultAddressPins,
		WriteCycle:      protocol.WriteCycleTime,
		AckPollInterval: 200 * time.Microsecond,
	}
}

// Option is a functional option for configuring the Device.
type Option func(*Config)

// WithModel selects the chip model. Default is AT24MAC402.
//
// Example:
//
//	dev, err := at24mac.New(bus, at24mac.WithModel(protocol.ModelAT24MAC602))
func WithModel(m protocol.Model) Option {
	return func(c *Config) {
		c.Model = m
	}
}

// WithGeometry overrides the array size, page size and sub-address width.
//
// Example:
//
//	dev, err := at24mac.New(bus, at24mac.WithGeometry(protocol.Geometry{
//	    Size: 2048, PageSize: 16, AddressSize: 2,
//	}))
func WithGeometry(g protocol.Geometry) Option {
	return func(c *Config) {
		c.Geometry = g
	}
}

// WithAddressPins sets the A2..A0 strapping (0-7). Default is 0b100.
func WithAddressPins(pins uint8) Option {
	return func(c *Config) {
		c.AddressPins = pins
	}
}

// WithAddress sets the 7-bit I2C address of the array (0x50-0x57).
// The extended memory address is derived from it.
func WithAddress(addr uint16) Option {
	return func(c *Config) {
		c.Address = addr
	}
}

// WithWriteCycle sets the fixed wait after each write transaction.
// Default is protocol.WriteCycleTime. Zero disables the wait, which is
// only safe against a simulated chip.
func WithWriteCycle(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.WriteCycle = d
		}
	}
}

// WithAckPolling replaces the fixed write-cycle wait by polling the chip
// until it acknowledges again, giving up after timeout.
//
// Example:
//
//	dev, err := at24mac.New(bus, at24mac.WithAckPolling(10*time.Millisecond))
func WithAckPolling(timeout time.Duration) Option {
	return func(c *Config) {
		c.AckPollTimeout = timeout
	}
}

// WithMaxReadLength splits reads longer than n bytes into several
// transactions. Useful for adapters that limit the transfer size.
func WithMaxReadLength(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.MaxReadLength = n
		}
	}
}

// WithSkipUnchanged compares each page with the chip before writing it and
// skips pages that already hold the data. Default is false.
func WithSkipUnchanged(skip bool) Option {
	return func(c *Config) {
		c.SkipUnchanged = skip
	}
}

// WithProbe makes New check that the chip acknowledges its array address.
func WithProbe(probe bool) Option {
	return func(c *Config) {
		c.Probe = probe
	}
}

// WithProgressCallback sets a callback to track range writes page by page.
//
// Example:
//
//	dev, err := at24mac.New(bus,
//	    at24mac.WithProgressCallback(func(p at24mac.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for bus transactions.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
