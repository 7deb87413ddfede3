package at24mac

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/moffa90/go-at24mac/protocol"
)

// Bus is the I2C bus the device talks through. Implementations must
// serialize concurrent transactions; the device does no locking.
type Bus interface {
	// Write sends w to the 7-bit address addr in one transaction.
	Write(addr uint16, w []byte) error

	// WriteRead sends w, then reads len(r) bytes into r after a repeated
	// start, in one transaction.
	WriteRead(addr uint16, w, r []byte) error
}

// Device drives one AT24MAC402/602 chip. It holds no state besides its
// configuration: every call is a live bus transaction.
type Device struct {
	bus     Bus
	config  Config
	geom    protocol.Geometry
	eeAddr  uint16
	euiAddr uint16
}

// New creates a new Device on the given bus.
//
// Example:
//
//	bus := i2cdev.Open("/dev/i2c-1")
//	defer bus.Close()
//
//	dev, err := at24mac.New(bus, at24mac.WithAddressPins(0b100))
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(bus Bus, opts ...Option) (*Device, error) {
	if bus == nil {
		return nil, &ConfigurationError{Field: "bus", Value: nil}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.Model.Valid() {
		return nil, &ConfigurationError{Field: "model", Value: int(cfg.Model)}
	}

	geom := cfg.Geometry
	if geom == (protocol.Geometry{}) {
		geom = cfg.Model.Geometry()
	}
	if err := geom.Validate(); err != nil {
		return nil, &ConfigurationError{Field: "geometry", Value: geom, Err: err}
	}

	pins := cfg.AddressPins
	if cfg.Address != 0 {
		if cfg.Address < protocol.EEPROMBaseAddress || cfg.Address > protocol.EEPROMBaseAddress|protocol.AddressPinsMask {
			return nil, &ConfigurationError{
				Field: "address",
				Value: fmt.Sprintf("0x%02X", cfg.Address),
				Err:   fmt.Errorf("must be in 0x%02X-0x%02X", protocol.EEPROMBaseAddress, protocol.EEPROMBaseAddress|protocol.AddressPinsMask),
			}
		}
		pins = uint8(cfg.Address & protocol.AddressPinsMask)
	}
	if pins > protocol.AddressPinsMask {
		return nil, &ConfigurationError{Field: "address_pins", Value: pins, Err: fmt.Errorf("must be 0-%d", protocol.AddressPinsMask)}
	}
	cfg.AddressPins = pins

	d := &Device{
		bus:     bus,
		config:  cfg,
		geom:    geom,
		eeAddr:  protocol.EEPROMAddress(pins),
		euiAddr: protocol.EUIAddress(pins),
	}

	if cfg.Probe {
		if err := d.probe(); err != nil {
			return nil, err
		}
	}

	d.logInfo("device ready",
		"model", cfg.Model.String(),
		"eeprom_addr", fmt.Sprintf("0x%02X", d.eeAddr),
		"eui_addr", fmt.Sprintf("0x%02X", d.euiAddr),
		"size", geom.Size,
		"page_size", geom.PageSize,
	)

	return d, nil
}

// probe loads the address counter with offset 0; the chip must acknowledge.
func (d *Device) probe() error {
	cmd, err := protocol.BuildReadCmd(d.geom, 0)
	if err != nil {
		return err
	}
	if err := d.bus.Write(d.eeAddr, cmd); err != nil {
		d.logError("probe failed", "addr", fmt.Sprintf("0x%02X", d.eeAddr), "error", err)
		return &DeviceNotFoundError{Addr: d.eeAddr, Err: err}
	}
	return nil
}

// Len returns the capacity of the EEPROM array in bytes.
func (d *Device) Len() int {
	return d.geom.Size
}

// Geometry returns the array layout in use.
func (d *Device) Geometry() protocol.Geometry {
	return d.geom
}

// Model returns the configured chip model.
func (d *Device) Model() protocol.Model {
	return d.config.Model
}

// Get reads the byte at index.
func (d *Device) Get(ctx context.Context, index int) (byte, error) {
	if index < 0 || index >= d.geom.Size {
		return 0, &IndexError{Op: "get", Start: index, Stop: index + 1, Size: d.geom.Size}
	}

	var buf [1]byte
	if err := d.readArray(ctx, "get", index, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Set writes value at index and waits for the write cycle to complete.
func (d *Device) Set(ctx context.Context, index int, value byte) error {
	if index < 0 || index >= d.geom.Size {
		return &IndexError{Op: "set", Start: index, Stop: index + 1, Size: d.geom.Size}
	}

	return d.writeChunk(ctx, "set", protocol.Chunk{Offset: index, Data: []byte{value}}, nil)
}

// GetRange reads the bytes in [start, stop) in address order.
// Reads longer than the configured maximum are split transparently.
func (d *Device) GetRange(ctx context.Context, start, stop int) ([]byte, error) {
	if start < 0 || stop < start || stop > d.geom.Size {
		return nil, &IndexError{Op: "get range", Start: start, Stop: stop, Size: d.geom.Size}
	}

	buf := make([]byte, stop-start)
	if err := d.readArray(ctx, "get range", start, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// SetRange writes values starting at start. The write is split at page
// boundaries; each page is one bus transaction followed by the write cycle.
//
// If a page fails, the pages before it stay written and the failing page
// holds undefined data. The returned BusError carries the page offset.
func (d *Device) SetRange(ctx context.Context, start int, values []byte) error {
	if start < 0 || start >= d.geom.Size || start+len(values) > d.geom.Size {
		return &IndexError{Op: "set range", Start: start, Stop: start + len(values), Size: d.geom.Size}
	}
	if len(values) == 0 {
		return nil
	}

	chunks := protocol.SplitPages(d.geom, start, values)
	startTime := time.Now()
	written := 0

	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled at offset %d: %w", c.Offset, err)
		}

		var skipped bool
		if err := d.writeChunk(ctx, "set range", c, &skipped); err != nil {
			return err
		}

		written += len(c.Data)
		d.reportProgress(Progress{
			Chunk:        i + 1,
			TotalChunks:  len(chunks),
			Offset:       c.Offset,
			Skipped:      skipped,
			BytesWritten: written,
			TotalBytes:   len(values),
			Percentage:   float64(written) / float64(len(values)) * 100,
			ElapsedTime:  time.Since(startTime),
		})
	}

	d.logDebug("range written",
		"start", start,
		"bytes", len(values),
		"pages", len(chunks),
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// SetValues validates values as bytes and writes them starting at start.
// A value outside 0-255 fails with a ValueError before any bus traffic.
func (d *Device) SetValues(ctx context.Context, start int, values ...int) error {
	if start < 0 || start >= d.geom.Size || start+len(values) > d.geom.Size {
		return &IndexError{Op: "set range", Start: start, Stop: start + len(values), Size: d.geom.Size}
	}

	data, err := protocol.CheckBytes(values)
	if err != nil {
		return err
	}
	return d.SetRange(ctx, start, data)
}

// MAC reads the factory-programmed MAC address: 6 bytes on the AT24MAC402,
// 8 bytes on the AT24MAC602, most significant byte first.
func (d *Device) MAC(ctx context.Context) (net.HardwareAddr, error) {
	model := d.config.Model
	buf := make([]byte, model.MACLength())
	if err := d.readEUI(ctx, "read mac", model.MACLocation(), buf); err != nil {
		return nil, err
	}

	mac, err := protocol.ParseMACResponse(model, buf)
	if err != nil {
		return nil, fmt.Errorf("read mac: %w", err)
	}
	return mac, nil
}

// SerialNumber reads the factory-programmed 128-bit serial number.
func (d *Device) SerialNumber(ctx context.Context) (protocol.Serial, error) {
	buf := make([]byte, protocol.SerialNumberLength)
	if err := d.readEUI(ctx, "read serial", protocol.SerialNumberLocation, buf); err != nil {
		return protocol.Serial{}, err
	}

	serial, err := protocol.ParseSerialResponse(buf)
	if err != nil {
		return protocol.Serial{}, fmt.Errorf("read serial: %w", err)
	}
	return serial, nil
}

// readArray fills buf from the array starting at offset, in transactions
// of at most MaxReadLength bytes.
func (d *Device) readArray(ctx context.Context, op string, offset int, buf []byte) error {
	step := len(buf)
	if d.config.MaxReadLength > 0 && d.config.MaxReadLength < step {
		step = d.config.MaxReadLength
	}

	for pos := 0; pos < len(buf); pos += step {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled at offset %d: %w", offset+pos, err)
		}

		end := pos + step
		if end > len(buf) {
			end = len(buf)
		}

		cmd, err := protocol.BuildReadCmd(d.geom, offset+pos)
		if err != nil {
			return err
		}

		d.logDebug("read", "addr", fmt.Sprintf("0x%02X", d.eeAddr), "offset", offset+pos, "len", end-pos)

		if err := d.bus.WriteRead(d.eeAddr, cmd, buf[pos:end]); err != nil {
			d.logError("read failed", "offset", offset+pos, "error", err)
			return &BusError{Op: op, Addr: d.eeAddr, Offset: offset + pos, Err: err}
		}
	}

	return nil
}

// readEUI reads from the extended memory block.
func (d *Device) readEUI(ctx context.Context, op string, location byte, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	d.logDebug("read", "addr", fmt.Sprintf("0x%02X", d.euiAddr), "offset", location, "len", len(buf))

	if err := d.bus.WriteRead(d.euiAddr, protocol.BuildEUIReadCmd(location), buf); err != nil {
		d.logError("read failed", "op", op, "error", err)
		return &BusError{Op: op, Addr: d.euiAddr, Offset: int(location), Err: err}
	}
	return nil
}

// writeChunk writes one page-aligned chunk and waits for the write cycle.
// With SkipUnchanged the chunk is compared with the chip first; skipped,
// when not nil, reports whether the write was left out.
func (d *Device) writeChunk(ctx context.Context, op string, c protocol.Chunk, skipped *bool) error {
	if d.config.SkipUnchanged {
		current := make([]byte, len(c.Data))
		if err := d.readArray(ctx, op, c.Offset, current); err != nil {
			return err
		}
		if bytes.Equal(current, c.Data) {
			d.logDebug("page unchanged", "offset", c.Offset, "len", len(c.Data))
			if skipped != nil {
				*skipped = true
			}
			return nil
		}
	}

	frame, err := protocol.BuildWriteCmd(d.geom, c.Offset, c.Data)
	if err != nil {
		return err
	}

	d.logDebug("write", "addr", fmt.Sprintf("0x%02X", d.eeAddr), "offset", c.Offset, "len", len(c.Data))

	if err := d.bus.Write(d.eeAddr, frame); err != nil {
		d.logError("write failed", "offset", c.Offset, "error", err)
		return &BusError{Op: op, Addr: d.eeAddr, Offset: c.Offset, Err: err}
	}

	return d.waitWriteCycle(ctx, c.Offset)
}

// waitWriteCycle blocks until the chip has committed the last write.
func (d *Device) waitWriteCycle(ctx context.Context, offset int) error {
	if d.config.AckPollTimeout > 0 {
		return d.pollAck(ctx, offset)
	}
	if d.config.WriteCycle <= 0 {
		return nil
	}

	timer := time.NewTimer(d.config.WriteCycle)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("write cycle at offset %d interrupted: %w", offset, ctx.Err())
	}
}

// pollAck sends address-only writes until the chip acknowledges again.
// The chip ignores a write that carries no data bytes.
func (d *Device) pollAck(ctx context.Context, offset int) error {
	cmd, err := protocol.BuildReadCmd(d.geom, offset)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(d.config.AckPollTimeout)
	polls := 0
	for {
		polls++
		lastErr := d.bus.Write(d.eeAddr, cmd)
		if lastErr == nil {
			d.logDebug("write cycle done", "offset", offset, "polls", polls)
			return nil
		}
		if time.Now().After(deadline) {
			d.logError("write cycle timeout", "offset", offset, "polls", polls, "error", lastErr)
			return &BusError{Op: "write cycle", Addr: d.eeAddr, Offset: offset, Err: lastErr}
		}

		select {
		case <-time.After(d.config.AckPollInterval):
		case <-ctx.Done():
			return fmt.Errorf("write cycle at offset %d interrupted: %w", offset, ctx.Err())
		}
	}
}

// reportProgress calls the progress callback if configured.
func (d *Device) reportProgress(progress Progress) {
	if d.config.ProgressCallback != nil {
		d.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (d *Device) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (d *Device) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (d *Device) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, keysAndValues...)
	}
}
