package sim

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/moffa90/go-at24mac/protocol"
)

// euiBlockSize is the size of the read-only extended memory block.
const euiBlockSize = 256

// Chip simulates an AT24MAC402/602 on an I2C bus. It implements the
// at24mac.Bus contract: Write and WriteRead addressed by 7-bit address.
//
// The simulation follows the datasheet where it matters to a driver:
//   - page writes wrap at the page boundary
//   - sequential reads roll over at the end of the array
//   - the chip does not acknowledge while a write cycle is running
//   - the extended memory block is read-only
//
// Chip is safe for concurrent use.
type Chip struct {
	mu sync.Mutex

	model      protocol.Model
	geom       protocol.Geometry
	pins       uint8
	writeCycle time.Duration
	now        func() time.Time

	mem       []byte
	eui       [euiBlockSize]byte
	counter   int
	busyUntil time.Time

	fault FaultFunc
	seq   int
	log   []Transaction
}

// Option configures a simulated chip.
type Option func(*Chip)

// WithModel selects the simulated part. Default is AT24MAC402.
func WithModel(m protocol.Model) Option {
	return func(c *Chip) {
		c.model = m
	}
}

// WithGeometry overrides the array layout of the model.
func WithGeometry(g protocol.Geometry) Option {
	return func(c *Chip) {
		c.geom = g
	}
}

// WithAddressPins sets the A2..A0 strapping. Default is 0b100.
func WithAddressPins(pins uint8) Option {
	return func(c *Chip) {
		c.pins = pins & protocol.AddressPinsMask
	}
}

// WithWriteCycle sets how long the chip stays busy after a write.
// Default is 0: the chip is ready immediately.
func WithWriteCycle(d time.Duration) Option {
	return func(c *Chip) {
		c.writeCycle = d
	}
}

// WithClock replaces time.Now for the write-cycle window.
func WithClock(now func() time.Time) Option {
	return func(c *Chip) {
		c.now = now
	}
}

// WithMAC programs the factory MAC. Its length must match the model.
func WithMAC(mac net.HardwareAddr) Option {
	return func(c *Chip) {
		copy(c.eui[c.model.MACLocation():], mac)
	}
}

// WithSerial programs the factory serial number.
func WithSerial(s protocol.Serial) Option {
	return func(c *Chip) {
		copy(c.eui[protocol.SerialNumberLocation:], s[:])
	}
}

// DefaultMAC is the EUI-48 programmed into a new simulated AT24MAC402.
var DefaultMAC = net.HardwareAddr{0xFC, 0xC2, 0x3D, 0x0D, 0x2A, 0x41}

// DefaultEUI64 is the EUI-64 programmed into a new simulated AT24MAC602.
var DefaultEUI64 = net.HardwareAddr{0xFC, 0xC2, 0x3D, 0xFF, 0xFE, 0x0D, 0x2A, 0x41}

// DefaultSerial is the serial number programmed into a new simulated chip.
var DefaultSerial = protocol.Serial{
	0x0A, 0x1B, 0x2C, 0x3D, 0x4E, 0x5F, 0x60, 0x71,
	0x82, 0x93, 0xA4, 0xB5, 0xC6, 0xD7, 0xE8, 0xF9,
}

// New creates a simulated chip with an erased array (all 0xFF).
// Options are applied in order; put WithModel before WithMAC.
func New(opts ...Option) *Chip {
	c := &Chip{
		model: protocol.ModelAT24MAC402,
		pins:  protocol.DefaultAddressPins,
		now:   time.Now,
	}
	for i := range c.eui {
		c.eui[i] = 0xFF
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.geom == (protocol.Geometry{}) {
		c.geom = c.model.Geometry()
	}

	loc := int(c.model.MACLocation())
	if !hasFactoryData(c.eui[loc : loc+c.model.MACLength()]) {
		mac := DefaultMAC
		if c.model == protocol.ModelAT24MAC602 {
			mac = DefaultEUI64
		}
		copy(c.eui[loc:], mac)
	}
	if !hasFactoryData(c.eui[protocol.SerialNumberLocation : protocol.SerialNumberLocation+protocol.SerialNumberLength]) {
		copy(c.eui[protocol.SerialNumberLocation:], DefaultSerial[:])
	}

	c.mem = make([]byte, c.geom.Size)
	for i := range c.mem {
		c.mem[i] = 0xFF
	}

	return c
}

func hasFactoryData(b []byte) bool {
	for _, v := range b {
		if v != 0xFF {
			return true
		}
	}
	return false
}

// Write performs a write transaction: sub-address followed by data.
func (c *Chip) Write(addr uint16, w []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx := c.record(KindWrite, addr, w, 0)
	if err := c.admit(tx); err != nil {
		return c.fail(err)
	}

	switch addr {
	case protocol.EEPROMAddress(c.pins):
		return c.fail(c.writeArray(w))
	case protocol.EUIAddress(c.pins):
		if len(w) > 1 {
			// Data bytes to the extended memory are not acknowledged.
			return c.fail(&NoAckError{Addr: addr, Phase: "data"})
		}
		return nil
	default:
		return c.fail(&NoAckError{Addr: addr, Phase: "address"})
	}
}

// WriteRead performs a write of the sub-address followed by a repeated
// start and a sequential read of len(r) bytes.
func (c *Chip) WriteRead(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx := c.record(KindWriteRead, addr, w, len(r))
	if err := c.admit(tx); err != nil {
		return c.fail(err)
	}

	switch addr {
	case protocol.EEPROMAddress(c.pins):
		if len(w) != c.geom.AddressSize {
			return c.fail(fmt.Errorf("sim: read needs %d address bytes, got %d", c.geom.AddressSize, len(w)))
		}
		c.counter = c.decodeOffset(w)
		for i := range r {
			r[i] = c.mem[c.counter]
			c.counter = (c.counter + 1) % len(c.mem)
		}
		return nil
	case protocol.EUIAddress(c.pins):
		if len(w) != 1 {
			return c.fail(fmt.Errorf("sim: extended memory read needs 1 address byte, got %d", len(w)))
		}
		p := int(w[0])
		for i := range r {
			r[i] = c.eui[p]
			p = (p + 1) % euiBlockSize
		}
		return nil
	default:
		return c.fail(&NoAckError{Addr: addr, Phase: "address"})
	}
}

// writeArray applies a write to the array with the chip's page-wrap
// behavior. An address-only write just loads the address counter.
func (c *Chip) writeArray(w []byte) error {
	if len(w) < c.geom.AddressSize {
		return fmt.Errorf("sim: write needs %d address bytes, got %d", c.geom.AddressSize, len(w))
	}

	offset := c.decodeOffset(w)
	data := w[c.geom.AddressSize:]
	c.counter = offset
	if len(data) == 0 {
		return nil
	}

	// Only the last PageSize bytes of an overlong write survive.
	if len(data) > c.geom.PageSize {
		data = data[len(data)-c.geom.PageSize:]
	}
	base := offset - offset%c.geom.PageSize
	inPage := offset % c.geom.PageSize
	for i, b := range data {
		c.mem[base+(inPage+i)%c.geom.PageSize] = b
	}

	if c.writeCycle > 0 {
		c.busyUntil = c.now().Add(c.writeCycle)
	}
	return nil
}

func (c *Chip) decodeOffset(w []byte) int {
	offset := 0
	for _, b := range w[:c.geom.AddressSize] {
		offset = offset<<8 | int(b)
	}
	return offset % len(c.mem)
}

// admit applies the write-cycle busy window and the injected fault.
func (c *Chip) admit(tx Transaction) error {
	if c.now().Before(c.busyUntil) {
		return &NoAckError{Addr: tx.Addr, Phase: "busy"}
	}
	if c.fault != nil {
		if err := c.fault(tx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chip) record(kind Kind, addr uint16, w []byte, readLen int) Transaction {
	tx := Transaction{
		Seq:     c.seq,
		Kind:    kind,
		Addr:    addr,
		W:       append([]byte(nil), w...),
		ReadLen: readLen,
	}
	c.seq++
	c.log = append(c.log, tx)
	return tx
}

// fail stores err on the last logged transaction and returns it.
func (c *Chip) fail(err error) error {
	if err != nil && len(c.log) > 0 {
		c.log[len(c.log)-1].Err = err
	}
	return err
}

// InjectFault installs f to be consulted before every transaction.
// A nil f removes the fault.
func (c *Chip) InjectFault(f FaultFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fault = f
}

// Memory returns a copy of the array contents.
func (c *Chip) Memory() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, len(c.mem))
	copy(out, c.mem)
	return out
}

// Load overwrites the array at offset without any bus transaction.
func (c *Chip) Load(offset int, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.mem[offset:], data)
}

// Geometry returns the simulated array layout.
func (c *Chip) Geometry() protocol.Geometry {
	return c.geom
}

// Model returns the simulated part.
func (c *Chip) Model() protocol.Model {
	return c.model
}

// Pins returns the simulated A2..A0 strapping.
func (c *Chip) Pins() uint8 {
	return c.pins
}

// Transactions returns a copy of the transaction log.
func (c *Chip) Transactions() []Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Transaction, len(c.log))
	copy(out, c.log)
	return out
}

// DataWrites returns the logged writes that carried data to the array,
// i.e. the transactions that started a write cycle.
func (c *Chip) DataWrites() []Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Transaction
	for _, tx := range c.log {
		if tx.Kind == KindWrite && tx.Err == nil &&
			tx.Addr == protocol.EEPROMAddress(c.pins) && len(tx.W) > c.geom.AddressSize {
			out = append(out, tx)
		}
	}
	return out
}

// ResetLog clears the transaction log.
func (c *Chip) ResetLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = nil
}
