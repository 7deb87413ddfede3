// Package i2cdev implements the at24mac bus on top of the Linux i2c-dev
// interface.
//
// Each slave address gets its own connection, opened on first use and
// kept until Close. The AT24MAC answers on two addresses, so a Bus
// typically holds two connections.
//
//	bus := i2cdev.Open("/dev/i2c-1")
//	defer bus.Close()
//
//	dev, err := at24mac.New(bus)
package i2cdev

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/exp/io/i2c"
	"golang.org/x/exp/io/i2c/driver"
)

// OpenFunc opens a connection to the 7-bit address addr.
type OpenFunc func(addr int) (driver.Conn, error)

// Bus is an I2C bus master. It is safe for concurrent use; transactions
// are serialized.
type Bus struct {
	mu     sync.Mutex
	open   OpenFunc
	conns  map[uint16]driver.Conn
	closed bool
}

// Open returns a Bus on the i2c-dev node at path, e.g. "/dev/i2c-1".
// The node is not touched until the first transaction.
func Open(path string) *Bus {
	fs := &i2c.Devfs{Dev: path}
	return New(func(addr int) (driver.Conn, error) {
		return fs.Open(addr, false)
	})
}

// New returns a Bus that opens its connections through open.
func New(open OpenFunc) *Bus {
	return &Bus{
		open:  open,
		conns: make(map[uint16]driver.Conn),
	}
}

// Write sends w to addr in one transaction.
func (b *Bus) Write(addr uint16, w []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := b.conn(addr)
	if err != nil {
		return err
	}
	return conn.Tx(w, nil)
}

// WriteRead sends w to addr and reads len(r) bytes into r after a
// repeated start.
func (b *Bus) WriteRead(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := b.conn(addr)
	if err != nil {
		return err
	}
	return conn.Tx(w, r)
}

// conn returns the cached connection for addr, opening it if needed.
// Callers hold b.mu.
func (b *Bus) conn(addr uint16) (driver.Conn, error) {
	if b.closed {
		return nil, fmt.Errorf("i2cdev: bus closed")
	}
	if c, ok := b.conns[addr]; ok {
		return c, nil
	}

	c, err := b.open(int(addr))
	if err != nil {
		return nil, fmt.Errorf("i2cdev: open address 0x%02X: %w", addr, err)
	}
	b.conns[addr] = c
	return c, nil
}

// Close closes every open connection. The errors of all failing
// connections are combined.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	addrs := make([]int, 0, len(b.conns))
	for addr := range b.conns {
		addrs = append(addrs, int(addr))
	}
	sort.Ints(addrs)

	var err error
	for _, addr := range addrs {
		if cerr := b.conns[uint16(addr)].Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("i2cdev: close address 0x%02X: %w", addr, cerr))
		}
	}

	b.conns = make(map[uint16]driver.Conn)
	b.closed = true
	return err
}
