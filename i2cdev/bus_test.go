package i2cdev

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"golang.org/x/exp/io/i2c/driver"
)

type fakeConn struct {
	addr     int
	txs      [][]byte
	reply    []byte
	txErr    error
	closeErr error
	closed   bool
}

func (c *fakeConn) Tx(w, r []byte) error {
	c.txs = append(c.txs, append([]byte(nil), w...))
	if c.txErr != nil {
		return c.txErr
	}
	copy(r, c.reply)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return c.closeErr
}

type fakeOpener struct {
	conns map[int]*fakeConn
	opens int
	err   error
}

func (o *fakeOpener) open(addr int) (driver.Conn, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	if o.conns == nil {
		o.conns = make(map[int]*fakeConn)
	}
	c, ok := o.conns[addr]
	if !ok {
		c = &fakeConn{addr: addr}
		o.conns[addr] = c
	}
	return c, nil
}

func TestWriteAndWriteRead(t *testing.T) {
	o := &fakeOpener{conns: map[int]*fakeConn{0x5C: {reply: []byte{0xFC, 0xC2}}}}
	bus := New(o.open)

	require.NoError(t, bus.Write(0x54, []byte{0x10, 0xAA}))

	r := make([]byte, 2)
	require.NoError(t, bus.WriteRead(0x5C, []byte{0x9A}, r))
	assert.Equal(t, []byte{0xFC, 0xC2}, r)

	assert.Equal(t, [][]byte{{0x10, 0xAA}}, o.conns[0x54].txs)
	assert.Equal(t, [][]byte{{0x9A}}, o.conns[0x5C].txs)
}

func TestConnectionsCached(t *testing.T) {
	o := &fakeOpener{}
	bus := New(o.open)

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Write(0x54, []byte{0}))
		require.NoError(t, bus.WriteRead(0x5C, []byte{0x80}, make([]byte, 16)))
	}
	assert.Equal(t, 2, o.opens)
	assert.Len(t, o.conns[0x54].txs, 3)
}

func TestOpenError(t *testing.T) {
	cause := errors.New("permission denied")
	bus := New((&fakeOpener{err: cause}).open)

	err := bus.Write(0x54, []byte{0})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "0x54")
}

func TestTxError(t *testing.T) {
	cause := errors.New("remote I/O error")
	o := &fakeOpener{conns: map[int]*fakeConn{0x54: {txErr: cause}}}
	bus := New(o.open)

	assert.ErrorIs(t, bus.WriteRead(0x54, []byte{0}, make([]byte, 1)), cause)
}

func TestClose(t *testing.T) {
	errA := errors.New("close a")
	errB := errors.New("close b")
	o := &fakeOpener{conns: map[int]*fakeConn{
		0x54: {closeErr: errA},
		0x5C: {closeErr: errB},
		0x50: {},
	}}
	bus := New(o.open)

	for _, addr := range []uint16{0x50, 0x54, 0x5C} {
		require.NoError(t, bus.Write(addr, []byte{0}))
	}

	err := bus.Close()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	for _, c := range o.conns {
		assert.True(t, c.closed)
	}

	assert.Error(t, bus.Write(0x54, []byte{0}), "closed bus refuses transactions")
	assert.NoError(t, bus.Close())
}
