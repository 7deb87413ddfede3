package at24mac

import (
	"context"
	"errors"
	"io"
)

var (
	_ io.ReaderAt = (*Device)(nil)
	_ io.WriterAt = (*Device)(nil)
)

// ReadAt implements io.ReaderAt over the EEPROM array. Reads running past
// the end of the array return the available bytes and io.EOF.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, &IndexError{Op: "read at", Start: int(off), Stop: int(off) + len(p), Size: d.geom.Size}
	}
	if off >= int64(d.geom.Size) {
		return 0, io.EOF
	}

	n := len(p)
	if rem := d.geom.Size - int(off); n > rem {
		n = rem
	}

	if err := d.readArray(context.Background(), "read at", int(off), p[:n]); err != nil {
		return 0, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt over the EEPROM array. A write that does
// not fit in the array fails with an IndexError and writes nothing.
// On a bus failure n counts the bytes of the pages committed before it.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(d.geom.Size) {
		return 0, &IndexError{Op: "write at", Start: int(off), Stop: int(off) + len(p), Size: d.geom.Size}
	}
	if len(p) == 0 {
		return 0, nil
	}

	if err := d.SetRange(context.Background(), int(off), p); err != nil {
		var be *BusError
		if errors.As(err, &be) && be.Offset >= int(off) {
			return be.Offset - int(off), err
		}
		return 0, err
	}
	return len(p), nil
}
