package protocol

import "fmt"

// EEPROMAddress returns the 7-bit I2C address of the EEPROM array for the
// given strap pins.
func EEPROMAddress(pins uint8) uint16 {
	return EEPROMBaseAddress | uint16(pins&AddressPinsMask)
}

// EUIAddress returns the 7-bit I2C address of the extended memory block
// (serial number and MAC) for the given strap pins.
func EUIAddress(pins uint8) uint16 {
	return EUIBaseAddress | uint16(pins&AddressPinsMask)
}

// EncodeSubAddress encodes an array offset as big-endian sub-address bytes.
//
// Frame structure:
//
//	AddressSize 1: [ADDR]
//	AddressSize 2: [ADDR_H][ADDR_L]
func EncodeSubAddress(g Geometry, offset int) ([]byte, error) {
	if offset < 0 || offset >= g.Size {
		return nil, fmt.Errorf("offset %d outside array of %d bytes", offset, g.Size)
	}

	switch g.AddressSize {
	case 1:
		return []byte{byte(offset)}, nil
	case 2:
		return []byte{byte(offset >> 8), byte(offset)}, nil
	default:
		return nil, fmt.Errorf("unsupported address size %d", g.AddressSize)
	}
}

// BuildReadCmd constructs the write phase of a random or sequential read:
// the sub-address to load into the chip's address counter.
func BuildReadCmd(g Geometry, offset int) ([]byte, error) {
	return EncodeSubAddress(g, offset)
}

// BuildWriteCmd constructs a byte or page write transaction.
//
// Frame structure:
//
//	[ADDR...][DATA...]
//
// The data must not cross a page boundary; use SplitPages first.
func BuildWriteCmd(g Geometry, offset int, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}
	if len(data) > g.PageSize {
		return nil, fmt.Errorf("data length %d exceeds page size %d", len(data), g.PageSize)
	}
	if offset/g.PageSize != (offset+len(data)-1)/g.PageSize {
		return nil, fmt.Errorf("write of %d bytes at offset %d crosses a page boundary", len(data), offset)
	}

	addr, err := EncodeSubAddress(g, offset)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 0, len(addr)+len(data))
	frame = append(frame, addr...)
	frame = append(frame, data...)

	return frame, nil
}

// BuildEUIReadCmd constructs the write phase of a read from the extended
// memory block. The block always uses one sub-address byte.
func BuildEUIReadCmd(location byte) []byte {
	return []byte{location}
}

// Chunk is one page-aligned slice of a multi-byte write.
type Chunk struct {
	// Offset is the array offset of the first byte
	Offset int

	// Data is the portion of the caller's buffer written by this chunk
	Data []byte
}

// End returns the offset one past the last byte of the chunk.
func (c Chunk) End() int {
	return c.Offset + len(c.Data)
}

// SplitPages splits a write of data at offset into chunks that never cross
// a page boundary. The first chunk runs up to the end of the starting page,
// the following chunks cover whole pages, the last chunk holds the rest.
//
// Chunks share memory with data.
func SplitPages(g Geometry, offset int, data []byte) []Chunk {
	if len(data) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, len(data)/g.PageSize+2)
	for len(data) > 0 {
		room := g.PageSize - offset%g.PageSize
		n := len(data)
		if n > room {
			n = room
		}
		chunks = append(chunks, Chunk{Offset: offset, Data: data[:n]})
		offset += n
		data = data[n:]
	}

	return chunks
}

// CheckByte validates that v fits in an EEPROM cell.
func CheckByte(v int) (byte, error) {
	if v < 0 || v > MaxByteValue {
		return 0, &ValueError{Index: -1, Value: v}
	}
	return byte(v), nil
}

// CheckBytes validates every value and returns them as bytes.
// The error reports the position of the first offending value.
func CheckBytes(values []int) ([]byte, error) {
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > MaxByteValue {
			return nil, &ValueError{Index: i, Value: v}
		}
		out[i] = byte(v)
	}
	return out, nil
}
