package image

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/moffa90/go-at24mac/protocol"
)

// Constants for the hex image format.
const (
	// HeaderLength is the length of the header line in hex characters
	HeaderLength = 10

	// RowHeaderSize is the size of row metadata (offset + length)
	RowHeaderSize = 3

	// RowChecksumSize is the size of the row checksum field
	RowChecksumSize = 1

	// MinimumRowLength is the minimum length of a row line in hex characters
	MinimumRowLength = 2 * (RowHeaderSize + 1 + RowChecksumSize)

	// MaxRowData is the largest data field one row can carry
	MaxRowData = 0xFF

	macComment    = "# mac "
	serialComment = "# serial "
)

var modelCodes = map[protocol.Model]byte{
	protocol.ModelAT24MAC402: 0x04,
	protocol.ModelAT24MAC602: 0x06,
}

func modelFromCode(code byte) (protocol.Model, bool) {
	for m, c := range modelCodes {
		if c == code {
			return m, true
		}
	}
	return 0, false
}

// decodeHex parses the hex format.
func decodeHex(r io.Reader) (*Image, error) {
	scanner := bufio.NewScanner(r)

	var (
		img     *Image
		mac     net.HardwareAddr
		serial  protocol.Serial
		lineNum int
	)

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines
		if line == "" {
			continue
		}

		if line[0] == '#' {
			var err error
			switch {
			case strings.HasPrefix(line, macComment):
				mac, err = net.ParseMAC(strings.TrimSpace(line[len(macComment):]))
			case strings.HasPrefix(line, serialComment):
				err = serial.UnmarshalText([]byte(strings.TrimSpace(line[len(serialComment):])))
			}
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			continue
		}

		if img == nil {
			h, err := parseHeader(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: failed to parse header: %w", lineNum, err)
			}
			img = h
			continue
		}

		if err := parseRow(img, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if img == nil {
		return nil, fmt.Errorf("empty file")
	}

	img.MAC = mac
	img.Serial = serial
	return img, nil
}

// parseHeader parses the header line.
//
// Header format (10 hex characters):
//
//	[Model(1)][Size(2)][PageSize(1)][AddressSize(1)]
//
// Example: "0401001001" = AT24MAC402, 256 bytes, 16-byte pages, 1 address byte
func parseHeader(line string) (*Image, error) {
	if len(line) != HeaderLength {
		return nil, fmt.Errorf("invalid header length: got %d characters, expected %d", len(line), HeaderLength)
	}

	data, err := hex.DecodeString(line)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}

	model, ok := modelFromCode(data[0])
	if !ok {
		return nil, fmt.Errorf("unknown model code: 0x%02X", data[0])
	}

	g := protocol.Geometry{
		Size:        int(data[1])<<8 | int(data[2]),
		PageSize:    int(data[3]),
		AddressSize: int(data[4]),
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	return New(model, g), nil
}

// parseRow parses a row line into img.Data.
//
// Row format:
//
//	[Offset(2)][Len(1)][Data(Len)][Checksum(1)]
//
// Example: "000A03010203ED" writes 01 02 03 at offset 10, checksum 0xED.
func parseRow(img *Image, line string) error {
	if len(line) < MinimumRowLength {
		return fmt.Errorf("row too short: got %d characters, minimum is %d", len(line), MinimumRowLength)
	}

	data, err := hex.DecodeString(line)
	if err != nil {
		return fmt.Errorf("invalid hex data: %w", err)
	}

	offset := int(data[0])<<8 | int(data[1])
	dataLen := int(data[2])

	expectedLen := RowHeaderSize + dataLen + RowChecksumSize
	if len(data) != expectedLen {
		return fmt.Errorf("data length mismatch: got %d bytes, expected %d (header=%d + data=%d + checksum=%d)",
			len(data), expectedLen, RowHeaderSize, dataLen, RowChecksumSize)
	}

	if !protocol.VerifyRowChecksum(data) {
		return fmt.Errorf("checksum mismatch: got 0x%02X, expected 0x%02X",
			data[len(data)-1], protocol.CalculateRowChecksum(data[:len(data)-1]))
	}

	if offset+dataLen > img.Geometry.Size {
		return fmt.Errorf("row [%d, %d) outside %d-byte array", offset, offset+dataLen, img.Geometry.Size)
	}

	copy(img.Data[offset:], data[RowHeaderSize:RowHeaderSize+dataLen])
	return nil
}

// encodeHex writes the image as one row per page.
func (img *Image) encodeHex(w io.Writer) error {
	g := img.Geometry
	if g.Size > 0xFFFF {
		return fmt.Errorf("hex format holds at most %d bytes, image has %d", 0xFFFF, g.Size)
	}
	if g.PageSize > MaxRowData {
		return fmt.Errorf("hex format rows hold at most %d bytes, page size is %d", MaxRowData, g.PageSize)
	}

	bw := bufio.NewWriter(w)

	header := []byte{modelCodes[img.Model], byte(g.Size >> 8), byte(g.Size), byte(g.PageSize), byte(g.AddressSize)}
	fmt.Fprintf(bw, "%X\n", header)

	if img.MAC != nil {
		fmt.Fprintf(bw, "%s%s\n", macComment, img.MAC)
	}
	if img.Serial != (protocol.Serial{}) {
		fmt.Fprintf(bw, "%s%s\n", serialComment, img.Serial)
	}

	for _, c := range protocol.SplitPages(g, 0, img.Data) {
		row := make([]byte, 0, RowHeaderSize+len(c.Data)+RowChecksumSize)
		row = append(row, byte(c.Offset>>8), byte(c.Offset), byte(len(c.Data)))
		row = append(row, c.Data...)
		row = append(row, protocol.CalculateRowChecksum(row))
		fmt.Fprintf(bw, "%X\n", row)
	}

	return bw.Flush()
}
