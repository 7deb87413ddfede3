package image

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/moffa90/go-at24mac/protocol"
)

// Format is an image file encoding.
type Format int

const (
	// FormatHex is the line-oriented hex format with per-line checksums
	FormatHex Format = iota

	// FormatYAML is the YAML snapshot
	FormatYAML

	// FormatCBOR is the CBOR snapshot
	FormatCBOR

	// FormatBinary is the raw array contents
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatHex:
		return "hex"
	case FormatYAML:
		return "yaml"
	case FormatCBOR:
		return "cbor"
	case FormatBinary:
		return "bin"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex":
		return FormatHex, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cbor":
		return FormatCBOR, nil
	case ".bin":
		return FormatBinary, nil
	default:
		return 0, fmt.Errorf("unknown image format for %q (want .hex, .yaml, .yml, .cbor or .bin)", path)
	}
}

// Image is a snapshot of one chip.
type Image struct {
	// Model is the part the image was read from
	Model protocol.Model

	// Geometry is the array layout; len(Data) must equal Geometry.Size
	Geometry protocol.Geometry

	// MAC is the factory MAC address (informational, may be nil)
	MAC net.HardwareAddr

	// Serial is the factory serial number (informational, may be zero)
	Serial protocol.Serial

	// Data is the array contents
	Data []byte
}

// New returns an erased image for the given model and geometry.
func New(m protocol.Model, g protocol.Geometry) *Image {
	data := make([]byte, g.Size)
	for i := range data {
		data[i] = 0xFF
	}
	return &Image{Model: m, Geometry: g, Data: data}
}

// Validate checks that the image can be written to a chip.
func (img *Image) Validate() error {
	if !img.Model.Valid() {
		return fmt.Errorf("invalid image: unknown model %d", int(img.Model))
	}
	if err := img.Geometry.Validate(); err != nil {
		return fmt.Errorf("invalid image: %w", err)
	}
	if len(img.Data) != img.Geometry.Size {
		return fmt.Errorf("invalid image: data holds %d bytes, geometry size is %d", len(img.Data), img.Geometry.Size)
	}
	if img.MAC != nil && len(img.MAC) != img.Model.MACLength() {
		return fmt.Errorf("invalid image: %s MAC must be %d bytes, got %d", img.Model, img.Model.MACLength(), len(img.MAC))
	}
	return nil
}

// Load reads an image file, choosing the format by extension.
//
// Example:
//
//	img, err := image.Load("backup.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("MAC: %s, %d bytes\n", img.MAC, len(img.Data))
func Load(path string) (*Image, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f, format)
}

// Decode reads an image in the given format and validates it.
// A raw binary image gets the AT24MAC402 model and a geometry sized to
// the data read.
func Decode(r io.Reader, format Format) (*Image, error) {
	var (
		img *Image
		err error
	)

	switch format {
	case FormatHex:
		img, err = decodeHex(r)
	case FormatYAML:
		img, err = decodeYAML(r)
	case FormatCBOR:
		img, err = decodeCBOR(r)
	case FormatBinary:
		img, err = decodeBinary(r)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, err
	}

	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Save writes the image to path, choosing the format by extension.
func (img *Image) Save(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := img.Encode(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes the image in the given format.
func (img *Image) Encode(w io.Writer, format Format) error {
	if err := img.Validate(); err != nil {
		return err
	}

	switch format {
	case FormatHex:
		return img.encodeHex(w)
	case FormatYAML:
		return img.encodeYAML(w)
	case FormatCBOR:
		return img.encodeCBOR(w)
	case FormatBinary:
		_, err := w.Write(img.Data)
		return err
	default:
		return fmt.Errorf("unsupported format %s", format)
	}
}

func decodeBinary(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	g := protocol.ModelAT24MAC402.Geometry()
	if len(data) != g.Size {
		g.Size = len(data)
		if g.Size > 1<<8 {
			g.AddressSize = 2
		}
	}
	return &Image{Model: protocol.ModelAT24MAC402, Geometry: g, Data: data}, nil
}
