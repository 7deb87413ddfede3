package image

import (
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-at24mac/protocol"
)

// yamlLineBytes is the number of data bytes per line of a YAML snapshot.
const yamlLineBytes = 16

// yamlImage is the YAML form of an Image. Data is hex, one line per
// yamlLineBytes bytes.
type yamlImage struct {
	Model    string            `yaml:"model"`
	Geometry protocol.Geometry `yaml:"geometry"`
	MAC      string            `yaml:"mac,omitempty"`
	Serial   string            `yaml:"serial,omitempty"`
	Data     []string          `yaml:"data"`
}

// cborImage is the CBOR form of an Image, with integer keys.
type cborImage struct {
	Model    int               `cbor:"1,keyasint"`
	Geometry protocol.Geometry `cbor:"2,keyasint"`
	MAC      []byte            `cbor:"3,keyasint,omitempty"`
	Serial   []byte            `cbor:"4,keyasint,omitempty"`
	Data     []byte            `cbor:"5,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create image CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create image CBOR decoder mode: %v", err))
	}
}

func (img *Image) encodeYAML(w io.Writer) error {
	doc := yamlImage{
		Model:    img.Model.String(),
		Geometry: img.Geometry,
	}
	if img.MAC != nil {
		doc.MAC = img.MAC.String()
	}
	if img.Serial != (protocol.Serial{}) {
		doc.Serial = img.Serial.String()
	}
	for pos := 0; pos < len(img.Data); pos += yamlLineBytes {
		end := pos + yamlLineBytes
		if end > len(img.Data) {
			end = len(img.Data)
		}
		doc.Data = append(doc.Data, strings.ToUpper(hex.EncodeToString(img.Data[pos:end])))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func decodeYAML(r io.Reader) (*Image, error) {
	var doc yamlImage
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty file")
		}
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	model, err := protocol.ParseModel(doc.Model)
	if err != nil {
		return nil, err
	}
	img := &Image{Model: model, Geometry: doc.Geometry}

	if doc.MAC != "" {
		if img.MAC, err = net.ParseMAC(doc.MAC); err != nil {
			return nil, fmt.Errorf("invalid mac: %w", err)
		}
	}
	if doc.Serial != "" {
		if err := img.Serial.UnmarshalText([]byte(doc.Serial)); err != nil {
			return nil, err
		}
	}

	var sb strings.Builder
	for _, line := range doc.Data {
		sb.WriteString(strings.Join(strings.Fields(line), ""))
	}
	if img.Data, err = hex.DecodeString(sb.String()); err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}

	return img, nil
}

func (img *Image) encodeCBOR(w io.Writer) error {
	doc := cborImage{
		Model:    int(img.Model),
		Geometry: img.Geometry,
		MAC:      img.MAC,
		Data:     img.Data,
	}
	if img.Serial != (protocol.Serial{}) {
		doc.Serial = img.Serial.Bytes()
	}

	if err := encMode.NewEncoder(w).Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode cbor: %w", err)
	}
	return nil
}

func decodeCBOR(r io.Reader) (*Image, error) {
	var doc cborImage
	if err := decMode.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty file")
		}
		return nil, fmt.Errorf("failed to parse cbor: %w", err)
	}

	img := &Image{
		Model:    protocol.Model(doc.Model),
		Geometry: doc.Geometry,
		Data:     doc.Data,
	}
	if len(doc.MAC) > 0 {
		img.MAC = net.HardwareAddr(doc.MAC)
	}
	if len(doc.Serial) > 0 {
		if len(doc.Serial) != protocol.SerialNumberLength {
			return nil, fmt.Errorf("invalid serial number: got %d bytes, expected %d", len(doc.Serial), protocol.SerialNumberLength)
		}
		copy(img.Serial[:], doc.Serial)
	}
	return img, nil
}
