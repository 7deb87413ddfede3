package image

import (
	"bytes"
	"encoding/hex"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-at24mac/protocol"
)

func testImage(m protocol.Model, g protocol.Geometry) *Image {
	img := New(m, g)
	for i := range img.Data {
		img.Data[i] = byte(i * 13)
	}
	img.MAC = net.HardwareAddr{0xFC, 0xC2, 0x3D, 0x0D, 0x2A, 0x41}
	if m == protocol.ModelAT24MAC602 {
		img.MAC = net.HardwareAddr{0xFC, 0xC2, 0x3D, 0xFF, 0xFE, 0x0D, 0x2A, 0x41}
	}
	img.Serial = protocol.Serial{0x0A, 0x1B, 0x2C, 0x3D, 0x4E, 0x5F, 0x60, 0x71, 0x82, 0x93, 0xA4, 0xB5, 0xC6, 0xD7, 0xE8, 0xF9}
	return img
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"backup.hex", FormatHex, false},
		{"dir/backup.HEX", FormatHex, false},
		{"backup.yaml", FormatYAML, false},
		{"backup.yml", FormatYAML, false},
		{"backup.cbor", FormatCBOR, false},
		{"backup.bin", FormatBinary, false},
		{"backup.txt", 0, true},
		{"backup", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	images := map[string]*Image{
		"402":   testImage(protocol.ModelAT24MAC402, protocol.ModelAT24MAC402.Geometry()),
		"602":   testImage(protocol.ModelAT24MAC602, protocol.ModelAT24MAC602.Geometry()),
		"large": testImage(protocol.ModelAT24MAC402, protocol.Geometry{Size: 2048, PageSize: 16, AddressSize: 2}),
	}

	for name, img := range images {
		for _, format := range []Format{FormatHex, FormatYAML, FormatCBOR} {
			t.Run(name+"/"+format.String(), func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, img.Encode(&buf, format))

				got, err := Decode(&buf, format)
				require.NoError(t, err)
				if diff := cmp.Diff(img, got); diff != "" {
					t.Errorf("round trip mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestBinary(t *testing.T) {
	img := testImage(protocol.ModelAT24MAC402, protocol.ModelAT24MAC402.Geometry())

	var buf bytes.Buffer
	require.NoError(t, img.Encode(&buf, FormatBinary))
	assert.Equal(t, img.Data, buf.Bytes())

	got, err := Decode(&buf, FormatBinary)
	require.NoError(t, err)
	assert.Equal(t, img.Data, got.Data)
	assert.Equal(t, protocol.ModelAT24MAC402.Geometry(), got.Geometry)
	assert.Nil(t, got.MAC)

	_, err = Decode(bytes.NewReader(nil), FormatBinary)
	assert.Error(t, err)
}

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		check   func(t *testing.T, img *Image)
		wantErr bool
		errMsg  string
	}{
		{
			name: "single row",
			input: "0401001001\n" +
				"000A03010203ED\n",
			check: func(t *testing.T, img *Image) {
				assert.Equal(t, protocol.ModelAT24MAC402, img.Model)
				assert.Equal(t, []byte{1, 2, 3}, img.Data[10:13])
				assert.Equal(t, byte(0xFF), img.Data[9], "missing bytes read as erased")
				assert.Equal(t, byte(0xFF), img.Data[13])
			},
		},
		{
			name: "comments and blank lines",
			input: "# backup\n" +
				"0601001001\n" +
				"\n" +
				"# mac fc:c2:3d:ff:fe:0d:2a:41\n" +
				"# serial 0A1B2C3D4E5F60718293A4B5C6D7E8F9\n" +
				"000A03010203ED\n",
			check: func(t *testing.T, img *Image) {
				assert.Equal(t, protocol.ModelAT24MAC602, img.Model)
				assert.Equal(t, "fc:c2:3d:ff:fe:0d:2a:41", img.MAC.String())
				assert.Equal(t, "0A1B2C3D4E5F60718293A4B5C6D7E8F9", img.Serial.String())
			},
		},
		{
			name: "doc example row",
			input: "0401001001\n" +
				"00001000112233445566778899AABBCCDDEEFFF8\n",
			check: func(t *testing.T, img *Image) {
				assert.Equal(t, byte(0xFF), img.Data[15])
				assert.Equal(t, byte(0x11), img.Data[1])
			},
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: true,
			errMsg:  "empty file",
		},
		{
			name:    "bad header length",
			input:   "04010010\n",
			wantErr: true,
			errMsg:  "line 1: failed to parse header: invalid header length",
		},
		{
			name:    "unknown model",
			input:   "0901001001\n",
			wantErr: true,
			errMsg:  "unknown model code",
		},
		{
			name:    "bad geometry",
			input:   "0401000C01\n",
			wantErr: true,
			errMsg:  "page_size",
		},
		{
			name: "checksum mismatch",
			input: "0401001001\n" +
				"000A03010203EE\n",
			wantErr: true,
			errMsg:  "line 2: checksum mismatch: got 0xEE, expected 0xED",
		},
		{
			name: "length mismatch",
			input: "0401001001\n" +
				"000A0501020300\n",
			wantErr: true,
			errMsg:  "data length mismatch",
		},
		{
			name: "row outside array",
			input: "0401001001\n" +
				"00FF020102FC\n",
			wantErr: true,
			errMsg:  "outside 256-byte array",
		},
		{
			name: "invalid hex",
			input: "0401001001\n" +
				"000A0301020ZZZ\n",
			wantErr: true,
			errMsg:  "invalid hex data",
		},
		{
			name: "bad mac comment",
			input: "0401001001\n" +
				"# mac not-a-mac\n",
			wantErr: true,
			errMsg:  "line 2",
		},
		{
			name: "mac length must match model",
			input: "0401001001\n" +
				"# mac fc:c2:3d:ff:fe:0d:2a:41\n",
			wantErr: true,
			errMsg:  "MAC must be 6 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input), FormatHex)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestEncodeHex(t *testing.T) {
	img := New(protocol.ModelAT24MAC402, protocol.ModelAT24MAC402.Geometry())
	copy(img.Data, []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF})

	var buf bytes.Buffer
	require.NoError(t, img.Encode(&buf, FormatHex))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1+16)
	assert.Equal(t, "0401001001", lines[0])
	assert.Equal(t, "00001000112233445566778899AABBCCDDEEFFF8", lines[1])

	for _, line := range lines[1:] {
		b, err := hex.DecodeString(line)
		require.NoError(t, err)
		assert.True(t, protocol.VerifyRowChecksum(b), "row %s", line)
	}
}

func TestDecodeYAML(t *testing.T) {
	input := `model: AT24MAC402
geometry:
  size: 32
  page_size: 16
  address_size: 1
mac: fc:c2:3d:0d:2a:41
data:
  - 00112233 44556677 8899AABB CCDDEEFF
  - FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF
`
	img, err := Decode(strings.NewReader(input), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 32, len(img.Data))
	assert.Equal(t, byte(0x44), img.Data[4])
	assert.Equal(t, "fc:c2:3d:0d:2a:41", img.MAC.String())

	_, err = Decode(strings.NewReader("model: AT24MAC402\nbogus: 1\n"), FormatYAML)
	assert.Error(t, err, "unknown fields are rejected")

	_, err = Decode(strings.NewReader(strings.Replace(input, "size: 32", "size: 48", 1)), FormatYAML)
	assert.ErrorContains(t, err, "data holds 32 bytes")
}

func TestValidate(t *testing.T) {
	good := testImage(protocol.ModelAT24MAC402, protocol.ModelAT24MAC402.Geometry())
	require.NoError(t, good.Validate())

	tests := []struct {
		name   string
		mutate func(img *Image)
		errMsg string
	}{
		{"unknown model", func(img *Image) { img.Model = 24 }, "unknown model"},
		{"bad geometry", func(img *Image) { img.Geometry.PageSize = 0 }, "page_size"},
		{"short data", func(img *Image) { img.Data = img.Data[:100] }, "data holds 100 bytes"},
		{"wrong mac", func(img *Image) { img.MAC = img.MAC[:4] }, "MAC must be 6 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testImage(protocol.ModelAT24MAC402, protocol.ModelAT24MAC402.Geometry())
			tt.mutate(img)
			assert.ErrorContains(t, img.Validate(), tt.errMsg)

			assert.Error(t, img.Encode(&bytes.Buffer{}, FormatHex), "invalid images are not encoded")
		})
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	img := testImage(protocol.ModelAT24MAC402, protocol.ModelAT24MAC402.Geometry())

	for _, name := range []string{"backup.hex", "backup.yaml", "backup.cbor"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, img.Save(path))

			got, err := Load(path)
			require.NoError(t, err)
			if diff := cmp.Diff(img, got); diff != "" {
				t.Errorf("Load mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("unknown extension", func(t *testing.T) {
		assert.Error(t, img.Save(filepath.Join(dir, "backup.txt")))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.hex"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
