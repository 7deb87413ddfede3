package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeSubAddress(t *testing.T) {
	tests := []struct {
		name    string
		geom    Geometry
		offset  int
		want    []byte
		wantErr bool
	}{
		{
			name:   "one byte address",
			geom:   ModelAT24MAC402.Geometry(),
			offset: 0xA5,
			want:   []byte{0xA5},
		},
		{
			name:   "two byte address",
			geom:   Geometry{Size: 2048, PageSize: 16, AddressSize: 2},
			offset: 0x07F0,
			want:   []byte{0x07, 0xF0},
		},
		{
			name:    "negative offset",
			geom:    ModelAT24MAC402.Geometry(),
			offset:  -1,
			wantErr: true,
		},
		{
			name:    "offset at size",
			geom:    ModelAT24MAC402.Geometry(),
			offset:  256,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeSubAddress(tt.geom, tt.offset)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeSubAddress() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestBuildWriteCmd(t *testing.T) {
	g := Geometry{Size: 2048, PageSize: 16, AddressSize: 2}

	tests := []struct {
		name    string
		offset  int
		data    []byte
		want    []byte
		wantErr bool
		errMsg  string
	}{
		{
			name:   "single byte",
			offset: 0x0105,
			data:   []byte{0x42},
			want:   []byte{0x01, 0x05, 0x42},
		},
		{
			name:   "full page",
			offset: 0x20,
			data:   bytes.Repeat([]byte{0xEE}, 16),
			want:   append([]byte{0x00, 0x20}, bytes.Repeat([]byte{0xEE}, 16)...),
		},
		{
			name:    "empty data",
			offset:  0,
			data:    nil,
			wantErr: true,
			errMsg:  "data cannot be empty",
		},
		{
			name:    "larger than page",
			offset:  0,
			data:    make([]byte, 17),
			wantErr: true,
			errMsg:  "exceeds page size",
		},
		{
			name:    "crosses page boundary",
			offset:  10,
			data:    make([]byte, 8),
			wantErr: true,
			errMsg:  "crosses a page boundary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := BuildWriteCmd(g, tt.offset, tt.data)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !bytes.Contains([]byte(err.Error()), []byte(tt.errMsg)) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(frame, tt.want) {
				t.Errorf("frame = % X, want % X", frame, tt.want)
			}
		})
	}
}

func TestSplitPages(t *testing.T) {
	g := Geometry{Size: 2048, PageSize: 16, AddressSize: 2}

	seq := func(n int) []byte {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(i + 1)
		}
		return b
	}

	tests := []struct {
		name   string
		offset int
		length int
		want   [][2]int // offset, end
	}{
		{name: "empty", offset: 5, length: 0, want: nil},
		{name: "single byte", offset: 5, length: 1, want: [][2]int{{5, 6}}},
		{name: "within page", offset: 2, length: 10, want: [][2]int{{2, 12}}},
		{name: "exact page", offset: 32, length: 16, want: [][2]int{{32, 48}}},
		{name: "crosses one boundary", offset: 10, length: 20, want: [][2]int{{10, 16}, {16, 30}}},
		{name: "aligned multi page", offset: 0, length: 40, want: [][2]int{{0, 16}, {16, 32}, {32, 40}}},
		{name: "unaligned multi page", offset: 14, length: 36, want: [][2]int{{14, 16}, {16, 32}, {32, 48}, {48, 50}}},
		{name: "ends on boundary", offset: 8, length: 24, want: [][2]int{{8, 16}, {16, 32}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := seq(tt.length)
			chunks := SplitPages(g, tt.offset, data)

			if len(chunks) != len(tt.want) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tt.want))
			}

			var joined []byte
			for i, c := range chunks {
				if c.Offset != tt.want[i][0] || c.End() != tt.want[i][1] {
					t.Errorf("chunk %d = [%d,%d), want [%d,%d)", i, c.Offset, c.End(), tt.want[i][0], tt.want[i][1])
				}
				if _, err := BuildWriteCmd(g, c.Offset, c.Data); err != nil {
					t.Errorf("chunk %d not a valid page write: %v", i, err)
				}
				joined = append(joined, c.Data...)
			}

			if !bytes.Equal(joined, data) {
				t.Errorf("chunks reassemble to % X, want % X", joined, data)
			}
		})
	}
}

func TestCheckByte(t *testing.T) {
	for _, v := range []int{0, 1, 127, 255} {
		b, err := CheckByte(v)
		if err != nil {
			t.Errorf("CheckByte(%d) unexpected error: %v", v, err)
		}
		if int(b) != v {
			t.Errorf("CheckByte(%d) = %d", v, b)
		}
	}

	for _, v := range []int{-1, 256, 1000} {
		_, err := CheckByte(v)
		var ve *ValueError
		if !errors.As(err, &ve) {
			t.Fatalf("CheckByte(%d) error = %v, want *ValueError", v, err)
		}
		if ve.Value != v || ve.Index != -1 {
			t.Errorf("ValueError = %+v", ve)
		}
	}
}

func TestCheckBytes(t *testing.T) {
	got, err := CheckBytes([]int{0, 10, 255})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte{0, 10, 255}) {
		t.Errorf("CheckBytes() = %v", got)
	}

	_, err = CheckBytes([]int{1, 2, 300, -4})
	if !IsValueError(err) {
		t.Fatalf("error = %v, want ValueError", err)
	}
	if ve := err.(*ValueError); ve.Index != 2 || ve.Value != 300 {
		t.Errorf("ValueError = %+v, want index 2 value 300", ve)
	}
}

func TestAddresses(t *testing.T) {
	if got := EEPROMAddress(DefaultAddressPins); got != 0x54 {
		t.Errorf("EEPROMAddress(0b100) = 0x%02X, want 0x54", got)
	}
	if got := EUIAddress(DefaultAddressPins); got != 0x5C {
		t.Errorf("EUIAddress(0b100) = 0x%02X, want 0x5C", got)
	}
	if got := EEPROMAddress(0xFF); got != 0x57 {
		t.Errorf("EEPROMAddress(0xFF) = 0x%02X, want 0x57", got)
	}
}
