package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/moffa90/go-at24mac/at24mac"
	"github.com/moffa90/go-at24mac/image"
)

const usageCommands = `Commands:
  info                     print model, MAC and serial number
  read  <start> [stop]     dump one byte or the range [start, stop)
  write <start> <v> [v...] write byte values (decimal or 0x hex)
  dump  <file>             save the chip to an image (.hex .yaml .cbor .bin)
  restore <file>           write an image back to the chip
  shell                    interactive mode
`

// app runs commands against one device.
type app struct {
	dev *at24mac.Device
	out io.Writer
	log *zap.SugaredLogger
}

// run executes one command line.
func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}

	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "info":
		return a.cmdInfo(ctx)
	case "read", "r":
		return a.cmdRead(ctx, args)
	case "write", "w":
		return a.cmdWrite(ctx, args)
	case "dump":
		return a.cmdDump(ctx, args)
	case "restore":
		return a.cmdRestore(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) cmdInfo(ctx context.Context) error {
	mac, err := a.dev.MAC(ctx)
	if err != nil {
		return err
	}
	serial, err := a.dev.SerialNumber(ctx)
	if err != nil {
		return err
	}

	g := a.dev.Geometry()
	fmt.Fprintf(a.out, "Model:   %s\n", a.dev.Model())
	fmt.Fprintf(a.out, "Size:    %d bytes (%d pages of %d)\n", g.Size, g.Pages(), g.PageSize)
	fmt.Fprintf(a.out, "MAC:     %s\n", mac)
	fmt.Fprintf(a.out, "Serial:  %s\n", serial)
	fmt.Fprintf(a.out, "UUID:    %s\n", serial.UUID())
	return nil
}

func (a *app) cmdRead(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: read <start> [stop]")
	}

	start, err := parseInt(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		v, err := a.dev.Get(ctx, start)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "0x%04X: 0x%02X (%d)\n", start, v, v)
		return nil
	}

	stop, err := parseInt(args[1])
	if err != nil {
		return err
	}
	data, err := a.dev.GetRange(ctx, start, stop)
	if err != nil {
		return err
	}
	hexDump(a.out, start, data)
	return nil
}

func (a *app) cmdWrite(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: write <start> <value> [value...]")
	}

	start, err := parseInt(args[0])
	if err != nil {
		return err
	}

	values := make([]int, 0, len(args)-1)
	for _, s := range args[1:] {
		v, err := parseInt(s)
		if err != nil {
			return err
		}
		values = append(values, v)
	}

	if err := a.dev.SetValues(ctx, start, values...); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %d byte(s) at 0x%04X\n", len(values), start)
	return nil
}

func (a *app) cmdDump(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dump <file>")
	}

	data, err := a.dev.GetRange(ctx, 0, a.dev.Len())
	if err != nil {
		return err
	}
	mac, err := a.dev.MAC(ctx)
	if err != nil {
		return err
	}
	serial, err := a.dev.SerialNumber(ctx)
	if err != nil {
		return err
	}

	img := &image.Image{
		Model:    a.dev.Model(),
		Geometry: a.dev.Geometry(),
		MAC:      mac,
		Serial:   serial,
		Data:     data,
	}
	if err := img.Save(args[0]); err != nil {
		return err
	}

	a.log.Infow("image saved", "file", args[0], "bytes", len(data))
	return nil
}

func (a *app) cmdRestore(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: restore <file>")
	}

	img, err := image.Load(args[0])
	if err != nil {
		return err
	}
	if img.Geometry != a.dev.Geometry() {
		return fmt.Errorf("image geometry %+v does not match device %+v", img.Geometry, a.dev.Geometry())
	}

	if img.MAC != nil {
		mac, err := a.dev.MAC(ctx)
		if err != nil {
			return err
		}
		if mac.String() != img.MAC.String() {
			a.log.Infow("image was taken from another chip", "image_mac", img.MAC.String(), "chip_mac", mac.String())
		}
	}

	if err := a.dev.SetRange(ctx, 0, img.Data); err != nil {
		return err
	}

	a.log.Infow("image restored", "file", args[0], "bytes", len(img.Data))
	return nil
}

// parseInt accepts decimal, 0x hex, 0o octal and 0b binary.
func parseInt(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return int(v), nil
}

// hexDump prints data 16 bytes per line, labelled with array offsets.
func hexDump(w io.Writer, base int, data []byte) {
	const perLine = 16
	for pos := 0; pos < len(data); pos += perLine {
		end := pos + perLine
		if end > len(data) {
			end = len(data)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "0x%04X:", base+pos)
		for _, b := range data[pos:end] {
			fmt.Fprintf(&sb, " %02X", b)
		}
		fmt.Fprintln(w, sb.String())
	}
}
