// Package image stores and loads snapshots of an AT24MAC EEPROM.
//
// An Image holds the array contents together with the chip identity it
// was read from. Four file formats are supported, selected by extension:
//
//	.hex         line-oriented hex with per-line checksums
//	.yaml, .yml  human-editable snapshot
//	.cbor        compact binary snapshot
//	.bin         raw array bytes, no metadata
//
// # Hex Format
//
// A header line followed by one line per page, all hex-encoded:
//
//	[Model(1)][Size(2)][PageSize(1)][AddressSize(1)]
//	[Offset(2)][Len(1)][Data(Len)][Checksum(1)]
//
// Multi-byte fields are big-endian. Model is 0x04 for the AT24MAC402 and
// 0x06 for the AT24MAC602. The checksum is the 2's complement of the sum
// of the preceding bytes on the line. Lines starting with '#' are
// comments. Encode writes the MAC and serial number as "# mac" and
// "# serial" comments and Decode reads them back.
//
// Example:
//
//	0401001001
//	# mac fc:c2:3d:0d:2a:41
//	00001000112233445566778899AABBCCDDEEFFF8
//
// Pages missing from a hex file read as erased (0xFF).
//
// # Usage
//
//	img, err := image.Load("backup.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = dev.SetRange(ctx, 0, img.Data)
//
// # Error Handling
//
// Decoding errors carry the line number for the hex format. Validate
// checks that the data length matches the geometry.
package image
