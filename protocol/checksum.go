package protocol

// CalculateRowChecksum computes the 8-bit checksum of an image row.
// This is used by the hex image format to detect corrupted lines.
//
// The checksum is calculated by summing all bytes and taking 2's complement,
// so the sum of a row including its checksum is zero.
func CalculateRowChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	// Return 2's complement: invert and add 1
	return ^sum + 1
}

// VerifyRowChecksum reports whether the last byte of row is the checksum
// of the bytes before it.
func VerifyRowChecksum(row []byte) bool {
	if len(row) == 0 {
		return false
	}
	var sum byte
	for _, b := range row {
		sum += b
	}
	return sum == 0
}
