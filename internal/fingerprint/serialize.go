// Canonical byte serialization of a Fingerprint: a little-
// endian header {u32 subfingerprint_length, u32 count} followed by each
// subfingerprint's bits packed LSB-first, padded to a whole byte.
package fingerprint

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/media-luna/fingerprint/internal/fpkind"
	"github.com/media-luna/fingerprint/internal/subfingerprint"
)

const headerSize = 8 // two little-endian uint32 fields

// bytesPerSubfp returns the padded byte count of one subfingerprint's bits.
func bytesPerSubfp(lp int) int {
	bitsLen := 2 * lp
	return (bitsLen + 7) / 8
}

// ByteSize returns the total size, in bytes, of Serialize's output for f at
// its current state: header plus one padded-to-byte block per
// subfingerprint.
func (f *Fingerprint) ByteSize() int {
	return headerSize + f.Count()*bytesPerSubfp(f.Length())
}

// Serialize writes the canonical byte layout of f to w.
func (f *Fingerprint) Serialize(w io.Writer) error {
	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(f.Length()))
	binary.LittleEndian.PutUint32(header[4:8], uint32(f.Count()))
	if _, err := w.Write(header[:]); err != nil {
		return fpkind.Wrap(fpkind.SourceFailure, err, "writing fingerprint header")
	}

	blockLen := bytesPerSubfp(f.Length())
	block := make([]byte, blockLen)
	for _, sub := range f.subfps {
		for i := range block {
			block[i] = 0
		}
		for i, bit := range sub {
			if bit {
				block[i/8] |= 1 << uint(i%8)
			}
		}
		if _, err := w.Write(block); err != nil {
			return fpkind.Wrap(fpkind.SourceFailure, err, "writing subfingerprint block")
		}
	}
	return nil
}

// Bytes returns the canonical byte encoding of f.
func (f *Fingerprint) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(f.ByteSize())
	_ = f.Serialize(&buf) // bytes.Buffer never errors on Write
	return buf.Bytes()
}

// Deserialize reads a Fingerprint from r in the canonical byte layout.
func Deserialize(r io.Reader) (*Fingerprint, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fpkind.Wrap(fpkind.SourceFailure, err, "reading fingerprint header")
	}
	lp := int(binary.LittleEndian.Uint32(header[0:4]))
	count := int(binary.LittleEndian.Uint32(header[4:8]))

	fp := &Fingerprint{length: lp}
	blockLen := bytesPerSubfp(lp)
	block := make([]byte, blockLen)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, fpkind.Wrap(fpkind.SourceFailure, err, "reading subfingerprint block")
		}
		bits := make(subfingerprint.Bits, 2*lp)
		for j := range bits {
			bits[j] = block[j/8]&(1<<uint(j%8)) != 0
		}
		fp.subfps = append(fp.subfps, bits)
	}
	return fp, nil
}

// DeserializeBytes is a convenience wrapper around Deserialize for an
// in-memory buffer.
func DeserializeBytes(data []byte) (*Fingerprint, error) {
	return Deserialize(bytes.NewReader(data))
}
