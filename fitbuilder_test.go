package fit

import (
	"bytes"
	"encoding/binary"

	"github.com/lucasjlepore/fitdecode/dyncrc16"
)

// fitBuilder assembles a well-formed FIT byte stream for tests: a header
// followed by definition/data records the caller writes directly, then a
// computed trailing CRC. It never validates what's written -- that's the
// decoder's job; the builder just gets the wire bytes right.
type fitBuilder struct {
	body      bytes.Buffer
	headerCRC bool
}

func newFITBuilder() *fitBuilder { return &fitBuilder{} }

// withHeaderCRC switches build() to emit the optional 14-byte header form,
// with a real dyncrc16 checksum over the first 12 bytes in its last two
// bytes (spec §4.I).
func (b *fitBuilder) withHeaderCRC() *fitBuilder {
	b.headerCRC = true
	return b
}

// definition writes a definition record for localTag declaring globalMesgNum
// with the given native field triples (num, size, base type) and, if any,
// developer field triples.
func (b *fitBuilder) definition(localTag uint8, hasDevFields bool, globalMesgNum uint16, fields [][3]uint8, devFields [][3]uint8) *fitBuilder {
	headerByte := byte(0x40) | (localTag & 0x0F)
	if hasDevFields {
		headerByte |= 0x20
	}
	b.body.WriteByte(headerByte)
	b.body.WriteByte(0x00) // reserved
	b.body.WriteByte(0x00) // arch = LE
	var gmn [2]byte
	binary.LittleEndian.PutUint16(gmn[:], globalMesgNum)
	b.body.Write(gmn[:])
	b.body.WriteByte(byte(len(fields)))
	for _, f := range fields {
		b.body.Write(f[:])
	}
	if hasDevFields {
		b.body.WriteByte(byte(len(devFields)))
		for _, f := range devFields {
			b.body.Write(f[:])
		}
	}
	return b
}

// data writes a normal (non-compressed) data record for localTag; raw is
// the exact concatenated byte payload for all native fields followed by all
// developer fields, in declaration order.
func (b *fitBuilder) data(localTag uint8, raw []byte) *fitBuilder {
	b.body.WriteByte(localTag & 0x0F)
	b.body.Write(raw)
	return b
}

// compressedData writes a compressed-timestamp data record.
func (b *fitBuilder) compressedData(localTag uint8, timeOffset uint8, raw []byte) *fitBuilder {
	b.body.WriteByte(0x80 | ((localTag & 0x03) << 5) | (timeOffset & 0x1F))
	b.body.Write(raw)
	return b
}

// raw appends arbitrary already-encoded bytes (for malformed-input tests).
func (b *fitBuilder) raw(p []byte) *fitBuilder {
	b.body.Write(p)
	return b
}

func u16le(v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return b[:]
}

func u32le(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

// build finishes the stream: a 12-byte header (or 14-byte, with an embedded
// header CRC, when withHeaderCRC was called) sized to the accumulated body,
// then the body, then the file CRC-16 trailer.
func (b *fitBuilder) build() []byte {
	size := 12
	if b.headerCRC {
		size = 14
	}
	header := make([]byte, size)
	header[0] = byte(size)
	header[1] = 0x10
	binary.LittleEndian.PutUint16(header[2:4], 100)
	binary.LittleEndian.PutUint32(header[4:8], uint32(b.body.Len()))
	copy(header[8:12], ".FIT")
	if b.headerCRC {
		headerCRC := dyncrc16.Checksum(header[:12])
		binary.LittleEndian.PutUint16(header[12:14], headerCRC)
	}

	full := append(header, b.body.Bytes()...)
	crc := dyncrc16.Checksum(full)
	full = append(full, byte(crc), byte(crc>>8))
	return full
}

// buildCorruptCRC is like build but appends a deliberately wrong CRC.
func (b *fitBuilder) buildCorruptCRC() []byte {
	good := b.build()
	good[len(good)-1] ^= 0xFF
	return good
}
