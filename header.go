package fit

import (
	"encoding/binary"

	"github.com/lucasjlepore/fitdecode/dyncrc16"
)

// Header is the decoded FIT file header (spec §4.I).
type Header struct {
	Size            uint8
	ProtocolVersion uint8
	ProfileVersion  uint16
	DataSize        uint32
	DataType        string
	HeaderCRC       uint16
	HasHeaderCRC    bool
}

// decodeHeader reads and validates one file header, including the embedded
// 12-byte header CRC when the 14-byte form is present and non-zero. All
// header bytes feed the running (segment-level) CRC; the embedded header
// CRC itself is verified against an independent checksum of the first 12
// bytes, as described in spec §4.I.
func decodeHeader(r *byteReader, verifyCRC bool) (Header, error) {
	var h Header

	size, err := r.readByte()
	if err != nil {
		return h, err
	}
	if size != 12 && size != 14 {
		return h, newErr(BadHeaderSize, r.offset(), "header size byte was %d, want 12 or 14", size)
	}
	h.Size = size

	rest := make([]byte, int(size)-1)
	if err := r.readFull(rest); err != nil {
		return h, err
	}

	full := make([]byte, 0, size)
	full = append(full, size)
	full = append(full, rest...)

	h.ProtocolVersion = full[1]
	h.ProfileVersion = binary.LittleEndian.Uint16(full[2:4])
	h.DataSize = binary.LittleEndian.Uint32(full[4:8])
	h.DataType = string(full[8:12])
	if h.DataType != ".FIT" {
		return h, newErr(BadSignature, r.offset(), "header signature was %q", h.DataType)
	}

	if size == 14 {
		stored := binary.LittleEndian.Uint16(full[12:14])
		h.HeaderCRC = stored
		h.HasHeaderCRC = stored != 0
		if h.HasHeaderCRC && verifyCRC {
			computed := dyncrc16.Checksum(full[:12])
			if computed != stored {
				return h, newErr(CrcMismatch, r.offset(), "header CRC was 0x%04X, computed 0x%04X", stored, computed)
			}
		}
	}

	return h, nil
}
