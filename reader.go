package fit

import (
	"bufio"
	"hash"
	"io"

	"github.com/lucasjlepore/fitdecode/dyncrc16"
)

// byteReader is the forward-only, position-tracked input over a FIT byte
// source (spec §4.A). One byteReader lives for the whole decode, including
// across chained segments: each segment resets the running CRC but keeps
// reading from the same underlying buffered stream.
type byteReader struct {
	br  *bufio.Reader
	crc hash.Hash16
	pos int64
}

func newByteReader(r io.Reader) *byteReader {
	return &byteReader{
		br:  bufio.NewReaderSize(r, 4096),
		crc: dyncrc16.New(),
	}
}

// readFull reads exactly len(buf) bytes, feeding every byte into the
// running CRC, and fails with TruncatedInput if fewer are available.
func (r *byteReader) readFull(buf []byte) error {
	n, err := io.ReadFull(r.br, buf)
	r.pos += int64(n)
	if err != nil {
		return wrapErr(TruncatedInput, r.pos, err)
	}
	r.crc.Write(buf[:n]) //nolint:errcheck // Write on this hash never fails
	return nil
}

// readRawNoCRC reads exactly len(buf) bytes without feeding the CRC. Used
// for the trailing 2-byte file CRC, which is compared against the
// accumulated checksum rather than folded into it (spec §4.H). The
// embedded header CRC is not read through here: it is part of the header
// and feeds the running CRC like every other header byte.
func (r *byteReader) readRawNoCRC(buf []byte) error {
	n, err := io.ReadFull(r.br, buf)
	r.pos += int64(n)
	if err != nil {
		return wrapErr(TruncatedInput, r.pos, err)
	}
	return nil
}

func (r *byteReader) readByte() (byte, error) {
	var b [1]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// peekByte looks at the next byte without advancing or feeding the CRC. A
// nil error with ok=false at a segment boundary means end of input: no more
// chained segments follow.
func (r *byteReader) peekByte() (b byte, ok bool, err error) {
	peeked, err := r.br.Peek(1)
	if err != nil {
		if err == io.EOF {
			return 0, false, nil
		}
		return 0, false, wrapErr(TruncatedInput, r.pos, err)
	}
	return peeked[0], true, nil
}

func (r *byteReader) offset() int64 { return r.pos }

// resetCRC starts a fresh running CRC, used at each chained segment
// boundary (spec §4.H "CRC is reset at each segment boundary").
func (r *byteReader) resetCRC() { r.crc.Reset() }

func (r *byteReader) crcSum() uint16 { return r.crc.Sum16() }
