package fit

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/lucasjlepore/fitdecode/profile"
)

// Decoder reads successive Messages from a FIT byte stream, including
// chained segments (spec §4.H, §4.J). It is forward-only: a Decoder cannot
// be rewound. A Decoder is not safe for concurrent use.
type Decoder struct {
	r         *byteReader
	verifyCRC bool
	proc      Processor
	acc       *accumulator
	devIndex  map[devKey]devFieldDescriptor
	devAppIDs map[uint8][]byte
	closer    io.Closer

	defs [16]*localDefinition

	header           Header
	segmentRemaining uint32

	refTimestamp uint32

	err error // sticky terminal error, once set every Next() returns it
}

// Option configures a Decoder at Open time.
type Option func(*Decoder)

// WithVerifyCRC controls whether the header and trailer CRCs are checked
// (spec §4.H, §4.I). Default true.
func WithVerifyCRC(verify bool) Option {
	return func(d *Decoder) { d.verifyCRC = verify }
}

// WithProcessor installs a custom Processor in place of the default one
// (spec §4.G.4). Passing nil is a no-op; the decoder falls back to
// NewDefaultProcessor.
func WithProcessor(p Processor) Option {
	return func(d *Decoder) {
		if p != nil {
			d.proc = p
		}
	}
}

// Open starts decoding src, which must be an io.Reader, a []byte, or a
// string naming a file path. The first file header is read and validated
// before Open returns, so ProtocolVersion and ProfileVersion are available
// immediately.
func Open(src any, opts ...Option) (*Decoder, error) {
	r, closer, err := openSource(src)
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		r:         newByteReader(r),
		verifyCRC: true,
		proc:      NewDefaultProcessor(),
		acc:       newAccumulator(),
		devIndex:  make(map[devKey]devFieldDescriptor),
		devAppIDs: make(map[uint8][]byte),
		closer:    closer,
	}
	for _, opt := range opts {
		opt(d)
	}

	h, err := decodeHeader(d.r, d.verifyCRC)
	if err != nil {
		d.err = err
		return nil, err
	}
	d.header = h
	d.segmentRemaining = h.DataSize

	return d, nil
}

func openSource(src any) (io.Reader, io.Closer, error) {
	switch v := src.(type) {
	case io.Reader:
		if c, ok := v.(io.Closer); ok {
			return v, c, nil
		}
		return v, nil, nil
	case []byte:
		return bytes.NewReader(v), nil, nil
	case string:
		f, err := os.Open(v)
		if err != nil {
			return nil, nil, err
		}
		return f, f, nil
	default:
		return nil, nil, fmt.Errorf("fit: unsupported source type %T", src)
	}
}

// Close releases any resource Open opened on the caller's behalf (a file it
// opened from a path). Closing a Decoder built from a caller-supplied
// io.Reader that also happens to be an io.Closer closes that reader too.
func (d *Decoder) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// ProtocolVersion returns the FIT protocol version of the most recently
// decoded segment header: the first segment's until Next moves into a
// chained segment.
func (d *Decoder) ProtocolVersion() uint8 { return d.header.ProtocolVersion }

// ProfileVersion returns the FIT profile version of the most recently
// decoded segment header, like ProtocolVersion.
func (d *Decoder) ProfileVersion() uint16 { return d.header.ProfileVersion }

// Header returns the most recently decoded segment header (spec §4.I).
func (d *Decoder) Header() Header { return d.header }

// Next decodes and returns the next data message, skipping over definition
// records and developer-data bookkeeping transparently. It returns io.EOF
// once the stream (including every chained segment) is exhausted. Once Next
// returns a non-nil, non-io.EOF error, every subsequent call returns that
// same error.
func (d *Decoder) Next() (Message, error) {
	if d.err != nil {
		return Message{}, d.err
	}

	for {
		if d.segmentRemaining == 0 {
			if err := d.finishSegment(); err != nil {
				d.err = err
				return Message{}, err
			}

			_, more, err := d.r.peekByte()
			if err != nil {
				d.err = err
				return Message{}, err
			}
			if !more {
				d.err = io.EOF
				return Message{}, io.EOF
			}

			d.r.resetCRC()
			h, err := decodeHeader(d.r, d.verifyCRC)
			if err != nil {
				d.err = err
				return Message{}, err
			}
			d.header = h
			d.segmentRemaining = h.DataSize
			// Local definitions, the component accumulator, the developer-field
			// index, and the compressed-timestamp reference are all scoped to
			// one chained segment (spec §3, §4.G); none of it carries forward.
			d.defs = [16]*localDefinition{}
			d.acc = newAccumulator()
			d.devIndex = make(map[devKey]devFieldDescriptor)
			d.devAppIDs = make(map[uint8][]byte)
			d.refTimestamp = 0
			continue
		}

		startOffset := d.r.offset()
		headerByte, err := d.r.readByte()
		if err != nil {
			d.err = err
			return Message{}, err
		}
		kind, localTag, hasDevFields, offsetBits := classifyHeader(headerByte)

		switch kind {
		case recordDefinition:
			def, err := decodeDefinitionRecord(d.r, hasDevFields)
			if err != nil {
				d.err = err
				return Message{}, err
			}
			d.defs[localTag] = def
			d.consumeSegment(startOffset)
			continue

		case recordData, recordCompressedData:
			def := d.defs[localTag]
			if def == nil {
				err := newErr(UnknownLocalTag, startOffset, "local tag %d has no definition in force", localTag)
				d.err = err
				return Message{}, err
			}

			var compressedTS *uint32
			if kind == recordCompressedData {
				ts := d.reconstructTimestamp(offsetBits)
				compressedTS = &ts
			}

			rawFields, err := decodeDataRecord(d.r, def, d.devIndex, compressedTS)
			if err != nil {
				d.err = err
				return Message{}, err
			}
			d.observeTimestamp(rawFields)
			d.consumeSegment(startOffset)

			msg, err := expandMessage(def.GlobalMesgNum, localTag, startOffset, rawFields, d.acc, d.proc)
			if err != nil {
				wrapped := wrapErr(ProcessorError, startOffset, err)
				d.err = wrapped
				return Message{}, wrapped
			}
			d.observeDeveloperSchema(def.GlobalMesgNum, msg)
			return msg, nil
		}
	}
}

// consumeSegment deducts the bytes read since startOffset from the current
// segment's remaining data budget, clamped at zero. Real truncation surfaces
// through byteReader's own io.ErrUnexpectedEOF handling, not this count.
func (d *Decoder) consumeSegment(startOffset int64) {
	consumed := d.r.offset() - startOffset
	if consumed < 0 {
		return
	}
	if uint32(consumed) >= d.segmentRemaining {
		d.segmentRemaining = 0
		return
	}
	d.segmentRemaining -= uint32(consumed)
}

// finishSegment reads and checks the current segment's 2-byte trailing CRC
// (spec §4.H): every byte since the segment's header started has already
// fed the running engine, so the trailer is read without feeding it and
// compared directly.
func (d *Decoder) finishSegment() error {
	var trailer [2]byte
	if err := d.r.readRawNoCRC(trailer[:]); err != nil {
		return err
	}
	if !d.verifyCRC {
		return nil
	}
	stored := uint16(trailer[0]) | uint16(trailer[1])<<8
	computed := d.r.crcSum()
	if stored != computed {
		return newErr(CrcMismatch, d.r.offset(), "file CRC was 0x%04X, computed 0x%04X", stored, computed)
	}
	return nil
}

// reconstructTimestamp expands a compressed record's 5-bit offset against
// the last seen 32-bit timestamp (spec §4.F "compressed timestamp"),
// advancing the reference forward by a multiple of 32 seconds on wraparound.
func (d *Decoder) reconstructTimestamp(offset uint8) uint32 {
	ref := d.refTimestamp
	next := (ref &^ 0x1F) | uint32(offset)
	if next < ref {
		next += 32
	}
	d.refTimestamp = next
	return next
}

// observeTimestamp updates the compressed-timestamp reference whenever a
// record carries its own field 253, per spec §4.F.
func (d *Decoder) observeTimestamp(fields []RawField) {
	for _, f := range fields {
		if f.Num == fieldNumTimestamp && !f.Developer {
			if ts, ok := f.Value.(uint32); ok {
				d.refTimestamp = ts
			}
			return
		}
	}
}

// observeDeveloperSchema updates the developer-field index from the two
// reserved descriptor messages (spec §6), after ordinary expansion has
// already named and typed their own fields.
func (d *Decoder) observeDeveloperSchema(mesgNum uint16, msg Message) {
	switch mesgNum {
	case profile.FieldDescriptionMesgNum:
		recordFieldDescription(d.devIndex, msg)
	case profile.DeveloperDataIDMesgNum:
		recordDeveloperDataID(d.devAppIDs, msg)
	}
}
