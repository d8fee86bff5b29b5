package fit

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/fitdecode/profile"
)

func TestOpenAndDecodeSimpleFile(t *testing.T) {
	b := newFITBuilder()
	b.definition(0, false, 0, [][3]uint8{{0, 1, 0x00}, {1, 2, 0x84}}, nil) // file_id
	b.data(0, append([]byte{4}, u16le(1)...))
	b.definition(1, false, 20, [][3]uint8{{3, 1, 0x02}, {253, 4, 0x86}}, nil) // record
	b.data(1, append([]byte{135}, u32le(1000000000)...))
	data := b.build()

	dec, err := Open(data)
	require.NoError(t, err)
	defer dec.Close()

	msg1, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "file_id", msg1.Name)

	msg2, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "record", msg2.Name)
	hr, ok := msg2.Field("heart_rate")
	require.True(t, ok)
	assert.Equal(t, uint8(135), hr.Value)

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadAllCollectsEveryMessage(t *testing.T) {
	b := newFITBuilder()
	b.definition(0, false, 20, [][3]uint8{{3, 1, 0x02}}, nil)
	b.data(0, []byte{100})
	b.data(0, []byte{110})
	data := b.build()

	msgs, err := ReadAll(data)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "record", msgs[0].Name)
}

func TestDecoderRejectsBadSignature(t *testing.T) {
	b := newFITBuilder()
	b.definition(0, false, 20, [][3]uint8{{3, 1, 0x02}}, nil)
	b.data(0, []byte{100})
	data := b.build()
	data[8] = 'X' // corrupt the ".FIT" signature

	_, err := Open(data)
	assert.ErrorIs(t, err, BadSignature)
}

func TestDecoderDetectsCRCMismatch(t *testing.T) {
	b := newFITBuilder()
	b.definition(0, false, 20, [][3]uint8{{3, 1, 0x02}}, nil)
	b.data(0, []byte{100})
	data := b.buildCorruptCRC()

	dec, err := Open(data)
	require.NoError(t, err)
	defer dec.Close()

	_, err = dec.Next()
	require.NoError(t, err)
	_, err = dec.Next()
	assert.ErrorIs(t, err, CrcMismatch)
}

func TestDecoderIgnoresCRCWhenDisabled(t *testing.T) {
	b := newFITBuilder()
	b.definition(0, false, 20, [][3]uint8{{3, 1, 0x02}}, nil)
	b.data(0, []byte{100})
	data := b.buildCorruptCRC()

	dec, err := Open(data, WithVerifyCRC(false))
	require.NoError(t, err)
	defer dec.Close()

	_, err = dec.Next()
	require.NoError(t, err)
	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderUnknownLocalTag(t *testing.T) {
	b := newFITBuilder()
	b.data(3, []byte{1, 2, 3})
	data := b.build()

	dec, err := Open(data)
	require.NoError(t, err)
	defer dec.Close()

	_, err = dec.Next()
	assert.ErrorIs(t, err, UnknownLocalTag)
}

func TestDecoderCompressedTimestamp(t *testing.T) {
	b := newFITBuilder()
	b.definition(0, false, 20, [][3]uint8{{253, 4, 0x86}, {3, 1, 0x02}}, nil)
	b.data(0, append(u32le(1000000000), 100))
	// Local tag 1 reuses the same definition slot array but omits field 253
	// entirely, as a real encoder would when pairing it with compressed
	// timestamp headers: the reference timestamp above still seeds offset
	// reconstruction for this record.
	b.definition(1, false, 20, [][3]uint8{{3, 1, 0x02}}, nil)
	b.compressedData(1, 5, []byte{101})
	data := b.build()

	msgs, err := ReadAll(data)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	ts1, ok := msgs[0].Field("timestamp")
	require.True(t, ok)
	assert.Equal(t, garminEpoch.Add(1000000000*time.Second), ts1.Value)

	ts2, ok := msgs[1].Field("timestamp")
	require.True(t, ok)
	assert.Equal(t, garminEpoch.Add(1000000005*time.Second), ts2.Value)
}

func TestDecoderDeveloperFieldDescriptorAppliesToLaterRecord(t *testing.T) {
	b := newFITBuilder()
	// field_description (local 0): developer_data_index(0,1,u8), field_definition_number(1,1,u8),
	// fit_base_type_id(2,1,u8), field_name(3,8,string).
	b.definition(0, false, 206, [][3]uint8{
		{0, 1, 0x02}, {1, 1, 0x02}, {2, 1, 0x02}, {3, 8, 0x07},
	}, nil)
	nameBytes := make([]byte, 8)
	copy(nameBytes, "smo2")
	b.data(0, append([]byte{0, 5, 0x84}, nameBytes...))

	// record (local 1) with one developer field at (devIndex 0, fieldNum 5).
	b.definition(1, true, 20, [][3]uint8{{3, 1, 0x02}}, [][3]uint8{{5, 2, 0}})
	b.data(1, append([]byte{90}, u16le(42)...))
	data := b.build()

	msgs, err := ReadAll(data)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	rec := msgs[1]
	dev, ok := rec.Field("smo2")
	require.True(t, ok)
	assert.True(t, dev.Developer)
	assert.Equal(t, uint16(42), dev.Value)
}

func TestDecoderSurfacesProcessorError(t *testing.T) {
	b := newFITBuilder()
	b.definition(0, false, 20, [][3]uint8{{3, 1, 0x02}}, nil)
	b.data(0, []byte{100})
	data := b.build()

	proc := NewDefaultProcessor()
	want := errors.New("hook blew up")
	proc.FieldHooks["record.heart_rate"] = func(field *ResolvedField) error { return want }

	dec, err := Open(data, WithProcessor(proc))
	require.NoError(t, err)
	defer dec.Close()

	_, err = dec.Next()
	assert.ErrorIs(t, err, ProcessorError)
	assert.ErrorIs(t, err, want)

	// Sticky: a second call returns the same error without re-decoding.
	_, err = dec.Next()
	assert.ErrorIs(t, err, ProcessorError)
}

func TestDecoderResetsPerSegmentStateAcrossChainedSegments(t *testing.T) {
	b := newFITBuilder()
	// First segment: a field_description establishes a developer-field
	// descriptor, and a record carries an explicit timestamp that seeds the
	// compressed-timestamp reference.
	b.definition(0, false, profile.FieldDescriptionMesgNum, [][3]uint8{
		{0, 1, 0x02}, {1, 1, 0x02}, {2, 1, 0x02}, {3, 8, 0x07},
	}, nil)
	nameBytes := make([]byte, 8)
	copy(nameBytes, "smo2")
	b.data(0, append([]byte{0, 5, 0x84}, nameBytes...))
	b.definition(1, false, profile.RecordMesgNum, [][3]uint8{{253, 4, 0x86}}, nil)
	b.data(1, u32le(1000000000))

	// A second, independent segment follows directly (spec §4.H chained
	// segments): its own header and its own definitions, with no
	// field_description of its own and a record that relies on a
	// compressed-timestamp offset rather than an explicit one.
	b2 := newFITBuilder()
	b2.definition(0, true, profile.RecordMesgNum, [][3]uint8{{3, 1, 0x02}}, [][3]uint8{{5, 2, 0}})
	b2.compressedData(0, 5, append([]byte{90}, u16le(42)...))

	data := append(b.build(), b2.build()...)

	dec, err := Open(data)
	require.NoError(t, err)
	defer dec.Close()

	_, err = dec.Next() // field_description
	require.NoError(t, err)
	_, err = dec.Next() // record with explicit timestamp
	require.NoError(t, err)

	rec2, err := dec.Next() // first record of the second segment
	require.NoError(t, err)

	// The developer descriptor from segment 1 must not still apply: segment
	// 2 redeclares field 5 as a developer field but never redescribes it, so
	// it must fall back to raw bytes rather than resolving as "smo2".
	dev, ok := rec2.Field("unknown_5")
	require.True(t, ok)
	assert.True(t, dev.Developer)
	assert.Equal(t, []byte{42, 0}, dev.Value)

	// The compressed-timestamp reference from segment 1 (~1e9) must not
	// leak in: with a fresh reference of 0, offset 5 reconstructs to raw
	// seconds 5, which falls below the Unix/Garmin-epoch cutoff and so
	// converts against the Unix epoch, not something built off the stale
	// ~1e9 Garmin-epoch reference.
	ts, ok := rec2.Field("timestamp")
	require.True(t, ok)
	assert.Equal(t, time.Unix(5, 0).UTC(), ts.Value)

	// White-box: the per-segment maps start genuinely empty, not just
	// behaviorally inert, confirming acc/devIndex/devAppIDs were reallocated
	// rather than merely bypassed.
	assert.Empty(t, dec.devIndex)
	assert.Empty(t, dec.devAppIDs)
	assert.Empty(t, dec.acc.values)
}
