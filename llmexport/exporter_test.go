package llmexport

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasjlepore/fitdecode/dyncrc16"
)

func TestExportFileWritesBundle(t *testing.T) {
	data := buildTestFIT(t)

	tmp := t.TempDir()
	inputPath := filepath.Join(tmp, "sample.fit")
	if err := os.WriteFile(inputPath, data, 0o644); err != nil {
		t.Fatalf("write sample fit: %v", err)
	}

	outDir := filepath.Join(tmp, "export")
	result, err := ExportFile(inputPath, outDir, ExportOptions{
		Overwrite:      true,
		CopySourceFile: true,
	})
	if err != nil {
		t.Fatalf("ExportFile error: %v", err)
	}

	if result.RecordCount == 0 {
		t.Fatal("expected exported records")
	}
	if !result.FileCRCValid {
		t.Fatal("expected valid file CRC")
	}
	if !result.HeaderCRCValid {
		t.Fatal("expected valid header CRC")
	}
	if _, err := os.Stat(result.ManifestPath); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
	if _, err := os.Stat(result.RecordsPath); err != nil {
		t.Fatalf("records missing: %v", err)
	}
	if _, err := os.Stat(result.SourceCopyPath); err != nil {
		t.Fatalf("source copy missing: %v", err)
	}

	manifestData, err := os.ReadFile(result.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if manifest.FormatVersion != ExportFormatVersion {
		t.Fatalf("unexpected format version: %q", manifest.FormatVersion)
	}
	if manifest.RecordCount != result.RecordCount {
		t.Fatalf("manifest record count mismatch: %d != %d", manifest.RecordCount, result.RecordCount)
	}
	if manifest.FileIdProjection == nil || manifest.FileIdProjection.Type != "activity" {
		t.Fatalf("expected file_id projection with type activity, got %+v", manifest.FileIdProjection)
	}

	recordsData, err := os.ReadFile(result.RecordsPath)
	if err != nil {
		t.Fatalf("read records: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(recordsData)), "\n")
	if len(lines) != result.RecordCount {
		t.Fatalf("records line count mismatch: %d != %d", len(lines), result.RecordCount)
	}
}

// buildTestFIT hand-assembles a minimal, valid FIT byte stream: a 14-byte
// header, a file_id message, a record message, and the trailing file CRC.
func buildTestFIT(t *testing.T) []byte {
	t.Helper()

	var body bytes.Buffer

	// file_id definition (local tag 0): type(enum,1), manufacturer(uint16,2).
	body.Write([]byte{0x40, 0x00})             // header: definition, local 0
	body.Write([]byte{0x00, 0x00})             // reserved, arch=LE
	binary.Write(&body, binary.LittleEndian, uint16(0)) // global mesg num: file_id
	body.WriteByte(2)                          // 2 fields
	body.Write([]byte{0x00, 0x01, 0x00})       // type: num 0, size 1, base enum
	body.Write([]byte{0x01, 0x02, 0x84})       // manufacturer: num 1, size 2, base uint16

	// file_id data.
	body.WriteByte(0x00) // header: data, local 0
	body.WriteByte(0x04) // type = activity (4)
	binary.Write(&body, binary.LittleEndian, uint16(1)) // manufacturer = 1

	// record definition (local tag 1): heart_rate(uint8,1), timestamp(uint32,4).
	body.Write([]byte{0x41, 0x00})
	body.Write([]byte{0x00, 0x00})
	binary.Write(&body, binary.LittleEndian, uint16(20)) // global mesg num: record
	body.WriteByte(2)
	body.Write([]byte{0x03, 0x01, 0x02}) // heart_rate: num 3, size 1, base uint8
	body.Write([]byte{0xFD, 0x04, 0x86}) // timestamp: num 253, size 4, base uint32

	// record data.
	body.WriteByte(0x01) // header: data, local 1
	body.WriteByte(135)  // heart_rate
	binary.Write(&body, binary.LittleEndian, uint32(1000000000))

	const headerSize = 14
	header := make([]byte, headerSize)
	header[0] = headerSize
	header[1] = 0x10 // protocol version
	binary.LittleEndian.PutUint16(header[2:4], 100)
	binary.LittleEndian.PutUint32(header[4:8], uint32(body.Len()))
	copy(header[8:12], ".FIT")
	binary.LittleEndian.PutUint16(header[12:14], dyncrc16.Checksum(header[:12]))

	full := append(append([]byte(nil), header...), body.Bytes()...)
	crc := dyncrc16.Checksum(full)
	var crcBuf [2]byte
	binary.LittleEndian.PutUint16(crcBuf[:], crc)
	full = append(full, crcBuf[:]...)

	return full
}
