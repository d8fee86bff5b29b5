package llmexport

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasjlepore/fitdecode"
	"github.com/lucasjlepore/fitdecode/dyncrc16"
)

// ExportFile parses a FIT file and writes an LLM-friendly export bundle.
// Output files:
//   - manifest.json
//   - records.jsonl
//   - source.fit (optional)
func ExportFile(inputPath, outputDir string, opts ExportOptions) (*ExportResult, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	sum := sha256.Sum256(data)
	sha := hex.EncodeToString(sum[:])

	dec, err := fit.Open(data, fit.WithVerifyCRC(false))
	if err != nil {
		return nil, fmt.Errorf("open fit file: %w", err)
	}
	// Open has read only the first segment's header; Next replaces it when
	// it crosses into a chained segment.
	header := dec.Header()

	records := make([]RecordEnvelope, 0, 256)
	var fileID *FileIDInfo
	for msg, err := range dec.Messages() {
		if err != nil {
			return nil, fmt.Errorf("decode fit file: %w", err)
		}
		records = append(records, toEnvelope(len(records), msg))
		if msg.Name == "file_id" && fileID == nil {
			fileID = projectFileID(msg)
		}
	}

	if err := ensureOutputDir(outputDir, opts.Overwrite); err != nil {
		return nil, err
	}

	recordsPath := filepath.Join(outputDir, "records.jsonl")
	if err := writeJSONL(recordsPath, records); err != nil {
		return nil, fmt.Errorf("write records.jsonl: %w", err)
	}

	headerCRC, fileCRC := checkCRCs(data, header)

	manifest := Manifest{
		FormatVersion: ExportFormatVersion,
		GeneratedAt:   time.Now().UTC(),
		SourceFile:    inputPath,
		SourceFileName: filepath.Base(inputPath),
		SourceSHA256:  sha,
		SourceSizeBytes: int64(len(data)),
		Header: HeaderInfo{
			Size:            header.Size,
			ProtocolVersion: header.ProtocolVersion,
			ProfileVersion:  header.ProfileVersion,
			DataSize:        header.DataSize,
			DataType:        header.DataType,
		},
		HeaderCRC:        headerCRC,
		FileCRC:          fileCRC,
		RecordsPath:      filepath.Base(recordsPath),
		RecordCount:      len(records),
		FileIdProjection: fileID,
		SchemaDescription: SchemaDetails{
			RecordType: "JSONL line-per-decoded-message preserving original order and byte offsets",
			Notes: []string{
				"Every resolved field is included, including sentinel ('none') fields, with their name and units.",
				"Developer data fields are preserved under the same schema, tagged developer=true.",
				"Use record_index and file_offset for deterministic chunking in LLM pipelines.",
			},
		},
	}

	manifestPath := filepath.Join(outputDir, "manifest.json")
	if err := writeJSON(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write manifest.json: %w", err)
	}

	sourceCopyPath := ""
	if opts.CopySourceFile {
		sourceCopyPath = filepath.Join(outputDir, "source.fit")
		if err := copyFile(inputPath, sourceCopyPath); err != nil {
			return nil, fmt.Errorf("copy source fit file: %w", err)
		}
	}

	return &ExportResult{
		OutputDir:       outputDir,
		ManifestPath:    manifestPath,
		RecordsPath:     recordsPath,
		SourceCopyPath:  sourceCopyPath,
		RecordCount:     len(records),
		SourceSHA256:    sha,
		SourceSizeBytes: int64(len(data)),
		FileCRCValid:    fileCRC.Valid,
		HeaderCRCValid:  headerCRC.Valid,
	}, nil
}

func toEnvelope(index int, msg fit.Message) RecordEnvelope {
	fields := make([]FieldValue, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, FieldValue{
			FieldNumber: f.Num,
			FieldName:   f.Name,
			Units:       f.Units,
			Developer:   f.Developer,
			None:        f.None,
			Value:       f.Value,
		})
	}
	return RecordEnvelope{
		FormatVersion:    ExportFormatVersion,
		RecordIndex:      index,
		FileOffset:       msg.Offset,
		LocalMessageType: msg.LocalTag,
		GlobalMessageNum: msg.Num,
		MessageName:      msg.Name,
		Fields:           fields,
	}
}

// checkCRCs independently verifies the header CRC and the first segment's
// file CRC directly against the in-memory bytes, so a CRC mismatch never
// aborts the export the way it would through the fit package's own strict
// decode path.
func checkCRCs(data []byte, header fit.Header) (headerCRC, fileCRC CRCCheck) {
	headerCRC.ValidationStyle = "dyncrc16 over header bytes[0:12]"
	fileCRC.ValidationStyle = "dyncrc16 over bytes[0:header_size+data_size]"

	if header.HasHeaderCRC && len(data) >= 14 {
		headerCRC.Present = true
		stored := binary.LittleEndian.Uint16(data[12:14])
		headerCRC.Valid = dyncrc16.Checksum(data[:12]) == stored
	}

	segmentEnd := int(header.Size) + int(header.DataSize)
	if len(data) >= segmentEnd+2 {
		fileCRC.Present = true
		stored := binary.LittleEndian.Uint16(data[segmentEnd : segmentEnd+2])
		fileCRC.Valid = dyncrc16.Checksum(data[:segmentEnd]) == stored
	}
	return headerCRC, fileCRC
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONL(path string, records []RecordEnvelope) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewWriterSize(f, 1<<20)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return buf.Flush()
}

func projectFileID(msg fit.Message) *FileIDInfo {
	info := &FileIDInfo{}
	if f, ok := msg.Field("type"); ok {
		info.Type = fmt.Sprint(f.Value)
	}
	if f, ok := msg.Field("manufacturer"); ok {
		if v, ok := f.Value.(uint16); ok {
			info.Manufacturer = v
		}
	}
	if f, ok := msg.Field("product"); ok {
		if v, ok := f.Value.(uint16); ok {
			info.Product = v
		}
	}
	if f, ok := msg.Field("serial_number"); ok && !f.None {
		if v, ok := f.Value.(uint32); ok {
			info.SerialNumber = v
		}
	}
	if f, ok := msg.Field("time_created"); ok && !f.None {
		if t, ok := f.Value.(time.Time); ok {
			info.TimeCreated = t.Format(time.RFC3339)
		}
	}
	return info
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
