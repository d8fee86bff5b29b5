package llmexport

import "time"

const (
	// ExportFormatVersion identifies the on-disk schema for LLM exports.
	ExportFormatVersion = "fit_llm_jsonl_v2"
)

// ExportOptions controls export behavior.
type ExportOptions struct {
	// Overwrite allows writing into a non-empty output directory.
	Overwrite bool

	// CopySourceFile writes a byte-for-byte copy of the source FIT file to the output directory.
	CopySourceFile bool
}

// ExportResult describes generated files.
type ExportResult struct {
	OutputDir        string `json:"output_dir"`
	ManifestPath     string `json:"manifest_path"`
	RecordsPath      string `json:"records_path"`
	SourceCopyPath   string `json:"source_copy_path,omitempty"`
	RecordCount      int    `json:"record_count"`
	SourceSHA256     string `json:"source_sha256"`
	SourceSizeBytes  int64  `json:"source_size_bytes"`
	FileCRCValid     bool   `json:"file_crc_valid"`
	HeaderCRCValid   bool   `json:"header_crc_valid"`
}

// Manifest captures export metadata and pointers to exported files.
type Manifest struct {
	FormatVersion     string        `json:"format_version"`
	GeneratedAt       time.Time     `json:"generated_at"`
	SourceFile        string        `json:"source_file"`
	SourceFileName    string        `json:"source_file_name"`
	SourceSHA256      string        `json:"source_sha256"`
	SourceSizeBytes   int64         `json:"source_size_bytes"`
	Header            HeaderInfo    `json:"header"`
	HeaderCRC         CRCCheck      `json:"header_crc"`
	FileCRC           CRCCheck      `json:"file_crc"`
	RecordsPath       string        `json:"records_path"`
	RecordCount       int           `json:"record_count"`
	FileIdProjection  *FileIDInfo   `json:"file_id_projection,omitempty"`
	SchemaDescription SchemaDetails `json:"schema_description"`
}

// SchemaDetails documents the record shape for downstream applications.
type SchemaDetails struct {
	RecordType string   `json:"record_type"`
	Notes      []string `json:"notes"`
}

// HeaderInfo stores parsed FIT header values.
type HeaderInfo struct {
	Size            uint8  `json:"size"`
	ProtocolVersion uint8  `json:"protocol_version"`
	ProfileVersion  uint16 `json:"profile_version"`
	DataSize        uint32 `json:"data_size"`
	DataType        string `json:"data_type"`
}

// CRCCheck describes CRC validation results. Multi-segment chained files
// only validate the first segment here; the fitdump CLI and the fit package
// itself validate every segment.
type CRCCheck struct {
	Present         bool   `json:"present"`
	Valid           bool   `json:"valid"`
	ValidationStyle string `json:"validation_style"`
}

// FileIDInfo is a convenience projection from the file_id message.
type FileIDInfo struct {
	Type         string `json:"type"`
	Manufacturer uint16 `json:"manufacturer"`
	Product      uint16 `json:"product"`
	TimeCreated  string `json:"time_created,omitempty"`
	SerialNumber uint32 `json:"serial_number,omitempty"`
}

// RecordEnvelope is one JSONL line in records.jsonl: one fully resolved FIT
// message, in original decode order.
type RecordEnvelope struct {
	FormatVersion    string       `json:"format_version"`
	RecordIndex      int          `json:"record_index"`
	FileOffset       int64        `json:"file_offset"`
	LocalMessageType uint8        `json:"local_message_type"`
	GlobalMessageNum uint16       `json:"global_message_num"`
	MessageName      string       `json:"message_name"`
	Fields           []FieldValue `json:"fields"`
}

// FieldValue is one resolved field of a RecordEnvelope.
type FieldValue struct {
	FieldNumber uint8  `json:"field_number"`
	FieldName   string `json:"field_name"`
	Units       string `json:"units,omitempty"`
	Developer   bool   `json:"developer,omitempty"`
	None        bool   `json:"none,omitempty"`
	Value       any    `json:"value,omitempty"`
}
