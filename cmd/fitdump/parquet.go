package main

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/lucasjlepore/fitdecode"
)

// dumpRow is one resolved field, in a tidy (long) layout: one row per field
// rather than one row per message, since messages carry heterogeneous field
// sets that don't fit a single wide parquet schema (grounded on the
// teacher's own canonicalParquetRow, adapted from a fixed cycling-metrics
// schema to an arbitrary-message tidy schema).
type dumpRow struct {
	RecordIndex      int64  `parquet:"name=record_index, type=INT64"`
	FileOffset       int64  `parquet:"name=file_offset, type=INT64"`
	GlobalMessageNum int32  `parquet:"name=global_message_num, type=INT32"`
	MessageName      string `parquet:"name=message_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	FieldNumber      int32  `parquet:"name=field_number, type=INT32"`
	FieldName        string `parquet:"name=field_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Units            string `parquet:"name=units, type=BYTE_ARRAY, convertedtype=UTF8"`
	ValueText        string `parquet:"name=value_text, type=BYTE_ARRAY, convertedtype=UTF8"`
	None             bool   `parquet:"name=none, type=BOOLEAN"`
	Developer        bool   `parquet:"name=developer, type=BOOLEAN"`
}

// writeParquet drains messages into path, one dumpRow per resolved field.
func writeParquet(path string, messages iterSeq) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(dumpRow), 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("new parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	recordIndex := int64(0)
	var writeErr error
	for msg, err := range messages {
		if err != nil {
			writeErr = err
			break
		}
		for _, f := range msg.Fields {
			row := dumpRow{
				RecordIndex:      recordIndex,
				FileOffset:       msg.Offset,
				GlobalMessageNum: int32(msg.Num),
				MessageName:      msg.Name,
				FieldNumber:      int32(f.Num),
				FieldName:        f.Name,
				Units:            f.Units,
				ValueText:        formatValue(f),
				None:             f.None,
				Developer:        f.Developer,
			}
			if err := pw.Write(row); err != nil {
				writeErr = err
				break
			}
		}
		recordIndex++
		if writeErr != nil {
			break
		}
	}

	if err := pw.WriteStop(); err != nil && writeErr == nil {
		writeErr = err
	}
	if err := fw.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	return writeErr
}

func formatValue(f fit.ResolvedField) string {
	if f.None {
		return ""
	}
	return fmt.Sprint(f.Value)
}
