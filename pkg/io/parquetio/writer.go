// Package parquetio writes frames to Parquet files and reads them back.
package parquetio

import (
	"encoding/json"
	"fmt"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/io/jsonlio"
)

// schemaJSON builds the JSON schema definition the xitongsys JSON writer
// expects. Every column is optional so nulls survive.
func schemaJSON(s ds.Schema) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case ds.KindFloat:
			tag += "DOUBLE"
		case ds.KindInt:
			tag += "INT64"
		case ds.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, err := json.Marshal(sc)
	return string(b), err
}

// WriteAll writes a Frame to a Parquet file.
func WriteAll(path string, f *ds.Frame) (err error) {
	schema, err := schemaJSON(f.Schema())
	if err != nil {
		return err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	defer func() {
		if serr := writer.WriteStop(); err == nil && serr != nil {
			err = fmt.Errorf("parquet flush: %w", serr)
		}
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}()
	for r := 0; r < f.Rows(); r++ {
		rec, err := jsonlio.EncodeRow(f, r)
		if err != nil {
			return err
		}
		if err := writer.Write(string(rec)); err != nil {
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	return nil
}
