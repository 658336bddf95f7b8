package zcat

import (
	"context"
	"os"
	"strings"

	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/logging"
	"github.com/specsurvey/zcatalog/pkg/table"
)

// parquetPath derives the sidecar export path from the catalog path.
func parquetPath(outfile string) string {
	return strings.TrimSuffix(outfile, ".fits") + ".parquet"
}

// writeParquet exports the catalog table as a parquet file for consumers
// that read the catalog from a data lake rather than FITS tooling.
func writeParquet(ctx context.Context, path string, t *table.Table) error {
	logger := logging.FromContext(ctx)

	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}

	props := parquet.NewWriterProperties(
		parquet.WithDictionaryDefault(true),
		parquet.WithCreatedBy("zcatalog"),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	w, err := pqarrow.NewFileWriter(t.Schema(), f, props, arrowProps)
	if err != nil {
		f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := w.Write(t.Record()); err != nil {
		w.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := w.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}

	logger.Info().
		Str("path", path).
		Int64("rows", t.NumRows()).
		Msg("Exported parquet sidecar")
	return nil
}
