package schema

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/segmentio/parquet-go"
)

// readParquetRows reads the named columns, in order, from a parquet file.
func readParquetRows(path string, columns []string) ([][]int64, error) {
	name := filepath.Base(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, core.Wrap(core.KindTableData, err, "cannot open data file %s", path)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, core.Wrap(core.KindTableData, err, "cannot stat data file %s", path)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, core.Wrap(core.KindTableData, err, "%s is not a parquet file", name)
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	var rows [][]int64
	for n := 1; ; n++ {
		record := make(map[string]interface{})
		if err := reader.Read(&record); err != nil {
			if errors.Is(err, io.EOF) {
				return rows, nil
			}
			return nil, core.Wrap(core.KindTableData, err, "%s row %d", name, n)
		}

		row := make([]int64, len(columns))
		for i, col := range columns {
			raw, ok := record[col]
			if !ok {
				return nil, core.Errorf(core.KindTableData, "%s row %d: column %q missing", name, n, col)
			}
			v, ok := toInt64(raw)
			if !ok {
				return nil, core.Errorf(core.KindTableData, "%s row %d: column %q holds non-integer %v", name, n, col, raw)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case int:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
