package files

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/farxc/mgnrega-goa/internal/mgnrega/converter"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrEmptyFile = errors.New("csv file has no data rows")

const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// LoadCSV reads and parses the MGNREGA CSV at path. now supplies the default
// year for rows whose year does not parse.
func LoadCSV(path, charset string, now time.Time) ([]types.Record, error) {
	df, err := OpenFileAndDecode(path, charset)
	if err != nil {
		return nil, err
	}

	idx := utils.NewColumnIndex(&df)
	records := make([]types.Record, 0, df.Nrow())
	for row := 0; row < df.Nrow(); row++ {
		records = append(records, converter.DfRowToRecord(df, idx, row, now))
	}
	return records, nil
}

func OpenFileAndDecode(path, charset string) (dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s", types.ErrFileNotFound, path)
		}
		return dataframe.DataFrame{}, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s is a directory", types.ErrFileNotFound, path)
	}

	records, err := readRecords(decoder(file, charset))
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) < 2 {
		return dataframe.DataFrame{}, ErrEmptyFile
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, ErrEmptyFile
	}
	return df, nil
}

// decoder strips a UTF-8 BOM, or transcodes Windows-1252 exports.
func decoder(r io.Reader, charset string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r)
	default:
		return transform.NewReader(r, unicode.BOMOverride(encoding.Nop.NewDecoder()))
	}
}

// readRecords is lenient: short rows are padded, long rows truncated and
// blank rows dropped, so one bad line does not sink the whole file.
func readRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	records := [][]string{header}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		if isBlank(row) {
			continue
		}
		switch {
		case len(row) < len(header):
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		case len(row) > len(header):
			row = row[:len(header)]
		}
		records = append(records, row)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
