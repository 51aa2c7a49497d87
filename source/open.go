package source

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/kbukum/riv/errors"
)

// DetectType maps a file extension to a source type. JSON files are
// recognized so Open can reject them with a clear message.
func DetectType(path string) (Type, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return TypeCsvBytes, true
	case ".csvs", ".tsv":
		return TypeCsvStrings, true
	default:
		return "", false
	}
}

// Open picks a source for cfg.Path by extension.
//
//	.csv          CsvByteSource
//	.csvs, .tsv   CsvStringSource
//	.json         rejected with INVALID_INPUT (array or object) or PARSE
//
// Any other extension is INVALID_INPUT. A missing file is IO not_found.
func Open(cfg Config, opts ...Option) (Source, error) {
	ext := strings.ToLower(filepath.Ext(cfg.Path))
	if ext == ".tsv" && cfg.Delimiter == "" {
		cfg.Delimiter = "\t"
	}
	cfg.ApplyDefaults()

	switch ext {
	case ".csv":
		src, err := OpenCsvByteSource(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return src, nil
	case ".csvs", ".tsv":
		src, err := OpenCsvStringSource(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return src, nil
	case ".json":
		return nil, rejectJSON(cfg.Path)
	default:
		return nil, errors.InvalidInput("unsupported source file extension: "+cfg.Path).
			WithDetail("extension", ext)
	}
}

func rejectJSON(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.FromIO(err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			return errors.Parse("empty json document: " + path)
		}
		if err != nil {
			return errors.FromIO(err)
		}
		if unicode.IsSpace(c) {
			continue
		}
		switch c {
		case '[':
			return errors.InvalidInput("json array sources are not supported")
		case '{':
			return errors.InvalidInput("json object sources are not supported")
		default:
			return errors.Parse("invalid json document: " + path)
		}
	}
}
