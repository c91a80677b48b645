// Package tabular opens delimited text files and spreadsheet workbooks as
// lazy row sources. The source kind is chosen from the file extension.
package tabular

import (
	"path/filepath"
	"strings"

	"groupstats/domain/core"
	"groupstats/ports"
)

// Source kinds
const (
	KindCSV  = "csv"
	KindXLSX = "xlsx"
)

var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// DetectKind maps a file name to its source kind. Legacy .xls workbooks are
// not readable and are reported as unsupported.
func DetectKind(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".csv":
		return KindCSV, nil
	case workbookExtensions[ext]:
		return KindXLSX, nil
	}
	return "", core.NewUnsupportedSourceError(path)
}

// Open detects the source kind and opens it. Nothing is read before the
// kind is known to be supported.
func Open(path string) (ports.RowSource, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}
	if kind == KindCSV {
		return OpenCSV(path)
	}
	return OpenWorkbook(path)
}
