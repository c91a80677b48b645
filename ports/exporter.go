package ports

import "groupstats/domain/record"

// Sheet is one worksheet of an exported workbook
type Sheet struct {
	Title   string
	Headers []string
	Records []record.Record
}

// Exporter writes result tables to files and returns the written path
type Exporter interface {
	WriteCSV(name string, headers []string, records []record.Record) (string, error)
	WriteWorkbook(name string, sheets []Sheet) (string, error)
}
