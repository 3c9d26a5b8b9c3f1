package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ManifestRow is one certificate line of an import manifest
type ManifestRow struct {
	Line        int
	File        string
	StudentName string
}

// ParseCertificateManifest reads a CSV manifest with a header row. The file
// column is required; the student name column is optional and may be blank.
func ParseCertificateManifest(r io.Reader) ([]ManifestRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	fileIdx := findColumnIndex(header, []string{"file", "filename", "path", "certificate"})
	nameIdx := findColumnIndex(header, []string{"studentName", "student_name", "student", "name"})
	if fileIdx == -1 {
		return nil, errors.New("file column not found in CSV")
	}

	var rows []ManifestRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if fileIdx >= len(record) || strings.TrimSpace(record[fileIdx]) == "" {
			return nil, fmt.Errorf("line %d: no file given", line)
		}

		row := ManifestRow{Line: line, File: strings.TrimSpace(record[fileIdx])}
		if nameIdx != -1 && nameIdx < len(record) {
			row.StudentName = strings.TrimSpace(record[nameIdx])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// findColumnIndex finds the index of a column in the header
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}
