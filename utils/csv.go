package utils

import (
	"fmt"
	"strings"
)

// Contact CSV exchange format. Export order is fixed and every field is
// double-quoted; importers in the wild depend on both, so encoding/csv's
// quote-when-needed output is not an option here.

type ContactCSVRecord struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Dietary   string
}

var csvHeader = []string{"firstname", "lastname", "email", "phone", "dietary"}

// Header synonyms accepted on import, matched case-insensitively.
// Polish labels come from the original contact exports.
var csvHeaderSynonyms = map[string]string{
	"firstname":    "firstname",
	"first_name":   "firstname",
	"first name":   "firstname",
	"imie":         "firstname",
	"imię":         "firstname",
	"lastname":     "lastname",
	"last_name":    "lastname",
	"last name":    "lastname",
	"nazwisko":     "lastname",
	"email":        "email",
	"e-mail":       "email",
	"mail":         "email",
	"phone":        "phone",
	"phone number": "phone",
	"telefon":      "phone",
	"tel":          "phone",
	"dietary":      "dietary",
	"diet":         "dietary",
	"dieta":        "dietary",
	"preferencje":  "dietary",
}

func csvQuote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ExportContactsCSV renders records in the fixed column order with every
// field double-quoted and rows separated by newlines.
func ExportContactsCSV(records []ContactCSVRecord) string {
	var b strings.Builder

	headerCells := make([]string, len(csvHeader))
	for i, h := range csvHeader {
		headerCells[i] = csvQuote(h)
	}
	b.WriteString(strings.Join(headerCells, ","))
	b.WriteString("\n")

	for _, r := range records {
		cells := []string{
			csvQuote(r.FirstName),
			csvQuote(r.LastName),
			csvQuote(r.Email),
			csvQuote(r.Phone),
			csvQuote(r.Dietary),
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}

	return b.String()
}

// splitCSV splits raw CSV input into rows of fields, honoring double-quoted
// fields with doubled-quote escapes and quoted separators/newlines.
func splitCSV(data string) [][]string {
	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(strings.ReplaceAll(data, "\r\n", "\n"))
	flushField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	flushRow := func() {
		flushField()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case inQuotes:
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field.WriteRune(ch)
			}
		case ch == '"':
			inQuotes = true
		case ch == ',':
			flushField()
		case ch == '\n':
			flushRow()
		default:
			field.WriteRune(ch)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		flushRow()
	}

	return rows
}

// ParseContactsCSV parses a contact CSV with a header row. Unknown columns
// are ignored; rows with no first name and no email are reported as errors
// but do not abort the import.
func ParseContactsCSV(data string) ([]ContactCSVRecord, []string, error) {
	rows := splitCSV(data)
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty CSV file")
	}

	columns := make(map[int]string)
	for i, name := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := csvHeaderSynonyms[key]; ok {
			columns[i] = canonical
		}
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("no recognized columns in CSV header")
	}

	var records []ContactCSVRecord
	var rowErrors []string

	for n, row := range rows[1:] {
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		var rec ContactCSVRecord
		for i, value := range row {
			value = strings.TrimSpace(value)
			switch columns[i] {
			case "firstname":
				rec.FirstName = value
			case "lastname":
				rec.LastName = value
			case "email":
				rec.Email = value
			case "phone":
				rec.Phone = value
			case "dietary":
				rec.Dietary = value
			}
		}

		if rec.FirstName == "" && rec.Email == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: missing first name and email", n+2))
			continue
		}
		records = append(records, rec)
	}

	return records, rowErrors, nil
}
