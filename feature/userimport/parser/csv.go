package parser

import (
	"strings"

	"user-import/feature/userimport/models"
)

// CSVFormat parses delimited rows and picks columns through a mapping.
type CSVFormat struct {
	delimiter  rune
	quote      rune
	mapping    map[string]int
	minColumns int
	skipHeader bool
	encoding   string
}

func newCSVFormat(opts Options) (*CSVFormat, error) {
	delim, err := singleRune("delimiter", opts.Delimiter, ',')
	if err != nil {
		return nil, err
	}
	quote, err := singleRune("quotechar", opts.QuoteChar, '"')
	if err != nil {
		return nil, err
	}
	if delim == quote {
		return nil, models.Invalid("quotechar", "must differ from the delimiter")
	}

	if len(opts.ColumnMapping) == 0 {
		return nil, models.Invalid("column_mapping", "csv format requires a column mapping")
	}
	maxIdx := 0
	for field, idx := range opts.ColumnMapping {
		if !mappingFields[field] {
			return nil, models.Invalid("column_mapping", "unknown field %q", field)
		}
		if idx < 0 {
			return nil, models.Invalid("column_mapping", "negative column %d for %q", idx, field)
		}
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	for _, required := range []string{FieldUsername, FieldUserID} {
		if _, ok := opts.ColumnMapping[required]; !ok {
			return nil, models.Invalid("column_mapping", "missing required field %q", required)
		}
	}

	return &CSVFormat{
		delimiter:  delim,
		quote:      quote,
		mapping:    opts.ColumnMapping,
		minColumns: maxIdx + 1,
		skipHeader: opts.SkipHeader,
		encoding:   opts.Encoding,
	}, nil
}

// Parse implements Parser.
func (p *CSVFormat) Parse(content []byte) (*Result, error) {
	text, err := decode(content, p.encoding)
	if err != nil {
		return nil, err
	}

	c := newCollector()
	header := p.skipHeader
	for _, row := range splitRows(text, p.delimiter, p.quote) {
		if header {
			header = false
			continue
		}
		c.res.DataRows++

		if row.unterminated {
			c.warn(row.line, "unterminated quoted field")
			continue
		}
		if len(row.fields) < p.minColumns {
			c.warn(row.line, "expected at least %d columns, got %d", p.minColumns, len(row.fields))
			continue
		}

		rec := models.Record{
			Username:      p.column(row.fields, FieldUsername),
			UserID:        p.column(row.fields, FieldUserID),
			Surname:       p.column(row.fields, FieldSurname),
			GivenName:     p.column(row.fields, FieldGivenName),
			Email:         p.column(row.fields, FieldEmail),
			Phone:         p.column(row.fields, FieldPhone),
			Mobile:        p.column(row.fields, FieldMobile),
			Password:      p.column(row.fields, FieldPassword),
			PasswordPlain: true,
			Line:          row.line,
		}
		c.add(rec)
	}
	return c.result(), nil
}

func (p *CSVFormat) column(fields []string, name string) string {
	idx, ok := p.mapping[name]
	if !ok {
		return ""
	}
	return fields[idx]
}

type row struct {
	line         int
	fields       []string
	unterminated bool
}

// splitRows splits text into rows of trimmed fields. A quote opens a quoted
// value only at the start of a field; inside it the delimiter and line breaks
// are literal and a doubled quote stands for one quote. Blank rows are dropped.
func splitRows(text string, delim, quote rune) []row {
	var (
		rows     []row
		fields   []string
		field    strings.Builder
		inQuotes bool
		quoted   bool
		line     = 1
		start    = 1
	)

	pushField := func() {
		fields = append(fields, strings.TrimSpace(field.String()))
		field.Reset()
		quoted = false
	}
	pushRow := func() {
		pushField()
		if len(fields) > 1 || fields[0] != "" {
			rows = append(rows, row{line: start, fields: fields})
		}
		fields = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if inQuotes {
			switch {
			case r == quote && i+1 < len(runes) && runes[i+1] == quote:
				field.WriteRune(quote)
				i++
			case r == quote:
				inQuotes = false
			default:
				if r == '\n' {
					line++
				}
				field.WriteRune(r)
			}
			continue
		}

		switch {
		case r == quote && !quoted && strings.TrimSpace(field.String()) == "":
			field.Reset()
			inQuotes = true
			quoted = true
		case r == delim:
			pushField()
		case r == '\n':
			pushRow()
			line++
			start = line
		default:
			field.WriteRune(r)
		}
	}

	if inQuotes {
		pushField()
		rows = append(rows, row{line: start, fields: fields, unterminated: true})
	} else if field.Len() > 0 || len(fields) > 0 {
		pushRow()
	}
	return rows
}
