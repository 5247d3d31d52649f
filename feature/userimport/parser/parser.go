package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"user-import/feature/userimport/models"
)

// Format names an input layout.
type Format string

const (
	// FormatPassword is the colon separated passwd layout.
	FormatPassword Format = "password"
	// FormatCSV is a delimited file selected through a column mapping.
	FormatCSV Format = "csv"
)

// Canonical field names accepted as column mapping keys.
const (
	FieldUsername  = "username"
	FieldUserID    = "userid"
	FieldSurname   = "surname"
	FieldGivenName = "givenname"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldMobile    = "mobile"
	FieldPassword  = "password"
)

var mappingFields = map[string]bool{
	FieldUsername:  true,
	FieldUserID:    true,
	FieldSurname:   true,
	FieldGivenName: true,
	FieldEmail:     true,
	FieldPhone:     true,
	FieldMobile:    true,
	FieldPassword:  true,
}

// Options describes how raw content is turned into records.
type Options struct {
	Format Format `json:"format"`
	// Delimiter separates csv columns. Defaults to ",".
	Delimiter string `json:"delimiter"`
	// QuoteChar encloses csv values holding the delimiter. Defaults to `"`.
	QuoteChar string `json:"quotechar"`
	// ColumnMapping maps canonical field names to zero-based csv columns.
	ColumnMapping map[string]int `json:"column_mapping,omitempty"`
	// SkipHeader drops the first non-empty csv row.
	SkipHeader bool `json:"skip_header"`
	// Encoding forces the input charset. Empty detects it.
	Encoding string `json:"encoding,omitempty"`
}

// Result is the parsed content of one snapshot.
type Result struct {
	Records  []models.Record
	Warnings []models.RowWarning
	// DataRows counts the non-empty, non-comment rows seen.
	DataRows int
}

// Parser turns raw snapshot bytes into records in input order.
type Parser interface {
	Parse(content []byte) (*Result, error)
}

// New validates opts and returns the parser for its format.
// Invalid options yield a *models.ValidationError.
func New(opts Options) (Parser, error) {
	if opts.Encoding != "" {
		if _, err := lookupEncoding(opts.Encoding); err != nil {
			return nil, models.Invalid("encoding", "unknown encoding %q", opts.Encoding)
		}
	}

	switch Format(strings.ToLower(string(opts.Format))) {
	case FormatPassword:
		return &PasswordFormat{encoding: opts.Encoding}, nil
	case FormatCSV:
		return newCSVFormat(opts)
	case "":
		return nil, models.Invalid("format", "format is required")
	default:
		return nil, models.Invalid("format", "unknown format %q, expected password or csv", opts.Format)
	}
}

// singleRune reads a one character option, accepting "\t" and "tab" for tabs.
func singleRune(field, value string, def rune) (rune, error) {
	switch value {
	case "":
		return def, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, models.Invalid(field, "must be a single character, got %q", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r == '\n' || r == '\r' {
		return 0, models.Invalid(field, "line breaks are not allowed")
	}
	return r, nil
}

// MaxPasswordBytes is the longest plaintext password bcrypt can hash.
const MaxPasswordBytes = 72

// collector gathers records and enforces a non-empty unique userid.
type collector struct {
	res  Result
	seen map[string]int
}

func newCollector() *collector {
	return &collector{seen: make(map[string]int)}
}

func (c *collector) warn(line int, format string, args ...any) {
	c.res.Warnings = append(c.res.Warnings, models.RowWarning{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) add(rec models.Record) {
	switch first, dup := c.seen[rec.UserID]; {
	case rec.UserID == "":
		c.warn(rec.Line, "empty userid")
	case rec.Username == "":
		c.warn(rec.Line, "empty username for userid %q", rec.UserID)
	case dup:
		c.warn(rec.Line, "duplicate userid %q, first seen on line %d", rec.UserID, first)
	case rec.PasswordPlain && len(rec.Password) > MaxPasswordBytes:
		c.warn(rec.Line, "password of userid %q is longer than %d bytes", rec.UserID, MaxPasswordBytes)
	default:
		c.seen[rec.UserID] = rec.Line
		c.res.Records = append(c.res.Records, rec)
	}
}

func (c *collector) result() *Result {
	return &c.res
}
