package parser

import (
	"os"
	"strings"
	"testing"

	"user-import/feature/userimport/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullMapping = map[string]int{
	"username":  0,
	"userid":    1,
	"surname":   2,
	"givenname": 3,
	"email":     4,
	"phone":     5,
	"mobile":    6,
	"password":  7,
}

func mustParse(t *testing.T, opts Options, content string) *Result {
	t.Helper()
	p, err := New(opts)
	require.NoError(t, err)
	res, err := p.Parse([]byte(content))
	require.NoError(t, err)
	return res
}

func keys(records []models.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.UserID)
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		field string
	}{
		{"MissingFormat", Options{}, "format"},
		{"UnknownFormat", Options{Format: "xml"}, "format"},
		{"CSVWithoutMapping", Options{Format: FormatCSV}, "column_mapping"},
		{"CSVMissingUserID", Options{Format: FormatCSV, ColumnMapping: map[string]int{"username": 0}}, "column_mapping"},
		{"CSVMissingUsername", Options{Format: FormatCSV, ColumnMapping: map[string]int{"userid": 0}}, "column_mapping"},
		{"CSVUnknownField", Options{Format: FormatCSV, ColumnMapping: map[string]int{"username": 0, "userid": 1, "shoe": 2}}, "column_mapping"},
		{"CSVNegativeIndex", Options{Format: FormatCSV, ColumnMapping: map[string]int{"username": -1, "userid": 1}}, "column_mapping"},
		{"LongDelimiter", Options{Format: FormatCSV, Delimiter: ";;", ColumnMapping: fullMapping}, "delimiter"},
		{"QuoteEqualsDelimiter", Options{Format: FormatCSV, Delimiter: "'", QuoteChar: "'", ColumnMapping: fullMapping}, "quotechar"},
		{"UnknownEncoding", Options{Format: FormatPassword, Encoding: "klingon"}, "encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNew_Variants(t *testing.T) {
	p, err := New(Options{Format: "PASSWORD"})
	require.NoError(t, err)
	assert.IsType(t, &PasswordFormat{}, p)

	p, err = New(Options{Format: FormatCSV, Delimiter: `\t`, ColumnMapping: map[string]int{"username": 0, "userid": 1}})
	require.NoError(t, err)
	require.IsType(t, &CSVFormat{}, p)
	assert.Equal(t, '\t', p.(*CSVFormat).delimiter)
	assert.Equal(t, '"', p.(*CSVFormat).quote)
}

func TestEmptyInput(t *testing.T) {
	for _, opts := range []Options{
		{Format: FormatPassword},
		{Format: FormatCSV, ColumnMapping: fullMapping},
	} {
		for _, content := range []string{"", "\n\n", "   \n"} {
			res := mustParse(t, opts, content)
			assert.Empty(t, res.Records)
			assert.Empty(t, res.Warnings)
			assert.Zero(t, res.DataRows)
		}
	}
}

func TestPasswordFormat_Fixture(t *testing.T) {
	content, err := os.ReadFile("testdata/def-passwd")
	require.NoError(t, err)

	res := mustParse(t, Options{Format: FormatPassword, Delimiter: ","}, string(content))
	require.Len(t, res.Records, 24)
	assert.Empty(t, res.Warnings)

	first := res.Records[0]
	assert.Equal(t, "passthru_user1", first.Username)
	assert.Equal(t, "1000", first.UserID)
	assert.Equal(t, "Passthru", first.GivenName)
	assert.Equal(t, "User1", first.Surname)
	assert.Equal(t, "+49 6151 860", first.Phone)
	assert.Equal(t, "+49 170 1000", first.Mobile)
	assert.Equal(t, "passthru_user1@example.com", first.Email)
	assert.False(t, first.PasswordPlain)
	assert.Equal(t, 1, first.Line)
}

func TestPasswordFormat_Rows(t *testing.T) {
	content := "# comment\n" +
		"alice:x:1001\n" +
		"broken:x\n" +
		"\n" +
		"bob:x:1002:100:Robert de Niro,,555-1,,bob@example.com:/home/bob:/bin/sh\n" +
		"carol:x:1001:100::/home/carol:/bin/sh\n" +
		":x:1003\n" +
		"dave:x:\n"

	res := mustParse(t, Options{Format: FormatPassword}, content)

	assert.Equal(t, []string{"1001", "1002"}, keys(res.Records))
	assert.Equal(t, 6, res.DataRows)
	require.Len(t, res.Warnings, 4)
	assert.Equal(t, 3, res.Warnings[0].Line)
	assert.Contains(t, res.Warnings[0].Message, "at least 3 fields")
	assert.Equal(t, 6, res.Warnings[1].Line)
	assert.Contains(t, res.Warnings[1].Message, "duplicate userid")
	assert.Contains(t, res.Warnings[2].Message, "empty username")
	assert.Contains(t, res.Warnings[3].Message, "empty userid")

	bob := res.Records[1]
	assert.Equal(t, "Robert de", bob.GivenName)
	assert.Equal(t, "Niro", bob.Surname)
	assert.Equal(t, "555-1", bob.Phone)
	assert.Empty(t, bob.Mobile)
	assert.Equal(t, "bob@example.com", bob.Email)
}

func TestCSVFormat_Fixture(t *testing.T) {
	content, err := os.ReadFile("testdata/def-passwd.csv")
	require.NoError(t, err)

	res := mustParse(t, Options{Format: FormatCSV, Delimiter: ",", QuoteChar: `"`, ColumnMapping: fullMapping}, string(content))
	require.Len(t, res.Records, 24)
	assert.Empty(t, res.Warnings)

	first := res.Records[0]
	assert.Equal(t, "passthru_user1", first.Username)
	assert.Equal(t, "1000", first.UserID)
	assert.Equal(t, "User1", first.Surname)
	assert.Equal(t, "Test123!", first.Password)
	assert.True(t, first.PasswordPlain)
}

func TestCSVFormat_SameKeysAsPassword(t *testing.T) {
	passwd, err := os.ReadFile("testdata/def-passwd")
	require.NoError(t, err)
	csv, err := os.ReadFile("testdata/def-passwd.csv")
	require.NoError(t, err)

	a := mustParse(t, Options{Format: FormatPassword}, string(passwd))
	b := mustParse(t, Options{Format: FormatCSV, ColumnMapping: fullMapping}, string(csv))
	assert.Equal(t, keys(a.Records), keys(b.Records))
}

func TestCSVFormat_NonZeroColumns(t *testing.T) {
	content := "x,alice,y,1001\nx,bob,y,1002\n"
	res := mustParse(t, Options{Format: FormatCSV, ColumnMapping: map[string]int{"username": 1, "userid": 3}}, content)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "alice", res.Records[0].Username)
	assert.Equal(t, "1001", res.Records[0].UserID)
}

func TestCSVFormat_Quoting(t *testing.T) {
	content := "'Doe; John';1001;'it''s'\n" +
		"  'multi\nline'  ;1002;x\n" +
		"plain;1003;'unterminated\n"

	res := mustParse(t, Options{
		Format:        FormatCSV,
		Delimiter:     ";",
		QuoteChar:     "'",
		ColumnMapping: map[string]int{"username": 0, "userid": 1, "surname": 2},
	}, content)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "Doe; John", res.Records[0].Username)
	assert.Equal(t, "it's", res.Records[0].Surname)
	assert.Equal(t, "multi\nline", res.Records[1].Username)
	assert.Equal(t, 2, res.Records[1].Line)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 4, res.Warnings[0].Line)
	assert.Contains(t, res.Warnings[0].Message, "unterminated")
}

func TestCSVFormat_RowWarnings(t *testing.T) {
	content := "username,userid,email\n" +
		"alice,1001,a@example.com\n" +
		"short\n" +
		"bob,1001,b@example.com\n" +
		"carol,,c@example.com\n"

	res := mustParse(t, Options{
		Format:        FormatCSV,
		SkipHeader:    true,
		ColumnMapping: map[string]int{"username": 0, "userid": 1, "email": 2},
	}, content)

	assert.Equal(t, []string{"1001"}, keys(res.Records))
	assert.Equal(t, 4, res.DataRows)
	require.Len(t, res.Warnings, 3)
	assert.Equal(t, models.RowWarning{Line: 3, Message: "expected at least 3 columns, got 1"}, res.Warnings[0])
	assert.Equal(t, 4, res.Warnings[1].Line)
	assert.Equal(t, 5, res.Warnings[2].Line)
}

func TestCSVFormat_PasswordTooLong(t *testing.T) {
	content := "alice,1,short\n" +
		"bob,2," + strings.Repeat("x", MaxPasswordBytes+8) + "\n" +
		"carol,3," + strings.Repeat("y", MaxPasswordBytes) + "\n"

	res := mustParse(t, Options{
		Format:        FormatCSV,
		ColumnMapping: map[string]int{"username": 0, "userid": 1, "password": 2},
	}, content)

	assert.Equal(t, []string{"1", "3"}, keys(res.Records))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 2, res.Warnings[0].Line)
	assert.Contains(t, res.Warnings[0].Message, "longer than 72 bytes")
}

func TestPasswordFormat_LongHashIsOpaque(t *testing.T) {
	hash := "$6$" + strings.Repeat("z", 100)
	res := mustParse(t, Options{Format: FormatPassword}, "alice:"+hash+":1000:1000::/home/alice:/bin/sh\n")

	require.Len(t, res.Records, 1)
	assert.Equal(t, hash, res.Records[0].Password)
	assert.Empty(t, res.Warnings)
}

func TestCSVFormat_CRLF(t *testing.T) {
	res := mustParse(t, Options{Format: FormatCSV, ColumnMapping: map[string]int{"username": 0, "userid": 1}}, "a,1\r\nb,2\r\n")
	assert.Equal(t, []string{"1", "2"}, keys(res.Records))
}
