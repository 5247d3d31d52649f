package parser

import (
	"strings"

	"user-import/feature/userimport/models"
)

// minPasswordFields is username, password hash and uid.
const minPasswordFields = 3

// PasswordFormat parses passwd style lines:
//
//	username:password:uid:gid:gecos:home:shell
//
// The uid becomes the userid. Lines starting with '#' are comments.
// The csv delimiter and quote options do not apply.
type PasswordFormat struct {
	encoding string
}

// Parse implements Parser.
func (p *PasswordFormat) Parse(content []byte) (*Result, error) {
	text, err := decode(content, p.encoding)
	if err != nil {
		return nil, err
	}

	c := newCollector()
	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		c.res.DataRows++

		fields := strings.Split(trimmed, ":")
		if len(fields) < minPasswordFields {
			c.warn(lineNo, "expected at least %d fields, got %d", minPasswordFields, len(fields))
			continue
		}

		rec := models.Record{
			Username: strings.TrimSpace(fields[0]),
			Password: fields[1],
			UserID:   strings.TrimSpace(fields[2]),
			Line:     lineNo,
		}
		if len(fields) > 4 {
			applyGecos(&rec, fields[4])
		}
		c.add(rec)
	}
	return c.result(), nil
}

// applyGecos maps "Full Name,Room,WorkPhone,HomePhone,Other" onto rec.
// The first item holding an '@' is taken as the email address.
func applyGecos(rec *models.Record, gecos string) {
	items := strings.Split(gecos, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	for _, item := range items {
		if strings.Contains(item, "@") {
			rec.Email = item
			break
		}
	}

	at := func(i int) string {
		if i < len(items) && !strings.Contains(items[i], "@") {
			return items[i]
		}
		return ""
	}

	if name := strings.Fields(at(0)); len(name) > 0 {
		rec.Surname = name[len(name)-1]
		rec.GivenName = strings.Join(name[:len(name)-1], " ")
	}
	rec.Phone = at(2)
	rec.Mobile = at(3)
}
