// Package parser turns raw user snapshots into canonical records.
//
// Two formats exist, selected through Options.Format and built by New:
//   - password: passwd style lines, the uid is the userid and the GECOS field
//     fills name, phone, mobile and email.
//   - csv: delimited rows with a configurable delimiter and quote character;
//     a column mapping picks the canonical fields.
//
// Content is decoded to UTF-8 first. A byte order mark selects UTF-8 or UTF-16,
// an explicit Options.Encoding name is resolved through the WHATWG index, and
// undecorated bytes that are not valid UTF-8 are read as ISO-8859-1.
//
// Malformed rows never fail a parse. They are reported as row warnings and
// dropped, and so are rows with an empty or repeated userid. Empty content
// gives an empty result.
package parser
