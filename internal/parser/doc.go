// Package parser turns the HTML tables of the WASTL dispatch pages into
// normalized records.
//
// The dispatch pages do not render a stable schema: depending on the page and
// its state, one or more optional leading columns appear in front of the
// interesting ones. The parser therefore never maps columns by absolute
// position. It locates the time anchor of each row (the first cell with a
// colon or an "std" duration) and derives every other field relative to it.
//
// The main components are:
//
//   - [Parser]: parses a whole document into []Record
//   - [ProcessRow]: field extraction for a single row of cell texts
//   - [HeaderFunc]: the replaceable header-row predicate
//   - [Record]: the fixed five-field output tuple
//
// The package is pure: it performs no I/O and keeps no state between calls.
// Decoding the page from ISO-8859-1 is done by the fetch client before the
// text reaches this package.
package parser
