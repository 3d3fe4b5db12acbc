// Package filestore resolves filenames to byte sources for a file
// transfer server.
//
// A Store opens a named file; the server wraps what it opens in a
// Source, which yields the file one byte at a time with one byte of
// lookahead so the end of the file can be detected before a byte is
// consumed.
package filestore
