// Package xfererr defines the errors reported by file transfer sessions.
//
// Errors are classified by Type (transport, file, protocol, session)
// and by Severity. Fatal errors end the session: transport failures and
// misuse of a consumed state value. Recoverable errors are handled in
// place: a file which cannot be opened becomes an empty response, and
// an unrecognised or over-long command line is ignored.
package xfererr
