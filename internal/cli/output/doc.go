// Package output renders issuemesh-cli results.
//
// A Printer writes one command result as an aligned table, indented JSON
// or YAML. Types such as Issues and IssueDetail implement Tabular to pick
// their columns. EventWriter renders the stream of the watch command,
// with JSON kept to one line per event so it can be piped.
package output
