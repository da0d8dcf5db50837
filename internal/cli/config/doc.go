// Package config reads and writes the issuemesh-cli settings file,
// ~/.issuemesh/cli.yaml.
//
// The file holds the default server, output format, user name and extra CA
// file so they need not be repeated on every invocation. Set validates one
// key at a time for the config set command.
package config
