// Package commands implements the umbra command line: keygen, address, pay,
// scan and sweep.
//
// Settings are read from a YAML file, then from UMBRA_* environment variables
// (a .env file in the working directory is loaded first), then from flags.
// Nothing here talks to the network; transactions to scan are read from stdin
// and signed transactions are written to stdout for an external broadcaster.
package commands
