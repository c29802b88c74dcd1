// Package channel implements the command-execution channels used to reach a
// device.
//
// A Channel runs one shell-style command on the device and returns its
// standard output verbatim. Failures (device unreachable, session refused,
// non-zero exit) are returned as errors; nothing is retried here.
//
// # Transports
//
// SSH dials the device with golang.org/x/crypto/ssh and opens one session per
// command. Key and password credentials are supported, and host keys can be
// pinned with a known_hosts file.
//
// ADB shells out to the adb binary (`adb -s <serial> shell <command>`) for
// devices attached over USB or adb-over-tcp.
//
// Open builds the right transport from a configured target.
package channel
