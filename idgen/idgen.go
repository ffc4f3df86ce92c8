// Package idgen provides pluggable ID generation for feedloom.
//
// Constructors across the repo accept a Generator, making the ID strategy a
// startup-time decision rather than a compile-time one.
package idgen

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"os"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// Time-sortable, globally unique.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
// Useful for type-scoped identifiers (e.g. "req_", "aff_").
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Default is the repo default: UUIDv7.
var Default Generator = UUIDv7()

// New produces an ID using the Default generator.
func New() string {
	return Default()
}

// Fingerprint returns a stable device fingerprint for this host, used as the
// degraded user identifier when no real identity could be resolved from the
// page or the cache. It hashes the hostname plus the first hardware address
// found and truncates to 16 hex characters. The same host always produces
// the same value; cross-host collisions are acceptable for its advisory use.
func Fingerprint() string {
	h := sha256.New()
	host, err := os.Hostname()
	if err != nil {
		host = "unknown-host"
	}
	h.Write([]byte(host))

	if ifaces, err := net.Interfaces(); err == nil {
		for _, ifc := range ifaces {
			if len(ifc.HardwareAddr) > 0 {
				h.Write(ifc.HardwareAddr)
				break
			}
		}
	}

	return "dev_" + hex.EncodeToString(h.Sum(nil))[:16]
}
