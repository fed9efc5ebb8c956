// Package identity generates store identifiers.
//
// Two deliberately separate capabilities live here. StoreID is a pure
// content hash used for catalog identity: the same logical store always
// maps to the same id, across fetches and provider calls. NewID is a
// non-deterministic generator for ephemeral records (history entries,
// request logs) and must never be used for store identity.
package identity

import (
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// storeIDLen is the number of hex characters kept from the content hash.
// 10 chars = 40 bits, comfortably collision-free at catalog scale.
const storeIDLen = 10

// StoreID derives a stable identifier from a store's own fields.
//
// The key is the lowercased "name|address" pair; when the address is
// absent it falls back to "name|city|zipcode". No clock, no randomness:
// repeated calls and case variations of the same logical key always
// yield the same id.
func StoreID(name, address, city, zipcode string) string {
	sum := sha256.Sum256([]byte(storeKey(name, address, city, zipcode)))
	return hex.EncodeToString(sum[:])[:storeIDLen]
}

// LegacyStoreID is the djb2-style rolling hash (multiply by 33, xor the
// byte) the original batch tooling used, reduced to unsigned 32 bits and
// encoded base-36. Kept only so cmd/rehash can recognise ids produced by
// old exports; the online resolver is StoreID.
func LegacyStoreID(name, address, city, zipcode string) string {
	var h uint32 = 5381
	for _, b := range []byte(storeKey(name, address, city, zipcode)) {
		h = h*33 ^ uint32(b)
	}
	return strconv.FormatUint(uint64(h), 36)
}

func storeKey(name, address, city, zipcode string) string {
	if address == "" {
		return strings.ToLower(name + "|" + city + "|" + zipcode)
	}
	return strings.ToLower(name + "|" + address)
}

// provider yields a candidate identifier, or an error when its entropy
// source is unavailable.
type provider func() (string, error)

// providers are tried in order, strongest first. The terminal entry is
// synchronous and cannot fail, so NewID never returns an empty string.
var providers = []provider{
	func() (string, error) {
		id, err := uuid.NewV7()
		if err != nil {
			return "", err
		}
		return id.String(), nil
	},
	func() (string, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		return id.String(), nil
	},
	func() (string, error) {
		var b [16]byte
		if _, err := crand.Read(b[:]); err != nil {
			return "", err
		}
		return hex.EncodeToString(b[:]), nil
	},
	func() (string, error) {
		return fmt.Sprintf("%d-%06d", time.Now().UnixNano(), mrand.Intn(1_000_000)), nil
	},
}

// NewID returns an identifier for an ephemeral record, produced by the
// first provider in the chain that succeeds.
func NewID() string {
	for _, p := range providers {
		if id, err := p(); err == nil && id != "" {
			return id
		}
	}
	// Unreachable: the terminal provider never fails.
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
