package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSpec = "keepaway/spec/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SpecHash computes a content-addressed hash of a worker spec list.
// Two runs share a spec hash exactly when they started from the same
// workers in the same order, so stored runs can be grouped by input.
func SpecHash(specs []WorkerSpec) (string, error) {
	list := make([]any, len(specs))
	for i, s := range specs {
		list[i] = map[string]any{
			"id":        s.ID,
			"items":     s.Items,
			"operation": s.Operation.String(),
			"divisor":   s.Routing.Divisor,
			"if_true":   s.Routing.IfTrue,
			"if_false":  s.Routing.IfFalse,
		}
	}

	canonical, err := MarshalCanonical(map[string]any{"workers": list})
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// MustSpecHash is like SpecHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSpecHash(specs []WorkerSpec) string {
	h, err := SpecHash(specs)
	if err != nil {
		panic(err)
	}
	return h
}
