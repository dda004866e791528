package experiment

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// FingerprintWidth is the fixed decimal width of every fingerprint.
// Constant width keeps identifiers visually comparable across groups.
const FingerprintWidth = 8

// IDPrefix is the literal tag every experiment identifier starts with.
const IDPrefix = "exp"

// Fingerprint is a deterministic bounded-width digest of a canonicalized
// parameter group. Equal groups (same structure and values, regardless of
// key insertion order) always produce the same fingerprint, in any process
// on any machine. Distinct groups may collide; the 8-digit space makes
// that an accepted, bounded risk rather than an error.
type Fingerprint uint64

// String renders the fingerprint zero-padded to FingerprintWidth digits.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%0*d", FingerprintWidth, uint64(f))
}

// GroupFingerprint fingerprints a single parameter group: canonical byte
// rendering, SHA-256, then the first FingerprintWidth decimal digits of
// the digest read as a big-endian integer.
//
// SHA-256 is deliberate: language-level map hashing is seeded per process
// and would break cross-run stability.
func GroupFingerprint(group map[string]any) (Fingerprint, error) {
	canon, err := canonicalBytes(group)
	if err != nil {
		return 0, err
	}

	sum := sha256.Sum256(canon)
	dec := new(big.Int).SetBytes(sum[:]).String()
	if len(dec) > FingerprintWidth {
		dec = dec[:FingerprintWidth]
	}

	v, err := strconv.ParseUint(dec, 10, 64)
	if err != nil {
		return 0, err
	}
	return Fingerprint(v), nil
}

// NamedGroup pairs a monitored key with its parameter group.
type NamedGroup struct {
	Name  string
	Group map[string]any
}

// ComposeID joins one fingerprint per monitored group, in the given order,
// into the composite experiment identifier:
//
//	exp-<fp1>-<fp2>-...-<fpk>
//
// Order is part of the identifier's meaning: reordering the monitored
// keys is a breaking change to identifier stability, not a cosmetic one.
func ComposeID(groups []NamedGroup) (string, error) {
	segments := make([]string, 0, len(groups)+1)
	segments = append(segments, IDPrefix)
	for _, g := range groups {
		fp, err := GroupFingerprint(g.Group)
		if err != nil {
			return "", err
		}
		segments = append(segments, fp.String())
	}
	return strings.Join(segments, "-"), nil
}
