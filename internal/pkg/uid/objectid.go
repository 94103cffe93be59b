package uid

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// ErrNoNodeIdentity indicates no stable machine identity could be derived.
var ErrNoNodeIdentity = errors.New("uid: no stable node identity (machine-id and hostname unavailable)")

// ObjectIDGenerator produces 32-byte identifiers rendered as 64 hex
// characters: 6 bytes of millisecond timestamp, 6 bytes of node identity,
// 2 bytes of pid, a 4-byte counter and 14 random bytes. Collision-safe across
// instances without coordination, which makes the output usable as an opaque
// bearer token.
type ObjectIDGenerator struct {
	node    [6]byte
	pid     uint16
	counter uint32
}

// NewObjectIDGenerator derives node identity from /etc/machine-id, falling
// back to the hostname, and seeds the counter from crypto/rand.
func NewObjectIDGenerator() (*ObjectIDGenerator, error) {
	src, err := nodeIdentity()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(src))

	g := &ObjectIDGenerator{pid: uint16(os.Getpid())}
	copy(g.node[:], sum[:6])

	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	g.counter = binary.BigEndian.Uint32(seed[:])

	return g, nil
}

func nodeIdentity() (string, error) {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	}
	if h, err := os.Hostname(); err == nil {
		if h = strings.TrimSpace(h); h != "" {
			return h, nil
		}
	}
	return "", ErrNoNodeIdentity
}

// Generate returns the next ID as a 64-character hex string.
func (g *ObjectIDGenerator) Generate() string {
	var raw [32]byte

	ts := uint64(time.Now().UnixMilli())
	raw[0] = byte(ts >> 40)
	raw[1] = byte(ts >> 32)
	raw[2] = byte(ts >> 24)
	raw[3] = byte(ts >> 16)
	raw[4] = byte(ts >> 8)
	raw[5] = byte(ts)

	copy(raw[6:12], g.node[:])
	binary.BigEndian.PutUint16(raw[12:14], g.pid)
	binary.BigEndian.PutUint32(raw[14:18], atomic.AddUint32(&g.counter, 1))

	if _, err := rand.Read(raw[18:]); err != nil {
		// Deterministic fallback keeps uniqueness via the counter above.
		sum := sha256.Sum256(raw[:18])
		copy(raw[18:], sum[:14])
	}

	var out [64]byte
	hex.Encode(out[:], raw[:])
	return string(out[:])
}
