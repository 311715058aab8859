package codegen

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// checksumTrailer computes a blake2b-256 digest of the emitted
// instruction stream and formats it as a PArIR comment line, appended
// when --debug requests a reproducibility check across dry-run and
// emission (SPEC_FULL.md §4.6). Repurposed from the teacher's
// content-hash-for-stable-IDs use of blake2b to stream-integrity
// hashing, since PArL has no ID-generation domain of its own.
func checksumTrailer(instrs []string) string {
	sum := blake2b.Sum256([]byte(strings.Join(instrs, "\n")))
	return fmt.Sprintf("; checksum: %x", sum)
}
