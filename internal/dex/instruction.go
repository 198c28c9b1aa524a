package dex

import "crypto/sha256"

// anchorDiscriminator computes the 8-byte Anchor global instruction
// discriminator for ixName, matching the sighash convention every Anchor
// program on Solana uses: sha256("global:<name>")[:8].
func anchorDiscriminator(ixName string) [8]byte {
	hash := sha256.Sum256([]byte("global:" + ixName))
	var out [8]byte
	copy(out[:], hash[:8])
	return out
}

func putUint64LE(dst []byte, v uint64) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
	dst[4] = byte(v >> 32)
	dst[5] = byte(v >> 40)
	dst[6] = byte(v >> 48)
	dst[7] = byte(v >> 56)
}
