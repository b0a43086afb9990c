package retrieval

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// hashPrefixLength is how many preview characters feed the fallback digest.
const hashPrefixLength = 256

// KeyKind distinguishes identified fusion keys from hashed ones.
type KeyKind uint8

const (
	// KeyIdentified keys carry the resume and chunk ids.
	KeyIdentified KeyKind = iota + 1
	// KeyHashed keys carry a digest of the preview text.
	KeyHashed
)

// FusionKey identifies a fragment while merging hits from several retrievers.
// It is comparable and can be used as a map key.
type FusionKey struct {
	Kind     KeyKind
	ResumeID string
	ChunkID  int
	Digest   [md5.Size]byte
}

// KeyFor builds the key for a hit. Identity is used when either the resume id
// or the chunk id is present. Otherwise the key falls back to the md5 of the
// first 256 characters of the preview, so two anonymous hits with the same
// preview prefix collapse into one record.
func KeyFor(resumeID string, chunkID int, preview string) FusionKey {
	if resumeID != "" || chunkID != NoChunk {
		return FusionKey{Kind: KeyIdentified, ResumeID: resumeID, ChunkID: chunkID}
	}
	return FusionKey{Kind: KeyHashed, Digest: md5.Sum([]byte(previewPrefix(preview)))}
}

func previewPrefix(text string) string {
	return preview(text, hashPrefixLength)
}

// String renders the key as "resume::chunk" or "hash::<hex>".
func (k FusionKey) String() string {
	if k.Kind == KeyHashed {
		return "hash::" + hex.EncodeToString(k.Digest[:])
	}
	if k.ChunkID == NoChunk {
		return k.ResumeID + "::"
	}
	return fmt.Sprintf("%s::%d", k.ResumeID, k.ChunkID)
}
