package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// HashContent computes the hex-encoded SHA-256 digest of content. Integrity
// hashes cover the artifact's full bytes; an empty input hashes to the digest
// of the empty string, not "".
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashFile computes the hex-encoded SHA-256 digest of the file at path,
// streaming so large artifacts are never held in memory.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFileOrEmpty hashes the file at path, returning "" when the file does
// not exist. The manifest uses this for artifacts that were declared but
// never produced.
func HashFileOrEmpty(path string) (string, error) {
	sum, err := HashFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	return sum, err
}
