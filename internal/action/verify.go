package action

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// hashFile computes the BLAKE3 digest of the file at path, used by the
// supplemented --verify action to compare a copy against its source.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify compares the BLAKE3 digest of srcPath and destPath, returning an
// error describing the mismatch if they differ. Used only when --verify is
// set, immediately after a successful regular-file copy.
func Verify(srcPath, destPath string) error {
	srcSum, err := hashFile(srcPath)
	if err != nil {
		return err
	}
	destSum, err := hashFile(destPath)
	if err != nil {
		return err
	}
	if srcSum != destSum {
		return fmt.Errorf("checksum mismatch copying %s to %s", srcPath, destPath)
	}
	return nil
}
