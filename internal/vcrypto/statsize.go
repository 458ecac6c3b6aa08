package vcrypto

import "os"

// statSize returns the byte length of the file at path.
func statSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
