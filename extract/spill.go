package extract

import (
	"fmt"
	"path/filepath"

	"github.com/rs/xid"
)

// spillPath builds a unique name for the normalizer's temporary file,
// alongside the output so the spill lands on the same file system.
func spillPath(fileName string) string {
	dir := filepath.Dir(fileName)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(fileName), xid.New()))
}
