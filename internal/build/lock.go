package build

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
)

const lockName = ".run-in-progress"

// AcquireRunLock creates the run-in-progress marker in the output
// directory. Two runs pointed at the same output path are unsupported;
// the second fails fast here instead of corrupting partial output. The
// returned release func removes the marker.
func AcquireRunLock(dir string) (release func(), err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "build: create output dir %s", dir)
	}
	path := filepath.Join(dir, lockName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, eris.Errorf("build: another run is in progress on %s (marker %s exists)", dir, lockName)
		}
		return nil, eris.Wrapf(err, "build: create run marker in %s", dir)
	}
	fmt.Fprintf(f, "pid=%d started=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	f.Close()

	return func() { _ = os.Remove(path) }, nil
}
