package registry

import (
	"os"
	"path/filepath"
)

// globSharedObjects lists every file directly inside dir whose name
// matches the *.so.<major>.<minor>.<patch> SONAME convention (spec §8
// scenario S1). Entries with a non-numeric trailing suffix (e.g.
// "p3.so.0.0.0T") are silently excluded, not errored — a malformed name
// is simply not a plugin.
func globSharedObjects(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if soSuffix.MatchString(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
