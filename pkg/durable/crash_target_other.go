//go:build !linux

package durable

import (
	"os"
	"path/filepath"
)

// crashTarget is the portable fallback. It goes through the os package and
// therefore allocates; only the Linux build is allocation-free.
type crashTarget struct {
	path string
	tmp  string
}

func openCrashTarget(path string) (*crashTarget, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return &crashTarget{path: path, tmp: path + CrashTempSuffix}, nil
}

func (c *crashTarget) write(data []byte) error {
	f, err := os.OpenFile(c.tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(c.tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(c.tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(c.tmp)
		return err
	}
	if err := os.Rename(c.tmp, c.path); err != nil {
		_ = os.Remove(c.tmp)
		return err
	}
	return syncDir(filepath.Dir(c.path))
}

func (c *crashTarget) close() error { return nil }
