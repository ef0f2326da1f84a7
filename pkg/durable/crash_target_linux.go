//go:build linux

package durable

import (
	"io"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// maxSyscallRetries bounds EINTR/EAGAIN retries on the crash path.
const maxSyscallRetries = 8

// crashTarget holds a directory descriptor and NUL-terminated names so that a
// write is a fixed sequence of syscalls with no allocation.
type crashTarget struct {
	dirfd int
	tmp   []byte
	name  []byte
}

func openCrashTarget(path string) (*crashTarget, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	tmp, err := unix.ByteSliceFromString(base + CrashTempSuffix)
	if err != nil {
		return nil, err
	}
	name, err := unix.ByteSliceFromString(base)
	if err != nil {
		return nil, err
	}
	dirfd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &crashTarget{dirfd: dirfd, tmp: tmp, name: name}, nil
}

func (c *crashTarget) write(data []byte) error {
	fd, err := c.openTemp()
	if err != nil {
		return err
	}
	if err := writeFull(fd, data); err != nil {
		_ = unix.Close(fd)
		c.unlinkTemp()
		return err
	}
	if err := unix.Fsync(fd); err != nil {
		_ = unix.Close(fd)
		c.unlinkTemp()
		return err
	}
	if err := unix.Close(fd); err != nil {
		c.unlinkTemp()
		return err
	}
	if err := c.rename(); err != nil {
		c.unlinkTemp()
		return err
	}
	return unix.Fsync(c.dirfd)
}

func (c *crashTarget) openTemp() (int, error) {
	flags := unix.O_WRONLY | unix.O_CREAT | unix.O_TRUNC | unix.O_CLOEXEC
	for i := 0; ; i++ {
		fd, _, errno := unix.Syscall6(unix.SYS_OPENAT,
			uintptr(c.dirfd), uintptr(unsafe.Pointer(&c.tmp[0])), uintptr(flags), 0o600, 0, 0)
		if errno == 0 {
			return int(fd), nil
		}
		if !retryable(errno) || i >= maxSyscallRetries {
			return -1, errno
		}
	}
}

func (c *crashTarget) rename() error {
	for i := 0; ; i++ {
		_, _, errno := unix.Syscall6(unix.SYS_RENAMEAT2,
			uintptr(c.dirfd), uintptr(unsafe.Pointer(&c.tmp[0])),
			uintptr(c.dirfd), uintptr(unsafe.Pointer(&c.name[0])), 0, 0)
		if errno == 0 {
			return nil
		}
		if !retryable(errno) || i >= maxSyscallRetries {
			return errno
		}
	}
}

func (c *crashTarget) unlinkTemp() {
	_, _, _ = unix.Syscall(unix.SYS_UNLINKAT, uintptr(c.dirfd), uintptr(unsafe.Pointer(&c.tmp[0])), 0)
}

func (c *crashTarget) close() error {
	return unix.Close(c.dirfd)
}

func writeFull(fd int, data []byte) error {
	retries := 0
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err != nil {
			if errno, ok := err.(unix.Errno); ok && retryable(errno) && retries < maxSyscallRetries {
				retries++
				continue
			}
			return err
		}
		if n == 0 {
			if retries >= maxSyscallRetries {
				return io.ErrShortWrite
			}
			retries++
			continue
		}
		data = data[n:]
	}
	return nil
}

func retryable(errno unix.Errno) bool {
	return errno == unix.EINTR || errno == unix.EAGAIN
}
