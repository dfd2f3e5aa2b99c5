//go:build windows
// +build windows

// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package fs

import (
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	sectorSize = 512

	ioctlDiskGetLengthInfo = 0x7405C
)

// RawDevice reads a disk or volume opened through its \\.\ path. Reads are
// widened to whole sectors, as raw devices require.
type RawDevice struct {
	name   string
	handle windows.Handle
	offset int64
	size   int64
}

type deviceInfo struct {
	name string
	size int64
}

func (fi *deviceInfo) Name() string       { return fi.name }
func (fi *deviceInfo) Size() int64        { return fi.size }
func (fi *deviceInfo) Mode() os.FileMode  { return os.ModeDevice | 0444 }
func (fi *deviceInfo) ModTime() time.Time { return time.Time{} }
func (fi *deviceInfo) IsDir() bool        { return false }
func (fi *deviceInfo) Sys() any           { return nil }

// Open opens a regular file, or a disk/volume (\\.\PhysicalDrive0, \\.\C:)
// for raw reading.
func Open(path string) (File, error) {
	if !strings.HasPrefix(path, `\\.\`) {
		return os.Open(path)
	}

	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	d := &RawDevice{name: path, handle: handle}
	if d.size, err = d.length(); err != nil {
		windows.CloseHandle(handle)
		return nil, err
	}
	return d, nil
}

// length asks the driver for the exact size of the device in bytes.
func (d *RawDevice) length() (int64, error) {
	var size int64
	var bytesReturned uint32

	err := windows.DeviceIoControl(
		d.handle,
		ioctlDiskGetLengthInfo,
		nil,
		0,
		(*byte)(unsafe.Pointer(&size)),
		uint32(unsafe.Sizeof(size)),
		&bytesReturned,
		nil,
	)
	if err != nil {
		return 0, fmt.Errorf("IOCTL_DISK_GET_LENGTH_INFO on %q failed: %w", d.name, err)
	}
	return size, nil
}

func (d *RawDevice) Read(p []byte) (int, error) {
	n, err := d.ReadAt(p, d.offset)
	d.offset += int64(n)
	return n, err
}

func (d *RawDevice) ReadAt(p []byte, off int64) (int, error) {
	if off >= d.size {
		return 0, io.EOF
	}

	want := min(int64(len(p)), d.size-off)

	alignedOff := off / sectorSize * sectorSize
	skip := off - alignedOff
	alignedLen := (skip + want + sectorSize - 1) / sectorSize * sectorSize

	buf := make([]byte, alignedLen)

	var bytesRead uint32
	ov := new(windows.Overlapped)
	ov.Offset = uint32(alignedOff)
	ov.OffsetHigh = uint32(alignedOff >> 32)

	err := windows.ReadFile(d.handle, buf, &bytesRead, ov)
	if err == syscall.ERROR_IO_PENDING {
		err = windows.GetOverlappedResult(d.handle, ov, &bytesRead, true)
	}
	if err != nil {
		return 0, fmt.Errorf("read of %d bytes at sector offset %d failed: %w", alignedLen, alignedOff, err)
	}

	if int64(bytesRead) <= skip {
		return 0, io.EOF
	}

	n := copy(p, buf[skip:min(int64(bytesRead), skip+want)])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (d *RawDevice) Stat() (os.FileInfo, error) {
	return &deviceInfo{name: d.name, size: d.size}, nil
}

func (d *RawDevice) Close() error {
	return windows.CloseHandle(d.handle)
}
