//go:build linux
// +build linux

package fuse

import (
	"context"
	"io"
	"os"
	"slices"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/ostafen/rz4/internal/format"
)

// StreamFS exposes the streams of a source as read-only files of a flat
// directory, reading their bytes lazily from the source.
type StreamFS struct {
	r       io.ReaderAt
	names   []string
	entries map[string]format.StreamRecord
	mtime   time.Time
}

// NewStreamFS builds the file system view of records. Files are named
// after their records and listed in registry order.
func NewStreamFS(r io.ReaderAt, records []format.StreamRecord) *StreamFS {
	sfs := &StreamFS{
		r:       r,
		names:   make([]string, 0, len(records)),
		entries: make(map[string]format.StreamRecord, len(records)),
		mtime:   time.Now(),
	}
	for _, rec := range records {
		name := rec.FileName()
		if _, ok := sfs.entries[name]; ok {
			continue
		}
		sfs.names = append(sfs.names, name)
		sfs.entries[name] = rec
	}
	return sfs
}

func (sfs *StreamFS) Root() (fs.Node, error) {
	return &Dir{fs: sfs}, nil
}

// Dir implements both fs.Node and fs.HandleReadDirAller
type Dir struct {
	fs *StreamFS
}

func (*Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = 1
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	rec, ok := d.fs.entries[name]
	if !ok {
		return nil, fuse.ENOENT
	}

	return &File{
		inode: d.inode(name),
		r:     io.NewSectionReader(d.fs.r, int64(rec.Offset), int64(rec.Length)),
		size:  rec.Length,
		mtime: d.fs.mtime,
	}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	dirEntries := make([]fuse.Dirent, len(d.fs.names))
	for i, name := range d.fs.names {
		dirEntries[i] = fuse.Dirent{
			Inode: uint64(i) + 2,
			Name:  name,
			Type:  fuse.DT_File,
		}
	}
	return dirEntries, nil
}

func (d *Dir) inode(name string) uint64 {
	return uint64(slices.Index(d.fs.names, name)) + 2
}

// File implements both fs.Node and fs.HandleReader
type File struct {
	inode uint64
	r     io.ReaderAt
	size  uint64
	mtime time.Time
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = f.inode
	a.Mode = 0444
	a.Size = f.size
	a.Mtime = f.mtime
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	data, err := readRange(f.r, f.size, req.Offset, req.Size)
	if err != nil {
		return err
	}
	resp.Data = data
	return nil
}

// readRange reads up to size bytes at offset from a stream of streamSize
// bytes, clamping the request to the end of the stream.
func readRange(r io.ReaderAt, streamSize uint64, offset int64, size int) ([]byte, error) {
	if offset < 0 || uint64(offset) >= streamSize {
		return []byte{}, nil
	}
	size = int(min(uint64(size), streamSize-uint64(offset)))

	buf := make([]byte, size)
	n, err := r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
