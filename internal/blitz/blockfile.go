package blitz

import (
	"fmt"
	"os"
)

// BlockFile is an append-only file of compressed blocks plus an in-memory
// block directory. The compressor appends sealed blocks; the decompressor
// reads them back by id. One file per cold table.
type BlockFile struct {
	f      *os.File
	path   string
	dir    []blockMeta
	tail   int64
}

type blockMeta struct {
	off    int64
	length int64
}

// OpenBlockFile creates (or truncates) the data file at path.
func OpenBlockFile(path string) (*BlockFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open block file: %w", err)
	}
	return &BlockFile{f: f, path: path}, nil
}

// Path returns the data file path.
func (bf *BlockFile) Path() string { return bf.path }

// NumBlocks returns the number of sealed blocks.
func (bf *BlockFile) NumBlocks() uint32 { return uint32(len(bf.dir)) }

// DiskBytes returns the total bytes written.
func (bf *BlockFile) DiskBytes() int64 { return bf.tail }

// AppendBlock writes one sealed block and returns its id.
func (bf *BlockFile) AppendBlock(data []byte) (uint32, error) {
	if _, err := bf.f.WriteAt(data, bf.tail); err != nil {
		return 0, fmt.Errorf("append block to %s: %w", bf.path, err)
	}
	id := uint32(len(bf.dir))
	bf.dir = append(bf.dir, blockMeta{off: bf.tail, length: int64(len(data))})
	bf.tail += int64(len(data))
	return id, nil
}

// ReadBlock returns the raw bytes of block id.
func (bf *BlockFile) ReadBlock(id uint32) ([]byte, error) {
	if int(id) >= len(bf.dir) {
		return nil, fmt.Errorf("block %d out of range in %s (%d blocks)", id, bf.path, len(bf.dir))
	}
	m := bf.dir[id]
	buf := make([]byte, m.length)
	if _, err := bf.f.ReadAt(buf, m.off); err != nil {
		return nil, fmt.Errorf("read block %d from %s: %w", id, bf.path, err)
	}
	return buf, nil
}

// Close releases the file descriptor.
func (bf *BlockFile) Close() error {
	return bf.f.Close()
}
