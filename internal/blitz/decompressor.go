package blitz

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Decompressor reconstructs rows from the block file. It owns the
// tuple-id to locator map; the store records a locator here every time a
// row is compressed. Not safe for concurrent use.
type Decompressor struct {
	schema Schema
	m      *model
	bf     *BlockFile
	dec    *zstd.Decoder

	locs map[uint64]Locator

	// Single-block decode cache. Blocks are immutable once sealed, and
	// lookups cluster, so one block of reuse pays for most of the cost.
	cacheID uint32
	cacheOK bool
	cache   []Row
}

// NewDecompressor opens the model written by the paired compressor's Learn
// pass. Both sides must be opened on the same block file and schema.
func NewDecompressor(modelPath string, bf *BlockFile, schema Schema) (*Decompressor, error) {
	m, err := loadModel(modelPath)
	if err != nil {
		return nil, err
	}
	if m.Relation != schema.Relation || len(m.Cols) != len(schema.Attrs) {
		return nil, fmt.Errorf("blitz: model %s does not match schema %q", modelPath, schema.Relation)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}
	return &Decompressor{
		schema: schema,
		m:      m,
		bf:     bf,
		dec:    dec,
		locs:   make(map[uint64]Locator),
	}, nil
}

// SetLocator records where tuple tid now lives. Re-evicting a tuple
// replaces its locator; the stale copy in the old block is never read
// again.
func (d *Decompressor) SetLocator(tid uint64, loc Locator) {
	d.locs[tid] = loc
}

// Locator returns the recorded locator for tid.
func (d *Decompressor) Locator(tid uint64) (Locator, bool) {
	loc, ok := d.locs[tid]
	return loc, ok
}

// Decompress reconstructs the row for tid. The returned row is borrowed
// and only valid until the next Decompress call.
func (d *Decompressor) Decompress(tid uint64) (Row, error) {
	loc, ok := d.locs[tid]
	if !ok {
		return nil, fmt.Errorf("blitz: no locator for tuple %d in %q", tid, d.schema.Relation)
	}
	return d.Materialize(loc)
}

// Materialize reconstructs the row at loc.
func (d *Decompressor) Materialize(loc Locator) (Row, error) {
	if !d.cacheOK || d.cacheID != loc.Block {
		if err := d.decodeBlock(loc.Block); err != nil {
			return nil, err
		}
	}
	if int(loc.Slot) >= len(d.cache) {
		return nil, fmt.Errorf("blitz: slot %d out of range in block %d of %q (%d rows)",
			loc.Slot, loc.Block, d.schema.Relation, len(d.cache))
	}
	return d.cache[loc.Slot], nil
}

func (d *Decompressor) decodeBlock(id uint32) error {
	raw, err := d.bf.ReadBlock(id)
	if err != nil {
		return err
	}
	payload, err := d.dec.DecodeAll(raw, nil)
	if err != nil {
		return fmt.Errorf("decompress block %d of %q: %w", id, d.schema.Relation, err)
	}

	r := &byteReader{buf: payload}
	n64, err := r.uvarint()
	if err != nil {
		return err
	}
	n := int(n64)
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = make(Row, len(d.schema.Attrs))
	}
	for col := range d.schema.Attrs {
		if err := d.m.decodeColumn(r, col, n, rows); err != nil {
			return fmt.Errorf("block %d of %q: %w", id, d.schema.Relation, err)
		}
	}

	d.cache = rows
	d.cacheID = id
	d.cacheOK = true
	return nil
}

// Close releases the decoder.
func (d *Decompressor) Close() {
	d.dec.Close()
}
