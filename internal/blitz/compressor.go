package blitz

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compressor batches rows into columnar blocks, entropy-codes them with
// zstd and appends them to the block file. It must be trained with Learn
// before the first Compress. Not safe for concurrent use.
type Compressor struct {
	schema    Schema
	cfg       Config
	modelPath string
	m         *model
	bf        *BlockFile
	enc       *zstd.Encoder

	batch      []Row
	batchBytes int
}

// NewCompressor creates a compressor writing blocks to bf and its trained
// model to modelPath.
func NewCompressor(modelPath string, bf *BlockFile, schema Schema, cfg Config) (*Compressor, error) {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	return &Compressor{
		schema:    schema,
		cfg:       cfg,
		modelPath: modelPath,
		bf:        bf,
		enc:       enc,
	}, nil
}

// Learn trains the column models over one pass of rows and persists the
// model file so a decompressor can be opened on it.
func (c *Compressor) Learn(rows RowSeq) error {
	l := newLearner(c.schema)
	var ierr error
	rows(func(r Row) bool {
		if err := l.observe(r); err != nil {
			ierr = err
			return false
		}
		return true
	})
	if ierr != nil {
		return ierr
	}
	c.m = l.finish()
	return c.m.save(c.modelPath)
}

// Compress appends row to the open batch and returns the locator it will
// occupy. The block seals automatically once the batch reaches the
// configured size; callers must Flush before reading freshly compressed
// rows back.
func (c *Compressor) Compress(row Row) (Locator, error) {
	if c.m == nil {
		return Locator{}, fmt.Errorf("blitz: compressor for %q is not trained", c.schema.Relation)
	}
	if len(row) != len(c.schema.Attrs) {
		return Locator{}, fmt.Errorf("blitz: row has %d attributes, schema %q declares %d",
			len(row), c.schema.Relation, len(c.schema.Attrs))
	}

	loc := Locator{Block: c.bf.NumBlocks(), Slot: uint32(len(c.batch))}

	// The batch borrows the row; copy so callers may reuse buffers.
	cp := make(Row, len(row))
	copy(cp, row)
	c.batch = append(c.batch, cp)
	for i, a := range c.schema.Attrs {
		if a.Kind == AttrString {
			c.batchBytes += len(row[i].Str) + 1
		} else {
			c.batchBytes += 8
		}
	}

	if c.batchBytes >= c.cfg.BlockSize {
		if err := c.seal(); err != nil {
			return Locator{}, err
		}
	}
	return loc, nil
}

// Flush seals the open batch, if any.
func (c *Compressor) Flush() error {
	if len(c.batch) == 0 {
		return nil
	}
	return c.seal()
}

func (c *Compressor) seal() error {
	payload := binary.AppendUvarint(nil, uint64(len(c.batch)))
	for col := range c.schema.Attrs {
		payload = c.m.encodeColumn(payload, col, c.batch)
	}
	compressed := c.enc.EncodeAll(payload, nil)
	if _, err := c.bf.AppendBlock(compressed); err != nil {
		return err
	}
	c.batch = c.batch[:0]
	c.batchBytes = 0
	return nil
}

// Close releases the encoder.
func (c *Compressor) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	c.enc.Close()
	return nil
}
