// Package store holds the relational tables, their ordered indexes, the
// hybrid memory/disk tuple tier and the five TPC-C transactions.
package store

import (
	"fmt"

	"github.com/blitzdb/tpccbench/internal/blitz"
)

// Tuple is the identity-stable cell indexes point at for cold-table rows.
// It is resident while row is non-nil; once evicted the row payload is
// dropped and tid keys the decompressor's locator map. Secondary indexes
// keep pointing at the cell across evictions and promotions.
type Tuple[R any] struct {
	row *R
	tid uint64
}

// Resident reports whether the row payload is in memory.
func (t *Tuple[R]) Resident() bool { return t.row != nil }

// Row returns the resident payload; nil when evicted.
func (t *Tuple[R]) Row() *R { return t.row }

// TupleID returns the stable compressor key.
func (t *Tuple[R]) TupleID() uint64 { return t.tid }

// tier wires one cold table to its compressor/decompressor pair and block
// file. The converter pair maps between the table's row struct and the
// declared attribute list.
type tier[R any] struct {
	table   string
	schema  blitz.Schema
	bf      *blitz.BlockFile
	comp    *blitz.Compressor
	dec     *blitz.Decompressor
	toRow   func(*R, blitz.Row) blitz.Row
	fromRow func(blitz.Row, *R)

	rowBytes int64
	encBuf   blitz.Row
	mounted  bool
	dirty    bool
}

// evict serializes the tuple's resident row, records the fresh locator and
// drops the payload. The caller flushes the tier before the next read.
func (tt *tier[R]) evict(t *Tuple[R]) {
	tt.encBuf = tt.toRow(t.row, tt.encBuf[:0])
	loc, err := tt.comp.Compress(tt.encBuf)
	if err != nil {
		panic(fmt.Sprintf("store: evict %s tuple %d: %v", tt.table, t.tid, err))
	}
	tt.dec.SetLocator(t.tid, loc)
	t.row = nil
	tt.dirty = true
}

// flush seals any partially filled block so evicted rows are readable.
func (tt *tier[R]) flush() {
	if !tt.dirty {
		return
	}
	if err := tt.comp.Flush(); err != nil {
		panic(fmt.Sprintf("store: flush %s block file: %v", tt.table, err))
	}
	tt.dirty = false
}

// load returns a borrowed row: the resident payload when in memory,
// otherwise the evicted row materialized into scratch. The result is only
// valid until the next load on the same scratch.
func (tt *tier[R]) load(t *Tuple[R], scratch *R) *R {
	if t.row != nil {
		return t.row
	}
	row, err := tt.dec.Decompress(t.tid)
	if err != nil {
		panic(fmt.Sprintf("store: materialize %s tuple %d: %v", tt.table, t.tid, err))
	}
	tt.fromRow(row, scratch)
	return scratch
}

// pin promotes an evicted tuple into an owned resident buffer; mutations
// require residency. It reports whether a promotion happened so the caller
// can account the regained memory.
func (tt *tier[R]) pin(t *Tuple[R]) (*R, bool) {
	if t.row != nil {
		return t.row, false
	}
	row, err := tt.dec.Decompress(t.tid)
	if err != nil {
		panic(fmt.Sprintf("store: promote %s tuple %d: %v", tt.table, t.tid, err))
	}
	r := new(R)
	tt.fromRow(row, r)
	t.row = r
	return r, true
}

// close releases the tier's file and codec resources.
func (tt *tier[R]) close() {
	if tt.comp != nil {
		_ = tt.comp.Close()
	}
	if tt.dec != nil {
		tt.dec.Close()
	}
	if tt.bf != nil {
		_ = tt.bf.Close()
	}
}
