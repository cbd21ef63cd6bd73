package blitz

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"sort"
)

// maxDictEntries bounds the per-column dictionary. Index 0xFF escapes to an
// inline raw string, so at most 255 dictionary slots are addressable.
const (
	maxDictEntries = 254
	dictEscape     = 0xFF
)

// colModel is the learned per-column model: a frame-of-reference minimum
// for integers, an optional dictionary for low-cardinality strings.
type colModel struct {
	Kind AttrKind
	Min  int64
	Dict []string

	dictIndex map[string]int
}

// model is the trained relation model, persisted to the model file.
type model struct {
	Relation string
	Cols     []colModel
}

func newModel(schema Schema) *model {
	m := &model{Relation: schema.Relation, Cols: make([]colModel, len(schema.Attrs))}
	for i, a := range schema.Attrs {
		m.Cols[i].Kind = a.Kind
	}
	return m
}

// learner accumulates column statistics during the training pass.
type learner struct {
	schema   Schema
	mins     []int64
	seenInt  []bool
	distinct []map[string]struct{}
	overflow []bool
}

func newLearner(schema Schema) *learner {
	l := &learner{
		schema:   schema,
		mins:     make([]int64, len(schema.Attrs)),
		seenInt:  make([]bool, len(schema.Attrs)),
		distinct: make([]map[string]struct{}, len(schema.Attrs)),
		overflow: make([]bool, len(schema.Attrs)),
	}
	for i, a := range schema.Attrs {
		if a.Kind == AttrString {
			l.distinct[i] = make(map[string]struct{})
		}
	}
	return l
}

func (l *learner) observe(row Row) error {
	if len(row) != len(l.schema.Attrs) {
		return fmt.Errorf("blitz: row has %d attributes, schema %q declares %d",
			len(row), l.schema.Relation, len(l.schema.Attrs))
	}
	for i, a := range l.schema.Attrs {
		switch a.Kind {
		case AttrInt:
			v := row[i].Int
			if !l.seenInt[i] || v < l.mins[i] {
				l.mins[i] = v
				l.seenInt[i] = true
			}
		case AttrString:
			if l.overflow[i] {
				continue
			}
			l.distinct[i][row[i].Str] = struct{}{}
			if len(l.distinct[i]) > maxDictEntries {
				l.overflow[i] = true
				l.distinct[i] = nil
			}
		}
	}
	return nil
}

func (l *learner) finish() *model {
	m := newModel(l.schema)
	for i, a := range l.schema.Attrs {
		switch a.Kind {
		case AttrInt:
			m.Cols[i].Min = l.mins[i]
		case AttrString:
			if !l.overflow[i] {
				dict := make([]string, 0, len(l.distinct[i]))
				for s := range l.distinct[i] {
					dict = append(dict, s)
				}
				sort.Strings(dict)
				m.Cols[i].Dict = dict
			}
		}
	}
	m.buildIndexes()
	return m
}

func (m *model) buildIndexes() {
	for i := range m.Cols {
		c := &m.Cols[i]
		if c.Dict != nil {
			c.dictIndex = make(map[string]int, len(c.Dict))
			for j, s := range c.Dict {
				c.dictIndex[s] = j
			}
		}
	}
}

// save writes the trained model to the model file.
func (m *model) save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("encode model %q: %w", m.Relation, err)
	}
	return nil
}

// loadModel reads a trained model back from the model file.
func loadModel(path string) (*model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()
	var m model
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model file %s: %w", path, err)
	}
	m.buildIndexes()
	return &m, nil
}

// encodeColumn appends one column of the batch to buf.
func (m *model) encodeColumn(buf []byte, col int, rows []Row) []byte {
	c := &m.Cols[col]
	switch c.Kind {
	case AttrInt:
		for _, r := range rows {
			// Post-mount mutations can move values below the learned
			// minimum, so the delta is signed.
			buf = binary.AppendVarint(buf, r[col].Int-c.Min)
		}
	case AttrString:
		for _, r := range rows {
			s := r[col].Str
			if c.dictIndex != nil {
				if idx, ok := c.dictIndex[s]; ok {
					buf = append(buf, byte(idx))
					continue
				}
				buf = append(buf, dictEscape)
			}
			buf = binary.AppendUvarint(buf, uint64(len(s)))
			buf = append(buf, s...)
		}
	}
	return buf
}

// decodeColumn reads one column of n rows from r into out.
func (m *model) decodeColumn(r *byteReader, col, n int, out []Row) error {
	c := &m.Cols[col]
	switch c.Kind {
	case AttrInt:
		for i := 0; i < n; i++ {
			d, err := r.varint()
			if err != nil {
				return err
			}
			out[i][col].Int = c.Min + d
		}
	case AttrString:
		for i := 0; i < n; i++ {
			if c.dictIndex != nil {
				b, err := r.byte()
				if err != nil {
					return err
				}
				if b != dictEscape {
					if int(b) >= len(c.Dict) {
						return fmt.Errorf("blitz: dictionary index %d out of range in %q", b, m.Relation)
					}
					out[i][col].Str = c.Dict[b]
					continue
				}
			}
			s, err := r.lenPrefixed()
			if err != nil {
				return err
			}
			out[i][col].Str = s
		}
	}
	return nil
}

// byteReader walks an encoded block payload.
type byteReader struct {
	buf []byte
	off int
}

func (r *byteReader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		return 0, fmt.Errorf("blitz: truncated uvarint at offset %d", r.off)
	}
	r.off += n
	return v, nil
}

func (r *byteReader) varint() (int64, error) {
	v, n := binary.Varint(r.buf[r.off:])
	if n <= 0 {
		return 0, fmt.Errorf("blitz: truncated varint at offset %d", r.off)
	}
	r.off += n
	return v, nil
}

func (r *byteReader) byte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, fmt.Errorf("blitz: truncated block at offset %d", r.off)
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *byteReader) lenPrefixed() (string, error) {
	n, err := r.uvarint()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.buf) {
		return "", fmt.Errorf("blitz: string of length %d overruns block", n)
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}
