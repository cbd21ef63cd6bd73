package btree

import (
	"math/rand"
	"sort"
	"testing"
)

func TestInsertFind(t *testing.T) {
	tr := NewDefault[int32, int]()
	for i := int32(0); i < 1000; i++ {
		if !tr.Insert(i*3, int(i)) {
			t.Fatalf("Insert(%d) returned false", i*3)
		}
	}
	if tr.Len() != 1000 {
		t.Fatalf("Len = %d, want 1000", tr.Len())
	}
	for i := int32(0); i < 1000; i++ {
		v, ok := tr.Find(i * 3)
		if !ok || v != int(i) {
			t.Fatalf("Find(%d) = %d, %v", i*3, v, ok)
		}
	}
	if _, ok := tr.Find(1); ok {
		t.Error("Find(1) should miss")
	}
	if _, ok := tr.Find(3000); ok {
		t.Error("Find(3000) should miss")
	}
}

func TestDuplicateRejected(t *testing.T) {
	tr := NewDefault[int64, string]()
	if !tr.Insert(42, "a") {
		t.Fatal("first insert failed")
	}
	if tr.Insert(42, "b") {
		t.Fatal("duplicate insert succeeded")
	}
	v, _ := tr.Find(42)
	if v != "a" {
		t.Errorf("Find(42) = %q, want %q", v, "a")
	}
	if tr.Len() != 1 {
		t.Errorf("Len = %d, want 1", tr.Len())
	}
}

func TestRandomAgainstMap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := NewDefault[int64, int64]()
	ref := make(map[int64]int64)

	for i := 0; i < 20000; i++ {
		k := int64(rng.Intn(5000))
		switch rng.Intn(3) {
		case 0, 1:
			inserted := tr.Insert(k, k*10)
			_, exists := ref[k]
			if inserted == exists {
				t.Fatalf("Insert(%d) = %v but exists = %v", k, inserted, exists)
			}
			if inserted {
				ref[k] = k * 10
			}
		case 2:
			deleted := tr.Delete(k)
			_, exists := ref[k]
			if deleted != exists {
				t.Fatalf("Delete(%d) = %v but exists = %v", k, deleted, exists)
			}
			delete(ref, k)
		}
	}

	if tr.Len() != len(ref) {
		t.Fatalf("Len = %d, want %d", tr.Len(), len(ref))
	}
	for k, v := range ref {
		got, ok := tr.Find(k)
		if !ok || got != v {
			t.Fatalf("Find(%d) = %d, %v, want %d", k, got, ok, v)
		}
	}

	// Ordered scan must match the sorted reference keys.
	want := make([]int64, 0, len(ref))
	for k := range ref {
		want = append(want, k)
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	got := make([]int64, 0, len(ref))
	tr.Scan(func(k, _ int64) bool {
		got = append(got, k)
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Scan yielded %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Scan[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAscendGreaterOrEqual(t *testing.T) {
	tr := NewDefault[int32, int32]()
	for i := int32(0); i < 100; i++ {
		tr.Insert(i*2, i)
	}

	var keys []int32
	tr.AscendGreaterOrEqual(51, func(k, _ int32) bool {
		keys = append(keys, k)
		return len(keys) < 5
	})
	want := []int32{52, 54, 56, 58, 60}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}

	// Pivot on an existing key is inclusive.
	keys = keys[:0]
	tr.AscendGreaterOrEqual(50, func(k, _ int32) bool {
		keys = append(keys, k)
		return false
	})
	if len(keys) != 1 || keys[0] != 50 {
		t.Fatalf("inclusive pivot: got %v, want [50]", keys)
	}
}

func TestLastLessThan(t *testing.T) {
	tr := NewDefault[int64, int64]()
	for i := int64(1); i <= 200; i++ {
		tr.Insert(i*5, i)
	}

	k, v, ok := tr.LastLessThan(501)
	if !ok || k != 500 || v != 100 {
		t.Fatalf("LastLessThan(501) = %d, %d, %v", k, v, ok)
	}
	k, _, ok = tr.LastLessThan(500)
	if !ok || k != 495 {
		t.Fatalf("LastLessThan(500) = %d, %v, want 495", k, ok)
	}
	if _, _, ok := tr.LastLessThan(5); ok {
		t.Error("LastLessThan(5) should miss")
	}
	k, _, ok = tr.LastLessThan(1 << 40)
	if !ok || k != 1000 {
		t.Fatalf("LastLessThan(max) = %d, %v, want 1000", k, ok)
	}
}

func TestDeleteThenIterate(t *testing.T) {
	tr := NewDefault[int32, int32]()
	for i := int32(0); i < 64; i++ {
		tr.Insert(i, i)
	}
	// Empty out a whole leaf's worth of keys in the middle.
	for i := int32(16); i < 32; i++ {
		if !tr.Delete(i) {
			t.Fatalf("Delete(%d) failed", i)
		}
	}
	var keys []int32
	tr.AscendGreaterOrEqual(10, func(k, _ int32) bool {
		keys = append(keys, k)
		return true
	})
	want := []int32{10, 11, 12, 13, 14, 15, 32, 33}
	for i, w := range want {
		if keys[i] != w {
			t.Fatalf("after delete, keys = %v..., want prefix %v", keys[:len(want)], want)
		}
	}
}

func TestTreeSize(t *testing.T) {
	tr := NewDefault[int64, *int64]()
	if tr.TreeSize() != 0 {
		t.Errorf("empty TreeSize = %d, want 0", tr.TreeSize())
	}
	v := int64(1)
	tr.Insert(1, &v)
	one := tr.TreeSize()
	if one <= 0 {
		t.Fatalf("TreeSize after one insert = %d", one)
	}
	for i := int64(2); i <= 10000; i++ {
		tr.Insert(i, &v)
	}
	if tr.TreeSize() <= one {
		t.Errorf("TreeSize did not grow: %d", tr.TreeSize())
	}
}
