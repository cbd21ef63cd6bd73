package store

import (
	"github.com/blitzdb/tpccbench/internal/btree"
	"github.com/blitzdb/tpccbench/internal/tpcc"
)

// The eviction engine runs at transaction commit points (and right after
// mount), never in the middle of a transaction: rows a transaction has
// pinned stay resident until it finishes, so borrowed references and undo
// copies cannot be invalidated underneath it.
//
// Victims are picked in a deterministic round-robin over the cold tables
// {stock, customer, orderline}; within a table, the next resident tuple by
// ascending primary key from a wrapping cursor.

// enforceBudget evicts until the resident footprint fits the budget.
func (s *Store) enforceBudget() {
	if s.memoryBudget <= 0 || s.stockTier == nil || !s.stockTier.mounted {
		return
	}
	evicted := 0
	for s.MemoryBytes() > s.memoryBudget {
		if !s.evictOne() {
			if evicted == 0 {
				s.log.Warn("memory budget unreachable, nothing left to evict",
					"budget", s.memoryBudget, "resident", s.MemoryBytes())
			}
			break
		}
		evicted++
	}
	if evicted > 0 {
		s.stockTier.flush()
		s.customerTier.flush()
		s.orderLineTier.flush()
		s.refreshDiskStat()
	}
}

// evictOne spills the next victim. It returns false once every cold-table
// tuple is already evicted.
func (s *Store) evictOne() bool {
	for attempt := 0; attempt < 3; attempt++ {
		table := s.evictNext % 3
		s.evictNext++
		switch table {
		case 0:
			if s.evictNextStock() {
				return true
			}
		case 1:
			if s.evictNextCustomer() {
				return true
			}
		case 2:
			if s.evictNextOrderLine() {
				return true
			}
		}
	}
	return false
}

func (s *Store) evictNextStock() bool {
	victim, key, ok := nextResident(s.stock, s.stockCursor)
	if !ok {
		return false
	}
	s.stockTier.evict(victim)
	s.stat.StockMem -= stockRowBytes
	s.stockCursor = key + 1
	return true
}

func (s *Store) evictNextCustomer() bool {
	victim, key, ok := nextResident(s.customers, s.customerCursor)
	if !ok {
		return false
	}
	s.customerTier.evict(victim)
	s.stat.CustomerMem -= customerRowBytes
	s.customerCursor = key + 1
	return true
}

func (s *Store) evictNextOrderLine() bool {
	victim, key, ok := nextResident(s.orderLines, s.orderLineCursor)
	if !ok {
		return false
	}
	s.orderLineTier.evict(victim)
	s.stat.OrderLineMem -= orderLineRowBytes
	s.orderLineCursor = key + 1
	return true
}

// nextResident finds the first resident tuple at or after cursor, wrapping
// to the smallest key once.
func nextResident[K int32 | int64, R any](tree *btree.Tree[K, *Tuple[R]], cursor K) (*Tuple[R], K, bool) {
	var victim *Tuple[R]
	var key K
	found := false
	scan := func(from K) {
		tree.AscendGreaterOrEqual(from, func(k K, t *Tuple[R]) bool {
			if t.Resident() {
				victim, key, found = t, k, true
				return false
			}
			return true
		})
	}
	scan(cursor)
	if !found && cursor > 0 {
		scan(0)
	}
	return victim, key, found
}

// promoteCustomer re-materializes an evicted customer for mutation and
// accounts the regained memory.
func (s *Store) promoteCustomer(t *Tuple[tpcc.Customer]) *tpcc.Customer {
	row, promoted := s.customerTierRef().pin(t)
	if promoted {
		s.stat.CustomerMem += customerRowBytes
	}
	return row
}

func (s *Store) promoteStock(t *Tuple[tpcc.Stock]) *tpcc.Stock {
	row, promoted := s.stockTierRef().pin(t)
	if promoted {
		s.stat.StockMem += stockRowBytes
	}
	return row
}

func (s *Store) promoteOrderLine(t *Tuple[tpcc.OrderLine]) *tpcc.OrderLine {
	row, promoted := s.orderLineTierRef().pin(t)
	if promoted {
		s.stat.OrderLineMem += orderLineRowBytes
	}
	return row
}
