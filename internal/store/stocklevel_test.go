package store

import (
	"fmt"
	"testing"

	"github.com/blitzdb/tpccbench/internal/tpcc"
)

func TestStockLevelCountsDistinctLowStocks(t *testing.T) {
	s := newTestStore()
	seedItems(s, 20)
	s.InsertWarehouse(tpcc.Warehouse{ID: 1, Name: "w"})
	s.InsertDistrict(tpcc.District{ID: 1, WID: 1, NextOID: 1, Name: "d"})
	for cid := int32(1); cid <= 5; cid++ {
		s.InsertCustomer(makeTestCustomer(1, 1, cid))
	}

	// Twenty synthetic orders, one line each, with distinct items whose
	// stock quantities run 10..29.
	for i := int32(1); i <= 20; i++ {
		st := tpcc.Stock{IID: i, WID: 1, Quantity: 9 + i, Data: "plain"}
		for d := range st.Dist {
			st.Dist[d] = fmt.Sprintf("%-24d", d)[:tpcc.DistInfoSize]
		}
		s.InsertStock(st)

		s.InsertOrder(tpcc.Order{ID: i, CID: (i-1)%5 + 1, DID: 1, WID: 1, OLCnt: 1, EntryDate: testNow})
		s.InsertOrderLine(tpcc.OrderLine{
			OID: i, DID: 1, WID: 1, Number: 1, IID: i, SupplyWID: 1, Quantity: 5,
		})
	}
	d := s.FindDistrict(1, 1)
	d.NextOID = 21

	// Quantities below 15 are 10..14: five items.
	if got := s.StockLevel(1, 1, 15); got != 5 {
		t.Errorf("StockLevel(15) = %d, want 5", got)
	}
	if got := s.StockLevel(1, 1, 10); got != 0 {
		t.Errorf("StockLevel(10) = %d, want 0", got)
	}
	if got := s.StockLevel(1, 1, 30); got != 20 {
		t.Errorf("StockLevel(30) = %d, want 20", got)
	}
}

func TestStockLevelDistinctItems(t *testing.T) {
	s := newTestStore()
	seedItems(s, 5)
	seedWarehouse(s, 1, 5, 3)

	// Two orders referencing the same low-stock item count it once.
	st := s.FindStock(1, 1)
	st.Quantity = 1
	for oid := int32(1); oid <= 2; oid++ {
		s.InsertOrder(tpcc.Order{ID: oid, CID: 1, DID: 1, WID: 1, OLCnt: 1, EntryDate: testNow})
		s.InsertOrderLine(tpcc.OrderLine{
			OID: oid, DID: 1, WID: 1, Number: 1, IID: 1, SupplyWID: 1, Quantity: 5,
		})
	}
	d := s.FindDistrict(1, 1)
	d.NextOID = 3

	if got := s.StockLevel(1, 1, 10); got != 1 {
		t.Errorf("StockLevel = %d, want 1 distinct item", got)
	}
}
