package store

import (
	"github.com/blitzdb/tpccbench/internal/tpcc"
)

// StockLevel counts the distinct items among the district's last twenty
// orders whose stock quantity sits below threshold. Read-only.
func (s *Store) StockLevel(wid, did, threshold int32) int32 {
	d := s.FindDistrict(wid, did)
	nextOID := d.NextOID

	// Collect distinct item ids from orders [next_o_id-20, next_o_id-1].
	items := make(map[int32]struct{})
	low := nextOID - tpcc.StockLevelOrders
	if low < 1 {
		low = 1
	}
	for oid := low; oid < nextOID; oid++ {
		for n := int32(1); ; n++ {
			ol := s.FindOrderLine(wid, did, oid, n)
			if ol == nil {
				break
			}
			items[ol.IID] = struct{}{}
		}
	}

	var count int32
	for iid := range items {
		st := s.FindStock(wid, iid)
		if st != nil && st.Quantity < threshold {
			count++
		}
	}
	return count
}
