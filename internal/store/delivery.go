package store

import (
	"fmt"

	"github.com/blitzdb/tpccbench/internal/tpcc"
)

// Delivery pops the oldest undelivered order of every district of the
// warehouse and delivers it: the order gets the carrier, its lines get the
// delivery date, and the customer's balance absorbs the line amounts.
// Districts with no pending order are skipped; the returned list names the
// (district, order) pairs actually delivered.
func (s *Store) Delivery(wid, carrierID int32, now string, undo **Undo) []tpcc.DeliveryOrder {
	u := allocateUndo(undo)
	delivered := make([]tpcc.DeliveryOrder, 0, tpcc.DistrictsPerWarehouse)

	for did := int32(1); did <= tpcc.DistrictsPerWarehouse; did++ {
		no, ok := s.popOldestNewOrder(wid, did)
		if !ok {
			continue
		}
		u.deletedNewOrder(no)
		oid := no.OID
		delivered = append(delivered, tpcc.DeliveryOrder{DID: did, OID: oid})

		o := s.FindOrder(wid, did, oid)
		if o == nil {
			panic(fmt.Sprintf("store: new-order (%d, %d, %d) has no order row", wid, did, oid))
		}
		u.saveOrder(o)
		o.CarrierID = carrierID

		var total int64
		for n := int32(1); n <= o.OLCnt; n++ {
			t := s.findOrderLineTuple(wid, did, oid, n)
			if t == nil {
				panic(fmt.Sprintf("store: order (%d, %d, %d) missing line %d", wid, did, oid, n))
			}
			ol := s.promoteOrderLine(t)
			u.saveOrderLine(t)
			ol.DeliveryDate = now
			total += ol.Amount
		}

		ct := s.findCustomerTuple(wid, did, o.CID)
		c := s.promoteCustomer(ct)
		u.saveCustomer(ct)
		c.Balance += total
		c.DeliveryCnt++
	}

	s.enforceBudget()
	return delivered
}

// popOldestNewOrder removes and returns the lowest-keyed NewOrder of the
// district.
func (s *Store) popOldestNewOrder(wid, did int32) (tpcc.NewOrder, bool) {
	var found *tpcc.NewOrder
	pivot := &tpcc.NewOrder{WID: wid, DID: did, OID: 0}
	s.newOrders.AscendGreaterOrEqual(pivot, func(no *tpcc.NewOrder) bool {
		if no.WID == wid && no.DID == did {
			found = no
		}
		return false
	})
	if found == nil {
		return tpcc.NewOrder{}, false
	}
	s.newOrders.Delete(found)
	s.stat.NewOrderMem -= newOrderRowBytes
	return *found, true
}
