package store

import (
	"fmt"

	"github.com/blitzdb/tpccbench/internal/tpcc"
)

// OrderStatus reports the customer's balance and their most recent order
// with all its lines. Read-only: evicted rows are materialized into
// scratch, never promoted.
func (s *Store) OrderStatus(wid, did, cid int32, out *tpcc.OrderStatusOutput) {
	t := s.findCustomerTuple(wid, did, cid)
	if t == nil {
		panic(fmt.Sprintf("store: order-status for unknown customer (%d, %d, %d)", wid, did, cid))
	}
	s.orderStatus(t, out)
}

// OrderStatusByName selects the customer by last name under the ceil(n/2)
// rule.
func (s *Store) OrderStatusByName(wid, did int32, cLast string, out *tpcc.OrderStatusOutput) {
	t := s.findCustomerTupleByName(wid, did, cLast)
	if t == nil {
		panic(fmt.Sprintf("store: order-status for unknown customer name (%d, %d, %q)", wid, did, cLast))
	}
	s.orderStatus(t, out)
}

func (s *Store) orderStatus(t *Tuple[tpcc.Customer], out *tpcc.OrderStatusOutput) {
	c := s.customerTierRef().load(t, &s.custScratch)
	out.CustomerID = c.ID
	out.CustomerFirst = c.First
	out.CustomerMiddle = c.Middle
	out.CustomerLast = c.Last
	out.Balance = c.Balance

	o := s.FindLastOrderByCustomer(c.WID, c.DID, c.ID)
	out.Lines = out.Lines[:0]
	if o == nil {
		out.OrderID = 0
		out.CarrierID = 0
		out.EntryDate = ""
		return
	}
	out.OrderID = o.ID
	out.CarrierID = o.CarrierID
	out.EntryDate = o.EntryDate

	for n := int32(1); n <= o.OLCnt; n++ {
		ol := s.FindOrderLine(o.WID, o.DID, o.ID, n)
		if ol == nil {
			panic(fmt.Sprintf("store: order (%d, %d, %d) missing line %d", o.WID, o.DID, o.ID, n))
		}
		out.Lines = append(out.Lines, tpcc.OrderStatusLine{
			ItemID:       ol.IID,
			SupplyWID:    ol.SupplyWID,
			Quantity:     ol.Quantity,
			Amount:       ol.Amount,
			DeliveryDate: ol.DeliveryDate,
		})
	}
}
