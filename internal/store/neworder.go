package store

import (
	"strings"

	"github.com/blitzdb/tpccbench/internal/tpcc"
)

// NewOrder executes the New-Order transaction. It returns false when an
// item id is invalid; in that case nothing has been mutated and the output
// status carries the rollback reason. When undo is non-nil, every mutation
// is recorded so the caller can roll the transaction back.
func (s *Store) NewOrder(wid, did, cid int32, items []tpcc.NewOrderItem,
	now string, out *tpcc.NewOrderOutput, undo **Undo) bool {

	// Validate all items before touching any table: the required rollback
	// path must leave the store untouched.
	itemRows := make([]*tpcc.Item, len(items))
	for i := range items {
		itemRows[i] = s.FindItem(items[i].ItemID)
		if itemRows[i] == nil {
			out.Status = tpcc.InvalidItemStatus
			return false
		}
	}

	u := allocateUndo(undo)

	w := s.FindWarehouse(wid)
	d := s.FindDistrict(wid, did)
	custTuple := s.findCustomerTuple(wid, did, cid)
	cust := s.customerTierRef().load(custTuple, &s.custScratch)

	out.WarehouseTax = w.Tax
	out.DistrictTax = d.Tax
	out.OrderID = d.NextOID
	out.CustomerLast = cust.Last
	out.CustomerCredit = cust.Credit
	out.CustomerDiscount = cust.Discount
	out.EntryDate = now
	out.Status = ""

	u.saveDistrict(d)
	d.NextOID++

	allLocal := true
	for i := range items {
		if items[i].SupplyWID != wid {
			allLocal = false
			break
		}
	}

	order := s.InsertOrder(tpcc.Order{
		ID:        out.OrderID,
		CID:       cid,
		DID:       did,
		WID:       wid,
		CarrierID: tpcc.NullCarrierID,
		OLCnt:     int32(len(items)),
		AllLocal:  allLocal,
		EntryDate: now,
	})
	u.insertedOrder(order)
	u.insertedNewOrder(s.InsertNewOrder(wid, did, out.OrderID))

	out.Lines = make([]tpcc.NewOrderLine, len(items))
	var total int64
	for i := range items {
		item := itemRows[i]
		stockTuple := s.findStockTuple(items[i].SupplyWID, items[i].ItemID)
		stock := s.promoteStock(stockTuple)
		u.saveStock(stockTuple)

		if stock.Quantity >= items[i].Quantity+tpcc.MinStockQuantity {
			stock.Quantity -= items[i].Quantity
		} else {
			stock.Quantity = stock.Quantity - items[i].Quantity + 91
		}
		stock.YTD += items[i].Quantity
		stock.OrderCnt++
		if items[i].SupplyWID != wid {
			stock.RemoteCnt++
		}

		amount := int64(items[i].Quantity) * item.Price
		total += amount

		line := &out.Lines[i]
		line.Name = item.Name
		line.StockQuantity = stock.Quantity
		line.Price = item.Price
		line.Amount = amount
		if strings.Contains(item.Data, tpcc.OriginalString) &&
			strings.Contains(stock.Data, tpcc.OriginalString) {
			line.BrandGeneric = 'B'
		} else {
			line.BrandGeneric = 'G'
		}

		olTuple := s.InsertOrderLine(tpcc.OrderLine{
			OID:       out.OrderID,
			DID:       did,
			WID:       wid,
			Number:    int32(i + 1),
			IID:       items[i].ItemID,
			SupplyWID: items[i].SupplyWID,
			Quantity:  items[i].Quantity,
			Amount:    amount,
			DistInfo:  stock.Dist[did-1],
		})
		u.insertedOrderLine(olTuple)
	}

	// total * (1 - c_discount) * (1 + w_tax + d_tax), in fixed point.
	discounted := total * int64(10000-cust.Discount)
	out.TotalAmount = discounted * int64(10000+w.Tax+d.Tax) / (10000 * 10000)

	s.enforceBudget()
	return true
}
