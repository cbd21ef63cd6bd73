package driver

import (
	"github.com/blitzdb/tpccbench/internal/store"
	"github.com/blitzdb/tpccbench/internal/tpcc"
)

// Loader populates a store with the standard TPC-C initial database.
type Loader struct {
	gen *Generator
	now string

	items                int32
	districtsPerWarehouse int32
	customersPerDistrict int32
	newOrdersPerDistrict int32
}

// NewLoader builds a loader with the full-scale table cardinalities.
func NewLoader(gen *Generator, now string) *Loader {
	return &Loader{
		gen:                   gen,
		now:                   now,
		items:                 tpcc.NumItems,
		districtsPerWarehouse: tpcc.DistrictsPerWarehouse,
		customersPerDistrict:  tpcc.CustomersPerDistrict,
		newOrdersPerDistrict:  tpcc.InitialNewOrdersPerDistrict,
	}
}

// NewScaledLoader builds a loader with reduced cardinalities, for tests.
func NewScaledLoader(gen *Generator, now string, items, customers, newOrders int32) *Loader {
	return &Loader{
		gen:                   gen,
		now:                   now,
		items:                 items,
		districtsPerWarehouse: tpcc.DistrictsPerWarehouse,
		customersPerDistrict:  customers,
		newOrdersPerDistrict:  newOrders,
	}
}

// Items returns the loaded item count.
func (l *Loader) Items() int32 { return l.items }

// CustomersPerDistrict returns the loaded per-district customer count.
func (l *Loader) CustomersPerDistrict() int32 { return l.customersPerDistrict }

// MakeItems fills the item table.
func (l *Loader) MakeItems(s *store.Store) {
	s.ReserveItems(int(l.items))
	for i := int32(1); i <= l.items; i++ {
		s.InsertItem(tpcc.Item{
			ID:      i,
			ImageID: l.gen.Number(tpcc.MinImageID, tpcc.MaxImageID),
			Price:   int64(l.gen.Number(tpcc.MinItemPrice, tpcc.MaxItemPrice)),
			Name:    l.gen.AString(14, tpcc.MaxItemName),
			Data:    l.dataString(tpcc.MinItemData, tpcc.MaxItemData),
		})
	}
}

// MakeWarehouse fills one warehouse and everything under it: stock,
// districts, customers, history, orders and the initial new-orders.
func (l *Loader) MakeWarehouse(s *store.Store, wid int32) {
	s.InsertWarehouse(tpcc.Warehouse{
		ID:      wid,
		Tax:     l.gen.Number(tpcc.MinTax, tpcc.MaxTax),
		YTD:     tpcc.InitialWarehouseYTD,
		Name:    l.gen.AString(6, 10),
		Street1: l.gen.AString(10, tpcc.MaxStreet),
		Street2: l.gen.AString(10, tpcc.MaxStreet),
		City:    l.gen.AString(10, tpcc.MaxCity),
		State:   l.gen.AString(tpcc.StateSize, tpcc.StateSize),
		Zip:     l.makeZip(),
	})

	for i := int32(1); i <= l.items; i++ {
		st := tpcc.Stock{
			IID:      i,
			WID:      wid,
			Quantity: l.gen.Number(tpcc.MinStockQuantity, tpcc.MaxStockQuantity),
			Data:     l.dataString(tpcc.MinStockData, tpcc.MaxStockData),
		}
		for d := range st.Dist {
			st.Dist[d] = l.gen.AString(tpcc.DistInfoSize, tpcc.DistInfoSize)
		}
		s.InsertStock(st)
	}

	for did := int32(1); did <= l.districtsPerWarehouse; did++ {
		l.makeDistrict(s, wid, did)
	}
}

func (l *Loader) makeDistrict(s *store.Store, wid, did int32) {
	s.InsertDistrict(tpcc.District{
		ID:      did,
		WID:     wid,
		Tax:     l.gen.Number(tpcc.MinTax, tpcc.MaxTax),
		YTD:     tpcc.InitialDistrictYTD,
		NextOID: l.customersPerDistrict + 1,
		Name:    l.gen.AString(6, 10),
		Street1: l.gen.AString(10, tpcc.MaxStreet),
		Street2: l.gen.AString(10, tpcc.MaxStreet),
		City:    l.gen.AString(10, tpcc.MaxCity),
		State:   l.gen.AString(tpcc.StateSize, tpcc.StateSize),
		Zip:     l.makeZip(),
	})

	for cid := int32(1); cid <= l.customersPerDistrict; cid++ {
		l.makeCustomer(s, wid, did, cid)
	}

	// One order per customer over a random permutation, oldest first. The
	// last newOrdersPerDistrict orders are still undelivered.
	perm := l.gen.rng.Perm(int(l.customersPerDistrict))
	for o := int32(1); o <= l.customersPerDistrict; o++ {
		delivered := o <= l.customersPerDistrict-l.newOrdersPerDistrict
		l.makeOrder(s, wid, did, o, int32(perm[o-1])+1, delivered)
		if !delivered {
			s.InsertNewOrder(wid, did, o)
		}
	}
}

func (l *Loader) makeCustomer(s *store.Store, wid, did, cid int32) {
	credit := tpcc.GoodCredit
	if l.gen.Number(1, 100) <= tpcc.CustomersWithBadCredit {
		credit = tpcc.BadCredit
	}
	var last string
	if cid <= 1000 {
		last = MakeLastName(cid - 1)
	} else {
		last = l.gen.LastName(l.customersPerDistrict)
	}
	s.InsertCustomer(tpcc.Customer{
		ID:          cid,
		DID:         did,
		WID:         wid,
		CreditLim:   tpcc.InitialCreditLim,
		Discount:    l.gen.Number(0, 5000),
		Balance:     tpcc.InitialBalance,
		YTDPayment:  tpcc.InitialYTDPayment,
		PaymentCnt:  tpcc.InitialPaymentCnt,
		DeliveryCnt: 0,
		First:       l.gen.AString(8, tpcc.MaxCustomerFirst),
		Middle:      "OE",
		Last:        last,
		Street1:     l.gen.AString(10, tpcc.MaxStreet),
		Street2:     l.gen.AString(10, tpcc.MaxStreet),
		City:        l.gen.AString(10, tpcc.MaxCity),
		State:       l.gen.AString(tpcc.StateSize, tpcc.StateSize),
		Zip:         l.makeZip(),
		Phone:       l.gen.NString(tpcc.PhoneSize, tpcc.PhoneSize),
		Since:       l.now,
		Credit:      credit,
		Data:        l.gen.AString(tpcc.MinCustomerData, tpcc.MaxCustomerData),
	})

	s.InsertHistory(tpcc.History{
		CID:    cid,
		CDID:   did,
		CWID:   wid,
		DID:    did,
		WID:    wid,
		Amount: tpcc.InitialYTDPayment,
		Date:   l.now,
		Data:   l.gen.AString(12, 24),
	})
}

func (l *Loader) makeOrder(s *store.Store, wid, did, oid, cid int32, delivered bool) {
	olCnt := l.gen.Number(tpcc.MinOLCnt, tpcc.MaxOLCnt)
	carrier := int32(tpcc.NullCarrierID)
	if delivered {
		carrier = l.gen.Number(tpcc.MinCarrierID, tpcc.MaxCarrierID)
	}
	s.InsertOrder(tpcc.Order{
		ID:        oid,
		CID:       cid,
		DID:       did,
		WID:       wid,
		CarrierID: carrier,
		OLCnt:     olCnt,
		AllLocal:  true,
		EntryDate: l.now,
	})

	for n := int32(1); n <= olCnt; n++ {
		ol := tpcc.OrderLine{
			OID:       oid,
			DID:       did,
			WID:       wid,
			Number:    n,
			IID:       l.gen.Number(1, l.items),
			SupplyWID: wid,
			Quantity:  5,
			DistInfo:  l.gen.AString(tpcc.DistInfoSize, tpcc.DistInfoSize),
		}
		if delivered {
			ol.Amount = 0
			ol.DeliveryDate = l.now
		} else {
			ol.Amount = int64(l.gen.Number(tpcc.MinOLAmount, tpcc.MaxOLAmount))
		}
		s.InsertOrderLine(ol)
	}
}

func (l *Loader) makeZip() string {
	return l.gen.NString(4, 4) + "11111"
}

// dataString draws a data field; about a tenth of them carry the
// "ORIGINAL" marker at a random position.
func (l *Loader) dataString(minLen, maxLen int32) string {
	s := l.gen.AString(minLen, maxLen)
	if l.gen.Number(1, 100) > 10 {
		return s
	}
	pos := int(l.gen.Number(0, int32(len(s)-len(tpcc.OriginalString))))
	return s[:pos] + tpcc.OriginalString + s[pos+len(tpcc.OriginalString):]
}
