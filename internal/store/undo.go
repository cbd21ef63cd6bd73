package store

import (
	"github.com/blitzdb/tpccbench/internal/tpcc"
)

// Undo collects typed entries while a transaction mutates the store:
// prior-value copies for updated rows and insertion markers for rows that
// must be removed again. ApplyUndo replays the entries in reverse.
// Transactions only record undo when the caller passes a non-nil
// double-pointer; read-only transactions skip it entirely.
type Undo struct {
	entries []undoEntry

	// Dedup sets so a row mutated twice in one transaction keeps its
	// oldest copy.
	savedWarehouses map[*tpcc.Warehouse]struct{}
	savedDistricts  map[*tpcc.District]struct{}
	savedCustomers  map[*Tuple[tpcc.Customer]]struct{}
	savedStock      map[*Tuple[tpcc.Stock]]struct{}
}

type undoKind int

const (
	undoModifyWarehouse undoKind = iota
	undoModifyDistrict
	undoModifyCustomer
	undoModifyStock
	undoModifyOrder
	undoModifyOrderLine
	undoInsertOrder
	undoInsertNewOrder
	undoInsertOrderLine
	undoInsertHistory
	undoDeleteNewOrder
)

type undoEntry struct {
	kind undoKind

	warehouse     *tpcc.Warehouse
	warehouseCopy tpcc.Warehouse
	district      *tpcc.District
	districtCopy  tpcc.District
	customer      *Tuple[tpcc.Customer]
	customerCopy  tpcc.Customer
	stock         *Tuple[tpcc.Stock]
	stockCopy     tpcc.Stock
	order         *tpcc.Order
	orderCopy     tpcc.Order
	orderLine     *Tuple[tpcc.OrderLine]
	orderLineCopy tpcc.OrderLine
	newOrder      tpcc.NewOrder
}

func newUndo() *Undo {
	return &Undo{
		savedWarehouses: make(map[*tpcc.Warehouse]struct{}),
		savedDistricts:  make(map[*tpcc.District]struct{}),
		savedCustomers:  make(map[*Tuple[tpcc.Customer]]struct{}),
		savedStock:      make(map[*Tuple[tpcc.Stock]]struct{}),
	}
}

// allocateUndo lazily allocates a buffer behind the caller's pointer.
func allocateUndo(undo **Undo) *Undo {
	if undo == nil {
		return nil
	}
	if *undo == nil {
		*undo = newUndo()
	}
	return *undo
}

func (u *Undo) saveWarehouse(w *tpcc.Warehouse) {
	if u == nil {
		return
	}
	if _, ok := u.savedWarehouses[w]; ok {
		return
	}
	u.savedWarehouses[w] = struct{}{}
	u.entries = append(u.entries, undoEntry{kind: undoModifyWarehouse, warehouse: w, warehouseCopy: *w})
}

func (u *Undo) saveDistrict(d *tpcc.District) {
	if u == nil {
		return
	}
	if _, ok := u.savedDistricts[d]; ok {
		return
	}
	u.savedDistricts[d] = struct{}{}
	u.entries = append(u.entries, undoEntry{kind: undoModifyDistrict, district: d, districtCopy: *d})
}

// saveCustomer snapshots the resident row of t; the caller promotes before
// mutating, so t is always resident here.
func (u *Undo) saveCustomer(t *Tuple[tpcc.Customer]) {
	if u == nil {
		return
	}
	if _, ok := u.savedCustomers[t]; ok {
		return
	}
	u.savedCustomers[t] = struct{}{}
	u.entries = append(u.entries, undoEntry{kind: undoModifyCustomer, customer: t, customerCopy: *t.row})
}

func (u *Undo) saveStock(t *Tuple[tpcc.Stock]) {
	if u == nil {
		return
	}
	if _, ok := u.savedStock[t]; ok {
		return
	}
	u.savedStock[t] = struct{}{}
	u.entries = append(u.entries, undoEntry{kind: undoModifyStock, stock: t, stockCopy: *t.row})
}

func (u *Undo) saveOrder(o *tpcc.Order) {
	if u == nil {
		return
	}
	u.entries = append(u.entries, undoEntry{kind: undoModifyOrder, order: o, orderCopy: *o})
}

func (u *Undo) saveOrderLine(t *Tuple[tpcc.OrderLine]) {
	if u == nil {
		return
	}
	u.entries = append(u.entries, undoEntry{kind: undoModifyOrderLine, orderLine: t, orderLineCopy: *t.row})
}

func (u *Undo) insertedOrder(o *tpcc.Order) {
	if u == nil {
		return
	}
	u.entries = append(u.entries, undoEntry{kind: undoInsertOrder, order: o})
}

func (u *Undo) insertedNewOrder(no *tpcc.NewOrder) {
	if u == nil {
		return
	}
	u.entries = append(u.entries, undoEntry{kind: undoInsertNewOrder, newOrder: *no})
}

func (u *Undo) insertedOrderLine(t *Tuple[tpcc.OrderLine]) {
	if u == nil {
		return
	}
	// Copy the identity fields now; the tuple may be evicted before a
	// caller-driven rollback runs.
	u.entries = append(u.entries, undoEntry{kind: undoInsertOrderLine, orderLine: t, orderLineCopy: *t.row})
}

func (u *Undo) insertedHistory() {
	if u == nil {
		return
	}
	u.entries = append(u.entries, undoEntry{kind: undoInsertHistory})
}

func (u *Undo) deletedNewOrder(no tpcc.NewOrder) {
	if u == nil {
		return
	}
	u.entries = append(u.entries, undoEntry{kind: undoDeleteNewOrder, newOrder: no})
}

// ApplyUndo rolls the store back by replaying undo entries newest first,
// then discards the buffer.
func (s *Store) ApplyUndo(u *Undo) {
	for i := len(u.entries) - 1; i >= 0; i-- {
		e := &u.entries[i]
		switch e.kind {
		case undoModifyWarehouse:
			*e.warehouse = e.warehouseCopy
		case undoModifyDistrict:
			*e.district = e.districtCopy
		case undoModifyCustomer:
			s.restoreCustomer(e.customer, &e.customerCopy)
		case undoModifyStock:
			s.restoreStock(e.stock, &e.stockCopy)
		case undoModifyOrder:
			*e.order = e.orderCopy
		case undoModifyOrderLine:
			s.restoreOrderLine(e.orderLine, &e.orderLineCopy)
		case undoInsertOrder:
			o := e.order
			s.orders.Delete(tpcc.OrderKey(o.WID, o.DID, o.ID))
			s.ordersByCustomer.Delete(tpcc.OrderByCustomerKey(o.WID, o.DID, o.CID, o.ID))
			s.stat.OrderMem -= orderRowBytes
		case undoInsertNewOrder:
			no := e.newOrder
			s.newOrders.Delete(&no)
			s.stat.NewOrderMem -= newOrderRowBytes
		case undoInsertOrderLine:
			row := &e.orderLineCopy
			s.orderLines.Delete(tpcc.OrderLineKey(row.WID, row.DID, row.OID, row.Number))
			if e.orderLine.row != nil {
				s.stat.OrderLineMem -= orderLineRowBytes
			}
		case undoInsertHistory:
			s.history = s.history[:len(s.history)-1]
			s.stat.HistoryMem -= historyRowBytes
		case undoDeleteNewOrder:
			s.InsertNewOrder(e.newOrder.WID, e.newOrder.DID, e.newOrder.OID)
		}
	}
	s.FreeUndo(u)
}

// FreeUndo discards the buffer after a commit.
func (s *Store) FreeUndo(u *Undo) {
	u.entries = nil
	u.savedWarehouses = nil
	u.savedDistricts = nil
	u.savedCustomers = nil
	u.savedStock = nil
}

// restoreCustomer writes the saved copy back; if the tuple was evicted
// after the snapshot the restore re-promotes it.
func (s *Store) restoreCustomer(t *Tuple[tpcc.Customer], saved *tpcc.Customer) {
	if t.row == nil {
		cp := *saved
		t.row = &cp
		s.stat.CustomerMem += customerRowBytes
		return
	}
	*t.row = *saved
}

func (s *Store) restoreStock(t *Tuple[tpcc.Stock], saved *tpcc.Stock) {
	if t.row == nil {
		cp := *saved
		t.row = &cp
		s.stat.StockMem += stockRowBytes
		return
	}
	*t.row = *saved
}

func (s *Store) restoreOrderLine(t *Tuple[tpcc.OrderLine], saved *tpcc.OrderLine) {
	if t.row == nil {
		cp := *saved
		t.row = &cp
		s.stat.OrderLineMem += orderLineRowBytes
		return
	}
	*t.row = *saved
}
