package store

import (
	"fmt"
	"os"
	"path/filepath"

	gbtree "github.com/google/btree"
	"github.com/gofrs/flock"

	"github.com/blitzdb/tpccbench/internal/blitz"
	"github.com/blitzdb/tpccbench/internal/btree"
	"github.com/blitzdb/tpccbench/internal/tpcc"
	"github.com/blitzdb/tpccbench/pkg/logging"
)

// Options configures a Store.
type Options struct {
	// MemoryBudget is the resident byte budget; 0 disables eviction.
	MemoryBudget int64
	// BlockSize overrides the cold-tier block size.
	BlockSize int
	// InternalFanout and LeafFanout override the index fanouts.
	InternalFanout int
	LeafFanout     int

	Logger *logging.Logger
}

// byNameEntry is one entry of the customer-by-name secondary index. The
// immutable identity fields are copied in so the index stays searchable
// when the customer row is evicted.
type byNameEntry struct {
	wid   int32
	did   int32
	last  string
	first string
	cid   int32
	cust  *Tuple[tpcc.Customer]
}

func byNameLess(a, b byNameEntry) bool {
	if a.wid != b.wid {
		return a.wid < b.wid
	}
	if a.did != b.did {
		return a.did < b.did
	}
	if a.last != b.last {
		return a.last < b.last
	}
	if a.first != b.first {
		return a.first < b.first
	}
	return a.cid < b.cid
}

func newOrderLess(a, b *tpcc.NewOrder) bool {
	return tpcc.NewOrderKey(a.WID, a.DID, a.OID) < tpcc.NewOrderKey(b.WID, b.DID, b.OID)
}

// gbtreeDegree sizes the ordered-set containers backing the secondary
// structures.
const gbtreeDegree = 16

// Store owns every table, index and the cold-tier codecs. It is not safe
// for concurrent use; one driver issues transactions sequentially.
type Store struct {
	log *logging.Logger

	// items is dense by i_id; slot 0 is unused.
	items []tpcc.Item

	warehouses       *btree.Tree[int32, *tpcc.Warehouse]
	districts        *btree.Tree[int32, *tpcc.District]
	stock            *btree.Tree[int32, *Tuple[tpcc.Stock]]
	customers        *btree.Tree[int32, *Tuple[tpcc.Customer]]
	customersByName  *gbtree.BTreeG[byNameEntry]
	orders           *btree.Tree[int64, *tpcc.Order]
	ordersByCustomer *btree.Tree[int64, *tpcc.Order]
	orderLines       *btree.Tree[int64, *Tuple[tpcc.OrderLine]]
	newOrders        *gbtree.BTreeG[*tpcc.NewOrder]
	history          []*tpcc.History

	stat         Stat
	memoryBudget int64
	blockSize    int

	stockTier     *tier[tpcc.Stock]
	customerTier  *tier[tpcc.Customer]
	orderLineTier *tier[tpcc.OrderLine]

	dirLock *flock.Flock

	// Eviction round-robin state.
	evictNext       int
	stockCursor     int32
	customerCursor  int32
	orderLineCursor int64

	// Scratch buffers for borrowed reads of evicted rows.
	stockScratch tpcc.Stock
	custScratch  tpcc.Customer
	olScratch    tpcc.OrderLine
}

// New creates an empty store.
func New(opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = logging.GetDefault().Component("store")
	}
	ifan := opts.InternalFanout
	lfan := opts.LeafFanout
	if ifan == 0 {
		ifan = btree.DefaultInternalFanout
	}
	if lfan == 0 {
		lfan = btree.DefaultLeafFanout
	}
	return &Store{
		log:              log,
		warehouses:       btree.New[int32, *tpcc.Warehouse](ifan, lfan),
		districts:        btree.New[int32, *tpcc.District](ifan, lfan),
		stock:            btree.New[int32, *Tuple[tpcc.Stock]](ifan, lfan),
		customers:        btree.New[int32, *Tuple[tpcc.Customer]](ifan, lfan),
		customersByName:  gbtree.NewG(gbtreeDegree, byNameLess),
		orders:           btree.New[int64, *tpcc.Order](ifan, lfan),
		ordersByCustomer: btree.New[int64, *tpcc.Order](ifan, lfan),
		orderLines:       btree.New[int64, *Tuple[tpcc.OrderLine]](ifan, lfan),
		newOrders:        gbtree.NewG(gbtreeDegree, newOrderLess),
		memoryBudget:     opts.MemoryBudget,
		blockSize:        opts.BlockSize,
	}
}

// Stat returns the accounting block.
func (s *Store) Stat() *Stat { return &s.stat }

// TreeSize returns the bytes allocated for primary index nodes.
func (s *Store) TreeSize() int64 {
	return s.warehouses.TreeSize() + s.districts.TreeSize() +
		s.stock.TreeSize() + s.customers.TreeSize() +
		s.orders.TreeSize() + s.orderLines.TreeSize()
}

// MemoryBytes returns the full resident footprint the eviction engine
// budgets against: row payloads plus index nodes.
func (s *Store) MemoryBytes() int64 {
	return s.stat.TotalMem() + s.TreeSize()
}

// DiskBytes returns the cold-tier footprint.
func (s *Store) DiskBytes() int64 { return s.stat.TotalDisk() }

// ReserveItems pre-sizes the item table.
func (s *Store) ReserveItems(n int) {
	if s.items == nil {
		s.items = make([]tpcc.Item, 1, n+1)
	}
}

// InsertItem copies item into the item table. Items load in dense i_id
// order.
func (s *Store) InsertItem(item tpcc.Item) {
	if s.items == nil {
		s.items = make([]tpcc.Item, 1, tpcc.NumItems+1)
	}
	if int32(len(s.items)) != item.ID {
		panic(fmt.Sprintf("store: item %d loaded out of order (next slot %d)", item.ID, len(s.items)))
	}
	s.items = append(s.items, item)
	s.stat.ItemMem += itemRowBytes
}

// FindItem returns the item or nil for an unknown id.
func (s *Store) FindItem(iid int32) *tpcc.Item {
	if iid < 1 || int(iid) >= len(s.items) {
		return nil
	}
	return &s.items[iid]
}

// InsertWarehouse copies warehouse into the store.
func (s *Store) InsertWarehouse(w tpcc.Warehouse) {
	row := &w
	if !s.warehouses.Insert(w.ID, row) {
		panic(fmt.Sprintf("store: duplicate warehouse %d", w.ID))
	}
	s.stat.WarehouseMem += warehouseRowBytes
}

func (s *Store) FindWarehouse(wid int32) *tpcc.Warehouse {
	w, _ := s.warehouses.Find(wid)
	return w
}

// InsertDistrict copies district into the store.
func (s *Store) InsertDistrict(d tpcc.District) {
	row := &d
	if !s.districts.Insert(tpcc.DistrictKey(d.WID, d.ID), row) {
		panic(fmt.Sprintf("store: duplicate district (%d, %d)", d.WID, d.ID))
	}
	s.stat.DistrictMem += districtRowBytes
}

func (s *Store) FindDistrict(wid, did int32) *tpcc.District {
	d, _ := s.districts.Find(tpcc.DistrictKey(wid, did))
	return d
}

// InsertStock copies stock into the store under a fresh tuple handle.
func (s *Store) InsertStock(st tpcc.Stock) {
	key := tpcc.StockKey(st.WID, st.IID)
	row := st
	t := &Tuple[tpcc.Stock]{row: &row, tid: uint64(key)}
	if !s.stock.Insert(key, t) {
		panic(fmt.Sprintf("store: duplicate stock (%d, %d)", st.WID, st.IID))
	}
	s.stat.StockMem += stockRowBytes
}

func (s *Store) findStockTuple(wid, iid int32) *Tuple[tpcc.Stock] {
	t, _ := s.stock.Find(tpcc.StockKey(wid, iid))
	return t
}

// FindStock returns a borrowed stock row, materializing it if evicted. The
// reference is valid until the next evicted-stock read.
func (s *Store) FindStock(wid, iid int32) *tpcc.Stock {
	t := s.findStockTuple(wid, iid)
	if t == nil {
		return nil
	}
	return s.stockTierRef().load(t, &s.stockScratch)
}

// InsertCustomer copies customer into the store and indexes it by name.
func (s *Store) InsertCustomer(c tpcc.Customer) {
	key := tpcc.CustomerKey(c.WID, c.DID, c.ID)
	row := c
	t := &Tuple[tpcc.Customer]{row: &row, tid: uint64(key)}
	if !s.customers.Insert(key, t) {
		panic(fmt.Sprintf("store: duplicate customer (%d, %d, %d)", c.WID, c.DID, c.ID))
	}
	s.customersByName.ReplaceOrInsert(byNameEntry{
		wid: c.WID, did: c.DID, last: c.Last, first: c.First, cid: c.ID, cust: t,
	})
	s.stat.CustomerMem += customerRowBytes
}

func (s *Store) findCustomerTuple(wid, did, cid int32) *Tuple[tpcc.Customer] {
	t, _ := s.customers.Find(tpcc.CustomerKey(wid, did, cid))
	return t
}

// FindCustomer returns a borrowed customer row, materializing it if
// evicted.
func (s *Store) FindCustomer(wid, did, cid int32) *tpcc.Customer {
	t := s.findCustomerTuple(wid, did, cid)
	if t == nil {
		return nil
	}
	return s.customerTierRef().load(t, &s.custScratch)
}

// findCustomerTupleByName scans all customers matching (w_id, d_id, last)
// in ascending first-name order and picks the ceil(n/2)-th, per the
// by-name selection rule.
func (s *Store) findCustomerTupleByName(wid, did int32, last string) *Tuple[tpcc.Customer] {
	var matches []*Tuple[tpcc.Customer]
	pivot := byNameEntry{wid: wid, did: did, last: last}
	s.customersByName.AscendGreaterOrEqual(pivot, func(e byNameEntry) bool {
		if e.wid != wid || e.did != did || e.last != last {
			return false
		}
		matches = append(matches, e.cust)
		return true
	})
	if len(matches) == 0 {
		return nil
	}
	return matches[(len(matches)+1)/2-1]
}

// InsertOrder copies order into the store and returns the stored row.
func (s *Store) InsertOrder(o tpcc.Order) *tpcc.Order {
	row := &o
	if !s.orders.Insert(tpcc.OrderKey(o.WID, o.DID, o.ID), row) {
		panic(fmt.Sprintf("store: duplicate order (%d, %d, %d)", o.WID, o.DID, o.ID))
	}
	if !s.ordersByCustomer.Insert(tpcc.OrderByCustomerKey(o.WID, o.DID, o.CID, o.ID), row) {
		panic(fmt.Sprintf("store: duplicate order-by-customer (%d, %d, %d, %d)", o.WID, o.DID, o.CID, o.ID))
	}
	s.stat.OrderMem += orderRowBytes
	return row
}

func (s *Store) FindOrder(wid, did, oid int32) *tpcc.Order {
	o, _ := s.orders.Find(tpcc.OrderKey(wid, did, oid))
	return o
}

// FindLastOrderByCustomer returns the customer's most recent order, or nil
// if they have none.
func (s *Store) FindLastOrderByCustomer(wid, did, cid int32) *tpcc.Order {
	ceiling := tpcc.OrderByCustomerKey(wid, did, cid, tpcc.MaxOrderID)
	floor := tpcc.OrderByCustomerKey(wid, did, cid, 0)
	k, o, ok := s.ordersByCustomer.LastLessThan(ceiling)
	if !ok || k < floor {
		return nil
	}
	return o
}

// InsertOrderLine copies the order line into the store under a fresh
// tuple handle.
func (s *Store) InsertOrderLine(ol tpcc.OrderLine) *Tuple[tpcc.OrderLine] {
	key := tpcc.OrderLineKey(ol.WID, ol.DID, ol.OID, ol.Number)
	row := ol
	t := &Tuple[tpcc.OrderLine]{row: &row, tid: uint64(key)}
	if !s.orderLines.Insert(key, t) {
		panic(fmt.Sprintf("store: duplicate order line (%d, %d, %d, %d)", ol.WID, ol.DID, ol.OID, ol.Number))
	}
	s.stat.OrderLineMem += orderLineRowBytes
	return t
}

func (s *Store) findOrderLineTuple(wid, did, oid, number int32) *Tuple[tpcc.OrderLine] {
	t, _ := s.orderLines.Find(tpcc.OrderLineKey(wid, did, oid, number))
	return t
}

// FindOrderLine returns a borrowed order-line row, materializing it if
// evicted.
func (s *Store) FindOrderLine(wid, did, oid, number int32) *tpcc.OrderLine {
	t := s.findOrderLineTuple(wid, did, oid, number)
	if t == nil {
		return nil
	}
	return s.orderLineTierRef().load(t, &s.olScratch)
}

// InsertNewOrder records an undelivered order marker.
func (s *Store) InsertNewOrder(wid, did, oid int32) *tpcc.NewOrder {
	no := &tpcc.NewOrder{WID: wid, DID: did, OID: oid}
	if _, existed := s.newOrders.ReplaceOrInsert(no); existed {
		panic(fmt.Sprintf("store: duplicate new-order (%d, %d, %d)", wid, did, oid))
	}
	s.stat.NewOrderMem += newOrderRowBytes
	return no
}

func (s *Store) FindNewOrder(wid, did, oid int32) *tpcc.NewOrder {
	no, ok := s.newOrders.Get(&tpcc.NewOrder{WID: wid, DID: did, OID: oid})
	if !ok {
		return nil
	}
	return no
}

// InsertHistory appends a payment log row.
func (s *Store) InsertHistory(h tpcc.History) *tpcc.History {
	row := &h
	s.history = append(s.history, row)
	s.stat.HistoryMem += historyRowBytes
	return row
}

// History returns the append-only payment log.
func (s *Store) History() []*tpcc.History { return s.history }

// Pre-mount every tuple is resident, so loads never reach a decompressor;
// these converter-only tiers serve reads until Mount installs real ones.
var (
	residentStockTier     = &tier[tpcc.Stock]{table: "stock", toRow: stockToRow, fromRow: stockFromRow}
	residentCustomerTier  = &tier[tpcc.Customer]{table: "customer", toRow: customerToRow, fromRow: customerFromRow}
	residentOrderLineTier = &tier[tpcc.OrderLine]{table: "orderline", toRow: orderLineToRow, fromRow: orderLineFromRow}
)

func (s *Store) stockTierRef() *tier[tpcc.Stock] {
	if s.stockTier == nil {
		return residentStockTier
	}
	return s.stockTier
}

func (s *Store) customerTierRef() *tier[tpcc.Customer] {
	if s.customerTier == nil {
		return residentCustomerTier
	}
	return s.customerTier
}

func (s *Store) orderLineTierRef() *tier[tpcc.OrderLine] {
	if s.orderLineTier == nil {
		return residentOrderLineTier
	}
	return s.orderLineTier
}

// Mount trains the compressor of every cold table over its loaded rows,
// writes the initial compressed batches and records each row's locator.
// Afterwards rows can be evicted; the memory budget is enforced
// immediately.
func (s *Store) Mount(dataDir, modelID string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	s.dirLock = flock.New(filepath.Join(dataDir, "tpcc.lock"))
	locked, err := s.dirLock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data directory: %w", err)
	}
	if !locked {
		return fmt.Errorf("data directory %s is locked by another process", dataDir)
	}

	st, err := mountTier(dataDir, modelID, "stock", s.blockSize, stockSchema(),
		stockToRow, stockFromRow, stockRowBytes,
		func(yield func(*tpcc.Stock, uint64) bool) {
			s.stock.Scan(func(k int32, t *Tuple[tpcc.Stock]) bool {
				return yield(t.row, t.tid)
			})
		},
	)
	if err != nil {
		return err
	}
	s.stockTier = st

	ct, err := mountTier(dataDir, modelID, "customer", s.blockSize, customerSchema(),
		customerToRow, customerFromRow, customerRowBytes,
		func(yield func(*tpcc.Customer, uint64) bool) {
			s.customers.Scan(func(k int32, t *Tuple[tpcc.Customer]) bool {
				return yield(t.row, t.tid)
			})
		},
	)
	if err != nil {
		return err
	}
	s.customerTier = ct

	ot, err := mountTier(dataDir, modelID, "orderline", s.blockSize, orderLineSchema(),
		orderLineToRow, orderLineFromRow, orderLineRowBytes,
		func(yield func(*tpcc.OrderLine, uint64) bool) {
			s.orderLines.Scan(func(k int64, t *Tuple[tpcc.OrderLine]) bool {
				return yield(t.row, t.tid)
			})
		},
	)
	if err != nil {
		return err
	}
	s.orderLineTier = ot

	s.refreshDiskStat()
	s.enforceBudget()
	return nil
}

// mountTier builds one cold table's compressor/decompressor pair: train,
// then compress every loaded row and record its locator.
func mountTier[R any](
	dataDir, modelID, table string,
	blockSize int,
	schema blitz.Schema,
	toRow func(*R, blitz.Row) blitz.Row,
	fromRow func(blitz.Row, *R),
	rowBytes int64,
	scan func(yield func(row *R, tid uint64) bool),
) (*tier[R], error) {
	modelPath := filepath.Join(dataDir, fmt.Sprintf("%s_%s_model.blitz", modelID, table))
	bf, err := blitz.OpenBlockFile(modelPath + ".data")
	if err != nil {
		return nil, err
	}

	comp, err := blitz.NewCompressor(modelPath, bf, schema, blitz.Config{BlockSize: blockSize})
	if err != nil {
		bf.Close()
		return nil, err
	}

	var buf blitz.Row
	if err := comp.Learn(func(yield func(blitz.Row) bool) {
		scan(func(row *R, _ uint64) bool {
			buf = toRow(row, buf[:0])
			return yield(buf)
		})
	}); err != nil {
		bf.Close()
		return nil, fmt.Errorf("train %s compressor: %w", table, err)
	}

	dec, err := blitz.NewDecompressor(modelPath, bf, schema)
	if err != nil {
		bf.Close()
		return nil, err
	}

	tt := &tier[R]{
		table:    table,
		schema:   schema,
		bf:       bf,
		comp:     comp,
		dec:      dec,
		toRow:    toRow,
		fromRow:  fromRow,
		rowBytes: rowBytes,
	}

	var mountErr error
	scan(func(row *R, tid uint64) bool {
		tt.encBuf = tt.toRow(row, tt.encBuf[:0])
		loc, err := comp.Compress(tt.encBuf)
		if err != nil {
			mountErr = fmt.Errorf("compress %s tuple %d: %w", table, tid, err)
			return false
		}
		dec.SetLocator(tid, loc)
		return true
	})
	if mountErr != nil {
		tt.close()
		return nil, mountErr
	}
	if err := comp.Flush(); err != nil {
		tt.close()
		return nil, fmt.Errorf("seal %s mount batch: %w", table, err)
	}
	tt.mounted = true
	return tt, nil
}

func (s *Store) refreshDiskStat() {
	if s.stockTier != nil {
		s.stat.StockDisk = s.stockTier.bf.DiskBytes()
	}
	if s.customerTier != nil {
		s.stat.CustomerDisk = s.customerTier.bf.DiskBytes()
	}
	if s.orderLineTier != nil {
		s.stat.OrderLineDisk = s.orderLineTier.bf.DiskBytes()
	}
}

// Close releases block files and the data directory lock.
func (s *Store) Close() error {
	if s.stockTier != nil {
		s.stockTier.close()
	}
	if s.customerTier != nil {
		s.customerTier.close()
	}
	if s.orderLineTier != nil {
		s.orderLineTier.close()
	}
	if s.dirLock != nil {
		return s.dirLock.Unlock()
	}
	return nil
}
