package store

import "github.com/blitzdb/tpccbench/internal/tpcc"

// Per-row memory footprints, mirroring the fixed-width record layouts.
// Strings are accounted at their declared maximum plus a terminator so the
// numbers stay stable as rows mutate.
const (
	itemRowBytes = 4 + 4 + 8 + (tpcc.MaxItemName + 1) + (tpcc.MaxItemData + 1)

	addressBytes = (tpcc.MaxStreet+1)*2 + (tpcc.MaxCity + 1) +
		(tpcc.StateSize + 1) + (tpcc.ZipSize + 1)

	warehouseRowBytes = 4 + 4 + 8 + 11 + addressBytes
	districtRowBytes  = 4 + 4 + 4 + 8 + 4 + 11 + addressBytes

	stockRowBytes = 4*6 + tpcc.DistrictsPerWarehouse*(tpcc.DistInfoSize+1) +
		(tpcc.MaxStockData + 1)

	customerRowBytes = 4*3 + 8*3 + 4*3 +
		(tpcc.MaxCustomerFirst + 1) + 3 + (tpcc.MaxCustomerLast + 1) +
		addressBytes + (tpcc.PhoneSize + 1) + (tpcc.DatetimeSize + 1) + 3 +
		(tpcc.MaxCustomerData + 1)

	orderRowBytes = 4*6 + 1 + (tpcc.DatetimeSize + 1)

	orderLineRowBytes = 4*7 + 8 + (tpcc.DatetimeSize + 1) + (tpcc.DistInfoSize + 1)

	newOrderRowBytes = 4 * 3

	historyRowBytes = 4*5 + 8 + (tpcc.DatetimeSize + 1) + 25
)

// Stat is the engine's memory and disk accounting block. Every insert,
// eviction and promotion updates it; the eviction engine reads the totals
// to decide whether to spill.
type Stat struct {
	WarehouseMem int64
	DistrictMem  int64
	ItemMem      int64
	OrderMem     int64
	NewOrderMem  int64
	HistoryMem   int64

	CustomerMem  int64
	CustomerDisk int64
	StockMem     int64
	StockDisk    int64
	OrderLineMem int64
	OrderLineDisk int64
}

// TotalMem returns the resident row bytes across all tables.
func (s *Stat) TotalMem() int64 {
	return s.WarehouseMem + s.DistrictMem + s.ItemMem + s.OrderMem +
		s.NewOrderMem + s.HistoryMem + s.CustomerMem + s.StockMem +
		s.OrderLineMem
}

// TotalDisk returns the bytes spilled to the cold tier.
func (s *Stat) TotalDisk() int64 {
	return s.CustomerDisk + s.StockDisk + s.OrderLineDisk
}
