package driver

import (
	"time"

	"github.com/blitzdb/tpccbench/internal/store"
	"github.com/blitzdb/tpccbench/internal/tpcc"
	"github.com/blitzdb/tpccbench/pkg/logging"
)

// remoteItemMilliP is the probability, in thousandths, that a New-Order
// line is supplied by a remote warehouse.
const remoteItemMilliP = 10

// Client issues the TPC-C transaction mix against one store. The mix
// keeps the standard minimum percentages: 4% Stock-Level, 4% Delivery,
// 4% Order-Status, 43% Payment, 45% New-Order.
type Client struct {
	log *logging.Logger
	gen *Generator
	db  *store.Store

	numItems             int32
	numWarehouses        int32
	districtsPerWarehouse int32
	customersPerDistrict int32
	now                  string

	remoteMilliP int32

	boundWarehouse int32
	boundDistrict  int32
}

// NewClient wires a client to a loaded, mounted store. The timestamp now
// is captured once and reused for every transaction.
func NewClient(log *logging.Logger, gen *Generator, db *store.Store,
	numItems, numWarehouses, customersPerDistrict int32, now string) *Client {
	return &Client{
		log:                   log,
		gen:                   gen,
		db:                    db,
		numItems:              numItems,
		numWarehouses:         numWarehouses,
		districtsPerWarehouse: tpcc.DistrictsPerWarehouse,
		customersPerDistrict:  customersPerDistrict,
		now:                   now,
		remoteMilliP:          remoteItemMilliP,
	}
}

// BindWarehouseDistrict pins the client to one warehouse/district; zero
// means any.
func (c *Client) BindWarehouseDistrict(wid, did int32) {
	c.boundWarehouse = wid
	c.boundDistrict = did
}

// DoOne runs one transaction drawn from the mix and returns its latency.
func (c *Client) DoOne() time.Duration {
	x := c.gen.Number(1, 100)
	switch {
	case x <= 4:
		return c.DoStockLevel()
	case x <= 8:
		return c.DoDelivery()
	case x <= 12:
		return c.DoOrderStatus()
	case x <= 12+43:
		return c.DoPayment()
	default:
		return c.DoNewOrder()
	}
}

// DoStockLevel runs one Stock-Level transaction.
func (c *Client) DoStockLevel() time.Duration {
	threshold := c.gen.Number(tpcc.MinStockLevelThreshold, tpcc.MaxStockLevelThreshold)
	wid := c.generateWarehouse()
	did := c.generateDistrict()

	begin := time.Now()
	c.db.StockLevel(wid, did, threshold)
	return time.Since(begin)
}

// DoOrderStatus runs one Order-Status transaction; 60% select the
// customer by last name.
func (c *Client) DoOrderStatus() time.Duration {
	var out tpcc.OrderStatusOutput
	wid := c.generateWarehouse()
	did := c.generateDistrict()

	if c.gen.Number(1, 100) <= 60 {
		last := c.gen.LastName(c.customersPerDistrict)
		begin := time.Now()
		c.db.OrderStatusByName(wid, did, last, &out)
		return time.Since(begin)
	}
	cid := c.generateCID()
	begin := time.Now()
	c.db.OrderStatus(wid, did, cid, &out)
	return time.Since(begin)
}

// DoDelivery runs one Delivery transaction.
func (c *Client) DoDelivery() time.Duration {
	carrier := c.gen.Number(tpcc.MinCarrierID, tpcc.MaxCarrierID)
	wid := c.generateWarehouse()

	begin := time.Now()
	orders := c.db.Delivery(wid, carrier, c.now, nil)
	elapsed := time.Since(begin)
	if int32(len(orders)) != c.districtsPerWarehouse {
		c.log.Debug("partial delivery", "warehouse", wid, "districts", len(orders))
	}
	return elapsed
}

// DoPayment runs one Payment transaction; 15% pay through a remote
// warehouse and 60% select the customer by last name.
func (c *Client) DoPayment() time.Duration {
	var out tpcc.PaymentOutput
	x := c.gen.Number(1, 100)
	y := c.gen.Number(1, 100)

	wid := c.generateWarehouse()
	did := c.generateDistrict()

	var cwid, cdid int32
	if c.numWarehouses == 1 || x <= 85 {
		cwid = wid
		cdid = did
	} else {
		cwid = c.gen.NumberExcluding(1, c.numWarehouses, wid)
		cdid = c.generateDistrict()
	}
	hAmount := int64(c.gen.Number(tpcc.MinPaymentAmount, tpcc.MaxPaymentAmount))

	if y <= 60 {
		last := c.gen.LastName(c.customersPerDistrict)
		begin := time.Now()
		c.db.PaymentByName(wid, did, cwid, cdid, last, hAmount, c.now, &out, nil)
		return time.Since(begin)
	}
	cid := c.generateCID()
	begin := time.Now()
	c.db.Payment(wid, did, cwid, cdid, cid, hAmount, c.now, &out, nil)
	return time.Since(begin)
}

// DoNewOrder runs one New-Order transaction; 1% carry an invalid item id
// and roll back.
func (c *Client) DoNewOrder() time.Duration {
	wid := c.generateWarehouse()
	olCnt := c.gen.Number(tpcc.MinOLCnt, tpcc.MaxOLCnt)
	rollback := c.gen.Number(1, 100) == 1

	items := make([]tpcc.NewOrderItem, olCnt)
	for i := range items {
		if rollback && i+1 == len(items) {
			items[i].ItemID = c.numItems + 1
		} else {
			items[i].ItemID = c.generateItemID()
		}

		remote := c.gen.Number(1, 1000) <= c.remoteMilliP
		if c.numWarehouses > 1 && remote {
			items[i].SupplyWID = c.gen.NumberExcluding(1, c.numWarehouses, wid)
		} else {
			items[i].SupplyWID = wid
		}
		items[i].Quantity = c.gen.Number(1, tpcc.MaxOLQuantity)
	}

	var out tpcc.NewOrderOutput
	did := c.generateDistrict()
	cid := c.generateCID()
	begin := time.Now()
	c.db.NewOrder(wid, did, cid, items, c.now, &out, nil)
	return time.Since(begin)
}

func (c *Client) generateWarehouse() int32 {
	if c.boundWarehouse == 0 {
		return c.gen.Number(1, c.numWarehouses)
	}
	return c.boundWarehouse
}

func (c *Client) generateDistrict() int32 {
	if c.boundDistrict == 0 {
		return c.gen.Number(1, c.districtsPerWarehouse)
	}
	return c.boundDistrict
}

func (c *Client) generateCID() int32 {
	return c.gen.NURand(1023, 1, c.customersPerDistrict)
}

func (c *Client) generateItemID() int32 {
	return c.gen.NURand(8191, 1, c.numItems)
}
