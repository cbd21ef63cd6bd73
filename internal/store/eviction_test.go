package store

import (
	"testing"

	"github.com/blitzdb/tpccbench/internal/tpcc"
)

// mountedFixture loads a small database, mounts the cold tiers and
// returns the store.
func mountedFixture(t *testing.T, budget int64) *Store {
	t.Helper()
	s := New(Options{MemoryBudget: budget, BlockSize: 1024})
	seedItems(s, 20)
	seedWarehouse(s, 1, 20, 10)

	// A few orders so the orderline tier has rows to mount.
	var out tpcc.NewOrderOutput
	for i := 0; i < 4; i++ {
		if !s.NewOrder(1, 1, int32(i+1), fiveLocalItems(), testNow, &out, nil) {
			t.Fatal("NewOrder failed")
		}
	}

	if err := s.Mount(t.TempDir(), "test"); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMountWithoutBudgetKeepsResident(t *testing.T) {
	s := mountedFixture(t, 0)
	if s.DiskBytes() == 0 {
		t.Error("mount must write initial blocks")
	}
	resident := 0
	s.customers.Scan(func(_ int32, tup *Tuple[tpcc.Customer]) bool {
		if tup.Resident() {
			resident++
		}
		return true
	})
	if resident != 10*tpcc.DistrictsPerWarehouse {
		t.Errorf("resident customers = %d, want all", resident)
	}
}

func TestEvictionUnderBudget(t *testing.T) {
	s := mountedFixture(t, 1) // force everything evictable out

	evicted := 0
	s.stock.Scan(func(_ int32, tup *Tuple[tpcc.Stock]) bool {
		if !tup.Resident() {
			evicted++
		}
		return true
	})
	if evicted == 0 {
		t.Fatal("budget of 1 byte must evict stock rows")
	}
	if s.Stat().StockMem != int64(20-evicted)*stockRowBytes {
		t.Errorf("StockMem = %d after %d evictions", s.Stat().StockMem, evicted)
	}

	// Evicted rows still read back correctly through the handle.
	st := s.FindStock(1, 5)
	if st == nil || st.IID != 5 || st.WID != 1 {
		t.Fatalf("materialized stock = %+v", st)
	}
	if st.Dist[0][:7] != "dist-01" {
		t.Errorf("dist info lost: %q", st.Dist[0])
	}
}

func TestEvictionRoundTripExactRows(t *testing.T) {
	s := New(Options{BlockSize: 1024})
	seedItems(s, 10)
	seedWarehouse(s, 1, 10, 10)

	// Copy the rows before mount+evict, then compare after.
	want := make(map[int32]tpcc.Customer)
	s.customers.Scan(func(k int32, tup *Tuple[tpcc.Customer]) bool {
		want[k] = *tup.row
		return true
	})

	if err := s.Mount(t.TempDir(), "rt"); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer s.Close()

	// Evict every customer by hand.
	s.customers.Scan(func(_ int32, tup *Tuple[tpcc.Customer]) bool {
		s.customerTier.evict(tup)
		s.stat.CustomerMem -= customerRowBytes
		return true
	})
	s.customerTier.flush()

	for k, w := range want {
		var scratch tpcc.Customer
		tup, _ := s.customers.Find(k)
		got := s.customerTier.load(tup, &scratch)
		if *got != w {
			t.Fatalf("customer %d round trip mismatch:\n got %+v\nwant %+v", k, *got, w)
		}
	}
}

func TestPaymentPromotesEvictedCustomer(t *testing.T) {
	s := mountedFixture(t, 1)

	tup := s.findCustomerTuple(1, 1, 7)
	if tup.Resident() {
		// The budget pass should have spilled it; force the point.
		s.customerTier.evict(tup)
		s.stat.CustomerMem -= customerRowBytes
		s.customerTier.flush()
	}

	var out tpcc.PaymentOutput
	s.Payment(1, 1, 1, 1, 7, 4242, testNow, &out, nil)

	if out.CustomerLast != "LAST0007" {
		t.Errorf("promoted wrong customer: %q", out.CustomerLast)
	}
	if out.CustomerBalance != tpcc.InitialBalance-4242 {
		t.Errorf("balance = %d", out.CustomerBalance)
	}

	// The mutation must survive the customer being evicted again: the
	// budget pass at the end of Payment spills it back to disk.
	var status tpcc.OrderStatusOutput
	s.OrderStatus(1, 1, 7, &status)
	if status.Balance != tpcc.InitialBalance-4242 {
		t.Errorf("order-status balance = %d, want %d", status.Balance, tpcc.InitialBalance-4242)
	}
}

func TestDeliveryAgainstEvictedRows(t *testing.T) {
	s := mountedFixture(t, 1)

	delivered := s.Delivery(1, 3, "2024-05-04 09:00:00", nil)
	if len(delivered) != 1 || delivered[0].OID != 1 {
		t.Fatalf("delivered = %+v", delivered)
	}
	ol := s.FindOrderLine(1, 1, 1, 1)
	if ol.DeliveryDate != "2024-05-04 09:00:00" {
		t.Errorf("delivery date = %q", ol.DeliveryDate)
	}
}

func TestNewOrderAfterMountInsertsEvictableRows(t *testing.T) {
	s := mountedFixture(t, 1)

	var out tpcc.NewOrderOutput
	if !s.NewOrder(1, 2, 3, fiveLocalItems(), testNow, &out, nil) {
		t.Fatal("NewOrder failed")
	}
	// Lines inserted after mount must read back whether resident or
	// already spilled by the budget pass.
	for n := int32(1); n <= 5; n++ {
		ol := s.FindOrderLine(1, 2, out.OrderID, n)
		if ol == nil || ol.Number != n {
			t.Fatalf("line %d = %+v", n, ol)
		}
	}
}

func TestHandleStableAcrossEviction(t *testing.T) {
	s := mountedFixture(t, 0)

	tup := s.findCustomerTuple(1, 1, 3)
	byName := s.findCustomerTupleByName(1, 1, "LAST0003")
	if tup != byName {
		t.Fatal("indexes disagree before eviction")
	}

	s.customerTier.evict(tup)
	s.stat.CustomerMem -= customerRowBytes
	s.customerTier.flush()

	if s.findCustomerTupleByName(1, 1, "LAST0003") != tup {
		t.Error("by-name index must keep resolving to the same handle after eviction")
	}
	c := s.FindCustomer(1, 1, 3)
	if c.ID != 3 || c.Last != "LAST0003" {
		t.Errorf("materialized customer = %+v", c)
	}
}
