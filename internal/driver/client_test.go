package driver

import (
	"testing"

	"github.com/blitzdb/tpccbench/internal/tpcc"
	"github.com/blitzdb/tpccbench/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.New(&logging.Config{Level: "error"})
}

// TestClientMixEndToEnd drives the full mix against a mounted store with a
// tight memory budget, then checks the cross-table invariants.
func TestClientMixEndToEnd(t *testing.T) {
	s, l := loadSmall(99, 64*1024)
	if err := s.Mount(t.TempDir(), "e2e"); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer s.Close()

	historyAfterLoad := len(s.History())
	wYTDAfterLoad := s.FindWarehouse(1).YTD

	gen := NewGenerator(100)
	gen.SetC(MakeRandomNURandCForRun(gen, MakeRandomNURandC(gen)))
	client := NewClient(quietLogger(), gen, s, l.Items(), 1, l.CustomersPerDistrict(), testNow)

	for i := 0; i < 500; i++ {
		client.DoOne()
	}

	// Warehouse YTD equals the sum of payment amounts since load.
	var paid int64
	for _, h := range s.History()[historyAfterLoad:] {
		if h.WID == 1 {
			paid += h.Amount
		}
	}
	if got := s.FindWarehouse(1).YTD - wYTDAfterLoad; got != paid {
		t.Errorf("warehouse YTD delta = %d, history sum = %d", got, paid)
	}

	// District YTDs likewise.
	var distPaid int64
	for did := int32(1); did <= tpcc.DistrictsPerWarehouse; did++ {
		distPaid += s.FindDistrict(1, did).YTD - tpcc.InitialDistrictYTD
	}
	if distPaid != paid {
		t.Errorf("district YTD delta sum = %d, history sum = %d", distPaid, paid)
	}

	// next_o_id - 1 is the greatest order id of each district, and the
	// new-order set matches the undelivered orders.
	for did := int32(1); did <= tpcc.DistrictsPerWarehouse; did++ {
		d := s.FindDistrict(1, did)
		if s.FindOrder(1, did, d.NextOID-1) == nil {
			t.Errorf("district %d: order %d missing", did, d.NextOID-1)
		}
		if s.FindOrder(1, did, d.NextOID) != nil {
			t.Errorf("district %d: order beyond next_o_id", did)
		}

		undelivered := 0
		markers := 0
		for oid := int32(1); oid < d.NextOID; oid++ {
			o := s.FindOrder(1, did, oid)
			if o == nil {
				continue
			}
			if o.CarrierID == tpcc.NullCarrierID {
				undelivered++
			}
			if s.FindNewOrder(1, did, oid) != nil {
				markers++
			}
		}
		if undelivered != markers {
			t.Errorf("district %d: %d undelivered orders but %d markers", did, undelivered, markers)
		}
	}

	// Some work must have spilled under a 64 KiB budget.
	if s.DiskBytes() == 0 {
		t.Error("expected cold-tier bytes under a tight budget")
	}
}

func TestClientBinding(t *testing.T) {
	s, l := loadSmall(7, 0)
	if err := s.Mount(t.TempDir(), "bind"); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer s.Close()

	gen := NewGenerator(8)
	gen.SetC(MakeRandomNURandC(gen))
	client := NewClient(quietLogger(), gen, s, l.Items(), 1, l.CustomersPerDistrict(), testNow)
	client.BindWarehouseDistrict(1, 4)

	before := s.FindDistrict(1, 4).NextOID
	for i := 0; i < 20; i++ {
		client.DoNewOrder()
	}
	after := s.FindDistrict(1, 4).NextOID
	if after == before {
		t.Error("bound district saw no new orders")
	}
	// Other districts must be untouched by the bound client.
	for did := int32(1); did <= tpcc.DistrictsPerWarehouse; did++ {
		if did == 4 {
			continue
		}
		if s.FindDistrict(1, did).NextOID != testCustomers+1 {
			t.Errorf("district %d mutated by bound client", did)
		}
	}
}
