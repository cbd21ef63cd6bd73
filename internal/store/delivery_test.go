package store

import (
	"testing"

	"github.com/blitzdb/tpccbench/internal/tpcc"
)

func TestDeliveryOldestOrderPerDistrict(t *testing.T) {
	s := newOrderFixture()

	// Ten new orders in district 1, none elsewhere.
	var out tpcc.NewOrderOutput
	for i := 0; i < 10; i++ {
		if !s.NewOrder(1, 1, int32(i%10)+1, fiveLocalItems(), testNow, &out, nil) {
			t.Fatal("NewOrder failed")
		}
	}
	lowest := int32(1)

	delivered := s.Delivery(1, 4, "2024-05-02 08:00:00", nil)
	if len(delivered) != 1 {
		t.Fatalf("delivered = %+v, want one district", delivered)
	}
	if delivered[0].DID != 1 || delivered[0].OID != lowest {
		t.Errorf("delivered = %+v, want {1, %d}", delivered[0], lowest)
	}

	if s.FindNewOrder(1, 1, lowest) != nil {
		t.Error("delivered new-order still present")
	}
	if s.FindNewOrder(1, 1, lowest+1) == nil {
		t.Error("next new-order must survive")
	}

	o := s.FindOrder(1, 1, lowest)
	if o.CarrierID != 4 {
		t.Errorf("carrier = %d, want 4", o.CarrierID)
	}

	var total int64
	for n := int32(1); n <= o.OLCnt; n++ {
		ol := s.FindOrderLine(1, 1, lowest, n)
		if ol.DeliveryDate != "2024-05-02 08:00:00" {
			t.Errorf("line %d delivery date = %q", n, ol.DeliveryDate)
		}
		total += ol.Amount
	}

	c := s.FindCustomer(1, 1, o.CID)
	if c.Balance != tpcc.InitialBalance+total {
		t.Errorf("customer balance = %d, want %d", c.Balance, tpcc.InitialBalance+total)
	}
	if c.DeliveryCnt != 1 {
		t.Errorf("delivery cnt = %d, want 1", c.DeliveryCnt)
	}
}

func TestDeliveryEmptyWarehouse(t *testing.T) {
	s := newOrderFixture()
	delivered := s.Delivery(1, 1, testNow, nil)
	if len(delivered) != 0 {
		t.Errorf("delivered = %+v, want none", delivered)
	}
}

func TestDeliveryMultipleDistricts(t *testing.T) {
	s := newOrderFixture()
	var out tpcc.NewOrderOutput
	for did := int32(1); did <= 3; did++ {
		if !s.NewOrder(1, did, 1, fiveLocalItems(), testNow, &out, nil) {
			t.Fatal("NewOrder failed")
		}
	}

	delivered := s.Delivery(1, 2, testNow, nil)
	if len(delivered) != 3 {
		t.Fatalf("delivered %d districts, want 3", len(delivered))
	}
	for i, d := range delivered {
		if d.DID != int32(i+1) {
			t.Errorf("delivered[%d].DID = %d", i, d.DID)
		}
	}
}

func TestDeliveryUndo(t *testing.T) {
	s := newOrderFixture()
	var out tpcc.NewOrderOutput
	if !s.NewOrder(1, 1, 5, fiveLocalItems(), testNow, &out, nil) {
		t.Fatal("NewOrder failed")
	}
	oid := out.OrderID
	custBefore := *s.FindCustomer(1, 1, 5)

	var undo *Undo
	delivered := s.Delivery(1, 9, "2024-05-03 00:00:00", &undo)
	if len(delivered) != 1 {
		t.Fatalf("delivered = %+v", delivered)
	}
	s.ApplyUndo(undo)

	if s.FindNewOrder(1, 1, oid) == nil {
		t.Error("new-order not reinserted by undo")
	}
	if got := s.FindOrder(1, 1, oid).CarrierID; got != tpcc.NullCarrierID {
		t.Errorf("carrier = %d, want undelivered", got)
	}
	for n := int32(1); n <= 5; n++ {
		if got := s.FindOrderLine(1, 1, oid, n).DeliveryDate; got != "" {
			t.Errorf("line %d delivery date = %q, want empty", n, got)
		}
	}
	if got := *s.FindCustomer(1, 1, 5); got != custBefore {
		t.Errorf("customer not restored: %+v", got)
	}
}
