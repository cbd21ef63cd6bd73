package store

import (
	"testing"

	"github.com/blitzdb/tpccbench/internal/tpcc"
)

func TestOrderStatusLatestOrder(t *testing.T) {
	s := newOrderFixture()

	var noOut tpcc.NewOrderOutput
	for i := 0; i < 3; i++ {
		if !s.NewOrder(1, 1, 7, fiveLocalItems(), testNow, &noOut, nil) {
			t.Fatal("NewOrder failed")
		}
	}
	latest := noOut.OrderID

	var out tpcc.OrderStatusOutput
	s.OrderStatus(1, 1, 7, &out)

	if out.CustomerID != 7 || out.CustomerLast != "LAST0007" {
		t.Errorf("customer identity = %d %q", out.CustomerID, out.CustomerLast)
	}
	if out.Balance != tpcc.InitialBalance {
		t.Errorf("balance = %d", out.Balance)
	}
	if out.OrderID != latest {
		t.Errorf("OrderID = %d, want %d", out.OrderID, latest)
	}
	if out.CarrierID != tpcc.NullCarrierID {
		t.Errorf("carrier = %d", out.CarrierID)
	}
	if len(out.Lines) != 5 {
		t.Fatalf("lines = %d, want 5", len(out.Lines))
	}
	for i, l := range out.Lines {
		want := fiveLocalItems()[i]
		if l.ItemID != want.ItemID || l.Quantity != want.Quantity {
			t.Errorf("line %d = %+v", i, l)
		}
		if l.DeliveryDate != "" {
			t.Errorf("line %d delivered prematurely", i)
		}
	}
}

func TestOrderStatusByName(t *testing.T) {
	s := newOrderFixture()
	var noOut tpcc.NewOrderOutput
	if !s.NewOrder(1, 1, 4, fiveLocalItems(), testNow, &noOut, nil) {
		t.Fatal("NewOrder failed")
	}

	var out tpcc.OrderStatusOutput
	s.OrderStatusByName(1, 1, "LAST0004", &out)
	if out.CustomerID != 4 {
		t.Errorf("CustomerID = %d, want 4", out.CustomerID)
	}
	if out.OrderID != noOut.OrderID {
		t.Errorf("OrderID = %d, want %d", out.OrderID, noOut.OrderID)
	}
}

func TestOrderStatusNoOrders(t *testing.T) {
	s := newOrderFixture()
	var out tpcc.OrderStatusOutput
	s.OrderStatus(1, 1, 9, &out)
	if out.OrderID != 0 || len(out.Lines) != 0 {
		t.Errorf("customer without orders: %+v", out)
	}
}
