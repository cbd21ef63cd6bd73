package store

import (
	"strings"
	"testing"

	"github.com/blitzdb/tpccbench/internal/tpcc"
)

func TestPaymentByID(t *testing.T) {
	s := newTestStore()
	seedItems(s, 5)
	seedWarehouse(s, 1, 5, 10)

	w := s.FindWarehouse(1)
	d := s.FindDistrict(1, 1)
	wYTDBefore := w.YTD
	dYTDBefore := d.YTD
	histBefore := len(s.History())

	var out tpcc.PaymentOutput
	s.Payment(1, 1, 1, 1, 7, 12345, testNow, &out, nil)

	if w.YTD != wYTDBefore+12345 {
		t.Errorf("warehouse YTD = %d, want %d", w.YTD, wYTDBefore+12345)
	}
	if d.YTD != dYTDBefore+12345 {
		t.Errorf("district YTD = %d, want %d", d.YTD, dYTDBefore+12345)
	}

	c := s.FindCustomer(1, 1, 7)
	if c.Balance != tpcc.InitialBalance-12345 {
		t.Errorf("balance = %d, want %d", c.Balance, tpcc.InitialBalance-12345)
	}
	if c.YTDPayment != tpcc.InitialYTDPayment+12345 {
		t.Errorf("ytd payment = %d", c.YTDPayment)
	}
	if c.PaymentCnt != 2 {
		t.Errorf("payment cnt = %d, want 2", c.PaymentCnt)
	}
	if out.CustomerBalance != c.Balance {
		t.Errorf("output balance = %d, want %d", out.CustomerBalance, c.Balance)
	}
	if out.CreditData != "" {
		t.Errorf("good-credit customer must not echo data, got %q", out.CreditData)
	}

	if len(s.History()) != histBefore+1 {
		t.Fatalf("history len = %d, want %d", len(s.History()), histBefore+1)
	}
	h := s.History()[len(s.History())-1]
	if h.CID != 7 || h.WID != 1 || h.Amount != 12345 {
		t.Errorf("history row = %+v", h)
	}
	if !strings.Contains(h.Data, "wh-1") || !strings.Contains(h.Data, "d-1") {
		t.Errorf("history data = %q", h.Data)
	}
}

func TestPaymentByLastNamePicksMedian(t *testing.T) {
	s := newTestStore()
	s.InsertWarehouse(tpcc.Warehouse{ID: 1, Name: "w"})
	s.InsertDistrict(tpcc.District{ID: 1, WID: 1, NextOID: 1, Name: "d"})

	firsts := []string{"AAA", "BBB", "CCC", "DDD", "EEE"}
	for i, f := range firsts {
		c := makeTestCustomer(1, 1, int32(i+1))
		c.Last = "BARBARESEING"
		c.First = f
		s.InsertCustomer(c)
	}

	var out tpcc.PaymentOutput
	s.PaymentByName(1, 1, 1, 1, "BARBARESEING", 500, testNow, &out, nil)

	if out.CustomerFirst != "CCC" {
		t.Errorf("selected First = %s, want CCC (3rd of 5)", out.CustomerFirst)
	}
	c := s.FindCustomer(1, 1, 3)
	if c.Balance != tpcc.InitialBalance-500 {
		t.Errorf("balance = %d, want %d", c.Balance, tpcc.InitialBalance-500)
	}
	// The other four are untouched.
	for _, cid := range []int32{1, 2, 4, 5} {
		if got := s.FindCustomer(1, 1, cid).Balance; got != tpcc.InitialBalance {
			t.Errorf("customer %d balance = %d, want untouched", cid, got)
		}
	}
}

func TestPaymentBadCreditData(t *testing.T) {
	s := newTestStore()
	seedItems(s, 5)
	seedWarehouse(s, 1, 5, 10)
	seedWarehouse(s, 2, 5, 10)

	// Customer 10 is bad credit in the fixture.
	var out tpcc.PaymentOutput
	s.Payment(2, 3, 1, 1, 10, 9999, testNow, &out, nil)

	c := s.FindCustomer(1, 1, 10)
	if !strings.HasPrefix(c.Data, "10 1 1 3 2 99.99 | ") {
		t.Errorf("data prefix = %q", c.Data[:min(len(c.Data), 40)])
	}
	if !strings.Contains(c.Data, "the quick brown fox") {
		t.Errorf("old data lost: %q", c.Data)
	}
	if out.CreditData == "" {
		t.Error("bad-credit payment must echo data")
	}
	if len(out.CreditData) > tpcc.PaymentCreditDataEcho {
		t.Errorf("echo len = %d, want <= %d", len(out.CreditData), tpcc.PaymentCreditDataEcho)
	}
}

func TestPaymentBadCreditDataTruncates(t *testing.T) {
	s := newTestStore()
	s.InsertWarehouse(tpcc.Warehouse{ID: 1, Name: "w"})
	s.InsertDistrict(tpcc.District{ID: 1, WID: 1, NextOID: 1, Name: "d"})
	c := makeTestCustomer(1, 1, 1)
	c.Credit = tpcc.BadCredit
	c.Data = strings.Repeat("z", tpcc.MaxCustomerData)
	s.InsertCustomer(c)

	var out tpcc.PaymentOutput
	s.Payment(1, 1, 1, 1, 1, 100, testNow, &out, nil)

	got := s.FindCustomer(1, 1, 1)
	if len(got.Data) != tpcc.MaxCustomerData {
		t.Errorf("data len = %d, want %d", len(got.Data), tpcc.MaxCustomerData)
	}
	if !strings.HasPrefix(got.Data, "1 1 1 1 1 1.00 | ") {
		t.Errorf("data prefix = %q", got.Data[:30])
	}
}

func TestPaymentUndo(t *testing.T) {
	s := newTestStore()
	seedItems(s, 5)
	seedWarehouse(s, 1, 5, 10)

	w := s.FindWarehouse(1)
	d := s.FindDistrict(1, 1)
	wBefore := *w
	dBefore := *d
	custBefore := *s.FindCustomer(1, 1, 10)
	histBefore := len(s.History())

	var out tpcc.PaymentOutput
	var undo *Undo
	s.Payment(1, 1, 1, 1, 10, 777, testNow, &out, &undo)
	if undo == nil {
		t.Fatal("undo not allocated")
	}
	s.ApplyUndo(undo)

	if *w != wBefore {
		t.Errorf("warehouse not restored: %+v", *w)
	}
	if *d != dBefore {
		t.Errorf("district not restored: %+v", *d)
	}
	if got := *s.FindCustomer(1, 1, 10); got != custBefore {
		t.Errorf("customer not restored: balance %d data %q", got.Balance, got.Data)
	}
	if len(s.History()) != histBefore {
		t.Errorf("history len = %d, want %d", len(s.History()), histBefore)
	}
}
