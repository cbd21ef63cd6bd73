package store

import (
	"fmt"

	"github.com/blitzdb/tpccbench/internal/tpcc"
	"github.com/blitzdb/tpccbench/pkg/helpers"
)

// Payment executes the Payment transaction against the customer selected
// by id. The paying warehouse/district and the customer's home
// warehouse/district may differ (remote payment).
func (s *Store) Payment(wid, did, cwid, cdid, cid int32, hAmount int64,
	now string, out *tpcc.PaymentOutput, undo **Undo) {

	t := s.findCustomerTuple(cwid, cdid, cid)
	if t == nil {
		panic(fmt.Sprintf("store: payment for unknown customer (%d, %d, %d)", cwid, cdid, cid))
	}
	s.payment(wid, did, cwid, cdid, t, hAmount, now, out, undo)
}

// PaymentByName executes Payment against the customer selected by last
// name under the ceil(n/2) rule.
func (s *Store) PaymentByName(wid, did, cwid, cdid int32, cLast string,
	hAmount int64, now string, out *tpcc.PaymentOutput, undo **Undo) {

	t := s.findCustomerTupleByName(cwid, cdid, cLast)
	if t == nil {
		panic(fmt.Sprintf("store: payment for unknown customer name (%d, %d, %q)", cwid, cdid, cLast))
	}
	s.payment(wid, did, cwid, cdid, t, hAmount, now, out, undo)
}

func (s *Store) payment(wid, did, cwid, cdid int32, t *Tuple[tpcc.Customer],
	hAmount int64, now string, out *tpcc.PaymentOutput, undo **Undo) {

	u := allocateUndo(undo)

	w := s.FindWarehouse(wid)
	u.saveWarehouse(w)
	w.YTD += hAmount

	d := s.FindDistrict(wid, did)
	u.saveDistrict(d)
	d.YTD += hAmount

	out.WarehouseAddress = tpcc.Address{
		Street1: w.Street1, Street2: w.Street2, City: w.City, State: w.State, Zip: w.Zip,
	}
	out.DistrictAddress = tpcc.Address{
		Street1: d.Street1, Street2: d.Street2, City: d.City, State: d.State, Zip: d.Zip,
	}

	// Mutation requires residency: an evicted customer is promoted and its
	// old locator is superseded.
	c := s.promoteCustomer(t)
	u.saveCustomer(t)

	c.Balance -= hAmount
	c.YTDPayment += hAmount
	c.PaymentCnt++
	if c.Credit == tpcc.BadCredit {
		entry := fmt.Sprintf("%d %d %d %d %d %s | ",
			c.ID, c.DID, c.WID, did, wid, helpers.FormatMoney(hAmount))
		data := entry + c.Data
		if len(data) > tpcc.MaxCustomerData {
			data = data[:tpcc.MaxCustomerData]
		}
		c.Data = data
	}

	out.CustomerID = c.ID
	out.CustomerFirst = c.First
	out.CustomerMiddle = c.Middle
	out.CustomerLast = c.Last
	out.CustomerAddress = tpcc.Address{
		Street1: c.Street1, Street2: c.Street2, City: c.City, State: c.State, Zip: c.Zip,
	}
	out.CustomerPhone = c.Phone
	out.CustomerSince = c.Since
	out.CustomerCredit = c.Credit
	out.CustomerCreditLim = c.CreditLim
	out.CustomerDiscount = c.Discount
	out.CustomerBalance = c.Balance
	if c.Credit == tpcc.BadCredit {
		echo := c.Data
		if len(echo) > tpcc.PaymentCreditDataEcho {
			echo = echo[:tpcc.PaymentCreditDataEcho]
		}
		out.CreditData = echo
	} else {
		out.CreditData = ""
	}

	s.InsertHistory(tpcc.History{
		CID:    c.ID,
		CDID:   cdid,
		CWID:   cwid,
		DID:    did,
		WID:    wid,
		Amount: hAmount,
		Date:   now,
		Data:   w.Name + "    " + d.Name,
	})
	u.insertedHistory()

	s.enforceBudget()
}
