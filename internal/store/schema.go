package store

import (
	"github.com/blitzdb/tpccbench/internal/blitz"
	"github.com/blitzdb/tpccbench/internal/tpcc"
)

// Declared attribute lists for the cold tables, in table-declaration
// order, and the converters between row structs and attribute lists. The
// codec treats rows as opaque attribute lists; these are the only places
// that know the mapping.

func stockSchema() blitz.Schema {
	attrs := []blitz.Attr{
		{Name: "s_i_id", Kind: blitz.AttrInt},
		{Name: "s_w_id", Kind: blitz.AttrInt},
		{Name: "s_quantity", Kind: blitz.AttrInt},
		{Name: "s_ytd", Kind: blitz.AttrInt},
		{Name: "s_order_cnt", Kind: blitz.AttrInt},
		{Name: "s_remote_cnt", Kind: blitz.AttrInt},
	}
	for i := 0; i < tpcc.DistrictsPerWarehouse; i++ {
		attrs = append(attrs, blitz.Attr{Name: "s_dist", Kind: blitz.AttrString})
	}
	attrs = append(attrs, blitz.Attr{Name: "s_data", Kind: blitz.AttrString})
	return blitz.Schema{Relation: "stock", Attrs: attrs}
}

func stockToRow(s *tpcc.Stock, out blitz.Row) blitz.Row {
	out = append(out,
		blitz.IntValue(int64(s.IID)),
		blitz.IntValue(int64(s.WID)),
		blitz.IntValue(int64(s.Quantity)),
		blitz.IntValue(int64(s.YTD)),
		blitz.IntValue(int64(s.OrderCnt)),
		blitz.IntValue(int64(s.RemoteCnt)),
	)
	for i := range s.Dist {
		out = append(out, blitz.StrValue(s.Dist[i]))
	}
	out = append(out, blitz.StrValue(s.Data))
	return out
}

func stockFromRow(r blitz.Row, s *tpcc.Stock) {
	s.IID = int32(r[0].Int)
	s.WID = int32(r[1].Int)
	s.Quantity = int32(r[2].Int)
	s.YTD = int32(r[3].Int)
	s.OrderCnt = int32(r[4].Int)
	s.RemoteCnt = int32(r[5].Int)
	for i := range s.Dist {
		s.Dist[i] = r[6+i].Str
	}
	s.Data = r[6+tpcc.DistrictsPerWarehouse].Str
}

func customerSchema() blitz.Schema {
	return blitz.Schema{Relation: "customer", Attrs: []blitz.Attr{
		{Name: "c_id", Kind: blitz.AttrInt},
		{Name: "c_d_id", Kind: blitz.AttrInt},
		{Name: "c_w_id", Kind: blitz.AttrInt},
		{Name: "c_credit_lim", Kind: blitz.AttrInt},
		{Name: "c_discount", Kind: blitz.AttrInt},
		{Name: "c_balance", Kind: blitz.AttrInt},
		{Name: "c_ytd_payment", Kind: blitz.AttrInt},
		{Name: "c_payment_cnt", Kind: blitz.AttrInt},
		{Name: "c_delivery_cnt", Kind: blitz.AttrInt},
		{Name: "c_first", Kind: blitz.AttrString},
		{Name: "c_middle", Kind: blitz.AttrString},
		{Name: "c_last", Kind: blitz.AttrString},
		{Name: "c_street_1", Kind: blitz.AttrString},
		{Name: "c_street_2", Kind: blitz.AttrString},
		{Name: "c_city", Kind: blitz.AttrString},
		{Name: "c_state", Kind: blitz.AttrString},
		{Name: "c_zip", Kind: blitz.AttrString},
		{Name: "c_phone", Kind: blitz.AttrString},
		{Name: "c_since", Kind: blitz.AttrString},
		{Name: "c_credit", Kind: blitz.AttrString},
		{Name: "c_data", Kind: blitz.AttrString},
	}}
}

func customerToRow(c *tpcc.Customer, out blitz.Row) blitz.Row {
	return append(out,
		blitz.IntValue(int64(c.ID)),
		blitz.IntValue(int64(c.DID)),
		blitz.IntValue(int64(c.WID)),
		blitz.IntValue(c.CreditLim),
		blitz.IntValue(int64(c.Discount)),
		blitz.IntValue(c.Balance),
		blitz.IntValue(c.YTDPayment),
		blitz.IntValue(int64(c.PaymentCnt)),
		blitz.IntValue(int64(c.DeliveryCnt)),
		blitz.StrValue(c.First),
		blitz.StrValue(c.Middle),
		blitz.StrValue(c.Last),
		blitz.StrValue(c.Street1),
		blitz.StrValue(c.Street2),
		blitz.StrValue(c.City),
		blitz.StrValue(c.State),
		blitz.StrValue(c.Zip),
		blitz.StrValue(c.Phone),
		blitz.StrValue(c.Since),
		blitz.StrValue(c.Credit),
		blitz.StrValue(c.Data),
	)
}

func customerFromRow(r blitz.Row, c *tpcc.Customer) {
	c.ID = int32(r[0].Int)
	c.DID = int32(r[1].Int)
	c.WID = int32(r[2].Int)
	c.CreditLim = r[3].Int
	c.Discount = int32(r[4].Int)
	c.Balance = r[5].Int
	c.YTDPayment = r[6].Int
	c.PaymentCnt = int32(r[7].Int)
	c.DeliveryCnt = int32(r[8].Int)
	c.First = r[9].Str
	c.Middle = r[10].Str
	c.Last = r[11].Str
	c.Street1 = r[12].Str
	c.Street2 = r[13].Str
	c.City = r[14].Str
	c.State = r[15].Str
	c.Zip = r[16].Str
	c.Phone = r[17].Str
	c.Since = r[18].Str
	c.Credit = r[19].Str
	c.Data = r[20].Str
}

func orderLineSchema() blitz.Schema {
	return blitz.Schema{Relation: "orderline", Attrs: []blitz.Attr{
		{Name: "ol_o_id", Kind: blitz.AttrInt},
		{Name: "ol_d_id", Kind: blitz.AttrInt},
		{Name: "ol_w_id", Kind: blitz.AttrInt},
		{Name: "ol_number", Kind: blitz.AttrInt},
		{Name: "ol_i_id", Kind: blitz.AttrInt},
		{Name: "ol_supply_w_id", Kind: blitz.AttrInt},
		{Name: "ol_quantity", Kind: blitz.AttrInt},
		{Name: "ol_amount", Kind: blitz.AttrInt},
		{Name: "ol_delivery_d", Kind: blitz.AttrString},
		{Name: "ol_dist_info", Kind: blitz.AttrString},
	}}
}

func orderLineToRow(ol *tpcc.OrderLine, out blitz.Row) blitz.Row {
	return append(out,
		blitz.IntValue(int64(ol.OID)),
		blitz.IntValue(int64(ol.DID)),
		blitz.IntValue(int64(ol.WID)),
		blitz.IntValue(int64(ol.Number)),
		blitz.IntValue(int64(ol.IID)),
		blitz.IntValue(int64(ol.SupplyWID)),
		blitz.IntValue(int64(ol.Quantity)),
		blitz.IntValue(ol.Amount),
		blitz.StrValue(ol.DeliveryDate),
		blitz.StrValue(ol.DistInfo),
	)
}

func orderLineFromRow(r blitz.Row, ol *tpcc.OrderLine) {
	ol.OID = int32(r[0].Int)
	ol.DID = int32(r[1].Int)
	ol.WID = int32(r[2].Int)
	ol.Number = int32(r[3].Int)
	ol.IID = int32(r[4].Int)
	ol.SupplyWID = int32(r[5].Int)
	ol.Quantity = int32(r[6].Int)
	ol.Amount = r[7].Int
	ol.DeliveryDate = r[8].Str
	ol.DistInfo = r[9].Str
}
