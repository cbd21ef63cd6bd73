package tpcc

import "fmt"

// Composite keys are packed into single integers so the B+ trees index on
// primitive keys. All encodings are order-preserving on the natural
// lexicographic order of their fields.
//
// MaxOrderID fixes the order-id field width inside 64-bit keys.
const MaxOrderID = 10000000

// ValidateKeySpace checks that numWarehouses keeps every packed key inside
// its integer width.
func ValidateKeySpace(numWarehouses int32) error {
	if numWarehouses < 1 || numWarehouses > MaxWarehouseID {
		return fmt.Errorf("number of warehouses must be in [1, %d], got %d",
			MaxWarehouseID, numWarehouses)
	}
	return nil
}

// DistrictKey packs (w_id, d_id).
func DistrictKey(wid, did int32) int32 {
	return wid*DistrictsPerWarehouse + did
}

// StockKey packs (w_id, i_id). Unique because 1 <= i_id <= NumItems.
func StockKey(wid, iid int32) int32 {
	return wid*NumItems + iid
}

// CustomerKey packs (w_id, d_id, c_id).
func CustomerKey(wid, did, cid int32) int32 {
	return DistrictKey(wid, did)*CustomersPerDistrict + cid
}

// OrderKey packs (w_id, d_id, o_id).
func OrderKey(wid, did, oid int32) int64 {
	return int64(DistrictKey(wid, did))*MaxOrderID + int64(oid)
}

// OrderByCustomerKey packs (w_id, d_id, c_id, o_id) so that a descending
// scan from the largest o_id of a customer yields their latest order.
func OrderByCustomerKey(wid, did, cid, oid int32) int64 {
	return int64(CustomerKey(wid, did, cid))*MaxOrderID + int64(oid)
}

// OrderLineKey packs (w_id, d_id, o_id, number).
func OrderLineKey(wid, did, oid, number int32) int64 {
	return OrderKey(wid, did, oid)*(MaxOLCnt+1) + int64(number)
}

// NewOrderKey packs (w_id, d_id, o_id); the per-district FIFO order is the
// ascending key order.
func NewOrderKey(wid, did, oid int32) int64 {
	return OrderKey(wid, did, oid)
}
