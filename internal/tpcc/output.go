package tpcc

// Transaction inputs and outputs. These cross the boundary to the driver;
// the engine fills them in and never keeps references.

// NewOrderItem is one requested line of a New-Order transaction.
type NewOrderItem struct {
	ItemID    int32
	SupplyWID int32
	Quantity  int32
}

// NewOrderLine is the per-line part of a New-Order result.
type NewOrderLine struct {
	Name          string
	StockQuantity int32
	BrandGeneric  byte // 'B' or 'G'
	Price         int64 // cents
	Amount        int64 // cents
}

// InvalidItemStatus is reported when New-Order rolls back on an unknown item.
const InvalidItemStatus = "Item number is not valid"

type NewOrderOutput struct {
	WarehouseTax     int32 // ten-thousandths
	DistrictTax      int32
	OrderID          int32
	CustomerLast     string
	CustomerCredit   string
	CustomerDiscount int32 // ten-thousandths
	EntryDate        string
	TotalAmount      int64 // cents
	Status           string // empty on success, InvalidItemStatus on rollback
	Lines            []NewOrderLine
}

// Address carries the echoed warehouse/district identity of a Payment.
type Address struct {
	Street1 string
	Street2 string
	City    string
	State   string
	Zip     string
}

type PaymentOutput struct {
	WarehouseAddress Address
	DistrictAddress  Address

	CustomerID        int32
	CustomerFirst     string
	CustomerMiddle    string
	CustomerLast      string
	CustomerAddress   Address
	CustomerPhone     string
	CustomerSince     string
	CustomerCredit    string
	CustomerCreditLim int64 // cents
	CustomerDiscount  int32 // ten-thousandths
	CustomerBalance   int64 // cents

	// CreditData holds the first 200 chars of c_data for bad-credit
	// customers, empty otherwise.
	CreditData string
}

// PaymentCreditDataEcho bounds PaymentOutput.CreditData.
const PaymentCreditDataEcho = 200

type OrderStatusLine struct {
	ItemID       int32
	SupplyWID    int32
	Quantity     int32
	Amount       int64 // cents
	DeliveryDate string
}

type OrderStatusOutput struct {
	CustomerID     int32
	CustomerFirst  string
	CustomerMiddle string
	CustomerLast   string
	Balance        int64 // cents

	OrderID   int32
	CarrierID int32
	EntryDate string
	Lines     []OrderStatusLine
}

// DeliveryOrder reports one delivered (district, order) pair.
type DeliveryOrder struct {
	DID int32
	OID int32
}
