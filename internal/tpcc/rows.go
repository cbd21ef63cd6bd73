// Package tpcc defines the TPC-C row types, scale constants and the
// composite key codecs shared by the store, the disk tier and the driver.
package tpcc

// Scale constants. Money columns are integer cents, rates and discounts are
// integer ten-thousandths.
const (
	NumItems       = 100000
	MinImageID     = 1
	MaxImageID     = 10000
	MinItemPrice   = 100   // 1.00
	MaxItemPrice   = 10000 // 100.00
	MaxItemName    = 24
	MinItemData    = 26
	MaxItemData    = 50

	// MaxWarehouseID is bounded by the 32-bit stock key:
	// w*NumItems + i must stay under 1<<31.
	MaxWarehouseID = 21473

	DistrictsPerWarehouse = 10
	CustomersPerDistrict  = 3000
	InitialOrdersPerDistrict = 3000
	// The last 900 orders of each district are loaded undelivered.
	InitialNewOrdersPerDistrict = 900

	MinTax = 0
	MaxTax = 2000 // 0.2000

	InitialWarehouseYTD = 30000000 // 300000.00
	InitialDistrictYTD  = 3000000  // 30000.00

	MaxCustomerFirst = 16
	MaxCustomerLast  = 16
	MinCustomerData  = 300
	MaxCustomerData  = 500
	InitialCreditLim = 5000000 // 50000.00
	InitialBalance   = -1000   // -10.00
	InitialYTDPayment = 1000   // 10.00
	InitialPaymentCnt = 1
	GoodCredit       = "GC"
	BadCredit        = "BC"
	CustomersWithBadCredit = 10 // percent

	NullCarrierID = 0
	MinCarrierID  = 1
	MaxCarrierID  = 10
	MinOLCnt      = 5
	MaxOLCnt      = 15

	MinStockQuantity = 10
	MaxStockQuantity = 100
	StockPerWarehouse = NumItems
	MinStockData      = 26
	MaxStockData      = 50

	MaxOLQuantity = 10

	MinOLAmount = 1      // 0.01
	MaxOLAmount = 999999 // 9999.99

	DistInfoSize = 24

	MaxStreet = 20
	MaxCity   = 20
	StateSize = 2
	ZipSize   = 9
	PhoneSize = 16

	MinPaymentAmount = 100    // 1.00
	MaxPaymentAmount = 500000 // 5000.00

	MinStockLevelThreshold = 10
	MaxStockLevelThreshold = 20
	StockLevelOrders       = 20

	// OriginalString marks ~10% of item and stock data fields.
	OriginalString = "ORIGINAL"

	// DatetimeSize is the length of the fixed "YYYY-MM-DD HH:MM:SS" stamp.
	DatetimeSize    = 19
	DatetimeFormat  = "2006-01-02 15:04:05"
)

// Item is immutable after load and stored densely by ID.
type Item struct {
	ID      int32
	ImageID int32
	Price   int64 // cents
	Name    string
	Data    string
}

// Warehouse is mutated only by Payment (YTD).
type Warehouse struct {
	ID      int32
	Tax     int32 // ten-thousandths
	YTD     int64 // cents
	Name    string
	Street1 string
	Street2 string
	City    string
	State   string
	Zip     string
}

type District struct {
	ID      int32
	WID     int32
	Tax     int32 // ten-thousandths
	YTD     int64 // cents
	NextOID int32
	Name    string
	Street1 string
	Street2 string
	City    string
	State   string
	Zip     string
}

// Stock is a cold-tier candidate.
type Stock struct {
	IID       int32
	WID       int32
	Quantity  int32
	YTD       int32 // quantity units, not money
	OrderCnt  int32
	RemoteCnt int32
	Dist      [DistrictsPerWarehouse]string
	Data      string
}

// Customer is a cold-tier candidate. The by-name secondary index copies the
// immutable identity fields so evicted customers stay reachable.
type Customer struct {
	ID          int32
	DID         int32
	WID         int32
	CreditLim   int64 // cents
	Discount    int32 // ten-thousandths
	Balance     int64 // cents
	YTDPayment  int64 // cents
	PaymentCnt  int32
	DeliveryCnt int32
	First       string
	Middle      string
	Last        string
	Street1     string
	Street2     string
	City        string
	State       string
	Zip         string
	Phone       string
	Since       string
	Credit      string // GoodCredit or BadCredit
	Data        string
}

type Order struct {
	ID        int32
	CID       int32
	DID       int32
	WID       int32
	CarrierID int32 // NullCarrierID until delivered
	OLCnt     int32
	AllLocal  bool
	EntryDate string
}

// OrderLine is a cold-tier candidate.
type OrderLine struct {
	OID          int32
	DID          int32
	WID          int32
	Number       int32 // 1..OLCnt
	IID          int32
	SupplyWID    int32
	Quantity     int32
	Amount       int64 // cents
	DeliveryDate string
	DistInfo     string
}

// NewOrder marks an undelivered order; FIFO per district by order id.
type NewOrder struct {
	WID int32
	DID int32
	OID int32
}

// History is an append-only payment log row.
type History struct {
	CID    int32
	CDID   int32
	CWID   int32
	DID    int32
	WID    int32
	Amount int64 // cents
	Date   string
	Data   string
}
