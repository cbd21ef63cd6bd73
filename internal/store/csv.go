package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/blitzdb/tpccbench/internal/btree"
	"github.com/blitzdb/tpccbench/internal/tpcc"
	"github.com/blitzdb/tpccbench/pkg/helpers"
)

// CSV export runs against a freshly loaded, unmounted store: every tuple
// is still resident, so the four table dumps can scan the trees
// concurrently without touching a decompressor. One row per line, fields
// in table-declaration order, strings unquoted.

// ExportCSV writes orderline.csv, stock.csv, customer.csv and history.csv
// into dir.
func (s *Store) ExportCSV(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create csv directory: %w", err)
	}

	var g errgroup.Group
	g.Go(func() error { return s.orderLinesToCSV(filepath.Join(dir, "orderline.csv")) })
	g.Go(func() error { return s.stockToCSV(filepath.Join(dir, "stock.csv")) })
	g.Go(func() error { return s.customersToCSV(filepath.Join(dir, "customer.csv")) })
	g.Go(func() error { return s.historyToCSV(filepath.Join(dir, "history.csv")) })
	return g.Wait()
}

func writeCSV(path string, emit func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriterSize(f, 1<<20)
	if err := emit(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// fields joins the given column strings with commas and a newline.
func fields(w *bufio.Writer, cols ...string) {
	for i, c := range cols {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteString(c)
	}
	w.WriteByte('\n')
}

func itoa(v int32) string { return strconv.FormatInt(int64(v), 10) }

func (s *Store) orderLinesToCSV(path string) error {
	return writeCSV(path, func(w *bufio.Writer) error {
		scanResident(s.orderLines, func(ol *tpcc.OrderLine) {
			fields(w,
				itoa(ol.OID), itoa(ol.DID), itoa(ol.WID), itoa(ol.Number),
				itoa(ol.IID), itoa(ol.SupplyWID), itoa(ol.Quantity),
				helpers.FormatMoney(ol.Amount), ol.DeliveryDate, ol.DistInfo)
		})
		return nil
	})
}

func (s *Store) stockToCSV(path string) error {
	return writeCSV(path, func(w *bufio.Writer) error {
		scanResident(s.stock, func(st *tpcc.Stock) {
			cols := []string{
				itoa(st.IID), itoa(st.WID), itoa(st.Quantity),
				itoa(st.YTD), itoa(st.OrderCnt), itoa(st.RemoteCnt),
			}
			cols = append(cols, st.Dist[:]...)
			cols = append(cols, st.Data)
			fields(w, cols...)
		})
		return nil
	})
}

func (s *Store) customersToCSV(path string) error {
	return writeCSV(path, func(w *bufio.Writer) error {
		scanResident(s.customers, func(c *tpcc.Customer) {
			fields(w,
				itoa(c.ID), itoa(c.DID), itoa(c.WID),
				helpers.FormatMoney(c.CreditLim), helpers.FormatRate(c.Discount),
				helpers.FormatMoney(c.Balance), helpers.FormatMoney(c.YTDPayment),
				itoa(c.PaymentCnt), itoa(c.DeliveryCnt),
				c.First, c.Middle, c.Last,
				c.Street1, c.Street2, c.City, c.State, c.Zip,
				c.Phone, c.Since, c.Credit, c.Data)
		})
		return nil
	})
}

func (s *Store) historyToCSV(path string) error {
	return writeCSV(path, func(w *bufio.Writer) error {
		for _, h := range s.history {
			fields(w,
				itoa(h.CID), itoa(h.CDID), itoa(h.CWID),
				itoa(h.DID), itoa(h.WID),
				helpers.FormatMoney(h.Amount), h.Date, h.Data)
		}
		return nil
	})
}

// scanResident walks a cold table assuming every tuple is resident.
func scanResident[K int32 | int64, R any](tree *btree.Tree[K, *Tuple[R]], fn func(*R)) {
	tree.Scan(func(_ K, t *Tuple[R]) bool {
		if t.row != nil {
			fn(t.row)
		}
		return true
	})
}
