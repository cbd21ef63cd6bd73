// Package main provides the tpcc binary: load a TPC-C database into the
// hybrid store, then either dump it to CSV or run the benchmark mix.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/google/uuid"

	"github.com/blitzdb/tpccbench/internal/config"
	"github.com/blitzdb/tpccbench/internal/driver"
	"github.com/blitzdb/tpccbench/internal/store"
	"github.com/blitzdb/tpccbench/internal/tpcc"
	"github.com/blitzdb/tpccbench/pkg/logging"
)

const usage = `usage: tpcc <num_warehouses> <memory_budget> [mode]
  num_warehouses  1..%d
  memory_budget   resident byte budget, raw bytes or human readable ("512MB"); 0 disables eviction
  mode            0 (default) run the benchmark, 1 dump CSV and exit
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tpcc:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		fmt.Fprintf(os.Stderr, usage, tpcc.MaxWarehouseID)
		return fmt.Errorf("expected 2 or 3 arguments, got %d", len(args))
	}

	numWarehouses64, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("bad warehouse number %q: %w", args[0], err)
	}
	numWarehouses := int32(numWarehouses64)
	if err := tpcc.ValidateKeySpace(numWarehouses); err != nil {
		return err
	}

	var budget datasize.ByteSize
	if err := budget.UnmarshalText([]byte(args[1])); err != nil {
		return fmt.Errorf("bad memory budget %q: %w", args[1], err)
	}

	genCSV := false
	if len(args) == 3 {
		mode, err := strconv.Atoi(args[2])
		if err != nil || (mode != 0 && mode != 1) {
			return fmt.Errorf("bad mode %q: want 0 or 1", args[2])
		}
		genCSV = mode == 1
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	log := logging.New(&logging.Config{
		Level:      cfg.Logging.Level,
		TimeFormat: time.TimeOnly,
		Prefix:     "tpcc",
	})
	logging.SetDefault(log)

	tables := store.New(store.Options{
		MemoryBudget:   int64(budget.Bytes()),
		BlockSize:      cfg.Storage.BlockSize,
		InternalFanout: cfg.Storage.InternalFanout,
		LeafFanout:     cfg.Storage.LeafFanout,
		Logger:         log.Component("store"),
	})
	defer tables.Close()

	// The timestamp is captured once here and reused as `now` for every
	// transaction of the run.
	now := time.Now().Format(tpcc.DatetimeFormat)

	gen := driver.NewGenerator(time.Now().UnixNano())
	cLoad := driver.MakeRandomNURandC(gen)
	gen.SetC(cLoad)

	log.Info("loading warehouses", "count", numWarehouses)
	begin := time.Now()
	loader := driver.NewLoader(gen, now)
	loader.MakeItems(tables)
	for w := int32(1); w <= numWarehouses; w++ {
		loader.MakeWarehouse(tables, w)
	}
	log.Info("load done", "elapsed", time.Since(begin).Round(time.Millisecond),
		"resident", datasize.ByteSize(tables.MemoryBytes()).HumanReadable())

	if genCSV {
		begin = time.Now()
		if err := tables.ExportCSV(cfg.Storage.DataDir); err != nil {
			return err
		}
		log.Info("csv export done", "dir", cfg.Storage.DataDir,
			"elapsed", time.Since(begin).Round(time.Millisecond))
		return nil
	}

	// Mount: train the cold-table compressors and write the initial
	// blocks; from here on rows can be evicted.
	modelID := uuid.NewString()[:8]
	log.Info("transforming warehouses", "model_id", modelID)
	begin = time.Now()
	if err := tables.Mount(cfg.Storage.DataDir, modelID); err != nil {
		return err
	}
	log.Info("mount done", "elapsed", time.Since(begin).Round(time.Millisecond),
		"disk", datasize.ByteSize(tables.DiskBytes()).HumanReadable())

	// Fresh constants for the run phase.
	runGen := driver.NewGenerator(time.Now().UnixNano())
	runGen.SetC(driver.MakeRandomNURandCForRun(runGen, cLoad))

	client := driver.NewClient(log.Component("client"), runGen, tables,
		loader.Items(), numWarehouses, loader.CustomersPerDistrict(), now)

	log.Info("running", "transactions", cfg.Benchmark.Transactions)
	var total time.Duration
	var interval time.Duration
	for i := 1; i <= cfg.Benchmark.Transactions; i++ {
		interval += client.DoOne()

		if i%cfg.Benchmark.ReportInterval == 0 {
			throughput := float64(cfg.Benchmark.ReportInterval) / interval.Seconds()
			fmt.Printf("%f, %d, %d\n", throughput, tables.MemoryBytes(), tables.DiskBytes())
			total += interval
			interval = 0
		}
	}
	total += interval

	throughput := float64(cfg.Benchmark.Transactions) / total.Seconds()
	log.Info("run done", "transactions", cfg.Benchmark.Transactions,
		"elapsed", total.Round(time.Millisecond), "txns_per_sec", fmt.Sprintf("%.1f", throughput))
	printMemDiskSize(tables)
	return nil
}

// printMemDiskSize prints the per-table memory and disk breakdown.
func printMemDiskSize(tables *store.Store) {
	stat := tables.Stat()
	fmt.Println("[Table Name]: [Memory Size] + [Disk Size]")
	fmt.Printf("Warehouse: %d byte\n", stat.WarehouseMem)
	fmt.Printf("District: %d byte\n", stat.DistrictMem)
	fmt.Printf("Customer: %d + %d byte\n", stat.CustomerMem, stat.CustomerDisk)
	fmt.Printf("Order: %d byte\n", stat.OrderMem)
	fmt.Printf("Orderline: %d + %d byte\n", stat.OrderLineMem, stat.OrderLineDisk)
	fmt.Printf("NewOrder: %d byte\n", stat.NewOrderMem)
	fmt.Printf("Item: %d byte\n", stat.ItemMem)
	fmt.Printf("Stock: %d + %d byte\n", stat.StockMem, stat.StockDisk)
	fmt.Printf("History: %d byte\n", stat.HistoryMem)
	fmt.Println("--------------------------------------------")
	fmt.Printf("Mem: %d, Disk: %d byte\n", stat.TotalMem(), stat.TotalDisk())
	fmt.Printf("Total: %d byte\n", stat.TotalMem()+stat.TotalDisk())
}
