// cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/stock-ledger/internal/adapters/db"
	"github.com/ammerola/stock-ledger/internal/adapters/directory"
	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/core/services"
	"github.com/ammerola/stock-ledger/internal/pkg/config"
	"github.com/ammerola/stock-ledger/internal/pkg/logger"
)

// warehouseRow is one line of the "warehouses" sheet
type warehouseRow struct {
	BranchID   string
	ManagerID  string
	Line1      string
	City       string
	PostalCode string
	Country    string
}

// stockRow is one line of the "stock" sheet
type stockRow struct {
	BranchID string
	Item     domain.MovementItem
}

// seedState tracks branches already seeded so reruns are incremental
type seedState struct {
	SeededBranches []string  `json:"seeded_branches"`
	LastUpdate     time.Time `json:"last_update"`
}

func (s *seedState) has(branchID string) bool {
	for _, b := range s.SeededBranches {
		if b == branchID {
			return true
		}
	}
	return false
}

func main() {
	var (
		workbook  = flag.String("workbook", "./seed.xlsx", "Workbook with warehouses and stock sheets")
		demo      = flag.Int("demo", 0, "Generate this many demo warehouses instead of reading the workbook")
		stateFile = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun    = flag.Bool("dry-run", false, "Preview changes without modifying database")
		force     = flag.Bool("force", false, "Reseed every branch")
	)
	flag.Parse()

	log := logger.SetupLogger(*logLevel, "text").Logger

	var (
		warehouses []warehouseRow
		stock      []stockRow
		err        error
	)
	if *demo > 0 {
		warehouses, stock = demoData(*demo)
	} else {
		warehouses, stock, err = readWorkbook(*workbook)
		if err != nil {
			log.Error("failed to read workbook", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	log.Info("seed data loaded",
		slog.Int("warehouses", len(warehouses)),
		slog.Int("stock_rows", len(stock)))

	var state seedState
	if !*force {
		if data, err := os.ReadFile(*stateFile); err == nil {
			_ = json.Unmarshal(data, &state)
		}
	}

	if *dryRun {
		for _, w := range warehouses {
			fmt.Printf("DRY RUN: would seed branch %s (%d stock rows)\n", w.BranchID, len(itemsFor(stock, w.BranchID)))
		}
		return
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.NewDatabase(ctx, &db.Config{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.Name,
		SSLMode:        cfg.Database.SSLMode,
		MaxConnections: 4,
		MinConnections: 1,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		LockTimeout:    cfg.Database.LockTimeout,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	warehouseRepo := db.NewWarehouseRepository(database, log)
	ledgerRepo := db.NewLedgerRepository(database, log)
	opts := services.LedgerOptions{
		RetryAttempts:        cfg.Ledger.RetryAttempts,
		RetryInitialInterval: cfg.Ledger.RetryInitialInterval,
		RetryMaxInterval:     cfg.Ledger.RetryMaxInterval,
	}
	registry := services.NewWarehouseService(warehouseRepo, directory.AllowAll{}, nil, opts, log)
	movements := services.NewMovementService(ledgerRepo, warehouseRepo, directory.AllowAll{}, nil, opts, nil, log)

	seeded, units := 0, int64(0)
	var failed []string

	for i, row := range warehouses {
		fmt.Printf("PROGRESS: Seeding %d/%d: %s\n", i+1, len(warehouses), row.BranchID)
		if state.has(row.BranchID) {
			log.Info("skipping already seeded branch", slog.String("branch_id", row.BranchID))
			continue
		}

		n, err := seedBranch(ctx, registry, movements, row, itemsFor(stock, row.BranchID))
		if err != nil {
			log.Error("failed to seed branch",
				slog.String("branch_id", row.BranchID),
				slog.String("error", err.Error()))
			fmt.Printf("ERROR: %s - %v\n", row.BranchID, err)
			failed = append(failed, row.BranchID)
			continue
		}

		seeded++
		units += n
		state.SeededBranches = append(state.SeededBranches, row.BranchID)
		state.LastUpdate = time.Now()
	}

	data, _ := json.MarshalIndent(state, "", "  ")
	if err := os.WriteFile(*stateFile, data, 0o644); err != nil {
		log.Warn("failed to write state file", slog.String("error", err.Error()))
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Warehouses seeded: %d\n", seeded)
	fmt.Printf("Units received:    %d\n", units)
	if len(failed) > 0 {
		fmt.Printf("Failed branches (%d): %s\n", len(failed), strings.Join(failed, ", "))
	}

	log.Info("seed operation completed",
		slog.Int("warehouses", seeded),
		slog.Int64("units", units),
		slog.Int("failed", len(failed)))
}

// seedBranch registers the branch warehouse, or reuses an existing one, and
// receives its stock as a single income batch
func seedBranch(ctx context.Context, registry ports.WarehouseService, movements ports.MovementService,
	row warehouseRow, items []domain.MovementItem) (int64, error) {
	w, err := registry.CreateWarehouse(ctx, ports.CreateWarehouseRequest{
		BranchID:  row.BranchID,
		ManagerID: row.ManagerID,
		Address: domain.Address{
			Line1:      row.Line1,
			City:       row.City,
			PostalCode: row.PostalCode,
			Country:    row.Country,
		},
	})
	if errors.Is(err, domain.ErrDuplicateWarehouse) {
		w, err = registry.GetByBranch(ctx, row.BranchID)
	}
	if err != nil {
		return 0, err
	}

	if len(items) == 0 {
		return 0, nil
	}
	if _, err := movements.Income(ctx, w.ID, items); err != nil {
		return 0, err
	}

	var units int64
	for _, it := range items {
		units += it.Quantity
	}
	return units, nil
}

func itemsFor(stock []stockRow, branchID string) []domain.MovementItem {
	var items []domain.MovementItem
	for _, s := range stock {
		if s.BranchID == branchID {
			items = append(items, s.Item)
		}
	}
	return items
}

// readWorkbook loads the "warehouses" and "stock" sheets. The first row of
// each sheet is a header.
func readWorkbook(path string) ([]warehouseRow, []stockRow, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	whSheet, ok := file.Sheet["warehouses"]
	if !ok {
		return nil, nil, fmt.Errorf("workbook has no warehouses sheet")
	}

	var warehouses []warehouseRow
	err = eachRow(whSheet, func(get func(int) string) error {
		if get(0) == "" {
			return nil
		}
		warehouses = append(warehouses, warehouseRow{
			BranchID:   get(0),
			ManagerID:  get(1),
			Line1:      get(2),
			City:       get(3),
			PostalCode: get(4),
			Country:    get(5),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var stock []stockRow
	if stSheet, ok := file.Sheet["stock"]; ok {
		err = eachRow(stSheet, func(get func(int) string) error {
			if get(0) == "" {
				return nil
			}
			kind := domain.ItemKindProduct
			if s := get(2); s != "" {
				k, err := domain.ParseItemKind(s)
				if err != nil {
					return fmt.Errorf("stock row %s/%s: %w", get(0), get(1), err)
				}
				kind = k
			}
			qty, err := strconv.ParseInt(get(3), 10, 64)
			if err != nil {
				return fmt.Errorf("stock row %s/%s: bad quantity %q", get(0), get(1), get(3))
			}
			stock = append(stock, stockRow{
				BranchID: get(0),
				Item:     domain.MovementItem{ItemID: get(1), ItemKind: kind, Quantity: qty},
			})
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	return warehouses, stock, nil
}

func eachRow(sheet *xlsx.Sheet, fn func(get func(int) string) error) error {
	rowIdx := 0
	err := sheet.ForEachRow(func(r *xlsx.Row) error {
		// Skip header
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}
		return fn(get)
	})
	if err != nil {
		return fmt.Errorf("failed to iterate %s rows: %w", sheet.Name, err)
	}
	return nil
}

// demoData builds n branches stocked with a few products and materials
func demoData(n int) ([]warehouseRow, []stockRow) {
	cities := []string{"Leeds", "York", "Hull", "Bradford", "Sheffield"}
	products := []string{"SKU-TEE-BLK-M", "SKU-TEE-WHT-L", "SKU-HOODIE-GRY-M", "SKU-CAP-NVY"}
	materials := []string{"MAT-COTTON-ROLL", "MAT-INK-BLACK"}

	var (
		warehouses []warehouseRow
		stock      []stockRow
	)
	for i := 1; i <= n; i++ {
		branch := fmt.Sprintf("demo-branch-%03d", i)
		warehouses = append(warehouses, warehouseRow{
			BranchID:   branch,
			ManagerID:  fmt.Sprintf("manager-%03d", i),
			Line1:      fmt.Sprintf("%d Dock Street", i),
			City:       cities[i%len(cities)],
			PostalCode: fmt.Sprintf("LS%d 4AP", i%9+1),
			Country:    "GB",
		})
		for j, p := range products {
			stock = append(stock, stockRow{BranchID: branch, Item: domain.MovementItem{
				ItemID: p, ItemKind: domain.ItemKindProduct, Quantity: int64(10 * (i + j)),
			}})
		}
		for j, m := range materials {
			stock = append(stock, stockRow{BranchID: branch, Item: domain.MovementItem{
				ItemID: m, ItemKind: domain.ItemKindMaterial, Quantity: int64(5 * (i + j + 1)),
			}})
		}
	}
	return warehouses, stock
}
