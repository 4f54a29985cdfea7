// Seeds the warehouse with deterministic synthetic market data: two years of
// daily OHLCV per ticker, quarterly fundamentals, and sentiment-scored news.
// Safe to re-run; existing tables are dropped and rebuilt.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"financeflip-backend/internal/database"
	"financeflip-backend/internal/warehouse"
	"financeflip-backend/internal/worker"
)

type tickerProfile struct {
	symbol    string
	basePrice float64
	drift     float64
	vol       float64
}

var tickers = []tickerProfile{
	{"AAPL", 170, 0.0004, 0.015},
	{"MSFT", 330, 0.0005, 0.014},
	{"GOOGL", 135, 0.0003, 0.017},
	{"TSLA", 240, 0.0002, 0.035},
	{"NVDA", 450, 0.0012, 0.030},
	{"META", 300, 0.0006, 0.022},
	{"AMZN", 140, 0.0004, 0.019},
	{"SPY", 440, 0.0003, 0.008},
}

type priceRow struct {
	ticker                 string
	date                   string
	open, high, low, close float64
	volume                 int64
}

type newsRow struct {
	ticker    string
	date      string
	title     string
	author    string
	source    string
	url       string
	sentiment float64
}

type tickerData struct {
	prices []priceRow
	news   []newsRow
}

var headlineTemplates = []struct {
	title     string
	sentiment float64
}{
	{"%s beats quarterly earnings expectations", 0.8},
	{"%s announces new product line", 0.6},
	{"Analysts raise price target on %s", 0.7},
	{"%s faces regulatory scrutiny", -0.6},
	{"%s guidance disappoints investors", -0.7},
	{"Insider buying reported at %s", 0.4},
	{"%s margins compress on rising costs", -0.4},
	{"%s expands into new markets", 0.5},
}

var sources = []string{"MarketWatch", "Bloomberg", "Reuters", "Seeking Alpha"}
var authors = []string{"J. Rivera", "A. Chen", "M. Okafor", "S. Patel"}

func main() {
	log.Println("🌱 Seeding warehouse...")

	godotenv.Load()
	path := os.Getenv("WAREHOUSE_PATH")
	if path == "" {
		path = "./data/warehouse.db"
	}

	db, err := database.NewSQLitePool(path)
	if err != nil {
		log.Fatalf("✗ Warehouse open failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for table := range warehouse.TableColumns {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			log.Fatalf("✗ Failed to drop %s: %v", table, err)
		}
	}
	if err := warehouse.New(db).InitSchema(ctx); err != nil {
		log.Fatalf("✗ Schema init failed: %v", err)
	}
	log.Println("✓ Tables rebuilt")

	// Generate per-ticker datasets in parallel; inserts stay single-writer.
	var mu sync.Mutex
	datasets := make(map[string]tickerData)

	pool := worker.NewPool(4)
	pool.Start()
	for _, profile := range tickers {
		profile := profile
		pool.Submit(func() {
			data := generateTicker(profile)
			mu.Lock()
			datasets[profile.symbol] = data
			mu.Unlock()
		})
	}
	pool.Wait()

	if err := insertAll(ctx, db, datasets); err != nil {
		log.Fatalf("✗ Insert failed: %v", err)
	}

	var priceCount, newsCount int
	for _, d := range datasets {
		priceCount += len(d.prices)
		newsCount += len(d.news)
	}
	log.Printf("✓ Seeded %d tickers, %d price rows, %d news rows into %s",
		len(tickers), priceCount, newsCount, path)
}

// generateTicker builds a reproducible random walk for one ticker. The seed
// comes from the symbol so re-runs produce identical data.
func generateTicker(profile tickerProfile) tickerData {
	h := fnv.New64a()
	h.Write([]byte(profile.symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	start := time.Now().AddDate(-2, 0, 0)
	end := time.Now()

	var data tickerData
	price := profile.basePrice
	day := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		day++

		ret := profile.drift + profile.vol*rng.NormFloat64()
		open := price
		close := price * (1 + ret)
		high := math.Max(open, close) * (1 + rng.Float64()*0.01)
		low := math.Min(open, close) * (1 - rng.Float64()*0.01)
		volume := int64(20_000_000 + rng.Intn(80_000_000))
		price = close

		date := d.Format("2006-01-02")
		data.prices = append(data.prices, priceRow{
			ticker: profile.symbol, date: date,
			open: round2(open), high: round2(high), low: round2(low), close: round2(close),
			volume: volume,
		})

		// A headline roughly every two trading weeks.
		if day%10 == 3 {
			tmpl := headlineTemplates[rng.Intn(len(headlineTemplates))]
			data.news = append(data.news, newsRow{
				ticker:    profile.symbol,
				date:      date,
				title:     fmt.Sprintf(tmpl.title, profile.symbol),
				author:    authors[rng.Intn(len(authors))],
				source:    sources[rng.Intn(len(sources))],
				url:       fmt.Sprintf("https://news.example.com/%s/%s", profile.symbol, date),
				sentiment: round2(tmpl.sentiment + rng.Float64()*0.2 - 0.1),
			})
		}
	}
	return data
}

func insertAll(ctx context.Context, db *sql.DB, datasets map[string]tickerData) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	priceStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO stock_prices (ticker, date, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer priceStmt.Close()

	newsStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO news (ticker, date, title, author, source, url, sentiment) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer newsStmt.Close()

	metricsStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO financial_metrics (ticker, report_period, market_cap, pe_ratio, pb_ratio,
		 current_ratio, debt_to_equity, revenue_growth, net_income_growth, free_cash_flow_yield)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer metricsStmt.Close()

	for _, profile := range tickers {
		data := datasets[profile.symbol]
		for _, p := range data.prices {
			if _, err := priceStmt.ExecContext(ctx, p.ticker, p.date, p.open, p.high, p.low, p.close, p.volume); err != nil {
				return fmt.Errorf("insert price for %s: %w", p.ticker, err)
			}
		}
		for _, n := range data.news {
			if _, err := newsStmt.ExecContext(ctx, n.ticker, n.date, n.title, n.author, n.source, n.url, n.sentiment); err != nil {
				return fmt.Errorf("insert news for %s: %w", n.ticker, err)
			}
		}
		if err := insertMetrics(ctx, metricsStmt, profile); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// insertMetrics writes eight deterministic quarterly reports per ticker.
func insertMetrics(ctx context.Context, stmt *sql.Stmt, profile tickerProfile) error {
	h := fnv.New64a()
	h.Write([]byte(profile.symbol + ":metrics"))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	now := time.Now()
	for q := 7; q >= 0; q-- {
		reportDate := now.AddDate(0, -3*q, 0)
		period := fmt.Sprintf("%d-Q%d", reportDate.Year(), (int(reportDate.Month())-1)/3+1)

		marketCap := profile.basePrice * float64(1_000_000_000+rng.Intn(2_000_000_000))
		_, err := stmt.ExecContext(ctx,
			profile.symbol, period,
			round2(marketCap),
			round2(15+rng.Float64()*30),
			round2(2+rng.Float64()*10),
			round2(1+rng.Float64()*1.5),
			round2(0.3+rng.Float64()*1.2),
			round2(rng.Float64()*0.3-0.05),
			round2(rng.Float64()*0.4-0.1),
			round2(0.01+rng.Float64()*0.05),
		)
		if err != nil {
			return fmt.Errorf("insert metrics for %s: %w", profile.symbol, err)
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
