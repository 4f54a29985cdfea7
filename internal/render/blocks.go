package render

import "fmt"

// ExecutiveSummaryProps is the prose block at the top of a dashboard.
type ExecutiveSummaryProps struct {
	Content string `json:"content"`
}

// KPICardProps is a single headline metric.
type KPICardProps struct {
	Ticker              string `json:"ticker"`
	Metric              string `json:"metric"`
	Value               string `json:"value"`
	Change              string `json:"change"`
	ChangeDirection     string `json:"changeDirection"`
	ComparisonBenchmark string `json:"comparisonBenchmark,omitempty"`
}

// LineChartProps plots one or more series over a shared x axis.
type LineChartProps struct {
	Title string           `json:"title"`
	Data  []map[string]any `json:"data"`
	XKey  string           `json:"xKey"`
	YKeys []string         `json:"yKeys"`
}

// Candle is one OHLC bar.
type Candle struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

type CandlestickChartProps struct {
	Ticker string   `json:"ticker"`
	Data   []Candle `json:"data"`
}

// TimelineEvent is one dated news or filing entry.
type TimelineEvent struct {
	Date           string  `json:"date"`
	Ticker         string  `json:"ticker"`
	EntryType      string  `json:"entry_type"`
	Title          string  `json:"title"`
	Summary        string  `json:"summary"`
	SentimentScore float64 `json:"sentiment_score"`
	PriceImpactPct float64 `json:"price_impact_pct"`
}

type EventTimelineProps struct {
	Events []TimelineEvent `json:"events"`
}

type CorrelationMatrixProps struct {
	Tickers []string    `json:"tickers"`
	Data    [][]float64 `json:"data"`
	Period  string      `json:"period"`
}

func renderExecutiveSummary(props map[string]any) (any, error) {
	var p ExecutiveSummaryProps
	if err := decodeProps(props, &p); err != nil {
		return nil, err
	}
	if p.Content == "" {
		return nil, fmt.Errorf("executive-summary requires content")
	}
	return p, nil
}

func renderKPICard(props map[string]any) (any, error) {
	var p KPICardProps
	if err := decodeProps(props, &p); err != nil {
		return nil, err
	}
	if p.Metric == "" || p.Value == "" {
		return nil, fmt.Errorf("kpi-card requires metric and value")
	}
	if p.ChangeDirection != "" && p.ChangeDirection != "up" && p.ChangeDirection != "down" {
		return nil, fmt.Errorf("kpi-card changeDirection must be \"up\" or \"down\", got %q", p.ChangeDirection)
	}
	return p, nil
}

func renderLineChart(props map[string]any) (any, error) {
	var p LineChartProps
	if err := decodeProps(props, &p); err != nil {
		return nil, err
	}
	if p.Title == "" {
		return nil, fmt.Errorf("line-chart requires title")
	}
	if p.XKey == "" || len(p.YKeys) == 0 {
		return nil, fmt.Errorf("line-chart requires xKey and at least one yKey")
	}
	if p.Data == nil {
		p.Data = []map[string]any{}
	}
	return p, nil
}

func renderCandlestickChart(props map[string]any) (any, error) {
	var p CandlestickChartProps
	if err := decodeProps(props, &p); err != nil {
		return nil, err
	}
	if p.Ticker == "" {
		return nil, fmt.Errorf("candlestick-chart requires ticker")
	}
	if p.Data == nil {
		p.Data = []Candle{}
	}
	return p, nil
}

func renderEventTimeline(props map[string]any) (any, error) {
	var p EventTimelineProps
	if err := decodeProps(props, &p); err != nil {
		return nil, err
	}
	if p.Events == nil {
		p.Events = []TimelineEvent{}
	}
	return p, nil
}

func renderCorrelationMatrix(props map[string]any) (any, error) {
	var p CorrelationMatrixProps
	if err := decodeProps(props, &p); err != nil {
		return nil, err
	}
	if len(p.Tickers) == 0 {
		return nil, fmt.Errorf("correlation-matrix requires tickers")
	}
	if len(p.Data) != len(p.Tickers) {
		return nil, fmt.Errorf("correlation-matrix data must be a %dx%d matrix", len(p.Tickers), len(p.Tickers))
	}
	for i, row := range p.Data {
		if len(row) != len(p.Tickers) {
			return nil, fmt.Errorf("correlation-matrix row %d has %d entries, want %d", i, len(row), len(p.Tickers))
		}
	}
	return p, nil
}
