package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArticleSummary fila del listado de artículos, valorada desde el libro de movimientos.
type ArticleSummary struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	CurrentQuantity int64           `json:"current_quantity"`
	AverageCost     decimal.Decimal `json:"average_cost"`
	StockValue      decimal.Decimal `json:"stock_value"` // CurrentQuantity * AverageCost
	Barcode         string          `json:"barcode,omitempty"`
}

// ReportQuery rango inclusivo [Start, End] y filtro opcional por artículo.
type ReportQuery struct {
	Start     time.Time
	End       time.Time
	ArticleID *int64
}

// PeriodSummary fila del reporte detallado por período.
type PeriodSummary struct {
	ArticleID      int64           `json:"article_id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	TotalEntries   int64           `json:"total_entries"`
	TotalExits     int64           `json:"total_exits"`
	ExitPercentage decimal.Decimal `json:"exit_percentage"` // TotalExits / TotalEntries * 100
	AverageCost    decimal.Decimal `json:"average_cost"`    // sobre los movimientos del período
}

// DetailedReportResponse salida de GET /api/reports/detailed.
type DetailedReportResponse struct {
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
	Items []PeriodSummary `json:"items"`
}

// StatementLine fila del kardex con acumulados.
type StatementLine struct {
	MovementID      int64           `json:"movement_id"`
	OccurredAt      time.Time       `json:"occurred_at"`
	Description     string          `json:"description"`
	Direction       string          `json:"direction"`
	Quantity        int64           `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	MovementValue   decimal.Decimal `json:"movement_value"`
	RunningQuantity int64           `json:"running_quantity"`
	AverageCost     decimal.Decimal `json:"average_cost"`
	StockValue      decimal.Decimal `json:"stock_value"`
}

// StatementResponse kardex de un artículo.
type StatementResponse struct {
	Article ArticleSummary  `json:"article"`
	Lines   []StatementLine `json:"lines"`
}
