package database

import (
	"time"

	"go-topup-store/internal/models"
)

// SalesReportResult holds the data the dashboard and the AI assistant need
type SalesReportResult struct {
	TotalRevenue float64
	TotalCount   int64
}

// GetSalesReport calculates completed-order revenue within a date range
func GetSalesReport(start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL if no orders exist
	err := DB.Model(&models.Order{}).
		Where("status = ? AND created_at BETWEEN ? AND ?", models.OrderCompleted, start, end).
		Select("COALESCE(SUM(price), 0)").
		Scan(&result.TotalRevenue).Error

	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Order{}).
		Where("status = ? AND created_at BETWEEN ? AND ?", models.OrderCompleted, start, end).
		Count(&result.TotalCount).Error

	if err != nil {
		return nil, err
	}

	return &result, nil
}
