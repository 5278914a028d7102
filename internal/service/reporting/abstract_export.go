package reporting

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/procurement/internal/domain/models"
	repo "github.com/mamadbah2/procurement/internal/repository/sheets"
	"github.com/mamadbah2/procurement/internal/service/canvass"
)

const (
	dateLayout        = "2006-01-02"
	abstractDataRange = "Abstracts!A:H"
	awardedMarker     = "AWARDED"
)

// Service exports abstracts of awards to the shared spreadsheet and summarizes them.
type Service struct {
	repo   repo.Repository
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(repository repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, logger: logger}
}

// ExportAbstract appends one row per supplier quote of a completed canvass.
// The awarded supplier's row is marked so digests can total awards.
func (s *Service) ExportAbstract(ctx context.Context, summary models.SessionSummary, rec canvass.Recommendation) error {
	rows := AbstractRows(summary, rec)
	if len(rows) == 0 {
		return nil
	}

	if err := s.repo.AppendRows(ctx, abstractDataRange, rows); err != nil {
		return fmt.Errorf("export abstract %s: %w", summary.PRRefNo, err)
	}

	s.logger.Info("abstract exported", zap.String("ref_no", summary.PRRefNo), zap.Int("rows", len(rows)))
	return nil
}

// AbstractRows lays out the spreadsheet rows of a completed canvass.
func AbstractRows(summary models.SessionSummary, rec canvass.Recommendation) [][]interface{} {
	var awardeeID string
	if rec.Awardee != nil {
		awardeeID = rec.Awardee.SupplierID
	}

	rows := make([][]interface{}, 0, len(rec.Suppliers))
	for _, st := range rec.Suppliers {
		marker := ""
		if st.SupplierID == awardeeID {
			marker = awardedMarker
		}
		rows = append(rows, []interface{}{
			summary.CompletedAt.Format(dateLayout),
			summary.PRRefNo,
			summary.CanvassRefNo,
			summary.AbstractNo,
			st.SupplierID,
			st.SupplierName,
			math.Round(st.Total*100) / 100,
			marker,
		})
	}
	return rows
}

// AwardsDigest totals the awarded rows exported between start and end.
func (s *Service) AwardsDigest(ctx context.Context, start, end time.Time) (string, error) {
	rows, err := s.repo.ReadRange(ctx, abstractDataRange)
	if err != nil {
		return "", fmt.Errorf("load abstracts range: %w", err)
	}

	var total float64
	var awards int

	for _, row := range rows {
		if len(row) < 8 {
			continue
		}
		if !strings.EqualFold(fmt.Sprint(row[7]), awardedMarker) {
			continue
		}

		dateValue, err := parseDate(row[0])
		if err != nil {
			s.logger.Debug("skip abstract row with invalid date", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		if dateValue.Before(start) || dateValue.After(end) {
			continue
		}

		amount, err := parseFloat(row[6])
		if err != nil {
			s.logger.Debug("skip abstract row with invalid total", zap.Any("value", row[6]), zap.Error(err))
			continue
		}

		total += amount
		awards++
	}

	if awards == 0 {
		return fmt.Sprintf("Awards (%s-%s): no abstracts completed.", start.Format(dateLayout), end.Format(dateLayout)), nil
	}

	return fmt.Sprintf("Awards (%s-%s): %d abstracts awarded totalling %.2f.", start.Format(dateLayout), end.Format(dateLayout), awards, total), nil
}

func parseDate(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func parseFloat(value interface{}) (float64, error) {
	str := strings.ReplaceAll(fmt.Sprint(value), ",", "")
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(str, 64)
}
