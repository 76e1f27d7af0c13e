package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/dafibh/payfi/payfi-backend/internal/websocket"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

const exportContentType = "text/csv"

// spendingCSVRow is one line of a history export
type spendingCSVRow struct {
	Timestamp      string `csv:"Timestamp"`
	Category       string `csv:"Category"`
	Merchant       string `csv:"Merchant"`
	Description    string `csv:"Description"`
	Amount         string `csv:"Amount"`
	Approved       bool   `csv:"Approved"`
	ExecutedAmount string `csv:"ExecutedAmount"`
}

// MarshalHistoryCSV renders records as CSV with a header row
func MarshalHistoryCSV(records []domain.SpendingRecord) ([]byte, error) {
	rows := make([]*spendingCSVRow, len(records))
	for i, r := range records {
		rows[i] = &spendingCSVRow{
			Timestamp:      r.Intent.Timestamp.UTC().Format(time.RFC3339),
			Category:       string(r.Intent.Category),
			Merchant:       r.Intent.Merchant,
			Description:    r.Intent.Description,
			Amount:         r.Intent.Amount.String(),
			Approved:       r.Approved,
			ExecutedAmount: r.ExecutedAmount.String(),
		}
	}
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("error writing CSV data: %w", err)
	}
	return data, nil
}

// ExportHistory uploads the agent's spend history as CSV and returns a presigned URL
func (s *SpendingService) ExportHistory(ctx context.Context, ownerID string, agentID uuid.UUID) (*domain.HistoryExport, error) {
	if s.exportRepo == nil {
		return nil, domain.ErrExportUnavailable
	}

	records := s.trackers.Get(ownerID, agentID).History()
	if len(records) == 0 {
		return nil, domain.ErrEmptyHistory
	}

	data, err := MarshalHistoryCSV(records)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	objectPath := fmt.Sprintf("spending-exports/%s/%s/%s-%s.csv",
		url.PathEscape(ownerID), agentID.String(), now.Format("20060102T150405Z"), uuid.New().String())

	if _, err := s.exportRepo.Upload(ctx, objectPath, bytes.NewReader(data), exportContentType, int64(len(data))); err != nil {
		return nil, err
	}

	presigned, err := s.exportRepo.GeneratePresignedURL(ctx, objectPath, s.exportURLTTL)
	if err != nil {
		return nil, err
	}

	export := &domain.HistoryExport{
		ObjectPath:  objectPath,
		URL:         presigned,
		RecordCount: len(records),
		ExpiresAt:   now.Add(s.exportURLTTL),
	}

	s.logger.Info().
		Str("owner_id", ownerID).
		Str("agent_id", agentID.String()).
		Str("object_path", objectPath).
		Int("record_count", len(records)).
		Msg("Exported spending history")

	s.publishEvent(ownerID, websocket.SpendingExported(agentID.String(), export))
	return export, nil
}
