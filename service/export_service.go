package service

import (
	"context"
	"fmt"

	"leadcrm-backend/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Clients"

// ExportService renders client data as spreadsheets for download
type ExportService struct {
	clients *ClientService
}

// NewExportService creates a new export service
func NewExportService(clients *ClientService) *ExportService {
	return &ExportService{clients: clients}
}

// ClientsWorkbook builds an .xlsx with one row per listed client
func (s *ExportService) ClientsWorkbook(ctx context.Context, req ListClientsRequest) ([]byte, error) {
	clients, err := s.clients.List(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("name export sheet: %w", err)
	}

	header := models.Headers[models.SheetClients]
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}

	for i, c := range clients {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := c.ToRow()
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write export row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze export header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
