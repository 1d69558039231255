package rowstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsConfig identifies the spreadsheet and how to authenticate against it.
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsJSON string // service account JSON, inline
	CredentialsFile string // path to a service account JSON file
}

// SheetsStore implements Store against the Google Sheets v4 API.
type SheetsStore struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// NewSheetsStore authenticates with a service account (inline JSON first,
// then file) and falls back to application default credentials.
func NewSheetsStore(ctx context.Context, cfg SheetsConfig) (*SheetsStore, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), gsheet.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account json: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, b, gsheet.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse credentials file: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	default:
		opts = append(opts, option.WithScopes(gsheet.SpreadsheetsScope))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewSheetsStoreWithService(svc, cfg.SpreadsheetID), nil
}

// NewSheetsStoreWithService wraps an already configured service.
func NewSheetsStoreWithService(svc *gsheet.Service, spreadsheetID string) *SheetsStore {
	return &SheetsStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}
}

func (s *SheetsStore) ReadRange(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (s *SheetsStore) AppendRow(ctx context.Context, rng string, row []interface{}) error {
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

func (s *SheetsStore) UpdateRow(ctx context.Context, rng string, row []interface{}) error {
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (s *SheetsStore) DeleteRows(ctx context.Context, sheet string, rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	if err := validateRows(rows); err != nil {
		return err
	}

	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	// Requests inside one batchUpdate are applied in order, so descending
	// order keeps every pending index valid.
	var reqs []*gsheet.Request
	for _, r := range Descending(rows) {
		reqs = append(reqs, &gsheet.Request{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(r - 1),
					EndIndex:        int64(r),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		})
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete rows in %s: %w", sheet, err)
	}
	return nil
}

// sheetID resolves a sheet title to its numeric id. Ids never change for the
// lifetime of a sheet, so they are cached.
func (s *SheetsStore) sheetID(ctx context.Context, title string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.sheetIDs[title]; ok {
		return id, nil
	}

	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("load sheet metadata: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
	}

	id, ok := s.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("%s: %w", title, ErrUnknownSheet)
	}
	return id, nil
}
