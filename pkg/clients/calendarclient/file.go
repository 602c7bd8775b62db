package calendarclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/validation"
)

// FileClient serves calendars recorded as JSON files, one per shift:
// <dir>/<plan>_<shift>.json, falling back to <dir>/calendar.json
type FileClient struct {
	dir    string
	logger *zap.Logger
}

func NewFileClient(dir string, logger *zap.Logger) *FileClient {
	return &FileClient{dir: dir, logger: logger}
}

func (c *FileClient) FetchCalendar(ctx context.Context, req model.CalendarRequest) (*model.CalendarResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, fmt.Errorf("invalid calendar request: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("calendar fetch cancelled: %w", err)
	}

	path := filepath.Join(c.dir, fmt.Sprintf("%s_%s.json", req.PlanSlug, req.TimeOfDay))
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(c.dir, "calendar.json")
	}

	resp, err := ReadCalendarFile(path)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Loaded calendar file",
		zap.String("path", path),
		zap.String("shift", string(req.TimeOfDay)),
		zap.Int("days", len(resp.Dates)))

	return resp, nil
}

// ReadCalendarFile reads and validates a calendar response from a JSON file
func ReadCalendarFile(path string) (*model.CalendarResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar file: %w", err)
	}

	var resp model.CalendarResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse calendar file %s: %w", path, err)
	}

	if err := validation.CalendarResponse(&resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// WriteCalendarFile writes a calendar response as indented JSON
func WriteCalendarFile(path string, resp *model.CalendarResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal calendar: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write calendar file: %w", err)
	}
	return nil
}
