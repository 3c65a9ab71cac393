package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"familybudget/internal/core"
	"familybudget/internal/report"
)

// Export formats understood by the worker.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// Report kinds carried by an export request.
const (
	KindMonthly  = "monthly"
	KindAnalysis = "analysis"
	KindLedger   = "ledger"
)

// Sheet selections for workbook exports; empty means every sheet.
var sheetSelections = map[string]bool{"": true, "all": true, "expenses": true, "incomes": true, "goals": true}

// ExportRequestMessage asks the worker to build one report for one owner and
// write it to the export directory. RequestedAt is the report's reference
// instant, so a job replayed later renders the same figures.
type ExportRequestMessage struct {
	JobID       string    `json:"job_id"`
	Owner       string    `json:"owner"`
	Kind        string    `json:"kind"`
	Month       string    `json:"month,omitempty"`
	Period      int       `json:"period,omitempty"`
	Format      string    `json:"format"`
	Sheets      string    `json:"sheets,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewExportRequestMessage creates a request with a fresh job id.
func NewExportRequestMessage(owner, kind, month string, period int, format string, requestedAt time.Time) *ExportRequestMessage {
	return &ExportRequestMessage{
		JobID:       uuid.NewString(),
		Owner:       owner,
		Kind:        kind,
		Month:       month,
		Period:      period,
		Format:      format,
		RequestedAt: requestedAt,
	}
}

func (m *ExportRequestMessage) Validate() error {
	var errs []error
	if m.JobID == "" {
		errs = append(errs, errors.New("missing job_id"))
	}
	if m.Owner == "" {
		errs = append(errs, errors.New("missing owner"))
	}
	if m.Kind != KindMonthly && m.Kind != KindAnalysis && m.Kind != KindLedger {
		errs = append(errs, fmt.Errorf("unknown kind %q", m.Kind))
	}
	if m.Month != "" {
		if err := core.MonthKey(m.Month).Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.Period < 0 || m.Period > report.MaxPeriodMonths {
		errs = append(errs, fmt.Errorf("%w: %d", report.ErrInvalidPeriod, m.Period))
	}
	if m.Format != FormatPDF && m.Format != FormatXLSX {
		errs = append(errs, fmt.Errorf("unknown format %q", m.Format))
	}
	if !sheetSelections[m.Sheets] {
		errs = append(errs, fmt.Errorf("unknown sheets %q", m.Sheets))
	}
	if m.RequestedAt.IsZero() {
		errs = append(errs, errors.New("missing requested_at"))
	}
	return errors.Join(errs...)
}

// ToJSON converts the message to JSON bytes
func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestMessageFromJSON decodes and validates a message body.
func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export request: %w", err)
	}
	return &msg, nil
}
