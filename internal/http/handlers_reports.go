package http

import (
	"net/http"
	"strings"

	"familybudget/internal/export"
	applog "familybudget/internal/log"
	"familybudget/internal/services"
)

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	params, err := requestParams(r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	month, err := ParseMonthParam(params)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	rep, err := s.reports.Monthly(r.Context(), owner, month, s.now())
	if err != nil {
		s.writeError(w, r, applog.OpBuild, err)
		return
	}
	NewJSONResponse().JSON(rep).Write(w)
}

func (s *Server) handleAnalysisReport(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	params, err := requestParams(r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	period, err := ParsePeriodParam(params)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	rep, err := s.reports.Analysis(r.Context(), owner, period, s.now())
	if err != nil {
		s.writeError(w, r, applog.OpBuild, err)
		return
	}
	NewJSONResponse().JSON(rep).Write(w)
}

// handleExportDownload renders "monthly.pdf", "analysis.xlsx",
// "ledger.xlsx" and so on inline.
func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	kind, format, err := parseExportName(r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	query := r.URL.Query()
	month, err := ParseMonthParam(query)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	period, err := ParsePeriodParam(query)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	sheets, err := ParseSheetsParam(query)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	doc, err := s.exports.Render(r.Context(), services.ExportRequest{
		Owner:  owner,
		Kind:   kind,
		Month:  month,
		Period: period,
		Format: format,
		Sheets: sheets,
	}, s.now())
	if err != nil {
		s.writeError(w, r, applog.OpRender, err)
		return
	}
	NewJSONResponse().Attachment(doc.Name, doc.ContentType, doc.Data).Write(w)
}

// handleExportEnqueue queues an export job and answers 202 with its id.
func (s *Server) handleExportEnqueue(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	params, err := requestParams(r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	kind, err := ParseKindParam(params)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	formatParam := params.Get("format")
	if strings.TrimSpace(formatParam) == "" {
		formatParam = string(export.FormatPDF)
	}
	format, err := export.ParseFormat(formatParam)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	month, err := ParseMonthParam(params)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	period, err := ParsePeriodParam(params)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	sheets, err := ParseSheetsParam(params)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	jobID, err := s.exports.Enqueue(r.Context(), services.ExportRequest{
		Owner:  owner,
		Kind:   kind,
		Month:  month,
		Period: period,
		Format: format,
		Sheets: sheets,
	}, s.now())
	if err != nil {
		s.writeError(w, r, applog.OpPublish, err)
		return
	}
	NewJSONResponse().Status(http.StatusAccepted).JSON(map[string]string{
		"job_id": jobID,
		"status": "queued",
	}).Write(w)
}
