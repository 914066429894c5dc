package http

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/constants"
	"github.com/GSMS-B/ProjectQR/internal/infrastructure/logger"
	"github.com/GSMS-B/ProjectQR/internal/processing/codes"
	"github.com/GSMS-B/ProjectQR/internal/processing/reports"
	"github.com/GSMS-B/ProjectQR/pkg/httputils"
	"go.uber.org/zap"
)

// ReportHandler serves the suspicious-link report flow: the public form and
// submission pages, plus the owner-facing report list.
type ReportHandler struct {
	registry *codes.Registry
	reports  *reports.Service

	formTmpl     *template.Template
	thanksTmpl   *template.Template
	notFoundTmpl *template.Template
}

func NewReportHandler(registry *codes.Registry, service *reports.Service) *ReportHandler {
	return &ReportHandler{
		registry:     registry,
		reports:      service,
		formTmpl:     template.Must(template.New("report").Parse(reportPage)),
		thanksTmpl:   template.Must(template.New("reported").Parse(reportedPage)),
		notFoundTmpl: template.Must(template.New("notfound").Parse(notFoundPage)),
	}
}

type reportView struct {
	Code string
}

// Page renders the report form. Deactivated and expired codes can still be
// reported; only unknown ones get the not-found page.
func (h *ReportHandler) Page(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if _, err := h.registry.Get(r.Context(), code); err != nil {
		h.renderLookupFailure(w, err, code)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := h.formTmpl.Execute(w, reportView{Code: code}); err != nil {
		logger.Warn("failed to render report page", zap.Error(err))
	}
}

// Submit persists one report and renders the confirmation page.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if _, err := h.registry.Get(r.Context(), code); err != nil {
		h.renderLookupFailure(w, err, code)
		return
	}

	if err := r.ParseForm(); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}

	report, err := h.reports.Submit(r.Context(), reports.SubmitInput{
		Code:       code,
		ReporterIP: clientIP(r),
		Reason:     r.PostFormValue("reason"),
	})
	if err != nil {
		logger.Error("failed to store report", zap.Error(err), zap.String("code", code))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	logger.Info("suspicious link reported",
		zap.String("code", code),
		zap.String("reportId", report.ID),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := h.thanksTmpl.Execute(w, nil); err != nil {
		logger.Warn("failed to render report confirmation", zap.Error(err))
	}
}

type reportResponse struct {
	ID         string    `json:"id"`
	Reason     string    `json:"reason,omitempty"`
	Status     string    `json:"status"`
	ReportedAt time.Time `json:"reportedAt"`
}

// List returns the reports filed against a code, newest first. Part of the
// management API so owners can review what scanners flagged.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if _, err := h.registry.Get(r.Context(), code); err != nil {
		switch {
		case errors.Is(err, codes.ErrNotFound):
			httputils.WriteAPIError(w, r, constants.ErrShortNotFound)
		default:
			logger.Error("failed to fetch code for reports", zap.Error(err), zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	filed, err := h.reports.ListByCode(r.Context(), code)
	if err != nil {
		logger.Error("failed to list reports", zap.Error(err), zap.String("code", code))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	resp := make([]reportResponse, 0, len(filed))
	for _, report := range filed {
		resp = append(resp, reportResponse{
			ID:         report.ID,
			Reason:     report.Reason,
			Status:     string(report.Status),
			ReportedAt: report.ReportedAt,
		})
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessReportsFound, resp)
}

func (h *ReportHandler) renderLookupFailure(w http.ResponseWriter, err error, code string) {
	if errors.Is(err, codes.ErrNotFound) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		if err := h.notFoundTmpl.Execute(w, nil); err != nil {
			logger.Warn("failed to render not-found page", zap.Error(err))
		}
		return
	}
	logger.Error("failed to fetch code for report", zap.Error(err), zap.String("code", code))
	w.WriteHeader(http.StatusInternalServerError)
}

const reportPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Report suspicious link</title>
<style>
body{font-family:system-ui,sans-serif;background:#f4f5f7;margin:0;display:flex;justify-content:center;padding:48px 16px}
.card{background:#fff;border-radius:12px;box-shadow:0 2px 12px rgba(0,0,0,.08);max-width:480px;width:100%;padding:32px}
h1{font-size:1.25rem;margin:0 0 8px}
p{color:#57606a;font-size:.9rem}
label{display:block;font-size:.85rem;font-weight:600;margin:16px 0 4px}
textarea{width:100%;min-height:96px;border:1px solid #d0d7de;border-radius:8px;padding:8px;font:inherit;box-sizing:border-box}
button{margin-top:16px;border:0;border-radius:8px;padding:10px 20px;font-weight:600;background:#cf222e;color:#fff;cursor:pointer}
</style>
</head>
<body>
<div class="card">
<h1>Report suspicious link</h1>
<p>Tell us why this QR code looks suspicious. Reports are reviewed before any action is taken.</p>
<form method="post" action="/api/report/{{.Code}}">
<label for="reason">Why are you reporting this link?</label>
<textarea name="reason" id="reason" placeholder="Describe why you think this link is suspicious"></textarea>
<button type="submit">Submit report</button>
</form>
</div>
</body>
</html>`

const reportedPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Report submitted</title>
<style>
body{font-family:system-ui,sans-serif;background:#f4f5f7;margin:0;display:flex;justify-content:center;padding:48px 16px}
.card{background:#fff;border-radius:12px;box-shadow:0 2px 12px rgba(0,0,0,.08);max-width:480px;width:100%;padding:32px}
h1{font-size:1.25rem;margin:0 0 8px}
p{color:#57606a}
</style>
</head>
<body>
<div class="card">
<h1>Report submitted</h1>
<p>Thank you for your report. We will review it shortly.</p>
</div>
</body>
</html>`
