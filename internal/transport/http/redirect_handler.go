package http

import (
	"html/template"
	"net"
	"net/http"
	"strings"

	"github.com/GSMS-B/ProjectQR/internal/config"
	"github.com/GSMS-B/ProjectQR/internal/infrastructure/logger"
	"github.com/GSMS-B/ProjectQR/internal/processing/resolve"
	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	"github.com/GSMS-B/ProjectQR/internal/processing/security"
	"go.uber.org/zap"
)

// RedirectHandler serves the public scan surface: the redirect itself plus
// the interstitial preview, blocked and not-found pages.
type RedirectHandler struct {
	cfg    *config.Config
	engine *resolve.Engine

	previewTmpl  *template.Template
	blockedTmpl  *template.Template
	notFoundTmpl *template.Template
}

func NewRedirectHandler(cfg *config.Config, engine *resolve.Engine) *RedirectHandler {
	return &RedirectHandler{
		cfg:          cfg,
		engine:       engine,
		previewTmpl:  template.Must(template.New("preview").Parse(previewPage)),
		blockedTmpl:  template.Must(template.New("blocked").Parse(blockedPage)),
		notFoundTmpl: template.Must(template.New("notfound").Parse(notFoundPage)),
	}
}

func (h *RedirectHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	decision, err := h.engine.Resolve(r.Context(), code, requestContext(r))
	if err != nil {
		logger.Error("failed to resolve code", zap.Error(err), zap.String("code", code))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.render(w, r, decision)
}

func (h *RedirectHandler) Preview(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	decision, err := h.engine.Preview(r.Context(), code, requestContext(r))
	if err != nil {
		logger.Error("failed to preview code", zap.Error(err), zap.String("code", code))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.render(w, r, decision)
}

func (h *RedirectHandler) render(w http.ResponseWriter, r *http.Request, decision *resolve.Decision) {
	switch decision.Outcome {
	case resolve.OutcomeNotFound:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		if err := h.notFoundTmpl.Execute(w, nil); err != nil {
			logger.Warn("failed to render not-found page", zap.Error(err))
		}
	case resolve.OutcomeBlocked:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		if err := h.blockedTmpl.Execute(w, newVerdictView(decision)); err != nil {
			logger.Warn("failed to render blocked page", zap.Error(err))
		}
	case resolve.OutcomePreview:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := h.previewTmpl.Execute(w, newVerdictView(decision)); err != nil {
			logger.Warn("failed to render preview page", zap.Error(err))
		}
	default:
		http.Redirect(w, r, decision.Record.DestinationURL, h.cfg.Redirect.RedirectStatus)
	}
}

// requestContext pulls the scan attributes out of the inbound request.
// X-Forwarded-For wins over RemoteAddr since the service sits behind a proxy.
func requestContext(r *http.Request) scans.RequestContext {
	return scans.RequestContext{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// verdictView is the template model shared by the preview and blocked pages.
type verdictView struct {
	Code        string
	Title       string
	Destination string
	Domain      string
	Tier        string
	Reputation  string
	Threats     []string
	Certificate string
	CertIssuer  string
	AgeDays     int
	AgeKnown    bool
	Caution     bool
	Danger      bool
}

func newVerdictView(decision *resolve.Decision) verdictView {
	view := verdictView{
		Code:        decision.Record.Code,
		Title:       decision.Record.Title,
		Destination: decision.Record.DestinationURL,
	}
	if v := decision.Verdict; v != nil {
		view.Domain = v.Domain
		view.Tier = string(v.Tier)
		view.Reputation = string(v.Reputation)
		view.Threats = v.Threats
		view.Certificate = string(v.Certificate)
		view.CertIssuer = v.CertIssuer
		view.AgeDays = v.AgeDays
		view.AgeKnown = v.AgeKnown
		view.Caution = v.Tier == security.TierCaution
		view.Danger = v.Tier == security.TierDanger
	}
	return view
}

const previewPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Link preview</title>
<style>
body{font-family:system-ui,sans-serif;background:#f4f5f7;margin:0;display:flex;justify-content:center;padding:48px 16px}
.card{background:#fff;border-radius:12px;box-shadow:0 2px 12px rgba(0,0,0,.08);max-width:480px;width:100%;padding:32px}
h1{font-size:1.25rem;margin:0 0 8px}
.dest{word-break:break-all;background:#f4f5f7;border-radius:8px;padding:12px;font-family:monospace;font-size:.9rem}
.badge{display:inline-block;border-radius:999px;padding:4px 12px;font-size:.8rem;font-weight:600}
.badge.safe{background:#e6f6ec;color:#1a7f37}
.badge.caution{background:#fff4e0;color:#b35c00}
.badge.danger{background:#ffebe9;color:#cf222e}
.meta{color:#57606a;font-size:.85rem;margin:16px 0}
.warning{color:#cf222e;font-weight:600}
ul{color:#57606a;font-size:.85rem}
.actions a{display:inline-block;border-radius:8px;padding:10px 20px;text-decoration:none;font-weight:600}
.go{background:#1a7f37;color:#fff}
.report{display:inline-block;margin-top:16px;color:#57606a;font-size:.8rem}
</style>
</head>
<body>
<div class="card">
<h1>{{if .Title}}{{.Title}}{{else}}You are about to leave{{end}}</h1>
{{if .Danger}}<span class="badge danger">Dangerous</span>{{else if .Caution}}<span class="badge caution">Caution</span>{{else}}<span class="badge safe">Verified</span>{{end}}
<p>This QR code points to:</p>
<div class="dest">{{.Destination}}</div>
<div class="meta">
Domain: {{.Domain}}<br>
{{if .AgeKnown}}Registered {{.AgeDays}} days ago<br>{{end}}
{{if .CertIssuer}}Certificate issued by {{.CertIssuer}}{{end}}
</div>
{{if .Danger}}
<p class="warning">This destination was flagged as dangerous and will not be opened.</p>
{{if .Threats}}<ul>{{range .Threats}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{else}}
<div class="actions"><a class="go" href="{{.Destination}}" rel="noreferrer">Continue</a></div>
{{end}}
<a class="report" href="/report/{{.Code}}">Report suspicious link</a>
</div>
</body>
</html>`

const blockedPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Destination blocked</title>
<style>
body{font-family:system-ui,sans-serif;background:#f4f5f7;margin:0;display:flex;justify-content:center;padding:48px 16px}
.card{background:#fff;border-radius:12px;box-shadow:0 2px 12px rgba(0,0,0,.08);max-width:480px;width:100%;padding:32px;border-top:6px solid #cf222e}
h1{font-size:1.25rem;margin:0 0 8px;color:#cf222e}
.meta{color:#57606a;font-size:.85rem;margin:16px 0}
ul{color:#57606a;font-size:.85rem}
.report{display:inline-block;margin-top:16px;color:#57606a;font-size:.8rem}
</style>
</head>
<body>
<div class="card">
<h1>This destination was blocked</h1>
<p>The link behind this QR code was flagged as dangerous and will not be opened.</p>
<div class="meta">Domain: {{.Domain}}</div>
{{if .Threats}}<ul>{{range .Threats}}<li>{{.}}</li>{{end}}</ul>{{end}}
<a class="report" href="/report/{{.Code}}">Report suspicious link</a>
</div>
</body>
</html>`

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Code not found</title>
<style>
body{font-family:system-ui,sans-serif;background:#f4f5f7;margin:0;display:flex;justify-content:center;padding:48px 16px}
.card{background:#fff;border-radius:12px;box-shadow:0 2px 12px rgba(0,0,0,.08);max-width:480px;width:100%;padding:32px}
h1{font-size:1.25rem;margin:0 0 8px}
p{color:#57606a}
</style>
</head>
<body>
<div class="card">
<h1>Code not found</h1>
<p>This QR code does not exist, has expired, or was deactivated by its owner.</p>
</div>
</body>
</html>`
