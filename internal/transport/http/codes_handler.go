package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/config"
	"github.com/GSMS-B/ProjectQR/internal/constants"
	"github.com/GSMS-B/ProjectQR/internal/infrastructure/logger"
	appvalidation "github.com/GSMS-B/ProjectQR/internal/infrastructure/validation"
	"github.com/GSMS-B/ProjectQR/internal/processing/codes"
	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	"github.com/GSMS-B/ProjectQR/internal/processing/security"
	"github.com/GSMS-B/ProjectQR/internal/transport/http/middleware"
	"github.com/GSMS-B/ProjectQR/pkg/httputils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 365
)

// CodesHandler serves the management surface for QR code records.
type CodesHandler struct {
	cfg       *config.Config
	registry  *codes.Registry
	analytics *scans.Analytics
	verifier  security.Verifier
}

func NewCodesHandler(cfg *config.Config, registry *codes.Registry, analytics *scans.Analytics, verifier security.Verifier) *CodesHandler {
	return &CodesHandler{
		cfg:       cfg,
		registry:  registry,
		analytics: analytics,
		verifier:  verifier,
	}
}

type createCodeRequest struct {
	URL              string     `json:"url" validate:"required,notblank,http_url"`
	Title            string     `json:"title,omitempty" validate:"omitempty,max=200"`
	ShowPreview      bool       `json:"showPreview,omitempty"`
	AnalyticsEnabled *bool      `json:"analyticsEnabled,omitempty"`
	Color            string     `json:"color,omitempty" validate:"omitempty,max=32"`
	Background       string     `json:"background,omitempty" validate:"omitempty,max=32"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty" validate:"omitempty,future"`
}

type codeResponse struct {
	Code             string     `json:"code"`
	URL              string     `json:"url"`
	ShortURL         string     `json:"shortUrl"`
	Title            string     `json:"title,omitempty"`
	Active           bool       `json:"active"`
	ShowPreview      bool       `json:"showPreview"`
	AnalyticsEnabled bool       `json:"analyticsEnabled"`
	Color            string     `json:"color,omitempty"`
	Background       string     `json:"background,omitempty"`
	TotalScans       int64      `json:"totalScans"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
}

func (h *CodesHandler) toResponse(record *codes.Record) codeResponse {
	return codeResponse{
		Code:             record.Code,
		URL:              record.DestinationURL,
		ShortURL:         strings.TrimRight(h.cfg.Redirect.BaseURL, "/") + "/" + record.Code,
		Title:            record.Title,
		Active:           record.Active,
		ShowPreview:      record.ShowPreview,
		AnalyticsEnabled: record.AnalyticsEnabled,
		Color:            record.Color,
		Background:       record.Background,
		TotalScans:       record.TotalScans,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
		ExpiresAt:        record.ExpiresAt,
	}
}

func (h *CodesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		apiErr := constants.ErrInvalidRequestBody
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, e := range validationErrs {
				if e.Field() == "url" {
					apiErr = constants.ErrInvalidURL
					break
				}
				if e.Field() == "expiresAt" && e.Tag() == "future" {
					apiErr = apiErr.WithMessage("expiresAt must be in the future")
					break
				}
			}
		}
		httputils.WriteAPIError(w, r, apiErr)
		return
	}

	analyticsEnabled := true
	if req.AnalyticsEnabled != nil {
		analyticsEnabled = *req.AnalyticsEnabled
	}

	record, err := h.registry.Create(r.Context(), codes.CreateInput{
		DestinationURL:   req.URL,
		OwnerID:          r.Header.Get(middleware.APIKeyHeader),
		Title:            req.Title,
		ShowPreview:      req.ShowPreview,
		AnalyticsEnabled: analyticsEnabled,
		Color:            req.Color,
		Background:       req.Background,
		ExpiresAt:        req.ExpiresAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, codes.ErrInvalidURL):
			httputils.WriteAPIError(w, r, constants.ErrInvalidURL)
		case errors.Is(err, codes.ErrCodeTaken):
			httputils.WriteAPIError(w, r, constants.ErrShortTaken)
		default:
			logger.Error("failed to create code", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessCreated, h.toResponse(record))
}

func (h *CodesHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	record, err := h.registry.Get(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, codes.ErrNotFound):
			httputils.WriteAPIError(w, r, constants.ErrShortNotFound)
		default:
			logger.Error("failed to fetch code", zap.Error(err), zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessFound, h.toResponse(record))
}

type editCodeRequest struct {
	URL              *string    `json:"url,omitempty" validate:"omitempty,notblank,http_url"`
	Title            *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	ShowPreview      *bool      `json:"showPreview,omitempty"`
	AnalyticsEnabled *bool      `json:"analyticsEnabled,omitempty"`
	Color            *string    `json:"color,omitempty" validate:"omitempty,max=32"`
	Background       *string    `json:"background,omitempty" validate:"omitempty,max=32"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty" validate:"omitempty,future"`
	ClearExpiration  bool       `json:"clearExpiration,omitempty"`
}

func (h *CodesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var req editCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		apiErr := constants.ErrInvalidRequestBody
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, e := range validationErrs {
				if e.Field() == "url" {
					apiErr = constants.ErrInvalidURL
					break
				}
				if e.Field() == "expiresAt" && e.Tag() == "future" {
					apiErr = apiErr.WithMessage("expiresAt must be in the future")
					break
				}
			}
		}
		httputils.WriteAPIError(w, r, apiErr)
		return
	}

	record, err := h.registry.Upsert(r.Context(), code, codes.EditFields{
		DestinationURL:   req.URL,
		Title:            req.Title,
		ShowPreview:      req.ShowPreview,
		AnalyticsEnabled: req.AnalyticsEnabled,
		Color:            req.Color,
		Background:       req.Background,
		ExpiresAt:        req.ExpiresAt,
		ClearExpiration:  req.ClearExpiration,
	})
	if err != nil {
		switch {
		case errors.Is(err, codes.ErrNotFound):
			httputils.WriteAPIError(w, r, constants.ErrShortNotFound)
		case errors.Is(err, codes.ErrInvalidURL):
			httputils.WriteAPIError(w, r, constants.ErrInvalidURL)
		default:
			logger.Error("failed to edit code", zap.Error(err), zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessUpdated, h.toResponse(record))
}

func (h *CodesHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if err := h.registry.Deactivate(r.Context(), code); err != nil {
		switch {
		case errors.Is(err, codes.ErrNotFound):
			httputils.WriteAPIError(w, r, constants.ErrShortNotFound)
		default:
			logger.Error("failed to deactivate code", zap.Error(err), zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessDeactivated, map[string]string{"code": code})
}

func (h *CodesHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	days := defaultAnalyticsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxAnalyticsDays {
			httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage("days must be an integer between 1 and 365"))
			return
		}
		days = parsed
	}

	// The record must exist even when it has no events yet.
	if _, err := h.registry.Get(r.Context(), code); err != nil {
		switch {
		case errors.Is(err, codes.ErrNotFound):
			httputils.WriteAPIError(w, r, constants.ErrShortNotFound)
		default:
			logger.Error("failed to fetch code for analytics", zap.Error(err), zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	aggregate, err := h.analytics.Aggregate(r.Context(), code, days)
	if err != nil {
		logger.Error("failed to aggregate scans", zap.Error(err), zap.String("code", code))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessAnalyticsFound, aggregate)
}

type verdictResponse struct {
	Domain      string    `json:"domain"`
	Tier        string    `json:"tier"`
	Reputation  string    `json:"reputation"`
	Threats     []string  `json:"threats,omitempty"`
	Certificate string    `json:"certificate"`
	CertIssuer  string    `json:"certIssuer,omitempty"`
	CertExpiry  string    `json:"certExpiry,omitempty"`
	AgeDays     *int      `json:"ageDays,omitempty"`
	CheckedAt   time.Time `json:"checkedAt"`
}

// Validate runs the security checks for an arbitrary URL without creating
// a record. Used by the dashboard before committing a destination.
func (h *CodesHandler) Validate(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if rawURL == "" {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage("url query parameter is required"))
		return
	}

	normalized, err := codes.ValidateAndNormalizeURL(rawURL)
	if err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidURL)
		return
	}

	verdict := h.verifier.Verify(r.Context(), codes.Domain(normalized))

	resp := verdictResponse{
		Domain:      verdict.Domain,
		Tier:        string(verdict.Tier),
		Reputation:  string(verdict.Reputation),
		Threats:     verdict.Threats,
		Certificate: string(verdict.Certificate),
		CertIssuer:  verdict.CertIssuer,
		CheckedAt:   verdict.ComputedAt,
	}
	if !verdict.CertExpiry.IsZero() {
		resp.CertExpiry = verdict.CertExpiry.Format(time.RFC3339)
	}
	if verdict.AgeKnown {
		age := verdict.AgeDays
		resp.AgeDays = &age
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessVerdictFound, resp)
}
