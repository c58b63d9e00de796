package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"instatistics/internal/adapters/cache"
	"instatistics/internal/adapters/csvio"
	"instatistics/internal/adapters/web/views"
	"instatistics/internal/domain"
	"instatistics/internal/usecases"
	"instatistics/pkg/log"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// DefaultMaxUploadBytes bounds uploaded tables.
const DefaultMaxUploadBytes = 10 << 20

// Handlers contains the HTTP handlers for the web application.
type Handlers struct {
	getProfile *usecases.GetProfileDatasetUseCase
	loadUpload *usecases.LoadUploadUseCase
	analyze    *usecases.AnalyzeDatasetUseCase
	maxUpload  int64
}

// NewHandlers creates a new Handlers instance.
// A non-positive maxUpload uses DefaultMaxUploadBytes.
func NewHandlers(
	getProfile *usecases.GetProfileDatasetUseCase,
	loadUpload *usecases.LoadUploadUseCase,
	analyze *usecases.AnalyzeDatasetUseCase,
	maxUpload int64,
) *Handlers {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Handlers{
		getProfile: getProfile,
		loadUpload: loadUpload,
		analyze:    analyze,
		maxUpload:  maxUpload,
	}
}

// render is a helper to render templ components.
func render(c *fiber.Ctx, component templ.Component) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return adaptor.HTTPHandler(templ.Handler(component))(c)
}

// Home renders the landing page with the profile and upload forms.
func (h *Handlers) Home(c *fiber.Ctx) error {
	return render(c, views.Home(views.HomeForm{}))
}

// Analyze handles the profile form and renders the dashboard.
func (h *Handlers) Analyze(c *fiber.Ctx) error {
	req, err := NewProfileRequest(c.FormValue("username"), c.FormValue("limit"))
	if err != nil {
		log.GlobalInfoCtx(c.UserContext(), "invalid profile request", "error", err)
		limit, _ := strconv.Atoi(c.FormValue("limit"))
		c.Status(fiber.StatusBadRequest)
		return render(c, views.Home(views.HomeForm{
			Username: c.FormValue("username"),
			Limit:    limit,
			Error:    friendlyError(err),
		}))
	}
	return h.showProfile(c, req, false)
}

// ViewProfile renders the dashboard of a profile (shareable URL).
func (h *Handlers) ViewProfile(c *fiber.Ctx) error {
	req, err := NewProfileRequest(c.Params("username"), c.Query("limit"))
	if err != nil {
		return renderError(c, err)
	}
	return h.showProfile(c, req, false)
}

// Refresh drops the cached profile dataset and renders it again.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	req, err := NewProfileRequest(c.Params("username"), c.Params("limit"))
	if err != nil {
		return renderError(c, err)
	}
	return h.showProfile(c, req, true)
}

func (h *Handlers) showProfile(c *fiber.Ctx, req ProfileRequest, refresh bool) error {
	ctx := c.UserContext()

	load := h.getProfile.Execute
	if refresh {
		load = h.getProfile.Refresh
	}

	ds, err := load(ctx, req.Username, req.Limit)
	if err != nil {
		log.GlobalErrorCtx(ctx, "load profile failed", "username", req.Username, "limit", req.Limit, "error", err)
		return renderError(c, err)
	}

	limit := strconv.Itoa(req.Limit)
	return h.renderDashboard(c, ds, views.DashboardData{
		ExportURL:  "/export/profile/" + req.Username + "/" + limit,
		RefreshURL: "/refresh/" + req.Username + "/" + limit,
	})
}

// Upload handles an uploaded table and renders the dashboard.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	ctx := c.UserContext()

	content, filename, err := h.readUpload(c)
	if err != nil {
		log.GlobalInfoCtx(ctx, "upload rejected", "error", err)
		return renderError(c, err)
	}

	ds, err := h.loadUpload.Execute(ctx, filename, content)
	if err != nil {
		return renderError(c, err)
	}

	return h.renderDashboard(c, ds, views.DashboardData{
		ExportURL: "/export/upload/" + cache.UploadDigest(content),
	})
}

func (h *Handlers) readUpload(c *fiber.Ctx) ([]byte, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: no file uploaded", domain.ErrMalformedInput)
	}
	if fh.Size > h.maxUpload {
		return nil, "", fmt.Errorf("%w: file exceeds %d MB", domain.ErrMalformedInput, h.maxUpload>>20)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, h.maxUpload))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}
	return content, fh.Filename, nil
}

func (h *Handlers) renderDashboard(c *fiber.Ctx, ds *domain.Dataset, data views.DashboardData) error {
	report, err := h.analyze.Execute(c.UserContext(), ds)
	if errors.Is(err, domain.ErrEmptyResult) {
		return render(c, views.NoData(ds.Label))
	}
	if err != nil {
		return renderError(c, err)
	}

	data.Report = report
	return render(c, views.Dashboard(data))
}

// APIReport returns the report of a profile as JSON.
func (h *Handlers) APIReport(c *fiber.Ctx) error {
	ctx := c.UserContext()

	req, err := NewProfileRequest(c.Params("username"), c.Query("limit"))
	if err != nil {
		return jsonError(c, err)
	}

	ds, err := h.getProfile.Execute(ctx, req.Username, req.Limit)
	if err != nil {
		log.GlobalErrorCtx(ctx, "api report failed", "username", req.Username, "limit", req.Limit, "error", err)
		return jsonError(c, err)
	}

	report, err := h.analyze.Execute(ctx, ds)
	if errors.Is(err, domain.ErrEmptyResult) {
		return c.JSON(fiber.Map{"total_count": 0, "message": friendlyError(err)})
	}
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(newReportResponse(report, ds.FetchedAt))
}

// ExportProfile downloads the posts of a profile dataset as CSV.
func (h *Handlers) ExportProfile(c *fiber.Ctx) error {
	req, err := NewProfileRequest(c.Params("username"), c.Params("limit"))
	if err != nil {
		return renderError(c, err)
	}

	ds, err := h.getProfile.Execute(c.UserContext(), req.Username, req.Limit)
	if err != nil {
		return renderError(c, err)
	}
	return sendCSV(c, ds)
}

// ExportUpload downloads a previously uploaded dataset as CSV.
func (h *Handlers) ExportUpload(c *fiber.Ctx) error {
	ds, err := h.loadUpload.Lookup(c.UserContext(), c.Params("digest"))
	if err != nil {
		return renderError(c, err)
	}
	return sendCSV(c, ds)
}

func sendCSV(c *fiber.Ctx, ds *domain.Dataset) error {
	var buf bytes.Buffer
	if err := csvio.Write(&buf, ds.Posts); err != nil {
		log.GlobalErrorCtx(c.UserContext(), "csv export failed", "key", ds.Key, "error", err)
		return renderError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(csvio.ExportFilename(ds))
	return c.Send(buf.Bytes())
}

// Healthz reports liveness.
func (h *Handlers) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// renderError renders a full-page error with the matching status.
func renderError(c *fiber.Ctx, err error) error {
	c.Status(statusFor(err))
	return render(c, views.Error(friendlyError(err)))
}

func jsonError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": friendlyError(err)})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidProfile), errors.Is(err, domain.ErrMalformedInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, domain.ErrDatasetExpired):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrSourceUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// friendlyError returns a neutral, non-blaming error message.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return "This account couldn't be found. Check the username and try again."
	case errors.Is(err, domain.ErrProfilePrivate):
		return "This account is private, so its posts can't be analyzed."
	case errors.Is(err, domain.ErrSourceUnavailable):
		return "Account not found or unreachable. Please try again in a moment."
	case errors.Is(err, domain.ErrMalformedInput):
		return "This file couldn't be read (" + detail(err, domain.ErrMalformedInput) + "). " +
			"Expected columns: date, likes, comments, is_video."
	case errors.Is(err, domain.ErrInvalidProfile):
		return "Please check the form: " + detail(err, domain.ErrInvalidProfile) + "."
	case errors.Is(err, domain.ErrEmptyResult):
		return "No data to analyze."
	case errors.Is(err, domain.ErrRateLimited):
		return "Too many requests. Please wait a moment and try again."
	case errors.Is(err, domain.ErrDatasetExpired):
		return "This upload is no longer available. Please upload the file again."
	default:
		return "Unable to analyze this right now. Please try again in a moment."
	}
}

// detail strips the sentinel prefix from a wrapped error message.
func detail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
