package sellerlegend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sellerlegend/go-sellerlegend/apierror"
	"github.com/sellerlegend/go-sellerlegend/internal/validate"
	"github.com/sellerlegend/go-sellerlegend/transport"
)

// ReportsService drives the asynchronous report pipeline: request a build,
// poll its status, download the finished artifact.
type ReportsService struct {
	client *Client
}

// Report polling policy. DefaultReportTimeout bounds Await when the caller's
// context carries no deadline of its own.
const (
	DefaultPollInterval  = 10 * time.Second
	DefaultReportTimeout = 5 * time.Minute
)

// Report describes one report build. The provider names the identifier
// report_id on creation and id on status reads; Ref resolves either.
type Report struct {
	ReportID    string `json:"report_id"`
	ID          string `json:"id"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at"`
	DownloadURL string `json:"download_url"`
}

// Ref returns the identifier to present on status and download calls.
func (r *Report) Ref() string {
	if r.ReportID != "" {
		return r.ReportID
	}
	return r.ID
}

// Completed reports whether the build finished and the artifact is ready.
func (r *Report) Completed() bool {
	switch strings.ToLower(r.Status) {
	case "done", "completed":
		return true
	}
	return false
}

// Failed reports whether the build ended without an artifact.
func (r *Report) Failed() bool {
	switch strings.ToLower(r.Status) {
	case "failed", "error":
		return true
	}
	return false
}

// Terminal reports whether the build reached a final state.
func (r *Report) Terminal() bool {
	return r.Completed() || r.Failed()
}

// ReportParams shape a report build request. All fields are optional; an
// unfiltered request covers every product.
type ReportParams struct {
	ProductSKU      string
	DPSDate         string // YYYY-MM-DD, the day the report covers
	LastUpdatedDate string // YYYY-MM-DD, only rows changed since
	Account         AccountFilter
}

// Create submits a report build request. The build runs server-side; poll
// its progress with Status or wait for it with Await.
func (s *ReportsService) Create(ctx context.Context, params *ReportParams) (*Report, error) {
	if params == nil {
		params = &ReportParams{}
	}
	if err := validate.Date(params.DPSDate, "dps_date"); err != nil {
		return nil, err
	}
	if err := validate.Date(params.LastUpdatedDate, "last_updated_date"); err != nil {
		return nil, err
	}
	if err := params.Account.validate(); err != nil {
		return nil, err
	}

	body := map[string]any{}
	putNonEmpty(body, "product_sku", params.ProductSKU)
	putNonEmpty(body, "dps_date", params.DPSDate)
	putNonEmpty(body, "last_updated_date", params.LastUpdatedDate)
	params.Account.applyBody(body)

	var report Report
	if err := s.client.post(ctx, "reports/request", body, &report); err != nil {
		return nil, err
	}
	if report.Ref() == "" {
		return nil, apierror.New(apierror.KindServer, "report request returned no report identifier")
	}
	return &report, nil
}

// Status reads the current state of a report build.
func (s *ReportsService) Status(ctx context.Context, reportID string, account *AccountFilter) (*Report, error) {
	if err := validate.Required(reportID, "report_id"); err != nil {
		return nil, err
	}

	query := reportQuery(reportID, account)
	var report Report
	if err := s.client.get(ctx, "reports/status", query, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Download fetches the finished artifact. The bytes come back verbatim,
// typically a gzip compressed CSV.
func (s *ReportsService) Download(ctx context.Context, reportID string, account *AccountFilter) ([]byte, error) {
	if err := validate.Required(reportID, "report_id"); err != nil {
		return nil, err
	}

	response, err := s.client.exec.Do(ctx, &transport.Request{
		Method: http.MethodGet,
		Path:   "reports/download",
		Query:  reportQuery(reportID, account),
	})
	if err != nil {
		return nil, err
	}
	return response.Body, nil
}

// Await polls a report build until it reaches a terminal state. A failed
// build returns a server error carrying the provider's message. When ctx has
// no deadline, DefaultReportTimeout applies.
func (s *ReportsService) Await(ctx context.Context, reportID string, account *AccountFilter) (*Report, error) {
	if err := validate.Required(reportID, "report_id"); err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultReportTimeout)
		defer cancel()
	}

	for {
		report, err := s.Status(ctx, reportID, account)
		if err != nil {
			return nil, err
		}
		if report.Completed() {
			return report, nil
		}
		if report.Failed() {
			message := report.Message
			if message == "" {
				message = "report build failed"
			}
			return nil, apierror.Newf(apierror.KindServer, "report %s: %s", reportID, message)
		}

		s.client.logger.Debug().
			Str("report_id", reportID).
			Str("status", report.Status).
			Msg("report not ready, polling again")
		if err := sleepContext(ctx, s.client.pollInterval); err != nil {
			return nil, apierror.Network(err, "wait for report aborted")
		}
	}
}

// CreateAndDownload runs the whole pipeline: request the build, wait for it
// to finish and download the artifact.
func (s *ReportsService) CreateAndDownload(ctx context.Context, params *ReportParams) ([]byte, error) {
	report, err := s.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	var account *AccountFilter
	if params != nil {
		account = &params.Account
	}
	if _, err := s.Await(ctx, report.Ref(), account); err != nil {
		return nil, err
	}
	return s.Download(ctx, report.Ref(), account)
}

func reportQuery(reportID string, account *AccountFilter) url.Values {
	query := url.Values{}
	query.Set("report_id", reportID)
	if account != nil {
		account.apply(query)
	}
	return query
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
