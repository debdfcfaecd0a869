package sellerlegend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sellerlegend/go-sellerlegend/apierror"
	"github.com/sellerlegend/go-sellerlegend/sellerlegend"
)

func TestReportCreate(t *testing.T) {
	fixture := setupClientFixture(t)
	fixture.authenticate(t)
	fixture.platform.script("/api/reports/request", scriptedResponse{
		body: `{"report_id":"3001","status":"pending","message":"Report generation started"}`,
	})

	report, err := fixture.client.Reports.Create(context.Background(), &sellerlegend.ReportParams{
		ProductSKU: "TEST-SKU-001",
		DPSDate:    "2024-06-14",
		Account:    sellerlegend.AccountFilter{MarketplaceID: "ATVPDKIKX0DER"},
	})
	require.NoError(t, err)
	require.Equal(t, "3001", report.Ref())
	require.False(t, report.Terminal())

	call := fixture.platform.lastCall(t, "/api/reports/request")
	require.Equal(t, http.MethodPost, call.method)

	var body map[string]any
	require.NoError(t, json.Unmarshal(call.body, &body))
	require.Equal(t, "TEST-SKU-001", body["product_sku"])
	require.Equal(t, "2024-06-14", body["dps_date"])
	require.Equal(t, "ATVPDKIKX0DER", body["marketplace_id"])
	require.NotContains(t, body, "last_updated_date")
}

func TestReportCreateValidation(t *testing.T) {
	fixture := setupClientFixture(t)
	fixture.authenticate(t)

	_, err := fixture.client.Reports.Create(context.Background(), &sellerlegend.ReportParams{DPSDate: "14-06-2024"})
	require.EqualError(t, err, "invalid date format for dps_date, expected YYYY-MM-DD")
	require.Zero(t, fixture.platform.apiCallCount())
}

func TestReportCreateWithoutIdentifier(t *testing.T) {
	fixture := setupClientFixture(t)
	fixture.authenticate(t)
	fixture.platform.script("/api/reports/request", scriptedResponse{body: `{"status":"pending"}`})

	_, err := fixture.client.Reports.Create(context.Background(), nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, apierror.ServerErr))
}

func TestReportStatus(t *testing.T) {
	fixture := setupClientFixture(t)
	fixture.authenticate(t)
	fixture.platform.script("/api/reports/status", scriptedResponse{
		body: `{"id":"3001","status":"completed","completed_at":"2024-06-15T12:05:00Z","download_url":"https://x/api/reports/3001/download"}`,
	})

	report, err := fixture.client.Reports.Status(context.Background(), "3001", nil)
	require.NoError(t, err)
	require.Equal(t, "3001", report.Ref(), "status reads name the identifier id")
	require.True(t, report.Completed())
	require.False(t, report.Failed())

	call := fixture.platform.lastCall(t, "/api/reports/status")
	require.Equal(t, "3001", call.query.Get("report_id"))

	_, err = fixture.client.Reports.Status(context.Background(), "", nil)
	require.EqualError(t, err, "report_id is required")
}

func TestReportStateSpellings(t *testing.T) {
	completed := []string{"done", "Done", "completed", "COMPLETED"}
	for _, status := range completed {
		report := sellerlegend.Report{Status: status}
		require.True(t, report.Completed(), "status %q", status)
		require.True(t, report.Terminal(), "status %q", status)
	}

	failed := []string{"failed", "error", "Failed"}
	for _, status := range failed {
		report := sellerlegend.Report{Status: status}
		require.True(t, report.Failed(), "status %q", status)
		require.True(t, report.Terminal(), "status %q", status)
	}

	for _, status := range []string{"pending", "processing", ""} {
		report := sellerlegend.Report{Status: status}
		require.False(t, report.Terminal(), "status %q", status)
	}
}

func TestReportDownload(t *testing.T) {
	fixture := setupClientFixture(t)
	fixture.authenticate(t)

	// Gzip bytes pass through the transport untouched.
	artifact := string([]byte{0x1f, 0x8b, 0x08, 0x00, 0x01, 0x02, 0x03})
	fixture.platform.script("/api/reports/download", scriptedResponse{
		body:   artifact,
		header: map[string]string{"Content-Type": "application/gzip"},
	})

	data, err := fixture.client.Reports.Download(context.Background(), "3001", &sellerlegend.AccountFilter{AccountTitle: "US Account"})
	require.NoError(t, err)
	require.Equal(t, []byte(artifact), data)

	call := fixture.platform.lastCall(t, "/api/reports/download")
	require.Equal(t, "3001", call.query.Get("report_id"))
	require.Equal(t, "US Account", call.query.Get("account_title"))

	_, err = fixture.client.Reports.Download(context.Background(), "", nil)
	require.EqualError(t, err, "report_id is required")
}

func TestReportAwait(t *testing.T) {
	t.Run("polls until completion", func(t *testing.T) {
		fixture := setupClientFixture(t)
		fixture.authenticate(t)
		fixture.platform.script("/api/reports/status",
			scriptedResponse{body: `{"id":"3001","status":"pending"}`},
			scriptedResponse{body: `{"id":"3001","status":"processing"}`},
			scriptedResponse{body: `{"id":"3001","status":"done"}`},
		)

		report, err := fixture.client.Reports.Await(context.Background(), "3001", nil)
		require.NoError(t, err)
		require.True(t, report.Completed())
		require.Len(t, fixture.platform.calls("/api/reports/status"), 3)
	})

	t.Run("surfaces a failed build", func(t *testing.T) {
		fixture := setupClientFixture(t)
		fixture.authenticate(t)
		fixture.platform.script("/api/reports/status",
			scriptedResponse{body: `{"id":"3001","status":"pending"}`},
			scriptedResponse{body: `{"id":"3001","status":"failed","message":"source data unavailable"}`},
		)

		_, err := fixture.client.Reports.Await(context.Background(), "3001", nil)
		require.Error(t, err)
		require.True(t, errors.Is(err, apierror.ServerErr))
		require.Contains(t, err.Error(), "report 3001: source data unavailable")
	})

	t.Run("caller deadline bounds the wait", func(t *testing.T) {
		fixture := setupClientFixture(t)
		fixture.authenticate(t)
		fixture.platform.script("/api/reports/status", scriptedResponse{body: `{"id":"3001","status":"pending"}`})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := fixture.client.Reports.Await(ctx, "3001", nil)
		require.Error(t, err)
		require.True(t, errors.Is(err, apierror.NetworkErr))
	})
}

func TestCreateAndDownload(t *testing.T) {
	fixture := setupClientFixture(t)
	fixture.authenticate(t)

	artifact := string([]byte{0x1f, 0x8b, 0x08, 0x00, 0xaa, 0xbb})
	fixture.platform.script("/api/reports/request", scriptedResponse{
		body: `{"report_id":"3001","status":"pending"}`,
	})
	fixture.platform.script("/api/reports/status",
		scriptedResponse{body: `{"id":"3001","status":"pending"}`},
		scriptedResponse{body: `{"id":"3001","status":"done"}`},
	)
	fixture.platform.script("/api/reports/download", scriptedResponse{
		body:   artifact,
		header: map[string]string{"Content-Type": "application/gzip"},
	})

	data, err := fixture.client.Reports.CreateAndDownload(context.Background(), &sellerlegend.ReportParams{
		DPSDate: "2024-06-14",
		Account: sellerlegend.AccountFilter{AccountTitle: "US Account"},
	})
	require.NoError(t, err)
	require.Equal(t, []byte(artifact), data)

	require.Len(t, fixture.platform.calls("/api/reports/request"), 1)
	require.Len(t, fixture.platform.calls("/api/reports/status"), 2)

	// The account filter from the request carries through to the download.
	call := fixture.platform.lastCall(t, "/api/reports/download")
	require.Equal(t, "US Account", call.query.Get("account_title"))
	require.Equal(t, "3001", call.query.Get("report_id"))
}
