package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"greenscore-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newBillApp(t *testing.T) (*fiber.App, *BillService, *stubAwarder) {
	t.Helper()
	db := newTestDB(t)
	awarder := &stubAwarder{}
	svc := NewBillService(db, awarder, nil)
	svc.Upload = func(fh *multipart.FileHeader, key string) (string, error) {
		return "https://cdn.example.com/" + key, nil
	}
	app := fiber.New()
	app.Post("/api/bills/upload", svc.UploadBill)
	app.Get("/api/bills", svc.ListBills)
	return app, svc, awarder
}

func uploadBillRequest(t *testing.T, userID, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("userId", userID))
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/bills/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadBillHappyPath(t *testing.T) {
	app, svc, awarder := newBillApp(t)

	resp, err := app.Test(uploadBillRequest(t, "u1", "july.pdf", []byte("fake pdf bytes")), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Equal(t, true, body["success"])

	var bill models.UploadedBill
	require.NoError(t, svc.DB.First(&bill, "user_id = ?", "u1").Error)
	require.Equal(t, models.BillStatusCompleted, bill.Status)
	require.Equal(t, "july.pdf", bill.FileName)
	require.Contains(t, bill.FileURL, "bills/u1/")
	require.Equal(t, float64(models.BillUploadBonusTokens), bill.TokensEarned)
	require.Greater(t, bill.UnitsUsed, 0.0)

	require.Len(t, awarder.awards, 1)
	require.Equal(t, "Bill Upload Bonus", awarder.awards[0].Action)
	require.Equal(t, float64(models.BillUploadBonusTokens), awarder.awards[0].Tokens)
}

func TestUploadBillStorageFailure(t *testing.T) {
	app, svc, awarder := newBillApp(t)
	svc.Upload = func(fh *multipart.FileHeader, key string) (string, error) {
		return "", fmt.Errorf("r2 unreachable")
	}

	resp, err := app.Test(uploadBillRequest(t, "u1", "july.pdf", []byte("fake pdf bytes")), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var bill models.UploadedBill
	require.NoError(t, svc.DB.First(&bill, "user_id = ?", "u1").Error)
	require.Equal(t, models.BillStatusError, bill.Status)
	require.Zero(t, bill.TokensEarned)
	require.Empty(t, awarder.awards)
}

func TestUploadBillMissingFields(t *testing.T) {
	app, _, _ := newBillApp(t)

	// Missing file
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("userId", "u1"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/bills/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Missing userId
	resp, err = app.Test(uploadBillRequest(t, "", "july.pdf", []byte("x")), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListBills(t *testing.T) {
	app, _, _ := newBillApp(t)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(uploadBillRequest(t, "u1", fmt.Sprintf("bill-%d.pdf", i), []byte("x")), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/bills?userId=u1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body struct {
		Success bool                  `json:"success"`
		Bills   []models.UploadedBill `json:"bills"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.True(t, body.Success)
	require.Len(t, body.Bills, 2)
}
