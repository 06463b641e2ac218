package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-portal-api/internal/academic"
	"github.com/noah-isme/college-portal-api/internal/models"
	"github.com/noah-isme/college-portal-api/internal/service"
	"github.com/noah-isme/college-portal-api/pkg/response"
)

type summaryStudentsMock struct {
	students map[string]*models.Student
}

func (m *summaryStudentsMock) FindByRollNumber(ctx context.Context, roll string) (*models.Student, error) {
	if student, ok := m.students[roll]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

type summaryLedgerMock struct{}

func (m *summaryLedgerMock) FetchLedger(ctx context.Context, studentID, academicYear string) (*models.Ledger, error) {
	return &models.Ledger{}, nil
}

type summaryConfigsMock struct{}

func (m *summaryConfigsMock) Calendar(ctx context.Context) (academic.CalendarConfig, error) {
	return academic.DefaultCalendarConfig(), nil
}

func (m *summaryConfigsMock) FeePolicy(ctx context.Context) (academic.FeePolicy, error) {
	return academic.DefaultFeePolicy(), nil
}

func newSummaryHandler() *SummaryHandler {
	students := &summaryStudentsMock{students: map[string]*models.Student{
		"22567T0501": {ID: "stu-1", RollNumber: "22567T0501", FullName: "K. Ramesh", Active: true},
	}}
	clock := func() time.Time { return time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC) }
	svc := service.NewSummaryService(students, &summaryLedgerMock{}, &summaryConfigsMock{}, clock, nil)
	return NewSummaryHandler(svc)
}

func TestSummaryHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSummaryHandler()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students/22567T0501/summary", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "roll", Value: "22567T0501"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "CSE", summary["branch"])
	assert.Equal(t, "2024-25", summary["academic_year"])
}

func TestSummaryHandlerGetUnparseableRoll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSummaryHandler()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students/99ABC/summary", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "roll", Value: "99ABC"}}

	handler.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
