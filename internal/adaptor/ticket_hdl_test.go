package adaptor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"movie-ticketing/internal/dto/request"
	"movie-ticketing/internal/dto/response"
	"movie-ticketing/internal/usecase"
	"movie-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubTicketService scripts service outcomes for handler tests.
type stubTicketService struct {
	issueResp   *response.IssueTicketResponse
	issueReplay bool
	issueErr    error
	issueKey    string

	refundResp *response.RefundTicketResponse
	refundErr  error

	getResp *response.TicketResponse
	getErr  error

	listResp *response.TicketListResponse
	listErr  error
	listReq  *request.ListTicketsRequest
}

func (s *stubTicketService) IssueTickets(_ context.Context, _ *request.IssueTicketRequest, idempotencyKey string) (*response.IssueTicketResponse, bool, error) {
	s.issueKey = idempotencyKey
	return s.issueResp, s.issueReplay, s.issueErr
}

func (s *stubTicketService) RefundTickets(_ context.Context, _ *request.RefundTicketRequest) (*response.RefundTicketResponse, error) {
	return s.refundResp, s.refundErr
}

func (s *stubTicketService) GetTicket(_ context.Context, _ string) (*response.TicketResponse, error) {
	return s.getResp, s.getErr
}

func (s *stubTicketService) ListTickets(_ context.Context, req *request.ListTicketsRequest) (*response.TicketListResponse, error) {
	s.listReq = req
	return s.listResp, s.listErr
}

func newTestRouter(service usecase.TicketService) *chi.Mux {
	handler := NewTicketHandler(service, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/tickets/issue", handler.IssueTickets)
	r.Post("/tickets/refund", handler.RefundTickets)
	r.Get("/tickets", handler.ListTickets)
	r.Get("/tickets/{id}", handler.GetTicket)
	return r
}

const validIssueBody = `{"theater_name":"CGV Gangnam","user_id":"user123","movie_title":"The Movie","price_krw":15000,"quantity":2}`

func TestIssueTicketsReturns201(t *testing.T) {
	t.Parallel()
	stub := &stubTicketService{
		issueResp: &response.IssueTicketResponse{
			TicketIDs: []string{"a", "b"},
			Count:     2,
		},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/tickets/issue", strings.NewReader(validIssueBody))
	req.Header.Set(IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "key-123", stub.issueKey)

	var envelope utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Status)
}

func TestIssueTicketsReplayReturns200(t *testing.T) {
	t.Parallel()
	stub := &stubTicketService{
		issueResp:   &response.IssueTicketResponse{TicketIDs: []string{"a"}, Count: 1},
		issueReplay: true,
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/tickets/issue", strings.NewReader(validIssueBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestIssueTicketsConflictReturns409(t *testing.T) {
	t.Parallel()
	stub := &stubTicketService{issueErr: usecase.ErrIdempotencyConflict}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/tickets/issue", strings.NewReader(validIssueBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestIssueTicketsValidationReturns400(t *testing.T) {
	t.Parallel()
	stub := &stubTicketService{}
	router := newTestRouter(stub)

	// quantity over the allowed maximum
	body := `{"theater_name":"CGV Gangnam","user_id":"user123","movie_title":"The Movie","price_krw":15000,"quantity":11}`
	req := httptest.NewRequest(http.MethodPost, "/tickets/issue", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueTicketsMalformedBodyReturns400(t *testing.T) {
	t.Parallel()
	router := newTestRouter(&stubTicketService{})

	req := httptest.NewRequest(http.MethodPost, "/tickets/issue", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueTicketsStorageFailureReturns500(t *testing.T) {
	t.Parallel()
	stub := &stubTicketService{issueErr: context.DeadlineExceeded}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/tickets/issue", strings.NewReader(validIssueBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRefundTicketsReturns200WithBuckets(t *testing.T) {
	t.Parallel()
	stub := &stubTicketService{
		refundResp: &response.RefundTicketResponse{
			Refunded:        []string{"a"},
			AlreadyCanceled: []string{"b"},
			NotFound:        []string{"c"},
		},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/tickets/refund", strings.NewReader(`{"ticket_ids":["a","b","c"]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data response.RefundTicketResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, []string{"a"}, envelope.Data.Refunded)
	require.Equal(t, []string{"b"}, envelope.Data.AlreadyCanceled)
	require.Equal(t, []string{"c"}, envelope.Data.NotFound)
}

func TestRefundTicketsEmptyBatchReturns400(t *testing.T) {
	t.Parallel()
	router := newTestRouter(&stubTicketService{})

	req := httptest.NewRequest(http.MethodPost, "/tickets/refund", strings.NewReader(`{"ticket_ids":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTicketNotFoundReturns404(t *testing.T) {
	t.Parallel()
	stub := &stubTicketService{getErr: usecase.ErrTicketNotFound}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/tickets/unknown-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTicketReturns200(t *testing.T) {
	t.Parallel()
	stub := &stubTicketService{
		getResp: &response.TicketResponse{ID: "abc", MovieTitle: "The Movie"},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/tickets/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListTicketsParsesQueryParams(t *testing.T) {
	t.Parallel()
	stub := &stubTicketService{
		listResp: &response.TicketListResponse{Tickets: []response.TicketResponse{}, Total: 0, Limit: 10},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/tickets?theater_name=CGV&status=issued&limit=10&offset=20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.listReq)
	require.Equal(t, "CGV", stub.listReq.TheaterName)
	require.Equal(t, "issued", stub.listReq.Status)
	require.Equal(t, 10, stub.listReq.Limit)
	require.Equal(t, 20, stub.listReq.Offset)
}

func TestListTicketsInvalidStatusReturns400(t *testing.T) {
	t.Parallel()
	stub := &stubTicketService{listErr: usecase.ErrValidation}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/tickets?status=pending", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
