package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/smshub/internal/domain/activation"
	"github.com/oggyb/smshub/internal/handler"
	routes "github.com/oggyb/smshub/internal/router"
	"github.com/oggyb/smshub/internal/scheduler"
	"github.com/oggyb/smshub/internal/service"
	"github.com/oggyb/smshub/internal/smshub"
	"github.com/oggyb/smshub/internal/smshub/smshubtest"
)

type stubService struct {
	balance  decimal.Decimal
	prices   smshub.PriceTable
	numbers  json.RawMessage
	act      *activation.Activation
	list     []*activation.Activation
	err      error
	gotReq   smshub.StatusRequest
	gotOrder []string
	gotPage  [2]int
}

func (s *stubService) Balance(context.Context) (decimal.Decimal, error) { return s.balance, s.err }

func (s *stubService) NumbersStatus(context.Context, string, string) (json.RawMessage, error) {
	return s.numbers, s.err
}

func (s *stubService) Prices(context.Context, string, string) (smshub.PriceTable, error) {
	return s.prices, s.err
}

func (s *stubService) Order(_ context.Context, country, operator, service string) (*activation.Activation, error) {
	s.gotOrder = []string{country, operator, service}
	return s.act, s.err
}

func (s *stubService) Get(context.Context, uuid.UUID) (*activation.Activation, error) {
	return s.act, s.err
}

func (s *stubService) List(_ context.Context, page, limit int) ([]*activation.Activation, int64, error) {
	s.gotPage = [2]int{page, limit}
	return s.list, int64(len(s.list)), s.err
}

func (s *stubService) SetStatus(_ context.Context, _ uuid.UUID, req smshub.StatusRequest) (*activation.Activation, error) {
	s.gotReq = req
	return s.act, s.err
}

func (s *stubService) Refresh(context.Context, uuid.UUID) (*activation.Activation, error) {
	return s.act, s.err
}

func (s *stubService) ProcessBatch(context.Context) error { return nil }

type stubScheduler struct {
	running bool
	stopErr error
}

func (s *stubScheduler) Start() error { s.running = true; return nil }
func (s *stubScheduler) Stop() error {
	if s.stopErr != nil {
		return s.stopErr
	}
	s.running = false
	return nil
}
func (s *stubScheduler) IsRunning() bool { return s.running }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newMux(svc *stubService, sch *stubScheduler) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, routes.AppDeps{
		Home:       handler.NewHomeHandler(),
		Activation: handler.NewActivationHandler(svc, sch, zerolog.Nop()),
	})
	return mux
}

func do(t *testing.T, mux http.Handler, method, target, body string) (int, envelope) {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, r)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func sampleActivation() *activation.Activation {
	a, _ := activation.New("123", "79001234567", "0", "any", "tg")
	a.CreatedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return a
}

func TestHome(t *testing.T) {
	mux := newMux(&stubService{}, &stubScheduler{})

	code, env := do(t, mux, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))

	code, env = do(t, mux, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestBalance(t *testing.T) {
	svc := &stubService{balance: decimal.RequireFromString("104.5")}
	code, env := do(t, newMux(svc, &stubScheduler{}), http.MethodGet, "/balance", "")

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"balance":"104.50"}`, string(env.Data))
}

func TestBalance_ProviderError(t *testing.T) {
	svc := &stubService{err: &smshub.ResponseError{Action: "getBalance", Err: smshub.ErrBadKey}}
	code, env := do(t, newMux(svc, &stubScheduler{}), http.MethodGet, "/balance", "")

	assert.Equal(t, http.StatusBadGateway, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "provider rejected api key", env.Error.Message)
}

func TestPricesAndNumbers(t *testing.T) {
	svc := &stubService{
		prices:  smshub.PriceTable{"tg": {"0": json.RawMessage(`{"cost":1}`)}},
		numbers: json.RawMessage(`{"tg_0":"12"}`),
	}
	mux := newMux(svc, &stubScheduler{})

	code, env := do(t, mux, http.MethodGet, "/prices?service=tg&country=0", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"tg":{"0":{"cost":1}}}`, string(env.Data))

	code, env = do(t, mux, http.MethodGet, "/numbers/status?country=0", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"tg_0":"12"}`, string(env.Data))
}

func TestOrder(t *testing.T) {
	svc := &stubService{act: sampleActivation()}
	mux := newMux(svc, &stubScheduler{})

	code, env := do(t, mux, http.MethodPost, "/activations", `{"country":"0","service":"tg"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, []string{"0", "any", "tg"}, svc.gotOrder)

	var dto map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	assert.Equal(t, "123", dto["providerId"])
	assert.Equal(t, "WAIT_CODE", dto["status"])
}

func TestOrder_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"missing service", `{"country":"0"}`, nil, http.StatusBadRequest},
		{"no numbers", `{"country":"0","service":"tg"}`, &smshub.ResponseError{Err: smshub.ErrNoNumbers}, http.StatusConflict},
		{"wrong service", `{"country":"0","service":"zz"}`, &smshub.ResponseError{Err: smshub.ErrWrongService}, http.StatusBadRequest},
		{"transport", `{"country":"0","service":"tg"}`, &smshub.TransportError{Action: "getNumber", StatusCode: 500}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err, act: sampleActivation()}
			code, env := do(t, newMux(svc, &stubScheduler{}), http.MethodPost, "/activations", tt.body)
			assert.Equal(t, tt.want, code)
			assert.False(t, env.Success)
		})
	}
}

func TestList_Pagination(t *testing.T) {
	svc := &stubService{list: []*activation.Activation{sampleActivation(), sampleActivation()}}
	mux := newMux(svc, &stubScheduler{})

	code, env := do(t, mux, http.MethodGet, "/activations?page=2&limit=500", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, [2]int{2, 20}, svc.gotPage, "limits above 100 fall back to the default")

	var payload struct {
		Items []map[string]any `json:"items"`
		Total int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Len(t, payload.Items, 2)
	assert.EqualValues(t, 2, payload.Total)
}

func TestGet(t *testing.T) {
	a := sampleActivation()
	mux := newMux(&stubService{act: a}, &stubScheduler{})

	code, _ := do(t, mux, http.MethodGet, "/activations/"+a.ID.String(), "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, mux, http.MethodGet, "/activations/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, code)

	mux = newMux(&stubService{err: activation.ErrNotFound}, &stubScheduler{})
	code, _ = do(t, mux, http.MethodGet, "/activations/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSetStatus(t *testing.T) {
	a := sampleActivation()
	svc := &stubService{act: a}
	mux := newMux(svc, &stubScheduler{})
	target := "/activations/" + a.ID.String() + "/status"

	code, _ := do(t, mux, http.MethodPost, target, `{"action":"Cancel"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, smshub.RequestCancel, svc.gotReq)

	code, _ = do(t, mux, http.MethodPost, target, `{"action":"6"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, smshub.RequestComplete, svc.gotReq)

	code, _ = do(t, mux, http.MethodPost, target, `{"action":"explode"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	svc.err = activation.ErrTerminal
	code, _ = do(t, mux, http.MethodPost, target, `{"action":"ready"}`)
	assert.Equal(t, http.StatusConflict, code)
}

func TestRefresh(t *testing.T) {
	a := sampleActivation()
	svc := &stubService{err: &smshub.ResponseError{Action: "getStatus", Err: smshub.ErrNoActivation}}
	code, _ := do(t, newMux(svc, &stubScheduler{}), http.MethodPost, "/activations/"+a.ID.String()+"/refresh", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestControlScheduler(t *testing.T) {
	sch := &stubScheduler{}
	mux := newMux(&stubService{}, sch)

	code, env := do(t, mux, http.MethodPost, "/scheduler", `{"action":"start"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"scheduler started","running":true}`, string(env.Data))

	code, _ = do(t, mux, http.MethodPost, "/scheduler", `{"action":"stop"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, sch.running)

	code, _ = do(t, mux, http.MethodPost, "/scheduler", `{"action":"pause"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	sch.running = true
	sch.stopErr = scheduler.ErrStopSuperseded
	code, env = do(t, mux, http.MethodPost, "/scheduler", `{"action":"stop"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
}

func TestProviderErrors_DoNotExposeAPIKey(t *testing.T) {
	const key = "SECRET-KEY-123"

	tests := []struct {
		name   string
		action string
		reply  string
		method string
		target string
		body   string
		want   int
	}{
		{"bad key", "getBalance", "BAD_KEY", http.MethodGet, "/balance", "", http.StatusBadGateway},
		{"no balance", "getNumber", "NO_BALANCE", http.MethodPost, "/activations", `{"country":"0","service":"tg"}`, http.StatusConflict},
		{"bad key on order", "getNumber", "BAD_KEY", http.MethodPost, "/activations", `{"country":"0","service":"tg"}`, http.StatusBadGateway},
		{"unrecognized", "getBalance", "api_key=" + key, http.MethodGet, "/balance", "", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := smshubtest.NewServer(t)
			fake.Respond(tt.action, tt.reply)

			svc := service.NewActivationService(nil, fake.Client(key), nil, zerolog.Nop(), service.Settings{})
			mux := http.NewServeMux()
			routes.Register(mux, routes.AppDeps{
				Home:       handler.NewHomeHandler(),
				Activation: handler.NewActivationHandler(svc, &stubScheduler{}, zerolog.Nop()),
			})

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, body))

			assert.Equal(t, tt.want, rec.Code)
			assert.NotContains(t, rec.Body.String(), key)
		})
	}
}

func TestTransportError_DoesNotExposeRequestURL(t *testing.T) {
	// Do failures wrap *url.Error, whose text holds the full query string.
	fake := smshubtest.NewServer(t)
	client := fake.Client("SECRET-KEY-123")
	fake.Close()

	svc := service.NewActivationService(nil, client, nil, zerolog.Nop(), service.Settings{})
	mux := http.NewServeMux()
	routes.Register(mux, routes.AppDeps{
		Home:       handler.NewHomeHandler(),
		Activation: handler.NewActivationHandler(svc, &stubScheduler{}, zerolog.Nop()),
	})

	code, env := do(t, mux, http.MethodGet, "/balance", "")
	assert.Equal(t, http.StatusBadGateway, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "provider unavailable", env.Error.Message)
	assert.NotContains(t, env.Error.Message, "SECRET-KEY-123")
	assert.NotContains(t, env.Error.Message, "api_key")
}
