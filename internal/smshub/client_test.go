package smshub_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/oggyb/smshub/internal/smshub"
	"github.com/oggyb/smshub/internal/smshub/smshubtest"
)

func TestClient_SendsKeyActionAndParams(t *testing.T) {
	srv := smshubtest.NewServer(t)
	srv.Respond("getNumber", "ACCESS_NUMBER:1:79000000000")
	c := srv.Client("abc")

	_, err := c.GetNumber(context.Background(), "0", "mts", "vk")
	require.NoError(t, err)

	q := srv.LastRequest()
	require.NotNil(t, q)
	assert.Equal(t, "abc", q.Get("api_key"))
	assert.Equal(t, "getNumber", q.Get("action"))
	assert.Equal(t, "0", q.Get("country"))
	assert.Equal(t, "mts", q.Get("operator"))
	assert.Equal(t, "vk", q.Get("service"))
}

func TestClient_DefaultEndpoint(t *testing.T) {
	c := smshub.New("abc", nil)
	assert.Equal(t, smshub.DefaultEndpoint, c.Endpoint())
	assert.Equal(t, "https://smshub.org/stubs/handler_api.php", c.Endpoint())
}

func TestGetBalance(t *testing.T) {
	srv := smshubtest.NewServer(t)
	srv.Respond("getBalance", "ACCESS_BALANCE:123.45")

	got, err := srv.Client("abc").GetBalance(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("123.45")), "got %s", got)
}

func TestGetBalance_Errors(t *testing.T) {
	tests := []struct {
		body     string
		kind     error
		contains string
	}{
		{"BAD_KEY", smshub.ErrBadKey, "abc"},
		{"ERROR_SQL", smshub.ErrSQL, ""},
		{"BAD_ACTION", smshub.ErrBadAction, "getBalance"},
		{"SOMETHING_NEW", smshub.ErrUnrecognizedResponse, "SOMETHING_NEW"},
		{"ACCESS_BALANCE", smshub.ErrMalformedResponse, ""},
		{"ACCESS_BALANCE:lots", smshub.ErrMalformedResponse, ""},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			srv := smshubtest.NewServer(t)
			srv.Respond("getBalance", tt.body)

			_, err := srv.Client("abc").GetBalance(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.contains)

			var respErr *smshub.ResponseError
			require.ErrorAs(t, err, &respErr)
			assert.Equal(t, "getBalance", respErr.Action)
			assert.Equal(t, tt.body, respErr.Body)
		})
	}
}

func TestGetNumber(t *testing.T) {
	srv := smshubtest.NewServer(t)
	srv.Respond("getNumber", "ACCESS_NUMBER:12345:79001234567")

	got, err := srv.Client("abc").GetNumber(context.Background(), "0", "any", "vk")
	require.NoError(t, err)
	assert.Equal(t, &smshub.Number{ID: "12345", Number: "79001234567"}, got)
}

func TestGetNumber_Errors(t *testing.T) {
	tests := []struct {
		body     string
		kind     error
		contains []string
	}{
		{"NO_NUMBERS", smshub.ErrNoNumbers, []string{"ru", "tg"}},
		{"NO_BALANCE", smshub.ErrNoBalance, []string{"abc"}},
		{"WRONG_SERVICE", smshub.ErrWrongService, []string{"tg"}},
		{"BAD_KEY", smshub.ErrBadKey, []string{"abc"}},
		{"BAD_ACTION", smshub.ErrBadAction, []string{"getNumber"}},
		{"ERROR_SQL", smshub.ErrSQL, []string{"getNumber"}},
		{"ACCESS_NUMBER:12345", smshub.ErrMalformedResponse, nil},
		{"<html>oops</html>", smshub.ErrUnrecognizedResponse, []string{"oops"}},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			srv := smshubtest.NewServer(t)
			srv.Respond("getNumber", tt.body)

			got, err := srv.Client("abc").GetNumber(context.Background(), "ru", "any", "tg")
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.kind)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestSetStatus(t *testing.T) {
	for _, body := range []string{"ACCESS_READY", "ACCESS_RETRY_GET", "ACCESS_ACTIVATION", "ACCESS_CANCEL"} {
		t.Run(body, func(t *testing.T) {
			srv := smshubtest.NewServer(t)
			srv.Respond("setStatus", body)

			ok, err := srv.Client("abc").SetStatus(context.Background(), "777", smshub.RequestCancel)
			require.NoError(t, err)
			assert.True(t, ok)

			q := srv.LastRequest()
			assert.Equal(t, "777", q.Get("id"))
			assert.Equal(t, "8", q.Get("status"))
		})
	}
}

func TestSetStatus_Errors(t *testing.T) {
	tests := []struct {
		body     string
		kind     error
		contains string
	}{
		{"BAD_ACTION", smshub.ErrBadAction, "setStatus"},
		{"BAD_SERVICE", smshub.ErrWrongService, ""},
		{"BAD_KEY", smshub.ErrBadKey, "abc"},
		{"NO_ACTIVATION", smshub.ErrNoActivation, "777"},
		{"ERROR_SQL", smshub.ErrSQL, ""},
		{"ACCESS_WHATEVER", smshub.ErrUnrecognizedResponse, "ACCESS_WHATEVER"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			srv := smshubtest.NewServer(t)
			srv.Respond("setStatus", tt.body)

			ok, err := srv.Client("abc").SetStatus(context.Background(), "777", smshub.RequestReady)
			require.Error(t, err)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestGetStatus(t *testing.T) {
	tests := map[string]smshub.Status{
		"STATUS_WAIT_CODE":   smshub.StatusWaitCode,
		"STATUS_WAIT_RESEND": smshub.StatusWaitResend,
		"STATUS_CANCEL":      smshub.StatusCancel,
		"STATUS_OK":          smshub.StatusOK,
	}

	for body, want := range tests {
		t.Run(body, func(t *testing.T) {
			srv := smshubtest.NewServer(t)
			srv.Respond("getStatus", body)

			got, err := srv.Client("abc").GetStatus(context.Background(), "42")
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.True(t, got.Valid())
			assert.Equal(t, "42", srv.LastRequest().Get("id"))
		})
	}
}

func TestCheckStatus_CodeAttached(t *testing.T) {
	srv := smshubtest.NewServer(t)
	srv.Respond("getStatus", "STATUS_OK:483920")

	report, err := srv.Client("abc").CheckStatus(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, smshub.StatusReport{Status: smshub.StatusOK, Code: "483920"}, report)

	status, err := srv.Client("abc").GetStatus(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, smshub.StatusOK, status)
}

func TestGetStatus_Errors(t *testing.T) {
	tests := []struct {
		body     string
		kind     error
		contains string
	}{
		{"BAD_KEY", smshub.ErrBadKey, "abc"},
		{"BAD_ACTION", smshub.ErrBadAction, "getStatus"},
		{"NO_ACTIVATION", smshub.ErrNoActivation, "42"},
		{"ERROR_SQL", smshub.ErrSQL, ""},
		{"STATUS_UNKNOWN", smshub.ErrUnrecognizedResponse, "STATUS_UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			srv := smshubtest.NewServer(t)
			srv.Respond("getStatus", tt.body)

			got, err := srv.Client("abc").GetStatus(context.Background(), "42")
			require.Error(t, err)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestGetPrices(t *testing.T) {
	body := `{"service1": {"country1": {"count": 5, "price": "10"}}}`
	srv := smshubtest.NewServer(t)
	srv.Respond("getPrices", body)

	table, err := srv.Client("abc").GetPrices(context.Background(), "service1", "country1")
	require.NoError(t, err)
	require.Contains(t, table, "service1")
	require.Contains(t, table["service1"], "country1")
	assert.JSONEq(t, `{"count": 5, "price": "10"}`, string(table["service1"]["country1"]))

	q := srv.LastRequest()
	assert.Equal(t, "service1", q.Get("service"))
	assert.Equal(t, "country1", q.Get("country"))
}

func TestGetPrices_TokenIsParseFailure(t *testing.T) {
	srv := smshubtest.NewServer(t)
	srv.Respond("getPrices", "BAD_KEY")

	_, err := srv.Client("abc").GetPrices(context.Background(), "vk", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, smshub.ErrMalformedResponse)
	assert.NotErrorIs(t, err, smshub.ErrBadKey)
}

func TestGetNumbersStatus(t *testing.T) {
	srv := smshubtest.NewServer(t)
	srv.Respond("getNumbersStatus", `{"vk_0": "120", "tg_0": "7"}`)

	raw, err := srv.Client("abc").GetNumbersStatus(context.Background(), "0", "any")
	require.NoError(t, err)
	assert.JSONEq(t, `{"vk_0": "120", "tg_0": "7"}`, string(raw))

	srv.Respond("getNumbersStatus", "BAD_KEY")
	_, err = srv.Client("abc").GetNumbersStatus(context.Background(), "0", "any")
	assert.ErrorIs(t, err, smshub.ErrMalformedResponse)
}

func TestTransportErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := smshub.New("abc", srv.Client(), smshub.WithEndpoint(srv.URL))
		_, err := c.GetBalance(context.Background())

		var tErr *smshub.TransportError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, http.StatusServiceUnavailable, tErr.StatusCode)
		assert.Equal(t, "getBalance", tErr.Action)
	})

	t.Run("do fails", func(t *testing.T) {
		boom := errors.New("connection refused")
		c := smshub.New("abc", doerFunc(func(*http.Request) (*http.Response, error) { return nil, boom }))

		_, err := c.GetStatus(context.Background(), "1")
		var tErr *smshub.TransportError
		require.ErrorAs(t, err, &tErr)
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, tErr.StatusCode)
	})

	t.Run("context canceled", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(block)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		c := smshub.New("abc", srv.Client(), smshub.WithEndpoint(srv.URL))
		_, err := c.GetBalance(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClient_ConcurrentCallsDoNotCrossDeliver(t *testing.T) {
	srv := smshubtest.NewServer(t)
	srv.RespondFunc("getNumber", func(q url.Values) string {
		// Echo the service back so each caller can verify its own answer.
		return fmt.Sprintf("ACCESS_NUMBER:%s:7900%s", q.Get("service"), q.Get("service"))
	})
	srv.RespondFunc("getStatus", func(q url.Values) string {
		return "STATUS_OK:" + q.Get("id")
	})
	c := srv.Client("abc")

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		i := i
		g.Go(func() error {
			svc := fmt.Sprintf("s%d", i)
			n, err := c.GetNumber(context.Background(), "0", "any", svc)
			if err != nil {
				return err
			}
			if n.ID != svc || n.Number != "7900"+svc {
				return fmt.Errorf("call %d got %+v", i, n)
			}
			return nil
		})
		g.Go(func() error {
			id := fmt.Sprintf("%d", i)
			report, err := c.CheckStatus(context.Background(), id)
			if err != nil {
				return err
			}
			if report.Code != id {
				return fmt.Errorf("status call %d got code %q", i, report.Code)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, srv.Requests(), 100)
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestParseStatusRequest(t *testing.T) {
	tests := map[string]smshub.StatusRequest{
		"ready":    smshub.RequestReady,
		"RESEND":   smshub.RequestResend,
		"6":        smshub.RequestComplete,
		" cancel ": smshub.RequestCancel,
	}
	for in, want := range tests {
		got, err := smshub.ParseStatusRequest(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := smshub.ParseStatusRequest("finish-him")
	assert.Error(t, err)
	assert.Equal(t, "cancel", smshub.RequestCancel.Name())
	assert.Equal(t, "5", smshub.StatusRequest(5).Name())
}
