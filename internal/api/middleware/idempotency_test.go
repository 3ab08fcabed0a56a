package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotency_NonMutatingMethodSkipsRedis(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	e := echo.New()
	h := Idempotency(rdb)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/shipments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_MissingKeySkipsRedis(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	e := echo.New()
	h := Idempotency(rdb)(func(c echo.Context) error {
		return c.String(http.StatusCreated, "created")
	})

	req := httptest.NewRequest(http.MethodPost, "/shipments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_CacheHitReplaysStoredResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	redisKey := "idempotency:/shipments:replay-me"
	mock.ExpectGet(redisKey).SetVal(`{"id":"cached"}`)

	e := echo.New()
	calls := 0
	h := Idempotency(rdb)(func(c echo.Context) error {
		calls++
		return c.String(http.StatusCreated, "should not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/shipments", nil)
	req.Header.Set("Idempotency-Key", "replay-me")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, calls)
	assert.JSONEq(t, `{"id":"cached"}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_CacheMissStoresSuccessfulResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	redisKey := "idempotency:/shipments:fresh-key"
	mock.ExpectGet(redisKey).RedisNil()
	mock.ExpectSet(redisKey, []byte(`{"id":"new"}`), idempotencyTTL).SetVal("OK")

	e := echo.New()
	h := Idempotency(rdb)(func(c echo.Context) error {
		return c.JSONBlob(http.StatusCreated, []byte(`{"id":"new"}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/shipments", nil)
	req.Header.Set("Idempotency-Key", "fresh-key")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_CacheMissSkipsStoreOnFailedResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	redisKey := "idempotency:/shipments:failed-key"
	mock.ExpectGet(redisKey).RedisNil()

	e := echo.New()
	h := Idempotency(rdb)(func(c echo.Context) error {
		return c.String(http.StatusConflict, "duplicate reference")
	})

	req := httptest.NewRequest(http.MethodPost, "/shipments", nil)
	req.Header.Set("Idempotency-Key", "failed-key")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_RedisUnavailableFailsOpen(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	redisKey := "idempotency:/shipments:down-key"
	mock.ExpectGet(redisKey).SetErr(assertableRedisErr{})

	e := echo.New()
	calls := 0
	h := Idempotency(rdb)(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "handled anyway")
	})

	req := httptest.NewRequest(http.MethodPost, "/shipments", strings.NewReader(""))
	req.Header.Set("Idempotency-Key", "down-key")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, 1, calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

type assertableRedisErr struct{}

func (assertableRedisErr) Error() string { return "redis: connection refused" }
