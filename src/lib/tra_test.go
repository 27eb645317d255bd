package lib

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type recordedRequest struct {
	path string
	auth string
	key  string
	body string
}

func traServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recordedRequest) {
	var mu sync.Mutex
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			path: r.URL.Path,
			auth: r.Header.Get("Authorization"),
			key:  r.Header.Get("Idempotency-Key"),
			body: string(body),
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func testBooking() *TraBooking {
	return &TraBooking{
		IdempotencyKey: "formulario-5",
		Principal: TraPrincipal{
			TraHuesped: TraHuesped{
				TipoIdentificacion:   "CC",
				NumeroIdentificacion: "1001",
				Nombres:              "Ana",
				Apellidos:            "Gomez",
				NumeroHabitacion:     "101",
				CheckIn:              "2024-01-15",
				CheckOut:             "2024-01-18",
			},
			Motivo:             "TURISMO",
			NumeroAcompanantes: "1",
			Costo:              "300.00",
		},
		Acompanantes: []TraHuesped{{TipoIdentificacion: "CC", NumeroIdentificacion: "2001"}},
	}
}

func TestTraClientSubmit(t *testing.T) {
	srv, requests := traServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/one/" {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"code": 777}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	})

	client := NewTraClient(srv.URL+"/", "abc", time.Second)
	code, err := client.Submit(context.Background(), testBooking())
	require.NoError(t, err)
	assert.Equal(t, int64(777), code)

	require.Len(t, *requests, 2)
	principal := (*requests)[0]
	assert.Equal(t, "/one/", principal.path)
	assert.Equal(t, "token abc", principal.auth)
	assert.Equal(t, "formulario-5", principal.key)
	assert.Equal(t, "1001", gjson.Get(principal.body, "numero_identificacion").String())
	assert.Equal(t, "TURISMO", gjson.Get(principal.body, "motivo").String())

	companion := (*requests)[1]
	assert.Equal(t, "/two/", companion.path)
	assert.Equal(t, "formulario-5-1", companion.key)
	var payload TraAcompanante
	require.NoError(t, json.Unmarshal([]byte(companion.body), &payload))
	assert.Equal(t, "777", payload.Padre)
	assert.Equal(t, "2001", payload.NumeroIdentificacion)
}

func TestTraClientErrors(t *testing.T) {
	t.Run("Should surface the registry detail", func(t *testing.T) {
		srv, _ := traServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail": "rnt invalido"}`))
		})
		_, err := NewTraClient(srv.URL, "abc", time.Second).Submit(context.Background(), testBooking())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rnt invalido")
	})

	t.Run("Should fail when the response has no code", func(t *testing.T) {
		srv, requests := traServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ok": true}`))
		})
		_, err := NewTraClient(srv.URL, "abc", time.Second).Submit(context.Background(), testBooking())
		assert.Error(t, err)
		assert.Len(t, *requests, 1)
	})

	t.Run("Should report a failed companion with the principal code", func(t *testing.T) {
		srv, _ := traServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/one/" {
				w.Write([]byte(`{"code": 12}`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := NewTraClient(srv.URL, "abc", time.Second).Submit(context.Background(), testBooking())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registered as 12")
	})

	t.Run("Should give up after the timeout", func(t *testing.T) {
		srv, _ := traServer(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"code": 1}`))
		})
		_, err := NewTraClient(srv.URL, "abc", 50*time.Millisecond).Submit(context.Background(), testBooking())
		assert.Error(t, err)
	})
}
