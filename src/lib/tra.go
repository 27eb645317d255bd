package lib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	traPrincipalPath   = "/one/"
	traAcompanantePath = "/two/"
	traMaxResponseSize = 1 << 20
)

// TraHuesped is the guest section shared by both TRA endpoints.
type TraHuesped struct {
	TipoIdentificacion   string `json:"tipo_identificacion"`
	NumeroIdentificacion string `json:"numero_identificacion"`
	Nombres              string `json:"nombres"`
	Apellidos            string `json:"apellidos"`
	CiudadResidencia     string `json:"cuidad_residencia"`
	CiudadProcedencia    string `json:"cuidad_procedencia"`
	NumeroHabitacion     string `json:"numero_habitacion"`
	CheckIn              string `json:"check_in"`
	CheckOut             string `json:"check_out"`
}

type TraPrincipal struct {
	TraHuesped
	Motivo                string `json:"motivo"`
	NumeroAcompanantes    string `json:"numero_acompanantes"`
	TipoAcomodacion       string `json:"tipo_acomodacion"`
	Costo                 string `json:"costo"`
	NombreEstablecimiento string `json:"nombre_establecimiento"`
	RntEstablecimiento    string `json:"rnt_establecimiento"`
}

type TraAcompanante struct {
	TraHuesped
	Padre string `json:"padre"`
}

// TraBooking is everything the registry needs for one stay.
type TraBooking struct {
	IdempotencyKey string
	Principal      TraPrincipal
	Acompanantes   []TraHuesped
}

type TraClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewTraClient(baseURL string, token string, timeout time.Duration) *TraClient {
	return &TraClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

// Submit registers the principal guest, then each companion under the code
// the registry assigned to the principal. The code is returned.
func (c *TraClient) Submit(ctx context.Context, booking *TraBooking) (int64, error) {
	body, err := c.post(ctx, traPrincipalPath, booking.IdempotencyKey, booking.Principal)
	if err != nil {
		return 0, err
	}
	code := gjson.GetBytes(body, "code")
	if !code.Exists() || code.Int() == 0 {
		return 0, fmt.Errorf("[tra] response has no code: %s", truncate(string(body), 200))
	}
	padre := code.String()
	for i, acompanante := range booking.Acompanantes {
		payload := TraAcompanante{TraHuesped: acompanante, Padre: padre}
		key := ""
		if booking.IdempotencyKey != "" {
			key = fmt.Sprintf("%s-%d", booking.IdempotencyKey, i+1)
		}
		if _, err := c.post(ctx, traAcompanantePath, key, payload); err != nil {
			return 0, fmt.Errorf("[tra] principal registered as %s but companion %d failed: %w", padre, i+1, err)
		}
	}
	return code.Int(), nil
}

func (c *TraClient) post(ctx context.Context, path string, idempotencyKey string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+c.token)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[tra] POST %s failed: %s\n", path, err.Error())
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, traMaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	log.Printf("[tra] POST %s -> %d (%s)\n", path, resp.StatusCode, time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "detail").String()
		if msg == "" {
			msg = truncate(string(body), 200)
		}
		return nil, fmt.Errorf("registry answered %d: %s", resp.StatusCode, msg)
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
