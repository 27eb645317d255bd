package main

import (
	"context"
	"encoding/json"
	"fmt"
	"hms/src/config"
	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/services"
	"hms/src/types"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type revocationSet struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func (r *revocationSet) Add(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = true
	return nil
}

func (r *revocationSet) Contains(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[token], nil
}

type TestSuite struct {
	suite.Suite
	DB    *gorm.DB
	Svc   *services.Services
	Token *string
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", secret)
	os.Setenv("PUBLIC_RATE_LIMIT", "600")
	registerValidators()

	token, err := lib.GenerateJWT(config.GetJWTSecret(), "recepcion", types.RoleCajero, time.Hour)
	if err != nil {
		log.Fatalf("Error generating JWT token: %s\n", err.Error())
	}
	s.Token = &token
}

func (s *TestSuite) SetupTest() {
	os.Unsetenv("MAINTENANCE_MODE")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening the test database", err)
	}
	inner, _ := d.DB()
	inner.SetMaxOpenConns(1)
	if err := db.Migrate(d); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	if err := d.Create(&models.Habitacion{NumeroHabitacion: 101, Tipo: "DOBLE", Capacidad: 2}).Error; err != nil {
		log.Fatalf("Could not create habitacion: %s\n", err.Error())
	}
	s.DB = d
	s.Svc = services.New(
		d,
		lib.NewJWTSigner(config.GetJWTSecret()),
		&revocationSet{tokens: map[string]bool{}},
		nil,
		nil,
		services.Config{LinkTTL: time.Hour, FormBaseURL: "http://localhost:3000/registro-formulario", TraTimeout: time.Second},
	)
}

func (s *TestSuite) TearDownTest() {
	if inner, err := s.DB.DB(); err == nil {
		inner.Close()
	}
}

func TestMainTestSuite(t *testing.T) {
	suite.Run(t, new(TestSuite))
}

const secret = "secret"

func (s *TestSuite) router() *gin.Engine {
	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	publicRoutes(router, s.Svc)
	staffRoutes(router, s.Svc)
	return router
}

func (s *TestSuite) do(router *gin.Engine, method, url, token string, body any) *httptest.ResponseRecorder {
	var payload *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		payload = strings.NewReader(string(b))
	} else {
		payload = strings.NewReader("")
	}
	req, _ := http.NewRequest(method, url, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func formularioBody(numero string, acompanantes ...string) map[string]any {
	guest := func(n string) map[string]any {
		return map[string]any{
			"tipoDocumento":    "CC",
			"numeroDocumento":  n,
			"primerNombre":     "Luis",
			"primerApellido":   "Perez",
			"fechaNacimiento":  "1985-03-02",
			"nacionalidad":     "CO",
			"paisResidencia":   "CO",
			"ciudadResidencia": "Cali",
			"genero":           "MASCULINO",
		}
	}
	body := map[string]any{
		"huesped":     guest(numero),
		"motivoViaje": "TURISMO",
	}
	var list []map[string]any
	for _, n := range acompanantes {
		list = append(list, guest(n))
	}
	if len(list) > 0 {
		body["acompanantes"] = list
	}
	return body
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	assert.NotEmpty(s.T(), w.Header().Get("X-Request-ID"))
	assert.Equal(s.T(), "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestStaffRoutesRequireToken() {
	router := s.router()

	w := s.do(router, "GET", "/api/v1/links", "", nil)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)

	w = s.do(router, "GET", "/api/v1/links", "garbage", nil)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)

	guestToken, err := lib.GenerateJWT(config.GetJWTSecret(), "someone", "HUESPED", time.Hour)
	s.Require().NoError(err)
	w = s.do(router, "GET", "/api/v1/links", guestToken, nil)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *TestSuite) TestIssueLinkValidation() {
	router := s.router()
	token := *s.Token

	s.Run("Should return 400 when the stay ends before it starts", func() {
		w := s.do(router, "POST", "/api/v1/links", token, map[string]any{
			"numeroHabitacion": 101,
			"fechaInicio":      "2024-01-18",
			"fechaFin":         "2024-01-15",
			"costo":            300,
		})
		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
		assert.NotEmpty(s.T(), gjson.Get(w.Body.String(), "error").String())
	})

	s.Run("Should return 404 for an unknown room", func() {
		w := s.do(router, "POST", "/api/v1/links", token, map[string]any{
			"numeroHabitacion": 999,
			"fechaInicio":      "2024-01-15",
			"fechaFin":         "2024-01-18",
			"costo":            300,
		})
		assert.Equal(s.T(), http.StatusNotFound, w.Code)
	})
}

func (s *TestSuite) TestBookingFlow() {
	router := s.router()
	token := *s.Token

	w := s.do(router, "POST", "/api/v1/links", token, map[string]any{
		"numeroHabitacion": 101,
		"fechaInicio":      "2024-01-15",
		"fechaFin":         "2024-01-18",
		"costo":            300,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	linkID := gjson.Get(w.Body.String(), "data.id").Uint()
	url := gjson.Get(w.Body.String(), "url").String()
	linkToken := url[strings.LastIndex(url, "/")+1:]
	s.Require().NotEmpty(linkToken)

	s.Run("Should validate the invitation", func() {
		w := s.do(router, "GET", "/api/v1/public/links/validate", linkToken, nil)
		assert.Equal(s.T(), http.StatusOK, w.Code)
		assert.Equal(s.T(), int64(101), gjson.Get(w.Body.String(), "numeroHabitacion").Int())
		assert.Equal(s.T(), string(types.LINK_PENDING), gjson.Get(w.Body.String(), "estado").String())
	})

	s.Run("Should reject a submission without invitation", func() {
		w := s.do(router, "POST", "/api/v1/public/formularios", "", formularioBody("3001"))
		assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	})

	s.Run("Should create the booking once", func() {
		w := s.do(router, "POST", "/api/v1/public/formularios", linkToken, formularioBody("3001", "4001"))
		s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
		body := w.Body.String()
		assert.Equal(s.T(), "omitido", gjson.Get(body, "traStatus").String())
		assert.Equal(s.T(), 300.0, gjson.Get(body, "data.factura.total").Float())
		assert.True(s.T(), gjson.Get(body, "data.link.completado").Bool())
		assert.Len(s.T(), gjson.Get(body, "data.huespedesSecundarios").Array(), 1)

		w = s.do(router, "POST", "/api/v1/public/formularios", linkToken, formularioBody("3001"))
		assert.Equal(s.T(), http.StatusConflict, w.Code)
	})

	s.Run("Should refuse to regenerate a consumed link", func() {
		w := s.do(router, "POST", fmt.Sprintf("/api/v1/links/%d/regenerate", linkID), token, nil)
		assert.Equal(s.T(), http.StatusConflict, w.Code)
	})

	s.Run("Should report tra as unavailable", func() {
		var formulario models.Formulario
		s.Require().NoError(s.DB.First(&formulario).Error)
		w := s.do(router, "POST", fmt.Sprintf("/api/v1/formularios/%d/tra", formulario.ID), token, nil)
		assert.Equal(s.T(), http.StatusBadGateway, w.Code)
	})

	s.Run("Should remove the booking and its orphan guests", func() {
		w := s.do(router, "DELETE", fmt.Sprintf("/api/v1/bookings/%d", linkID), token, nil)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		body := w.Body.String()
		assert.Equal(s.T(), linkID, gjson.Get(body, "data.linkId").Uint())
		assert.True(s.T(), gjson.Get(body, "data.huespedPrincipalEliminado").Bool())
		assert.Len(s.T(), gjson.Get(body, "data.huespedesSecundariosEliminados").Array(), 1)

		w = s.do(router, "GET", "/api/v1/public/links/validate", linkToken, nil)
		assert.Equal(s.T(), http.StatusUnauthorized, w.Code)

		w = s.do(router, "DELETE", fmt.Sprintf("/api/v1/bookings/%d", linkID), token, nil)
		assert.Equal(s.T(), http.StatusNotFound, w.Code)
	})

	s.Run("Should keep the trail of the link", func() {
		w := s.do(router, "GET", fmt.Sprintf("/api/v1/links/%d/trail", linkID), token, nil)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		body := w.Body.String()
		assert.Equal(s.T(), int64(3), gjson.Get(body, "count").Int())
		assert.Equal(s.T(), models.TRAIL_LINK_ISSUED, gjson.Get(body, "data.0.type").String())
		assert.Equal(s.T(), "recepcion", gjson.Get(body, "data.0.initiator").String())
		assert.Equal(s.T(), models.TRAIL_INITIATOR_HUESPED, gjson.Get(body, "data.1.initiator").String())
		assert.Equal(s.T(), models.TRAIL_BOOKING_REMOVED, gjson.Get(body, "data.2.type").String())
	})
}

func (s *TestSuite) TestLinkQRCode() {
	router := s.router()
	token := *s.Token

	w := s.do(router, "POST", "/api/v1/links", token, map[string]any{
		"numeroHabitacion": 101,
		"fechaInicio":      "2024-01-15",
		"fechaFin":         "2024-01-16",
		"costo":            100,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	linkID := gjson.Get(w.Body.String(), "data.id").Uint()

	w = s.do(router, "GET", fmt.Sprintf("/api/v1/links/%d/qr", linkID), token, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "image/jpeg", w.Header().Get("Content-Type"))
	assert.Greater(s.T(), w.Body.Len(), 0)
}
