package main

import (
	"context"
	"errors"
	"hms/src/boot"
	"hms/src/config"
	"hms/src/controllers"
	"hms/src/middlewares"
	"hms/src/services"
	"hms/src/types"
	"hms/src/utils"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"regexp"
	"strconv"
	"syscall"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

var fechaiso validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := utils.ParseFecha(date)
	return err == nil
}

// gtfield requires the field to be a date strictly after the field named in the param.
var gtfield validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := utils.ParseFecha(date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	if !field.IsValid() {
		return false
	}
	fieldValue, ok := field.Interface().(string)
	if !ok {
		return false
	}
	fielddatetime, err := utils.ParseFecha(fieldValue)
	if err != nil {
		return false
	}
	return datetime.After(fielddatetime)
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("fechaiso", fechaiso)
		v.RegisterValidation("gtdate", gtfield)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders, middlewares.RequestID)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		on, err := strconv.ParseBool(mm)
		if err == nil && on {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

// publicRoutes serves the guest facing form. Submissions are rate limited per IP.
func publicRoutes(g *gin.Engine, svc *services.Services) *gin.RouterGroup {
	public := apiv1Group(g).Group("/public")
	limiter := middlewares.NewIPRateLimiter(config.GetPublicRateLimit(), config.GetPublicRateLimit(), 10*time.Minute)
	public.Use(middlewares.RateLimitByIP(limiter))

	publicLinkHandlers(public, controllers.NewLinksController(svc.Links, svc.Trail))

	invited := public.Group("")
	invited.Use(middlewares.VerifyLinkToken(svc.Links))
	publicFormularioHandlers(invited, controllers.NewFormulariosController(svc.Registration, svc.Tra, svc.Trail))
	return public
}

func staffRoutes(g *gin.Engine, svc *services.Services) *gin.RouterGroup {
	authorized := apiv1Group(g)
	authorized.Use(middlewares.AuthMiddleware, middlewares.RequireRole(types.RoleAdministrador, types.RoleCajero))

	linkHandlers(authorized, controllers.NewLinksController(svc.Links, svc.Trail))
	formularioHandlers(authorized, controllers.NewFormulariosController(svc.Registration, svc.Tra, svc.Trail))
	bookings := controllers.NewBookingsController(svc.Reversal, svc.Guests, svc.Trail)
	bookingHandlers(authorized, bookings)
	reservationHandlers(authorized, bookings)
	return authorized
}

// errorResponse renders {"error": message}. Internal details stay in the logs.
func errorResponse(ctx *gin.Context, op string, status int, err error) {
	log.Printf("[%s] error: %s\n", op, err.Error())
	var appErr *types.AppError
	msg := err.Error()
	if errors.As(err, &appErr) || status >= http.StatusInternalServerError {
		msg = types.PublicMessage(err)
	}
	ctx.JSON(status, gin.H{"error": msg})
}

func initLogger() {
	cwd, _ := os.Getwd()
	logDir := path.Join(cwd, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("Could not create log directory: %s\n", err.Error())
		return
	}
	gin.ForceConsoleColor()

	f, err := os.Create(path.Join(logDir, "api.log"))
	if err == nil {
		gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   path.Join(logDir, "server.log"),
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func corsMiddleware() gin.HandlerFunc {
	if os.Getenv("API_ENV") == "local" {
		return cors.Default()
	}
	appHost := os.Getenv("APP_HOST")
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "X-Request-ID")
	cc.ExposeHeaders = append(cc.ExposeHeaders, "X-Request-ID")
	cc.AllowOriginFunc = func(origin string) bool {
		if appHost == "" {
			return false
		}
		match, _ := regexp.MatchString(appHost, origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	if config.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	initLogger()
	if len(config.GetJWTSecret()) == 0 {
		log.Fatalln("JWT_SECRET is required")
	}

	d := boot.InitDb()
	svc := boot.InitServices(d)
	boot.InitScheduler(svc)

	registerValidators()
	router := setupRouter()
	router.Use(corsMiddleware())
	router = maintenanceModeMiddleware(router)

	publicRoutes(router, svc)
	staffRoutes(router, svc)

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Server listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	boot.StopScheduler()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %s\n", err.Error())
	}
}
