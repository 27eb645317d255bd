package boot

import (
	"hms/src/common"
	"hms/src/config"
	"hms/src/db"
	"hms/src/lib"
	"hms/src/services"
	"log"
	"time"

	"gorm.io/gorm"
)

const (
	expireLinksEvery = 5 * time.Minute
	retryTraEvery    = 15 * time.Minute
)

func InitDb() *gorm.DB {
	d := db.GetDb()

	if err := db.Migrate(d); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return d
}

// InitServices wires the booking services against the shared database, redis
// and, when enabled, the tourism registry.
func InitServices(d *gorm.DB) *services.Services {
	cfg := services.Config{
		LinkTTL:               config.GetLinkTTL(),
		FormBaseURL:           config.GetFormBaseURL(),
		TraTimeout:            config.GetTraTimeout(),
		TraEnabled:            config.TraEnabled(),
		NombreEstablecimiento: config.GetNombreEstablecimiento(),
		RntEstablecimiento:    config.GetRntEstablecimiento(),
	}
	var tra services.TraClient
	if cfg.TraEnabled {
		tra = lib.NewTraClient(config.GetTraURL(), config.GetTraToken(), cfg.TraTimeout)
	} else {
		log.Println("[tra] registry bridge disabled")
	}
	rdb := lib.GetRedisClient()
	if rdb == nil {
		log.Fatalln("[redis] REDIS_HOST is required for token revocation")
	}
	return services.New(
		d,
		lib.NewJWTSigner(config.GetJWTSecret()),
		lib.NewRedisRevocationStore(rdb, config.GetBlacklistTTL()),
		tra,
		lib.NewSMTPMailer(),
		cfg,
	)
}

func InitScheduler(svc *services.Services) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if _, err := lib.CreateCronJob("expire-links", func() { common.ExpireStaleLinks(svc.Links) }, expireLinksEvery); err != nil {
		log.Printf("Error scheduling job: %s\n", err.Error())
	}
	if _, err := lib.CreateCronJob("retry-tra", func() { common.RetryPendingTra(svc.Tra) }, retryTraEvery); err != nil {
		log.Printf("Error scheduling job: %s\n", err.Error())
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}
