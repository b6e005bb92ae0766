package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelsud/webhook-resume/config"
	"github.com/marcelsud/webhook-resume/gateway"
	"github.com/marcelsud/webhook-resume/internal/http/chi"
	"github.com/marcelsud/webhook-resume/kinds"
	"github.com/marcelsud/webhook-resume/metrics"
	"github.com/marcelsud/webhook-resume/registry"
	"github.com/marcelsud/webhook-resume/registry/redisjournal"
)

const TIMEOUT = 30 * time.Second

/* main is where all the wiring of the other packages happens:
 * dependencies are initialized here and imports flow only downward,
 * the application layer (api) imports the business layer (gateway,
 * registry), which imports the storage layer (redisjournal)
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	kindLoader := kinds.NewLoader()
	if err := kindLoader.Load(cfg.KindsFile); err != nil {
		fmt.Println(err)
		return
	}

	var journal registry.Journal
	if cfg.RedisAddr != "" {
		recordTTL := time.Duration(cfg.GetPendingRecordTTLHours()) * time.Hour
		redisJournal, err := redisjournal.NewJournal(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, recordTTL)
		if err != nil {
			fmt.Println(err)
			return
		}
		defer redisJournal.Close(ctx)
		journal = redisJournal
	} else {
		journal = registry.NewMemoryJournal()
	}

	reg := registry.New(journal)
	go reg.Run(ctx, time.Duration(cfg.GetSweepIntervalSeconds())*time.Second)

	exporter, err := metrics.NewOTelExporter(metrics.NewRegistryCollector(reg))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(ctx)

	s := gateway.NewService(kindLoader, reg)
	r := chi.Handlers(ctx, s, reg, kindLoader, cfg, exporter.ServeHTTP())
	srv := &http.Server{
		ReadTimeout: 30 * time.Second,
		/* Wait endpoints hold the response open until the matching
		 * webhook arrives, so the write timeout must cover the
		 * longest configured wait TTL
		 */
		WriteTimeout: 30 * time.Minute,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	fmt.Printf("Listening on port %s\n", cfg.Port)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}
