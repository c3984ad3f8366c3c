package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"zooguide/internal/catalog"
	"zooguide/internal/predict"
	"zooguide/internal/predictlog"
	"zooguide/internal/quiz"
	"zooguide/internal/ranking"
	synchub "zooguide/internal/sync"
	"zooguide/internal/vision"
	"zooguide/pkg/database"
	"zooguide/pkg/utils"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	animals, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("load animal data: %v", err)
	}
	log.Printf("loaded %d animals from %s", animals.Len(), cfg.CatalogPath)

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db, cfg.LogTableName); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}
	events := predictlog.NewRepo(db, cfg.LogTableName)

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))

	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":           "ok",
			"timestamp":        time.Now().UTC().Format(time.RFC3339),
			"animalDataLoaded": animals.Len() > 0,
			"animalCount":      animals.Len(),
		})
	})

	api.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Prediction
	classifier := vision.NewClient(
		cfg.Vision.Endpoint,
		cfg.Vision.ProjectID,
		cfg.Vision.PublishedName,
		cfg.Vision.PredictionKey,
		cfg.Vision.Timeout,
	)
	predictSvc := &predict.Service{
		Classifier:      classifier,
		Resolver:        catalog.NewResolver(animals),
		Events:          events,
		Threshold:       cfg.ConfidenceThreshold,
		ClassifyTimeout: cfg.Vision.Timeout,
		LogTimeout:      cfg.LogWriteTimeout,
		Location:        cfg.Location(),
	}
	predict.NewHandler(predictSvc, cfg.MaxUploadSize).RegisterRoutes(api)

	// Quiz
	quiz.NewHandler(animals).RegisterRoutes(api)

	// Ranking
	rankCache := ranking.NewCache()
	agg := ranking.NewAggregator(events, rankCache, cfg.RankingMinConfidence, cfg.Location())
	agg.Feed = hub
	ranking.NewHandler(rankCache).RegisterRoutes(api)

	scheduler := ranking.NewScheduler(agg, cfg.RankingInterval)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("ranking scheduler: %v", err)
	}

	if fi, err := os.Stat(cfg.StaticDir); err == nil && fi.IsDir() {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))
		log.Printf("serving static files from %s", cfg.StaticDir)
	}

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	var tcpSrv *synchub.Server
	if cfg.SyncAddr != "" {
		tcpSrv = synchub.NewServer(cfg.SyncAddr, hub)
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	if tcpSrv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			log.Printf("tcp shutdown error: %v", err)
		}
	}
	scheduler.Stop()

	wg.Wait()
	log.Println("servers stopped")
}
