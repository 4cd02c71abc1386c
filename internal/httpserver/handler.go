package httpserver

import (
	"github.com/Jim-devENG/ispora-engine-sub009/internal/middleware"
	redisDelivery "github.com/Jim-devENG/ispora-engine-sub009/internal/realtime/delivery/redis"
	sseDelivery "github.com/Jim-devENG/ispora-engine-sub009/internal/realtime/delivery/sse"
	wsDelivery "github.com/Jim-devENG/ispora-engine-sub009/internal/realtime/delivery/websocket"
	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime/usecase"
	"github.com/Jim-devENG/ispora-engine-sub009/internal/recordstore"
	recordstorePostgre "github.com/Jim-devENG/ispora-engine-sub009/internal/recordstore/repository/postgre"
)

// mapHandlers builds the use case and its deliveries and mounts every route.
func (srv *HTTPServer) mapHandlers() {
	var store recordstore.Store
	if srv.db != nil {
		store = recordstorePostgre.New(srv.logger, srv.db)
	}

	srv.uc = usecase.New(srv.logger, srv.verifier, store, usecase.Options{
		HeartbeatInterval: srv.cfg.Heartbeat.Interval,
		MaxConnections:    srv.cfg.WebSocket.MaxConnections,
	})
	srv.subscriber = redisDelivery.NewSubscriber(srv.client, srv.uc, srv.logger)

	mw := middleware.New(srv.logger)
	srv.gin.Use(mw.Logger(), mw.Recovery())
	srv.gin.Use(middleware.CORS(middleware.DefaultCORSConfig(srv.cfg.CORS.AllowedOrigins)))

	srv.mapHealthRoutes()

	wsDelivery.New(srv.logger, srv.uc, wsDelivery.Config{
		WriteWait:       srv.cfg.WebSocket.WriteWait,
		MaxMessageSize:  srv.cfg.WebSocket.MaxMessageSize,
		ReadBufferSize:  srv.cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: srv.cfg.WebSocket.WriteBufferSize,
		SendBufferSize:  srv.cfg.WebSocket.SendBufferSize,
		CookieName:      srv.cfg.Cookie.Name,
		Origins: wsDelivery.OriginPolicy{
			Production: srv.cfg.Environment.IsProduction(),
			Allowed:    srv.cfg.CORS.AllowedOrigins,
		},
	}).RegisterRoutes(srv.gin)

	sseDelivery.New(srv.logger, srv.uc, sseDelivery.Config{
		WriteWait:      srv.cfg.SSE.WriteWait,
		SendBufferSize: srv.cfg.SSE.SendBufferSize,
		CookieName:     srv.cfg.Cookie.Name,
	}).RegisterRoutes(srv.gin)
}

func (srv *HTTPServer) mapHealthRoutes() {
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/ready", srv.readyCheck)
	srv.gin.GET("/live", srv.liveCheck)
	srv.gin.GET("/metrics", srv.metrics)
}
