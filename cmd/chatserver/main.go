// Command chatserver runs the real-time chat server: authenticated
// WebSocket connections, one shared public room, private messages, and
// history replay on connect.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/TVLlam/CHAT-AES/internal/auth"
	"github.com/TVLlam/CHAT-AES/internal/chat"
	"github.com/TVLlam/CHAT-AES/internal/config"
	"github.com/TVLlam/CHAT-AES/internal/identity"
	"github.com/TVLlam/CHAT-AES/internal/messaging"
	"github.com/TVLlam/CHAT-AES/internal/presence"
	"github.com/TVLlam/CHAT-AES/internal/protocol"
	"github.com/TVLlam/CHAT-AES/internal/ratelimit"
	"github.com/TVLlam/CHAT-AES/internal/session"
	"github.com/TVLlam/CHAT-AES/internal/store"
	"github.com/TVLlam/CHAT-AES/internal/ws"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := config.Load()

	// Message store and identity directory: Postgres when configured,
	// in-memory fallback for local development.
	var (
		msgStore  chat.Store
		directory identity.Directory
	)
	if cfg.DatabaseURL != "" {
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("main: failed to open database: %v", err)
		}
		defer db.Close()

		if err := store.Migrate(db); err != nil {
			log.Fatalf("main: migration failed: %v", err)
		}

		msgStore = chat.NewPostgresStore(db)
		directory = identity.NewPostgresDirectory(db)
	} else {
		log.Println("main: DATABASE_URL not set, using in-memory store (history lost on restart)")
		msgStore = chat.NewMemoryStore()

		dir := identity.NewMemoryDirectory()
		for _, name := range []string{"alice", "bob", "carol"} {
			dir.Add(name)
		}
		directory = dir
	}

	secret := cfg.JWTSecretKey
	if secret == "" {
		log.Println("main: JWT_SECRET_KEY not set, using development secret")
		secret = "dev-secret"
	}
	authenticator := auth.NewAuthenticator([]byte(secret), directory)

	registry := presence.NewRegistry()
	room := chat.NewRoom(chat.DefaultRoom)

	serverCfg := ws.ServerConfig{
		ListenAddr:     cfg.ListenAddr,
		WorkerPoolSize: cfg.WorkerPoolSize,
		MaxConnections: cfg.MaxConnections,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
	}

	var dispatcher *ws.MessageDispatcher
	server := ws.NewServer(serverCfg, authenticator.Authenticate, func(conn *ws.Connection, data []byte) {
		dispatcher.Dispatch(conn, data)
	})

	router := chat.NewRouter(msgStore, directory, registry, room, server)
	controller := chat.NewController(registry, msgStore, room, server)

	// Optional Redis: session records plus per-identity rate limiting.
	if cfg.RedisAddr != "" {
		sessions, err := session.NewStore(cfg.RedisAddr, cfg.ServerName)
		if err != nil {
			log.Fatalf("main: failed to connect to redis: %v", err)
		}
		defer sessions.Close()

		controller.SetSessions(sessions)
		router.SetThrottle(ratelimit.NewMessageThrottle(ratelimit.NewLimiter(sessions.Client())))

		server.SetOnHeartbeat(func(connID string) {
			if err := sessions.RefreshTTL(context.Background(), connID); err != nil {
				log.Printf("main: session ttl refresh failed for conn=%s: %v", connID, err)
			}
		})
	} else {
		log.Println("main: REDIS_ADDR not set, session records and rate limiting disabled")
	}

	// Optional NATS: publish-only event firehose for message and
	// presence events.
	if cfg.NatsURL != "" {
		natsCfg := messaging.DefaultConfig()
		natsCfg.URL = cfg.NatsURL
		natsCfg.Name = cfg.ServerName

		events, err := messaging.NewClient(natsCfg)
		if err != nil {
			log.Fatalf("main: failed to connect to nats: %v", err)
		}
		defer events.Close()

		router.SetEvents(events)
		controller.SetEvents(events)
	} else {
		log.Println("main: NATS_URL not set, event publishing disabled")
	}

	dispatcher = ws.NewMessageDispatcher(server)
	dispatcher.Register(protocol.TypeSendMessage, func(conn *ws.Connection, payload interface{}) {
		req, ok := payload.(protocol.SendMessageMsg)
		if !ok {
			return
		}
		router.HandleSend(context.Background(), conn.ID, conn.Identity, req)
	})

	server.SetOnConnect(func(conn *ws.Connection) {
		controller.HandleConnect(context.Background(), conn.ID, conn.Identity)
	})
	server.SetOnDisconnect(func(conn *ws.Connection) {
		controller.HandleDisconnect(context.Background(), conn.ID)
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("main: server error: %v", err)
		}
	}()

	// Wait for a termination signal, then shut down gracefully.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("main: received signal %v, shutting down", sig)

	if err := server.Shutdown(); err != nil {
		log.Printf("main: shutdown error: %v", err)
	}
}
