package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"
	"github.com/surrealdb/surrealdb.go"

	"github.com/daechang/placetalk/internal/chat"
	"github.com/daechang/placetalk/internal/config"
	"github.com/daechang/placetalk/internal/database"
	"github.com/daechang/placetalk/internal/handlers"
	"github.com/daechang/placetalk/internal/logging"
	"github.com/daechang/placetalk/internal/marker"
	"github.com/daechang/placetalk/internal/pubsub"
	"github.com/daechang/placetalk/internal/store"
	"github.com/daechang/placetalk/internal/websocket"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	Cfg *config.Config

	bus           *pubsub.WatermillBridge
	chatService   chat.Service
	markerService *marker.Service
	bridge        *websocket.Bridge
	db            *surrealdb.DB // nil with the file driver
}

// New creates a fully wired Server from the environment.
func New() *Server {
	logging.New()
	cfg := config.New()

	var (
		chatStore   store.ChatroomStore
		markerStore store.MarkerStore
		db          *surrealdb.DB
	)
	switch cfg.StoreDriver {
	case config.DriverSurreal:
		conn, err := database.NewDB(context.Background(), cfg)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		surreal := database.NewSurrealStore(conn)
		chatStore, markerStore, db = surreal, surreal, conn
	default:
		fileStore, err := store.NewFileStore(afero.NewOsFs(), cfg.StorePath)
		if err != nil {
			slog.Error("Failed to open store document", "path", cfg.StorePath, "error", err)
			os.Exit(1)
		}
		chatStore, markerStore = fileStore, fileStore
	}

	return NewWithStores(cfg, chatStore, markerStore, db)
}

// NewWithStores wires a Server around the given stores. Tests use it to run
// the full HTTP surface against in-memory backends.
func NewWithStores(cfg *config.Config, chatStore store.ChatroomStore, markerStore store.MarkerStore, db *surrealdb.DB) *Server {
	bus := pubsub.NewWatermillBridge()
	chatService := chat.NewService(chatStore, bus)
	markerService := marker.NewService(markerStore, chatService, cfg.MarkerTTL)
	bridge := websocket.NewBridge(bus, handlers.SessionEmail)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Viewer-identity cookie session.
	cookieStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
	}
	e.Use(session.Middleware(cookieStore))

	s := &Server{
		E:             e,
		Cfg:           cfg,
		bus:           bus,
		chatService:   chatService,
		markerService: markerService,
		bridge:        bridge,
		db:            db,
	}
	s.routes()
	return s
}

// ChatService is a getter for the server's chat service, useful for testing.
func (s *Server) ChatService() chat.Service {
	return s.chatService
}

// MarkerService is a getter for the server's marker service, useful for testing.
func (s *Server) MarkerService() *marker.Service {
	return s.markerService
}

// Bridge is a getter for the websocket bridge, useful for testing.
func (s *Server) Bridge() *websocket.Bridge {
	return s.bridge
}
