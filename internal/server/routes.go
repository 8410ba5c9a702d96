package server

import (
	"github.com/daechang/placetalk/internal/handlers"
)

// routes registers the whole HTTP surface: the chatroom query/mutation API,
// the marker lifecycle, the viewer session, and the realtime subscription
// endpoint.
func (s *Server) routes() {
	chatHandler := handlers.NewChatHandler(s.chatService)
	markerHandler := handlers.NewMarkerHandler(s.markerService)
	sessionHandler := handlers.NewSessionHandler()

	api := s.E.Group("/api")
	{
		api.GET("/chatrooms", chatHandler.List)
		api.POST("/chatrooms", chatHandler.Create)
		api.DELETE("/chatrooms/:chatid", chatHandler.Delete)
		api.POST("/chatrooms/:chatid/messages", chatHandler.AddMessage)

		api.GET("/markers", markerHandler.List)
		api.POST("/markers", markerHandler.Create)
		api.DELETE("/markers/:id", markerHandler.Delete)

		api.POST("/session", sessionHandler.Create)
	}

	// One subscription stream per (connection, chatroom).
	s.E.GET("/ws/chatrooms/:chatid", s.bridge.Handler())
}
