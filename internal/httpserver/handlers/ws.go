package handlers

import (
	"net/http"

	"github.com/colocapp/colocourses/internal/httpserver/deps"
	"github.com/colocapp/colocourses/internal/hub"
)

// WS hands the connection to the realtime hub.
func WS(d deps.Deps) http.HandlerFunc {
	return hub.ServeWS(d.Hub, d.Logger)
}
