package api

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/vtpl1/ruleserver/cache"
	"github.com/vtpl1/ruleserver/db"
	"github.com/vtpl1/ruleserver/editor"
)

// Server wires the HTTP and websocket handlers to their collaborators.
type Server struct {
	store    db.ConfigStore
	cache    *cache.ConfigCache
	sessions *editor.Manager
	http     *resty.Client
}

// NewServer builds a Server over the given store. The arming decision path
// reads configs through a single-flight cache which save and delete
// invalidate.
func NewServer(store db.ConfigStore) *Server {
	return &Server{
		store:    store,
		cache:    cache.New(store.Load),
		sessions: editor.NewManager(),
		http:     resty.New().SetTimeout(10 * time.Second),
	}
}
