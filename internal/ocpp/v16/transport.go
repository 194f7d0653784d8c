// Package v16 wires the OCPP 1.6 dialect onto the shared wire/router/session
// stack: a gorilla/websocket transport (net/http mux, as the teacher's legacy
// server does), and the version's action handler table.
package v16

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/ocpp/ocpperr"
	"github.com/csms-go/csms/internal/ocpp/router"
	"github.com/csms-go/csms/internal/ocpp/session"
	"github.com/csms-go/csms/internal/ocpp/wire"
	"github.com/csms-go/csms/internal/tenant"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:  func(r *http.Request) bool { return true },
	Subprotocols: []string{"ocpp1.6"},
}

// connSender adapts a gorilla/websocket connection to session.Sender,
// serialising writes with its own mutex since gorilla forbids concurrent
// writers on one connection.
type connSender struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *connSender) Send(raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}

func (c *connSender) Close() error {
	return c.conn.Close()
}

// Server serves the /ocpp/1.6/{stationId} WebSocket upgrade path and feeds
// decoded frames into the shared router and session manager.
type Server struct {
	sessions *session.Manager
	router   *router.Router
	tenants  tenant.Registry
	log      *zap.Logger
}

func NewServer(sessions *session.Manager, rt *router.Router, tenants tenant.Registry, log *zap.Logger) *Server {
	return &Server{sessions: sessions, router: rt, tenants: tenants, log: log}
}

// Mux returns an http.Handler serving the station upgrade path under prefix.
func (s *Server) Mux(prefix string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(prefix, s.handleUpgrade(prefix))
	return mux
}

func (s *Server) handleUpgrade(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID := strings.TrimPrefix(r.URL.Path, prefix)
		if stationID == "" {
			http.Error(w, "missing station id", http.StatusBadRequest)
			return
		}

		tenantID, ok := tenant.ResolveHandshake(r.Header.Get("X-Tenant-ID"), r.URL.Query().Get("tenantId"), r.Host, s.tenants)
		if !ok {
			http.Error(w, "unable to resolve tenant", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Error("ocpp1.6: websocket upgrade failed", zap.Error(err))
			return
		}

		sender := &connSender{conn: conn}
		sess := s.sessions.Register(tenantID, stationID, wire.Version16, clientIP(r), sender)

		s.log.Info("ocpp1.6: station connected",
			zap.String("station_id", stationID), zap.String("tenant_id", tenantID))

		s.readLoop(sess, conn)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.RemoteAddr
}

func (s *Server) readLoop(sess *session.Session, conn *websocket.Conn) {
	defer s.sessions.Remove(sess.ID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("ocpp1.6: unexpected close", zap.String("session_id", sess.ID), zap.Error(err))
			}
			return
		}

		sess.MarkMessageReceived()
		frame, err := wire.Decode(raw, wire.Version16)
		if err != nil {
			s.log.Warn("ocpp1.6: malformed frame", zap.String("session_id", sess.ID), zap.Error(err))
			continue
		}

		switch frame.MessageTypeId {
		case wire.Call:
			resp := s.router.DispatchCall(tenant.WithTenant(context.Background(), sess.TenantID), sess, frame)
			out, err := wire.Encode(resp)
			if err != nil {
				s.log.Error("ocpp1.6: encode response failed", zap.Error(err))
				continue
			}
			if err := sess.Send(out); err != nil {
				s.log.Error("ocpp1.6: send response failed", zap.Error(err))
				return
			}
		case wire.CallResult, wire.CallError:
			s.router.DispatchResult(sess, frame)
		default:
			errFrame := wire.NewCallError(frame.MessageId, string(ocpperr.ProtocolError), "unknown messageTypeId", nil, wire.Version16)
			out, _ := wire.Encode(errFrame)
			_ = sess.Send(out)
		}
	}
}

