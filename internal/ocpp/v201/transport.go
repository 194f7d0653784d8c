// Package v201 wires the OCPP 2.0.1 dialect onto the shared wire/router/
// session stack, mounted on the fiber app's gofiber/websocket/v2 upgrade
// path (the teacher's existing route), rather than the legacy net/http mux
// used for 1.6.
package v201

import (
	"context"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/ocpp/ocpperr"
	"github.com/csms-go/csms/internal/ocpp/router"
	"github.com/csms-go/csms/internal/ocpp/session"
	"github.com/csms-go/csms/internal/ocpp/wire"
	"github.com/csms-go/csms/internal/tenant"
)

// connSender adapts a gofiber/websocket/v2 connection to session.Sender.
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

// Server mounts /ocpp/2.0.1/:stationId on a fiber app and feeds decoded
// frames into the shared router and session manager.
type Server struct {
	sessions *session.Manager
	router   *router.Router
	tenants  tenant.Registry
	log      *zap.Logger
}

func NewServer(sessions *session.Manager, rt *router.Router, tenants tenant.Registry, log *zap.Logger) *Server {
	return &Server{sessions: sessions, router: rt, tenants: tenants, log: log}
}

// Mount registers the upgrade path and handler on app under prefix
// (e.g. "/ocpp/2.0.1/:stationId").
func (s *Server) Mount(app *fiber.App, prefix string) {
	app.Use(prefix, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			tenantID, ok := tenant.ResolveHandshake(c.Get("X-Tenant-ID"), c.Query("tenantId"), c.Hostname(), s.tenants)
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, "unable to resolve tenant")
			}
			c.Locals("tenant_id", tenantID)
			c.Locals("client_ip", c.IP())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get(prefix, websocket.New(func(c *websocket.Conn) {
		stationID := c.Params("stationId")
		tenantID, _ := c.Locals("tenant_id").(string)
		clientIP, _ := c.Locals("client_ip").(string)
		if stationID == "" || tenantID == "" {
			c.Close()
			return
		}

		sender := &connSender{conn: c}
		sess := s.sessions.Register(tenantID, stationID, wire.Version201, clientIP, sender)

		s.log.Info("ocpp2.0.1: station connected",
			zap.String("station_id", stationID), zap.String("tenant_id", tenantID))

		s.readLoop(sess, c)
	}, websocket.Config{Subprotocols: []string{"ocpp2.0.1"}}))
}

func (s *Server) readLoop(sess *session.Session, c *websocket.Conn) {
	defer s.sessions.Remove(sess.ID)

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if !strings.Contains(err.Error(), "close") {
				s.log.Warn("ocpp2.0.1: read error", zap.String("session_id", sess.ID), zap.Error(err))
			}
			return
		}

		sess.MarkMessageReceived()
		frame, err := wire.Decode(raw, wire.Version201)
		if err != nil {
			s.log.Warn("ocpp2.0.1: malformed frame", zap.String("session_id", sess.ID), zap.Error(err))
			continue
		}

		switch frame.MessageTypeId {
		case wire.Call:
			resp := s.router.DispatchCall(tenant.WithTenant(context.Background(), sess.TenantID), sess, frame)
			out, err := wire.Encode(resp)
			if err != nil {
				s.log.Error("ocpp2.0.1: encode response failed", zap.Error(err))
				continue
			}
			if err := sess.Send(out); err != nil {
				s.log.Error("ocpp2.0.1: send response failed", zap.Error(err))
				return
			}
		case wire.CallResult, wire.CallError:
			s.router.DispatchResult(sess, frame)
		default:
			errFrame := wire.NewCallError(frame.MessageId, string(ocpperr.RpcFrameworkError), "unknown messageTypeId", nil, wire.Version201)
			out, _ := wire.Encode(errFrame)
			_ = sess.Send(out)
		}
	}
}
