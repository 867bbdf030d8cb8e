package server

// wshandler.go implements a websocket protocol for a pruning session that lasts as long as the
// connection. Every message is a JSON object with a type, an optional id (echoed in the reply)
// and an optional payload:
//
//	client                                        server
//	connection_init {schema?}                 ->  connection_ack {session}
//	process {query}                           ->  ack | error [errors]
//	prune {format?}                           ->  schema {__schema} | {sdl}
//	usage                                     ->  usage {...}
//	ping                                      ->  pong
//	connection_terminate                      ->  (normal close)
//
// Protocol errors close the connection: 4400 for a bad message, 4408 if connection_init
// is not received in time and 4429 for a second connection_init.

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/diconium/schemapruner"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const (
	closeBadMessage  = 4400
	closeInitTimeout = 4408
	closeTooManyInit = 4429

	maxCloseReason = 123 // a control frame payload is at most 125 bytes, 2 of which are the code
)

type (
	wsConnection struct {
		*websocket.Conn // handle for WS communications

		h       *Handler
		id      string // session ID sent in connection_ack
		log     zerolog.Logger
		session *schemapruner.Session
	}

	wsMessage struct {
		Type    string              `json:"type"`
		ID      string              `json:"id,omitempty"`
		Payload jsoniter.RawMessage `json:"payload,omitempty"`
	}

	wsReply struct {
		Type    string      `json:"type"`
		ID      string      `json:"id,omitempty"`
		Payload interface{} `json:"payload,omitempty"`
	}

	// wsPayload holds the fields of all the client payloads
	wsPayload struct {
		Schema jsoniter.RawMessage `json:"schema,omitempty"` // connection_init
		Query  string              `json:"query,omitempty"`  // process
		Format string              `json:"format,omitempty"` // prune
	}

	// closeError is returned by message handlers to end the connection with a close code
	closeError struct {
		code   int
		reason string
	}
)

func (e closeError) Error() string { return e.reason }

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// serveWS upgrades the request to a websocket and runs the session protocol until the
// client terminates or the connection fails
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade")
		// nothing else required here as w's HTTP status has already been set
		return
	}
	conn.SetReadLimit(h.readLimit)

	c := wsConnection{Conn: conn, h: h, id: uuid.NewString()}
	c.log = h.log.With().Str("session", c.id).Logger()
	defer func() {
		if err := c.Close(); err != nil {
			c.log.Debug().Err(err).Msg("websocket close")
		}
	}()

	if err := c.init(r.Context()); err != nil {
		c.close(err)
		return
	}
	c.log.Info().Msg("session started")

	for {
		message, err := c.read()
		if err != nil {
			c.close(err)
			return
		}

		switch message.Type {
		case "process":
			err = c.process(message)
		case "prune":
			err = c.prune(message)
		case "usage":
			err = c.send(wsReply{Type: "usage", ID: message.ID, Payload: c.session.Usage()})
		case "ping":
			err = c.send(wsReply{Type: "pong", ID: message.ID})
		case "connection_init":
			err = closeError{closeTooManyInit, "too many initialisation requests"}
		case "connection_terminate":
			c.log.Info().Msg("session terminated")
			c.close(closeError{websocket.CloseNormalClosure, ""})
			return
		default:
			err = closeError{closeBadMessage, "unexpected message type " + message.Type}
		}
		if err != nil {
			c.close(err)
			return
		}
	}
}

// init waits for connection_init, creates the session and sends connection_ack
func (c *wsConnection) init(ctx context.Context) error {
	if err := c.SetReadDeadline(time.Now().Add(c.h.initialTimeout)); err != nil {
		return err
	}
	message, err := c.read()
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return closeError{closeInitTimeout, "connection initialisation timeout"}
	}
	if err != nil {
		return err
	}
	if message.Type == "connection_terminate" {
		return closeError{websocket.CloseNormalClosure, ""}
	}
	if message.Type != "connection_init" {
		return closeError{closeBadMessage, "expected connection_init, got " + message.Type}
	}
	if err := c.SetReadDeadline(time.Time{}); err != nil {
		return err
	}

	var payload wsPayload
	if err := c.payload(message, &payload); err != nil {
		return err
	}
	s, _, err := c.h.session(ctx, payload.Schema)
	if err != nil {
		c.log.Warn().Err(err).Msg("session not created")
		return closeError{websocket.CloseInternalServerErr, err.Error()}
	}
	c.session = s
	return c.send(wsReply{Type: "connection_ack", Payload: map[string]string{"session": c.id}})
}

func (c *wsConnection) process(message *wsMessage) error {
	var payload wsPayload
	if err := c.payload(message, &payload); err != nil {
		return err
	}
	if err := c.session.Process(payload.Query); err != nil {
		c.log.Debug().Err(err).Str("id", message.ID).Msg("query rejected")
		return c.send(wsReply{Type: "error", ID: message.ID, Payload: queryErrors(err)})
	}
	return c.send(wsReply{Type: "ack", ID: message.ID})
}

func (c *wsConnection) prune(message *wsMessage) error {
	var payload wsPayload
	if err := c.payload(message, &payload); err != nil {
		return err
	}
	data, err := prunedData(c.session, payload.Format)
	if err != nil {
		return c.send(wsReply{Type: "error", ID: message.ID, Payload: gqlerror.List{gqlerror.Errorf("%s", err)}})
	}
	return c.send(wsReply{Type: "schema", ID: message.ID, Payload: data})
}

// payload decodes the payload of a message, if it has one
func (c *wsConnection) payload(message *wsMessage, v interface{}) error {
	if len(message.Payload) == 0 || string(message.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(message.Payload, v); err != nil {
		return closeError{closeBadMessage, "invalid payload: " + err.Error()}
	}
	return nil
}

func (c *wsConnection) read() (*wsMessage, error) {
	_, reader, err := c.NextReader()
	if err != nil {
		return nil, err
	}

	var message wsMessage
	if err := json.NewDecoder(reader).Decode(&message); err != nil {
		return nil, closeError{closeBadMessage, "invalid message: " + err.Error()}
	}
	return &message, nil
}

func (c *wsConnection) send(reply wsReply) error {
	buf, err := json.Marshal(reply)
	if err != nil {
		return closeError{websocket.CloseInternalServerErr, "encoding reply"}
	}
	return c.WriteMessage(websocket.TextMessage, buf)
}

// close sends a close message for a closeError. Other errors (eg the client went away or sent
// a message over the read limit) are just logged as there is nothing useful to send.
func (c *wsConnection) close(err error) {
	var ce closeError
	if !errors.As(err, &ce) {
		c.log.Debug().Err(err).Msg("websocket connection ended")
		return
	}
	if ce.code != websocket.CloseNormalClosure {
		c.log.Warn().Int("code", ce.code).Str("reason", ce.reason).Msg("closing websocket")
	}
	reason := ce.reason
	if len(reason) > maxCloseReason {
		reason = reason[:maxCloseReason]
	}
	msg := websocket.FormatCloseMessage(ce.code, reason)
	if err := c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		c.log.Debug().Err(err).Msg("sending close message")
	}
}
