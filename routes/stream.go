package routes

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kataras/iris/v12"

	"leasemate-server/utils"
)

// heartbeatInterval keeps intermediaries from closing idle SSE connections
// and doubles as the client's liveness bound: a client that sees neither an
// event nor a heartbeat within ~2 intervals should fall back to polling.
const heartbeatInterval = 25 * time.Second

// StreamNotifications is the live-session channel: one SSE connection per
// session, registered for the authenticated user. Delivery through it is
// best-effort; the persisted notification rows are the source of truth.
func StreamNotifications(ctx iris.Context) {
	userID := utils.CallerID(ctx)

	flusher, ok := ctx.ResponseWriter().Flusher()
	if !ok {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	session := Live.Register(userID)
	defer Live.Deregister(session)

	ctx.ContentType("text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	w := ctx.ResponseWriter()
	fmt.Fprintf(w, ": session %s\n\n", session.ID)
	flusher.Flush()

	done := ctx.Request().Context().Done()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-done:
			return
		case ev, open := <-session.Events:
			if !open {
				return
			}
			payload, err := json.Marshal(iris.Map{
				"type":    ev.Type,
				"title":   ev.Title,
				"message": ev.Message,
				"link":    ev.Link,
				"refType": ev.RefType,
				"refID":   ev.RefID,
			})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
