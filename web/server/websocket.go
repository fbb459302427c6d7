package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/df07/go-direct-raytracer/pkg/renderer"
)

const (
	writeWait = 10 * time.Second
	// consoleBuffer is how many console lines may queue before new ones drop
	consoleBuffer = 50
	sendBuffer    = 64
)

// WSMessage is one frame of a streamed render. Type is "start", "console",
// "tile", "complete" or "error"; exactly one payload field is set.
type WSMessage struct {
	Type     string          `json:"type"`
	RenderID string          `json:"renderId"`
	Start    *StartUpdate    `json:"start,omitempty"`
	Console  *ConsoleMessage `json:"console,omitempty"`
	Tile     *TileUpdate     `json:"tile,omitempty"`
	Complete *CompleteUpdate `json:"complete,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// StartUpdate announces the size of the image about to stream
type StartUpdate struct {
	Scene      string `json:"scene"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	TotalTiles int    `json:"totalTiles"`
}

// TileUpdate carries one finished tile as a base64 PNG
type TileUpdate struct {
	TileX      int    `json:"tileX"`
	TileY      int    `json:"tileY"`
	X          int    `json:"x"` // Pixel origin of the tile
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ImageData  string `json:"imageData"`
	TileNumber int    `json:"tileNumber"`
	TotalTiles int    `json:"totalTiles"`
}

// CompleteUpdate carries the final, post-processed image
type CompleteUpdate struct {
	ImageData string `json:"imageData"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Location  string `json:"location,omitempty"` // Set when the render was saved
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// renderStream serializes every message for one connection through a
// single writer goroutine
type renderStream struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	cancel context.CancelFunc
}

func newRenderStream(conn *websocket.Conn, cancel context.CancelFunc) *renderStream {
	return &renderStream{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// writePump writes queued messages until the send channel closes. After a
// write error it cancels the render and discards whatever is still queued.
func (rs *renderStream) writePump(ctx context.Context) {
	defer close(rs.done)

	failed := false
	for message := range rs.send {
		if failed {
			continue
		}
		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := rs.conn.Write(writeCtx, websocket.MessageText, message)
		cancel()
		if err != nil {
			slog.Debug("websocket write error", "error", err)
			failed = true
			rs.cancel()
		}
	}
}

// Send queues a message; it gives up once ctx is done
func (rs *renderStream) Send(ctx context.Context, msg WSMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal websocket message", "type", msg.Type, "error", err)
		return false
	}
	select {
	case rs.send <- data:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close stops the writer once everything queued has been handled
func (rs *renderStream) Close() {
	close(rs.send)
	<-rs.done
}

// handleRenderWS streams a render over a websocket: console lines and tiles
// as they finish, then the complete image
func (s *Server) handleRenderWS(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()

	renderID := uuid.New().String()
	start := time.Now()

	// Nothing is read from the client; CloseRead cancels ctx when it leaves
	ctx, cancel := context.WithCancel(conn.CloseRead(r.Context()))
	defer cancel()

	stream := newRenderStream(conn, cancel)
	go stream.writePump(ctx)

	consoleChan := make(chan ConsoleMessage, consoleBuffer)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for msg := range consoleChan {
			stream.Send(ctx, WSMessage{Type: "console", RenderID: renderID, Console: &msg})
		}
	}()

	width, height := sceneObj.Width, sceneObj.Height
	if req.Width > 0 {
		width = req.Width
	}
	if req.Height > 0 {
		height = req.Height
	}
	stream.Send(ctx, WSMessage{
		Type:     "start",
		RenderID: renderID,
		Start: &StartUpdate{
			Scene:      req.Scene,
			Width:      width,
			Height:     height,
			TotalTiles: len(renderer.NewTileGrid(width, height, s.cfg.TileSize)),
		},
	})

	job := &renderJob{
		id:     renderID,
		scene:  sceneObj,
		req:    req,
		logger: NewWebLogger(renderID, consoleChan),
		onTile: func(result renderer.TileResult) {
			update, err := tileUpdate(result)
			if err != nil {
				slog.Error("encode tile", "render_id", renderID, "error", err)
				return
			}
			stream.Send(ctx, WSMessage{Type: "tile", RenderID: renderID, Tile: update})
		},
	}

	img, stats, err := s.runRender(ctx, job)
	close(consoleChan)
	<-forwarded

	status := websocket.StatusNormalClosure
	if err == nil {
		var complete *CompleteUpdate
		complete, err = s.completeUpdate(ctx, renderID, req.Save, img, stats)
		if err == nil {
			complete.ElapsedMs = time.Since(start).Milliseconds()
			stream.Send(ctx, WSMessage{Type: "complete", RenderID: renderID, Complete: complete})
		}
	}
	if err != nil {
		slog.Info("streamed render failed", "render_id", renderID, "error", err)
		stream.Send(ctx, WSMessage{Type: "error", RenderID: renderID, Error: err.Error()})
		status = websocket.StatusInternalError
	}

	stream.Close()
	conn.Close(status, "")
}

func tileUpdate(result renderer.TileResult) (*TileUpdate, error) {
	data, err := encodePNG(result.TileImage)
	if err != nil {
		return nil, err
	}
	bounds := result.Tile.Bounds
	return &TileUpdate{
		TileX:      result.Tile.TileX,
		TileY:      result.Tile.TileY,
		X:          bounds.Min.X,
		Y:          bounds.Min.Y,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		ImageData:  data,
		TileNumber: result.TileNumber,
		TotalTiles: result.TotalTiles,
	}, nil
}

func (s *Server) completeUpdate(ctx context.Context, renderID string, save bool, img image.Image, stats renderer.RenderStats) (*CompleteUpdate, error) {
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}
	update := &CompleteUpdate{
		ImageData: data,
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Stats:     newStats(stats),
	}
	if save {
		if update.Location, err = s.sink.Write(ctx, renderID+".png", img); err != nil {
			return nil, err
		}
	}
	return update, nil
}

// encodePNG returns img as base64-encoded PNG data
func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
