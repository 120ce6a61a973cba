package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KirkDiggler/spinwin/internal/services/announce"
	"github.com/KirkDiggler/spinwin/internal/services/campaign"
	"github.com/KirkDiggler/spinwin/internal/services/leaderboard"
	"github.com/KirkDiggler/spinwin/internal/wheel"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 10

type wheelResponse struct {
	Prizes     []wheel.Prize  `json:"prizes"`
	Slices     []wheel.Slice  `json:"slices"`
	Geometry   wheel.Geometry `json:"geometry"`
	Policy     string         `json:"policy"`
	DurationMS int64          `json:"duration_ms"`
}

type entryRequest struct {
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	Mobile      string `json:"mobile"`
}

type entryResponse struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Mobile    string `json:"mobile"`
}

type spinRequest struct {
	SessionID string `json:"session_id"`
}

type spinResponse struct {
	Accepted   bool    `json:"accepted"`
	Rotation   float64 `json:"rotation"`
	SliceIndex *int    `json:"slice_index,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Message    string  `json:"message,omitempty"`
}

type resultResponse struct {
	Status     string       `json:"status"`
	Rotation   float64      `json:"rotation"`
	Prize      *wheel.Prize `json:"prize,omitempty"`
	SliceIndex *int         `json:"slice_index,omitempty"`
	Title      string       `json:"title,omitempty"`
	Message    string       `json:"message,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getWheel(w http.ResponseWriter, r *http.Request) {
	out, err := s.campaign.GetWheel(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &wheelResponse{
		Prizes:     out.Prizes,
		Slices:     out.Slices,
		Geometry:   out.Geometry,
		Policy:     out.Policy,
		DurationMS: out.Duration.Milliseconds(),
	})
}

func (s *Server) getLeaderboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Snapshot())
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, announce.ErrorTypeInvalidForm)
		return
	}

	out, err := s.campaign.Register(r.Context(), &campaign.RegisterInput{
		Name:        req.Name,
		CountryCode: req.CountryCode,
		Mobile:      req.Mobile,
		OriginIP:    clientIP(r),
	})
	switch {
	case err == nil:
	case errors.Is(err, campaign.ErrNameRequired), errors.Is(err, campaign.ErrMobileRequired):
		s.writeError(w, r, http.StatusBadRequest, announce.ErrorTypeInvalidForm)
		return
	case errors.Is(err, campaign.ErrAlreadyEntered):
		s.writeError(w, r, http.StatusConflict, announce.ErrorTypeAlreadyEntered)
		return
	default:
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, &entryResponse{
		SessionID: out.SessionID,
		Name:      out.Name,
		Mobile:    out.Mobile,
	})
}

func (s *Server) createSpin(w http.ResponseWriter, r *http.Request) {
	var req spinRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, announce.ErrorTypeInvalidForm)
		return
	}

	out, err := s.campaign.Spin(r.Context(), &campaign.SpinInput{SessionID: req.SessionID})
	if errors.Is(err, campaign.ErrSessionNotFound) {
		s.writeError(w, r, http.StatusNotFound, announce.ErrorTypeSessionExpired)
		return
	}
	if errors.Is(err, campaign.ErrServiceClosed) {
		writeJSON(w, http.StatusServiceUnavailable, &errorResponse{
			Error:   "unavailable",
			Message: "The wheel is closing. Please try again shortly.",
		})
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	if !out.Accepted {
		errorType := announce.ErrorTypeSpinInFlight
		if out.Reason == campaign.RejectAlreadySpun {
			errorType = announce.ErrorTypeAlreadySpun
		}
		writeJSON(w, http.StatusConflict, &spinResponse{
			Accepted: false,
			Rotation: out.Rotation,
			Reason:   out.Reason,
			Message:  s.errorMessage(r, errorType),
		})
		return
	}

	slice := out.SliceIndex
	writeJSON(w, http.StatusAccepted, &spinResponse{
		Accepted:   true,
		Rotation:   out.Rotation,
		SliceIndex: &slice,
		DurationMS: out.Duration.Milliseconds(),
	})
}

func (s *Server) getSpin(w http.ResponseWriter, r *http.Request) {
	out, err := s.campaign.GetResult(r.Context(), &campaign.GetResultInput{
		SessionID: chi.URLParam(r, "sessionID"),
	})
	if errors.Is(err, campaign.ErrSessionNotFound) {
		s.writeError(w, r, http.StatusNotFound, announce.ErrorTypeSessionExpired)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	resp := &resultResponse{
		Status:   string(out.Status),
		Rotation: out.Rotation,
	}
	if out.Status == campaign.SpinStatusWon && out.Prize != nil {
		slice := out.SliceIndex
		resp.Prize = out.Prize
		resp.SliceIndex = &slice

		msg, err := s.announcer.GetWinMessage(r.Context(), &announce.GetWinMessageInput{
			Name:          out.Name,
			Prize:         out.Prize.Name,
			PreferredTone: announce.ToneCelebration,
		})
		if err == nil {
			resp.Title = msg.Title
			resp.Message = msg.Message
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) leaderboardSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.origins,
	})
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	client := s.hub.Register(conn)
	defer s.hub.Unregister(client.ID)

	initial, err := encodeSnapshot(s.board.Snapshot())
	if err != nil {
		s.logger.Error("failed to encode snapshot", zap.Error(err))
		return
	}
	if err := conn.Write(r.Context(), websocket.MessageText, initial); err != nil {
		return
	}

	// the board is push-only; CloseRead discards client frames and cancels
	// ctx when the peer goes away
	ctx := conn.CloseRead(r.Context())
	client.WritePump(ctx)

	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errorType announce.ErrorType) {
	writeJSON(w, status, &errorResponse{
		Error:   string(errorType),
		Message: s.errorMessage(r, errorType),
	})
}

func (s *Server) errorMessage(r *http.Request, errorType announce.ErrorType) string {
	out, err := s.announcer.GetErrorMessage(r.Context(), &announce.GetErrorMessageInput{
		ErrorType: errorType,
	})
	if err != nil {
		return string(errorType)
	}
	return out.Message
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, &errorResponse{
		Error:   "internal",
		Message: "Something went wrong. Please try again.",
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var _ Board = (*leaderboard.Service)(nil)
