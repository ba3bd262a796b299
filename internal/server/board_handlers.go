package server

import (
	"encoding/json"
	"net/http"

	"github.com/spetersoncode/reltime/internal/errors"
	"github.com/spetersoncode/reltime/internal/service"
)

func (s *Server) handleListBoard(w http.ResponseWriter, r *http.Request) {
	now, err := s.queryInstant(r, "now")
	if err != nil {
		writeSharedError(w, err)
		return
	}

	rows, err := s.board.Render(now)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGetTimestamp(w http.ResponseWriter, r *http.Request) {
	now, err := s.queryInstant(r, "now")
	if err != nil {
		writeSharedError(w, err)
		return
	}

	row, err := s.board.RenderOne(r.PathValue("name"), now)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleAddTimestamp(w http.ResponseWriter, r *http.Request) {
	var req service.BoardEntry
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	in, err := req.Input()
	if err != nil {
		writeSharedError(w, errors.Wrap(err, errors.KindInvalidArgs, "invalid timestamp attributes"))
		return
	}
	ts, err := s.board.Add(in)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ts)
}

func (s *Server) handleDeleteTimestamp(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Remove(r.PathValue("name")); err != nil {
		writeSharedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
