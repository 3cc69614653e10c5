// ABOUTME: Plain JSON dispatch surface: POST /mcp/call and GET /mcp/commands.
// ABOUTME: Failures are {"error": {"kind", "message"}} with a status from the kind; warnings ride alongside content.

package mcp

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/2389/course-gateway/internal/packs"
)

// RequestIDHeader lets REST callers supply their own correlation id.
const RequestIDHeader = "X-Request-Id"

// CallRequest is the body of POST /mcp/call.
type CallRequest struct {
	Command   string          `json:"command"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallResponse is the success body of POST /mcp/call.
type CallResponse struct {
	Content  packs.Result  `json:"content"`
	Warnings []ErrorDetail `json:"warnings,omitempty"`
}

// ErrorBody is the failure body of the REST surface.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail names the failure kind and a caller-safe message.
type ErrorDetail struct {
	Kind    packs.ErrorKind `json:"kind"`
	Message string          `json:"message"`
}

// CommandsResponse is the body of GET /mcp/commands.
type CommandsResponse struct {
	Commands []packs.Descriptor `json:"commands"`
}

func (s *Server) handleRESTCall(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.writeRESTError(w, packs.InvalidArgument("body", "failed to read request body"))
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.writeRESTError(w, packs.InvalidArgument("body", "request body too large"))
		return
	}

	var req CallRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeRESTError(w, packs.InvalidArgument("body", "invalid JSON"))
		return
	}
	if req.Command == "" {
		s.writeRESTError(w, packs.InvalidArgument("command", "missing required field"))
		return
	}

	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set(RequestIDHeader, requestID)

	call := &packs.CallContext{
		SessionID: r.Header.Get(SessionHeader),
		RequestID: requestID,
	}
	result, err := s.router.Dispatch(r.Context(), req.Command, req.Arguments, call)
	if err != nil {
		s.logger.Warn("REST call failed",
			"command", req.Command,
			"request_id", requestID,
			"kind", packs.KindOf(err),
		)
		s.writeRESTError(w, err)
		return
	}

	resp := CallResponse{Content: result}
	for _, msg := range result.Warnings() {
		resp.Warnings = append(resp.Warnings, ErrorDetail{Kind: packs.KindPartialDataWarning, Message: msg})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRESTCommands(w http.ResponseWriter, _ *http.Request) {
	cmds := s.registry.List()
	if cmds == nil {
		cmds = []packs.Descriptor{}
	}
	s.writeJSON(w, http.StatusOK, CommandsResponse{Commands: cmds})
}

func (s *Server) writeRESTError(w http.ResponseWriter, err error) {
	kind := packs.KindOf(err)
	s.writeJSON(w, kind.HTTPStatus(), ErrorBody{Error: ErrorDetail{Kind: kind, Message: publicMessage(err)}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}
