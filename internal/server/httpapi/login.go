package httpapi

import "net/http"

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login verifies credentials and returns a signed access token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}
	if req.Login == "" || req.Password == "" {
		h.sendBadRequest(w, "login and password are required")
		return
	}

	token, _, err := h.users.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, loginResponse{Token: token})
}

// Check is the unauthenticated health probe.
func (h *Handlers) Check(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
