package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/rohits-web03/dropvault/internal/utils"
)

// GrantHeader carries the access grant returned by code verification.
const GrantHeader = "X-Access-Grant"

// GetDelivery godoc
// @Summary Retrieve a shared delivery
// @Description Returns the delivery and its file metadata. A viewer whose email does not match the recipient gets a masked copy.
// @Tags Share
// @Produce json
// @Param id path string true "Delivery ID"
// @Param token query string false "Share token"
// @Param email query string false "Viewer email"
// @Success 200 {object} utils.Payload "Delivery retrieved"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Failure 404 {object} utils.Payload "Not found"
// @Failure 410 {object} utils.Payload "Delivery no longer available"
// @Router /api/v1/share/{id} [get]
func (h *Handler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "Invalid delivery id")
		return
	}
	q := r.URL.Query()
	view, err := h.deliveries.GetForViewer(r.Context(), id, q.Get("token"), q.Get("email"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Delivery retrieved", view)
}

// RecordView godoc
// @Summary Count a recipient view
// @Description The sender viewing their own delivery is logged but not counted.
// @Tags Share
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} utils.Payload "View recorded"
// @Failure 410 {object} utils.Payload "Delivery no longer available"
// @Router /api/v1/share/{id}/views [post]
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "Invalid delivery id")
		return
	}
	var input struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}

	d, err := h.deliveries.RecordView(r.Context(), id, input.Token, input.Email, actorFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "View recorded", map[string]any{
		"status":       d.Status,
		"currentViews": d.CurrentViews,
		"maxViews":     d.MaxViews,
	})
}

// RequestAccessCode godoc
// @Summary Send a one-time access code to the recipient
// @Tags Share
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} utils.Payload "Access code sent"
// @Failure 401 {object} utils.Payload "Email does not match"
// @Failure 429 {object} utils.Payload "Too many requests"
// @Router /api/v1/share/{id}/access-code [post]
func (h *Handler) RequestAccessCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "Invalid delivery id")
		return
	}
	var input struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}

	if err := h.codes.RequestCode(r.Context(), id, input.Email, actorFrom(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Access code sent", nil)
}

// VerifyAccessCode godoc
// @Summary Verify an access code
// @Description Returns a short-lived grant for the X-Access-Grant header. Failures report attemptsRemaining; running out destroys the delivery.
// @Tags Share
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} utils.Payload "Access code verified"
// @Failure 401 {object} utils.Payload "Invalid access code"
// @Failure 403 {object} utils.Payload "Maximum attempts reached"
// @Failure 410 {object} utils.Payload "Code expired or delivery no longer available"
// @Router /api/v1/share/{id}/access-code/verify [post]
func (h *Handler) VerifyAccessCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "Invalid delivery id")
		return
	}
	var input struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := decodeJSON(r, &input); err != nil || input.Code == "" {
		badRequest(w, "Invalid input")
		return
	}

	res, err := h.codes.VerifyCode(r.Context(), id, input.Email, input.Code, actorFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Access code verified", res)
}

// DownloadFile godoc
// @Summary Download one file of a delivery
// @Description Streams the file and counts one download. Reaching the limit destroys the delivery.
// @Tags Share
// @Produce octet-stream
// @Param id path string true "Delivery ID"
// @Param index path int true "File index"
// @Param email query string true "Recipient email"
// @Param X-Access-Grant header string false "Grant from access-code verification"
// @Success 200 {file} binary
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Failure 410 {object} utils.Payload "Delivery no longer available"
// @Router /api/v1/share/{id}/files/{index} [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "Invalid delivery id")
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		badRequest(w, "Invalid index")
		return
	}

	res, err := h.deliveries.Download(r.Context(), id, index, r.URL.Query().Get("email"), r.Header.Get(GrantHeader), actorFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", res.File.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Content)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.File.Filename}))
	w.Header().Set("X-Content-Hash", res.File.ContentHash)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Content); err != nil {
		h.log.Warn(r.Context(), "download interrupted", "delivery_id", id, "error", err)
	}
}
