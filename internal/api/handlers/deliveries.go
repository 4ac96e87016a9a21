package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/dropvault/internal/api/middleware"
	"github.com/rohits-web03/dropvault/internal/services"
	"github.com/rohits-web03/dropvault/internal/utils"
)

const multipartMemory = 32 << 20

func (h *Handler) sender(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized", nil)
	}
	return id, ok
}

func formInt(r *http.Request, key string) (int, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// CreateDelivery godoc
// @Summary Create a delivery
// @Description Uploads one or more files for a single recipient with view and download limits.
// @Tags Deliveries
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param message formData string false "Message for the recipient"
// @Param recipientEmail formData string true "Recipient email"
// @Param maxViews formData int true "View limit"
// @Param maxDownloads formData int true "Download limit"
// @Param ttlHours formData int false "Lifetime in hours"
// @Param files formData file true "Files"
// @Success 201 {object} utils.Payload "Delivery created"
// @Failure 400 {object} utils.Payload "Invalid input"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Router /api/v1/deliveries [post]
func (h *Handler) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	senderID, ok := h.sender(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Policy.MaxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Fail(w, http.StatusRequestEntityTooLarge, "Upload too large", nil)
			return
		}
		badRequest(w, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	maxViews, err1 := formInt(r, "maxViews")
	maxDownloads, err2 := formInt(r, "maxDownloads")
	ttlHours, err3 := formInt(r, "ttlHours")
	if err := errors.Join(err1, err2, err3); err != nil {
		badRequest(w, "Limits must be whole numbers")
		return
	}

	headers := r.MultipartForm.File["files"]
	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			badRequest(w, "Could not read uploaded file")
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		uploads = append(uploads, services.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		})
	}

	created, err := h.deliveries.Create(r.Context(), senderID, services.CreateInput{
		Title:          r.FormValue("title"),
		Message:        r.FormValue("message"),
		RecipientEmail: r.FormValue("recipientEmail"),
		MaxViews:       maxViews,
		MaxDownloads:   maxDownloads,
		TTL:            time.Duration(ttlHours) * time.Hour,
	}, uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.OK(w, http.StatusCreated, "Delivery created", created)
}

// ListDeliveries godoc
// @Summary List the caller's deliveries
// @Tags Deliveries
// @Produce json
// @Success 200 {object} utils.Payload "Deliveries retrieved"
// @Router /api/v1/deliveries [get]
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	senderID, ok := h.sender(w, r)
	if !ok {
		return
	}
	list, err := h.deliveries.ListBySender(r.Context(), senderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Deliveries retrieved", list)
}

// RevokeDelivery godoc
// @Summary Revoke a delivery
// @Description Blocks all further access. Files are kept until the delivery is deleted.
// @Tags Deliveries
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} utils.Payload "Delivery revoked"
// @Failure 403 {object} utils.Payload "Not the sender"
// @Failure 409 {object} utils.Payload "Delivery already expired"
// @Router /api/v1/deliveries/{id}/revoke [post]
func (h *Handler) RevokeDelivery(w http.ResponseWriter, r *http.Request) {
	senderID, ok := h.sender(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "Invalid delivery id")
		return
	}
	if err := h.deliveries.Revoke(r.Context(), id, senderID, actorFrom(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Delivery revoked", nil)
}

// DeleteDelivery godoc
// @Summary Delete a delivery
// @Description Destroys the stored files and removes the delivery with its audit trail.
// @Tags Deliveries
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} utils.Payload "Delivery deleted"
// @Failure 403 {object} utils.Payload "Not the sender"
// @Failure 404 {object} utils.Payload "Not found"
// @Router /api/v1/deliveries/{id} [delete]
func (h *Handler) DeleteDelivery(w http.ResponseWriter, r *http.Request) {
	senderID, ok := h.sender(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "Invalid delivery id")
		return
	}
	if err := h.deliveries.Delete(r.Context(), id, senderID); err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Delivery deleted", nil)
}

// AccessLogs godoc
// @Summary Audit trail of a delivery
// @Tags Deliveries
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} utils.Payload "Access log retrieved"
// @Failure 403 {object} utils.Payload "Not the sender"
// @Router /api/v1/deliveries/{id}/access-logs [get]
func (h *Handler) AccessLogs(w http.ResponseWriter, r *http.Request) {
	senderID, ok := h.sender(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "Invalid delivery id")
		return
	}
	report, err := h.deliveries.AccessLog(r.Context(), id, senderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Access log retrieved", report)
}

// FileURL godoc
// @Summary Presigned link to one of the sender's files
// @Description Does not count as a recipient download.
// @Tags Deliveries
// @Produce json
// @Param id path string true "Delivery ID"
// @Param index path int true "File index"
// @Success 200 {object} utils.Payload "Presigned URL generated"
// @Failure 403 {object} utils.Payload "Not the sender"
// @Router /api/v1/deliveries/{id}/files/{index}/url [get]
func (h *Handler) FileURL(w http.ResponseWriter, r *http.Request) {
	senderID, ok := h.sender(w, r)
	if !ok {
		return
	}
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
	url, err := h.deliveries.FileURL(r.Context(), id, index, senderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Presigned URL generated", map[string]string{"url": url})
}
