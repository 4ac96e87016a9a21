package services

import (
	"crypto/subtle"
	"strings"

	"github.com/rohits-web03/dropvault/internal/models"
)

// NormalizeEmail trims and lower-cases an address for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccessGate decides who may see a delivery and what they see.
type AccessGate struct {
	// StrictTokens requires a token to equal the delivery's share token.
	// Otherwise any non-empty token is accepted.
	StrictTokens bool
}

// CheckAccess grants access on a recipient email match; failing that, on a
// non-empty token.
func (g AccessGate) CheckAccess(d *models.Delivery, token, email string) bool {
	if e := NormalizeEmail(email); e != "" && e == NormalizeEmail(d.RecipientEmail) {
		return true
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	if g.StrictTokens {
		return subtle.ConstantTimeCompare([]byte(token), []byte(d.Token)) == 1
	}
	return true
}

// IsRecipient reports whether email matches the delivery's recipient.
func (g AccessGate) IsRecipient(d *models.Delivery, email string) bool {
	e := NormalizeEmail(email)
	return e != "" && e == NormalizeEmail(d.RecipientEmail)
}

// MaskForViewer returns the full view for the recipient or an anonymous
// token holder, and a redacted view of the same shape for anyone else. A
// masked view is not a denial.
func (g AccessGate) MaskForViewer(d *models.Delivery, files []models.DeliveryFile, viewerEmail string) models.DeliveryView {
	view := models.DeliveryView{
		ID:        d.ID,
		Status:    d.Status,
		ExpiresAt: d.ExpiresAt,
		Files:     []models.FileView{},
	}

	if NormalizeEmail(viewerEmail) != "" && !g.IsRecipient(d, viewerEmail) {
		view.Masked = true
		return view
	}

	view.Title = d.Title
	if d.Message != nil {
		view.Message = *d.Message
	}
	view.RecipientEmail = d.RecipientEmail
	view.CurrentViews = d.CurrentViews
	view.MaxViews = d.MaxViews
	view.CurrentDownloads = d.CurrentDownloads
	view.MaxDownloads = d.MaxDownloads
	for _, f := range files {
		if f.Deleted {
			continue
		}
		view.Files = append(view.Files, models.FileView{
			Filename:    f.Filename,
			Size:        f.Size,
			ContentType: f.ContentType,
			ContentHash: f.ContentHash,
			Index:       f.Index,
		})
	}
	return view
}
