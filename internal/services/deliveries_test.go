package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/dropvault/internal/common"
	"github.com/rohits-web03/dropvault/internal/models"
)

func validInput() CreateInput {
	return CreateInput{
		Title:          "  Contract  ",
		Message:        "please sign",
		RecipientEmail: "Bob@Example.com",
		MaxViews:       3,
		MaxDownloads:   2,
	}
}

func TestCreate(t *testing.T) {
	h := newHarness(testPolicy())
	body := []byte("%PDF-1.7 contract")

	created, err := h.svc.Deliveries.Create(context.Background(), h.sender, validInput(), []Upload{
		{Filename: "contract.pdf", ContentType: "application/pdf", Content: bytes.NewReader(body)},
		{Filename: "notes.txt", Content: strings.NewReader("notes")},
	})
	require.NoError(t, err)

	d := created.Delivery
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "Contract", d.Title)
	assert.Equal(t, bob, d.RecipientEmail)
	assert.Equal(t, models.StatusActive, d.Status)
	assert.Equal(t, h.now.Add(24*time.Hour), d.ExpiresAt)
	assert.Equal(t, int64(len(body)+5), d.TotalSize)

	require.Len(t, d.Files, 2)
	sum := sha256.Sum256(body)
	assert.Equal(t, hex.EncodeToString(sum[:]), d.Files[0].ContentHash)
	assert.Equal(t, "application/octet-stream", d.Files[1].ContentType)
	assert.Equal(t, 1, d.Files[1].Index)
	assert.True(t, strings.HasPrefix(d.Files[0].StorageKey, "deliveries/"+d.ID.String()+"/"))

	stored, err := h.blobs.GetObject(context.Background(), d.Files[0].StorageKey)
	require.NoError(t, err)
	assert.Equal(t, body, stored)
}

func TestCreate_Validation(t *testing.T) {
	file := func() []Upload { return []Upload{{Filename: "a", Content: strings.NewReader("a")}} }

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		uploads []Upload
	}{
		{name: "no title", mutate: func(in *CreateInput) { in.Title = " " }, uploads: file()},
		{name: "no recipient", mutate: func(in *CreateInput) { in.RecipientEmail = "" }, uploads: file()},
		{name: "bad recipient", mutate: func(in *CreateInput) { in.RecipientEmail = "not-an-email" }, uploads: file()},
		{name: "zero views", mutate: func(in *CreateInput) { in.MaxViews = 0 }, uploads: file()},
		{name: "zero downloads", mutate: func(in *CreateInput) { in.MaxDownloads = 0 }, uploads: file()},
		{name: "negative ttl", mutate: func(in *CreateInput) { in.TTL = -time.Hour }, uploads: file()},
		{name: "no files", mutate: func(*CreateInput) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(testPolicy())
			in := validInput()
			tt.mutate(&in)

			_, err := h.svc.Deliveries.Create(context.Background(), h.sender, in, tt.uploads)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
}

func TestCreate_TooLargeCleansUp(t *testing.T) {
	policy := testPolicy()
	policy.MaxUploadBytes = 10
	h := newHarness(policy)

	_, err := h.svc.Deliveries.Create(context.Background(), h.sender, validInput(), []Upload{
		{Filename: "a", Content: strings.NewReader("123456")},
		{Filename: "b", Content: strings.NewReader("123456")},
	})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Empty(t, h.blobs.objects)
	assert.Empty(t, h.store.deliveries)
}

func TestGetForViewer(t *testing.T) {
	h := newHarness(testPolicy())
	d := h.seed(3, 3, "a.pdf")
	ctx := context.Background()

	view, err := h.svc.Deliveries.GetForViewer(ctx, d.ID, "share-token", bob)
	require.NoError(t, err)
	assert.False(t, view.Masked)
	assert.Equal(t, "Q3 report", view.Title)
	require.Len(t, view.Files, 1)

	view, err = h.svc.Deliveries.GetForViewer(ctx, d.ID, "share-token", "eve@example.com")
	require.NoError(t, err)
	assert.True(t, view.Masked)
	assert.Empty(t, view.Title)
	assert.Empty(t, view.Files)

	_, err = h.svc.Deliveries.GetForViewer(ctx, uuid.New(), "share-token", bob)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = h.svc.Deliveries.GetForViewer(ctx, d.ID, "", "")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestDownload_LimitDestroys(t *testing.T) {
	h := newHarness(testPolicy())
	d := h.seed(3, 1, "a.pdf")
	ctx := context.Background()
	grant, _, err := h.svc.Grants.Issue(d.ID, bob)
	require.NoError(t, err)

	res, err := h.svc.Deliveries.Download(ctx, d.ID, 0, bob, grant, Actor{})
	require.NoError(t, err)
	assert.Equal(t, []byte("content of a.pdf"), res.Content)
	assert.Equal(t, "a.pdf", res.File.Filename)

	assert.Equal(t, models.StatusExpired, h.status(d.ID))
	_, err = h.blobs.GetObject(ctx, d.Files[0].StorageKey)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = h.svc.Deliveries.Download(ctx, d.ID, 0, bob, grant, Actor{})
	assert.ErrorIs(t, err, common.ErrNotActive)
}

func TestDownload_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong email", func(t *testing.T) {
		h := newHarness(testPolicy())
		d := h.seed(3, 3, "a.pdf")
		grant, _, _ := h.svc.Grants.Issue(d.ID, bob)
		_, err := h.svc.Deliveries.Download(ctx, d.ID, 0, "eve@example.com", grant, Actor{})
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("missing grant", func(t *testing.T) {
		h := newHarness(testPolicy())
		d := h.seed(3, 3, "a.pdf")
		_, err := h.svc.Deliveries.Download(ctx, d.ID, 0, bob, "", Actor{})
		assert.ErrorIs(t, err, common.ErrUnauthorized)

		stored, _ := h.store.GetByID(ctx, d.ID)
		assert.Zero(t, stored.CurrentDownloads)
	})

	t.Run("grant not required", func(t *testing.T) {
		policy := testPolicy()
		policy.RequireAccessCode = false
		h := newHarness(policy)
		d := h.seed(3, 3, "a.pdf")
		_, err := h.svc.Deliveries.Download(ctx, d.ID, 0, bob, "", Actor{})
		assert.NoError(t, err)
	})

	t.Run("unknown index", func(t *testing.T) {
		h := newHarness(testPolicy())
		d := h.seed(3, 3, "a.pdf")
		grant, _, _ := h.svc.Grants.Issue(d.ID, bob)
		_, err := h.svc.Deliveries.Download(ctx, d.ID, 7, bob, grant, Actor{})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestAccessLog(t *testing.T) {
	h := newHarness(testPolicy())
	d := h.seed(3, 3)
	ctx := context.Background()

	_, err := h.svc.Deliveries.RecordView(ctx, d.ID, "share-token", bob, Actor{})
	require.NoError(t, err)
	_, err = h.svc.Deliveries.RecordView(ctx, d.ID, "share-token", bob, Actor{})
	require.NoError(t, err)
	require.NoError(t, h.svc.Deliveries.Revoke(ctx, d.ID, h.sender, Actor{}))

	report, err := h.svc.Deliveries.AccessLog(ctx, d.ID, h.sender)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevoked, report.Status)
	assert.Equal(t, 2, report.Counts[models.ActionView])
	assert.Equal(t, 1, report.Counts[models.ActionRevoked])
	assert.Len(t, report.Entries, 3)

	_, err = h.svc.Deliveries.AccessLog(ctx, d.ID, uuid.New())
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestFileURL(t *testing.T) {
	h := newHarness(testPolicy())
	d := h.seed(3, 3, "a.pdf")
	ctx := context.Background()

	url, err := h.svc.Deliveries.FileURL(ctx, d.ID, 0, h.sender)
	require.NoError(t, err)
	assert.Contains(t, url, d.Files[0].StorageKey)

	_, err = h.svc.Deliveries.FileURL(ctx, d.ID, 0, uuid.New())
	assert.ErrorIs(t, err, common.ErrForbidden)

	stored, _ := h.store.GetByID(ctx, d.ID)
	assert.Zero(t, stored.CurrentDownloads)
}

func TestDelete(t *testing.T) {
	h := newHarness(testPolicy())
	d := h.seed(3, 3, "a.pdf")
	ctx := context.Background()

	assert.ErrorIs(t, h.svc.Deliveries.Delete(ctx, d.ID, uuid.New()), common.ErrForbidden)

	require.NoError(t, h.svc.Deliveries.Delete(ctx, d.ID, h.sender))
	assert.False(t, h.blobs.has(d.Files[0].StorageKey))
	_, err := h.store.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	list, err := h.svc.Deliveries.ListBySender(ctx, h.sender)
	require.NoError(t, err)
	assert.Empty(t, list)
}
