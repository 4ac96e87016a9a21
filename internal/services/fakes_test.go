package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/dropvault/internal/common"
	"github.com/rohits-web03/dropvault/internal/config"
	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rohits-web03/dropvault/internal/models"
)

// memStore implements every relational port over maps, with the same
// conditional-update semantics as the SQL repositories.
type memStore struct {
	mu         sync.Mutex
	deliveries map[uuid.UUID]*models.Delivery
	files      map[uuid.UUID]*models.DeliveryFile
	codes      map[uuid.UUID]*models.AccessCode
	logs       []models.AccessLogEntry
	statusErr  error
	markErr    error // returned by the next MarkDestroyRequested only
}

func newMemStore() *memStore {
	return &memStore{
		deliveries: map[uuid.UUID]*models.Delivery{},
		files:      map[uuid.UUID]*models.DeliveryFile{},
		codes:      map[uuid.UUID]*models.AccessCode{},
	}
}

func (m *memStore) Create(_ context.Context, d *models.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	cp.Files = nil
	m.deliveries[d.ID] = &cp
	for i := range d.Files {
		f := d.Files[i]
		f.ID = uuid.New()
		f.DeliveryID = d.ID
		d.Files[i].ID = f.ID
		m.files[f.ID] = &f
	}
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return nil, fmt.Errorf("get delivery: %w", common.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) IncrementCounter(_ context.Context, id uuid.UUID, c models.Counter) (*models.Delivery, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return nil, false, fmt.Errorf("get delivery: %w", common.ErrNotFound)
	}
	cur, lim := &d.CurrentViews, d.MaxViews
	if c == models.CounterDownloads {
		cur, lim = &d.CurrentDownloads, d.MaxDownloads
	}
	if d.Status != models.StatusActive || *cur >= lim {
		cp := *d
		return &cp, false, nil
	}
	*cur++
	cp := *d
	return &cp, true, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.DeliveryStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return false, m.statusErr
	}
	d, ok := m.deliveries[id]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status = to
	return true, nil
}

func (m *memStore) ExpireForDestruction(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return false, m.statusErr
	}
	d, ok := m.deliveries[id]
	if !ok || d.Status != models.StatusActive {
		return false, nil
	}
	d.Status = models.StatusExpired
	if d.DestroyRequestedAt == nil {
		d.DestroyRequestedAt = &at
	}
	return true, nil
}

func (m *memStore) MarkDestroyRequested(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.markErr; err != nil {
		m.markErr = nil
		return err
	}
	if d, ok := m.deliveries[id]; ok && d.DestroyRequestedAt == nil {
		d.DestroyRequestedAt = &at
	}
	return nil
}

func (m *memStore) ListBySender(_ context.Context, senderID uuid.UUID) ([]models.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Delivery
	for _, d := range m.deliveries {
		if d.SenderID == senderID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) ListTimeExpired(_ context.Context, now time.Time, limit int) ([]models.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Delivery
	for _, d := range m.deliveries {
		if d.Status == models.StatusActive && d.ExpiresAt.Before(now) && len(out) < limit {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) ListPendingDestruction(_ context.Context, limit int) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uuid.UUID
	for id, d := range m.deliveries {
		if d.DestroyRequestedAt == nil || len(out) >= limit {
			continue
		}
		for _, f := range m.files {
			if f.DeliveryID == id && !f.Deleted {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deliveries[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.deliveries, id)
	for fid, f := range m.files {
		if f.DeliveryID == id {
			delete(m.files, fid)
		}
	}
	return nil
}

// fileStore adapts memStore to FileStore; method names clash with the
// delivery port.
type fileStore struct{ m *memStore }

func (s fileStore) ListLive(_ context.Context, deliveryID uuid.UUID) ([]models.DeliveryFile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.DeliveryFile
	for _, f := range s.m.files {
		if f.DeliveryID == deliveryID && !f.Deleted {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s fileStore) GetByIndex(_ context.Context, deliveryID uuid.UUID, index int) (*models.DeliveryFile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, f := range s.m.files {
		if f.DeliveryID == deliveryID && f.Index == index && !f.Deleted {
			cp := *f
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get delivery file: %w", common.ErrNotFound)
}

func (s fileStore) MarkDeleted(_ context.Context, ids []uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, id := range ids {
		if f, ok := s.m.files[id]; ok {
			f.Deleted = true
		}
	}
	return nil
}

type codeStore struct{ m *memStore }

func (s codeStore) Create(_ context.Context, c *models.AccessCode) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	s.m.codes[c.ID] = &cp
	return nil
}

func (s codeStore) LatestUnverified(_ context.Context, deliveryID uuid.UUID, email string) (*models.AccessCode, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var latest *models.AccessCode
	for _, c := range s.m.codes {
		if c.DeliveryID != deliveryID || c.RecipientEmail != email || c.VerifiedAt != nil {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("latest access code: %w", common.ErrNotFound)
	}
	cp := *latest
	return &cp, nil
}

func (s codeStore) IncrementAttempts(_ context.Context, id uuid.UUID) (*models.AccessCode, bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.codes[id]
	if !ok {
		return nil, false, common.ErrNotFound
	}
	if c.VerifiedAt != nil || c.Attempts >= c.MaxAttempts {
		cp := *c
		return &cp, false, nil
	}
	c.Attempts++
	cp := *c
	return &cp, true, nil
}

func (s codeStore) MarkVerified(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.codes[id]
	if !ok || c.VerifiedAt != nil || c.Attempts >= c.MaxAttempts {
		return false, nil
	}
	c.VerifiedAt = &at
	return true, nil
}

type logStore struct{ m *memStore }

func (s logStore) Append(_ context.Context, e *models.AccessLogEntry) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.logs = append(s.m.logs, *e)
	return nil
}

func (s logStore) ListByDelivery(_ context.Context, deliveryID uuid.UUID) ([]models.AccessLogEntry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.AccessLogEntry
	for _, e := range s.m.logs {
		if e.DeliveryID == deliveryID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) actions(deliveryID uuid.UUID) []models.AccessAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AccessAction
	for _, e := range m.logs {
		if e.DeliveryID == deliveryID {
			out = append(out, e.Action)
		}
	}
	return out
}

// memBlobs is an in-memory BlobStore. failKeys makes DeleteObject fail for
// specific keys.
type memBlobs struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failKeys map[string]bool
	deletes  int
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}, failKeys: map[string]bool{}}
}

func (b *memBlobs) PutObject(_ context.Context, key string, body []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = append([]byte(nil), body...)
	return nil
}

func (b *memBlobs) GetObject(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, fmt.Errorf("get object %s: %w", key, common.ErrNotFound)
	}
	return data, nil
}

func (b *memBlobs) DeleteObject(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes++
	if b.failKeys[key] {
		return errors.New("storage unavailable")
	}
	delete(b.objects, key)
	return nil
}

func (b *memBlobs) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blobs.test/" + key + "?sig=x", nil
}

func (b *memBlobs) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []models.AccessCodeNotice
	err     error
}

func (n *recordingNotifier) SendAccessCode(_ context.Context, notice models.AccessCodeNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *recordingNotifier) last() models.AccessCodeNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notices[len(n.notices)-1]
}

type recordingEvents struct {
	mu      sync.Mutex
	notices []models.LifecycleNotice
}

func (e *recordingEvents) PublishLifecycle(_ context.Context, n models.LifecycleNotice) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notices = append(e.notices, n)
	return nil
}

type stubLimiter struct {
	allow bool
	err   error
}

func (l stubLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return l.allow, l.err
}

// harness wires real services over the in-memory fakes.
type harness struct {
	store    *memStore
	blobs    *memBlobs
	notifier *recordingNotifier
	events   *recordingEvents
	svc      *Services
	now      time.Time
	sender   uuid.UUID
}

func testPolicy() config.DeliveryPolicy {
	return config.DeliveryPolicy{
		CodeTTL:               15 * time.Minute,
		CodeMaxAttempts:       3,
		CodeRequestsPerWindow: 5,
		CodeRequestWindow:     15 * time.Minute,
		RequireAccessCode:     true,
		GrantTTL:              30 * time.Minute,
		SweepInterval:         time.Minute,
		SweepBatchSize:        100,
		DefaultTTL:            24 * time.Hour,
		MaxUploadBytes:        1 << 20,
	}
}

func newHarness(policy config.DeliveryPolicy) *harness {
	h := &harness{
		store:    newMemStore(),
		blobs:    newMemBlobs(),
		notifier: &recordingNotifier{},
		events:   &recordingEvents{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		sender:   uuid.New(),
	}
	h.svc = New(Deps{
		Deliveries: h.store,
		Files:      fileStore{h.store},
		Codes:      codeStore{h.store},
		Logs:       logStore{h.store},
		Blobs:      h.blobs,
		Notifier:   h.notifier,
		Events:     h.events,
		Limiter:    stubLimiter{allow: true},
		Log:        logging.Nop(),
	}, policy, "test-secret")

	clock := func() time.Time { return h.now }
	h.svc.Lifecycle.now = clock
	h.svc.Destruction.now = clock
	h.svc.AccessCodes.now = clock
	h.svc.Grants.now = clock
	h.svc.Deliveries.now = clock
	h.svc.Sweeper.now = clock
	return h
}

// seed inserts an active delivery with the given limits and files.
func (h *harness) seed(maxViews, maxDownloads int, files ...string) *models.Delivery {
	d := &models.Delivery{
		ID:             uuid.New(),
		SenderID:       h.sender,
		Token:          "share-token",
		Title:          "Q3 report",
		RecipientEmail: "bob@example.com",
		CreatedAt:      h.now,
		ExpiresAt:      h.now.Add(time.Hour),
		Status:         models.StatusActive,
		MaxViews:       maxViews,
		MaxDownloads:   maxDownloads,
	}
	for i, name := range files {
		key := fmt.Sprintf("deliveries/%s/%d", d.ID, i)
		h.blobs.objects[key] = []byte("content of " + name)
		d.Files = append(d.Files, models.DeliveryFile{
			Filename:    name,
			ContentType: "application/pdf",
			Size:        int64(len(name)),
			StorageKey:  key,
			Index:       i,
		})
	}
	_ = h.store.Create(context.Background(), d)
	return d
}

func (h *harness) status(id uuid.UUID) models.DeliveryStatus {
	d, err := h.store.GetByID(context.Background(), id)
	if err != nil {
		return ""
	}
	return d.Status
}
