package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name        string
		current     DeliveryStatus
		event       LifecycleEvent
		wantNext    DeliveryStatus
		wantChanged bool
		wantErr     error
	}{
		{"active expire", StatusActive, EventExpire, StatusExpired, true, nil},
		{"active revoke", StatusActive, EventRevoke, StatusRevoked, true, nil},
		{"re-expire is no-op", StatusExpired, EventExpire, StatusExpired, false, nil},
		{"re-revoke is no-op", StatusRevoked, EventRevoke, StatusRevoked, false, nil},
		{"expire after revoke keeps revoked", StatusRevoked, EventExpire, StatusRevoked, false, nil},
		{"revoke after expire is illegal", StatusExpired, EventRevoke, StatusExpired, false, ErrIllegalTransition},
		{"unknown event", StatusActive, LifecycleEvent("reopen"), StatusActive, false, ErrIllegalTransition},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, changed, err := Transition(tc.current, tc.event)
			assert.Equal(t, tc.wantNext, next)
			assert.Equal(t, tc.wantChanged, changed)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestTransition_TerminalNeverReturnsActive(t *testing.T) {
	for _, s := range []DeliveryStatus{StatusExpired, StatusRevoked} {
		for _, e := range []LifecycleEvent{EventExpire, EventRevoke, LifecycleEvent("reopen")} {
			next, _, _ := Transition(s, e)
			assert.NotEqual(t, StatusActive, next, "%s + %s", s, e)
		}
	}
}

func TestDelivery_LimitChecks(t *testing.T) {
	now := time.Now()
	d := &Delivery{CurrentViews: 2, MaxViews: 2, CurrentDownloads: 0, MaxDownloads: 1, ExpiresAt: now}

	assert.True(t, d.ViewLimitReached())
	assert.False(t, d.DownloadLimitReached())
	assert.False(t, d.TimeExpired(now))
	assert.True(t, d.TimeExpired(now.Add(time.Second)))
}

func TestAccessCode_Helpers(t *testing.T) {
	now := time.Now()
	c := &AccessCode{Attempts: 1, MaxAttempts: 3, ExpiresAt: now.Add(time.Minute)}

	assert.False(t, c.Expired(now))
	assert.False(t, c.Exhausted())
	assert.Equal(t, 2, c.AttemptsRemaining())

	c.Attempts = 3
	assert.True(t, c.Exhausted())
	assert.Equal(t, 0, c.AttemptsRemaining())
}

func TestMetadata_ScanValue(t *testing.T) {
	var m Metadata
	assert.NoError(t, m.Scan([]byte(`{"viewer_type":"sender"}`)))
	assert.Equal(t, "sender", m["viewer_type"])

	v, err := Metadata(nil).Value()
	assert.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	assert.Error(t, m.Scan(42))
}
