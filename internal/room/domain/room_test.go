package domain

import (
	"testing"
	"time"
)

func TestRoom_Full(t *testing.T) {
	two := 2
	tests := []struct {
		name  string
		limit *int
		count int
		want  bool
	}{
		{"no limit", nil, 100, false},
		{"below limit", &two, 1, false},
		{"at limit", &two, 2, true},
		{"over limit", &two, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Room{Limit: tt.limit}
			if got := r.Full(tt.count); got != tt.want {
				t.Errorf("Full(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestCode_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &Code{ExpiresAt: now}
	if !c.Expired(now) {
		t.Error("code is expired at its expiry instant")
	}
	if c.Expired(now.Add(-time.Second)) {
		t.Error("code is live before its expiry")
	}
}
