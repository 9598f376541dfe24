package worker

import (
	"context"
	"testing"

	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/testutil"
)

type fakeRefresher struct {
	calls int
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.calls++
	return nil
}

type fakeMaintainer struct {
	purged   int64
	purgeErr error
}

func (f *fakeMaintainer) Reconcile(ctx context.Context) error {
	return nil
}

func (f *fakeMaintainer) PurgeExpired(ctx context.Context) (int64, error) {
	return f.purged, f.purgeErr
}

func TestMaintenance_StartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMaintenance(&fakeRefresher{}, &fakeMaintainer{}, testutil.NewLogger())
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()
}

func TestMaintenance_PurgeHistory(t *testing.T) {
	tests := []struct {
		name     string
		purged   int64
		purgeErr error
		wantErr  bool
	}{
		{
			name:   "purged rows",
			purged: 42,
		},
		{
			name:     "repository failure",
			purgeErr: errors.Internal("purge failed", nil),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMaintenance(&fakeRefresher{}, &fakeMaintainer{purged: tt.purged, purgeErr: tt.purgeErr}, testutil.NewLogger())

			err := m.purgeHistory(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("purgeHistory() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
