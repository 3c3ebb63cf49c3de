package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLimitOffset(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, defaultPageLimit, 0},
		{-5, -1, defaultPageLimit, 0},
		{10, 20, 10, 20},
		{maxPageLimit + 1, 0, maxPageLimit, 0},
	}
	for _, tt := range tests {
		l, o := sanitizeLimitOffset(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, l)
		assert.Equal(t, tt.wantOffset, o)
	}
}

func TestNilPoolIsRejected(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, NewTxManager(nil).WithinTx(ctx, func(context.Context) error { return nil }))
	assert.Error(t, NewPinger(nil).Ping(ctx))
	_, err := NewTeamRepository(nil).FindAll(ctx)
	assert.Error(t, err)
	_, err = NewStatsRepository(nil).FindByGame(ctx, 1)
	assert.Error(t, err)
}
