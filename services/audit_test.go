package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDuplicateLister struct {
	values []string
	err    error
}

func (f *fakeDuplicateLister) DuplicateIdentifiers(ctx context.Context) ([]string, error) {
	return f.values, f.err
}

func TestIntegrityAuditor_SetsGauge(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_duplicate_identifiers"})
	auditor := NewIntegrityAuditor(
		&fakeDuplicateLister{values: []string{"S1807-59322020000100415", "S0103-50532006000200015"}},
		zap.NewNop(), gauge)

	n, err := auditor.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIntegrityAuditor_NilGauge(t *testing.T) {
	auditor := NewIntegrityAuditor(&fakeDuplicateLister{}, zap.NewNop(), nil)

	n, err := auditor.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIntegrityAuditor_PropagatesStoreError(t *testing.T) {
	boom := errors.New("connection refused")
	auditor := NewIntegrityAuditor(&fakeDuplicateLister{err: boom}, zap.NewNop(), nil)

	_, err := auditor.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}
