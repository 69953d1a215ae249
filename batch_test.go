package recmap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/reoring/recmap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func counterDocs(n int) []*recmap.Node {
	docs := make([]*recmap.Node, n)
	for i := range docs {
		docs[i] = recmap.Map(
			recmap.E("counter", recmap.Int(int64(i))),
			recmap.E("message", recmap.String("m")),
			recmap.E("ip", recmap.Seq(recmap.Int(1), recmap.Int(2), recmap.Int(3), recmap.Int(4))),
		)
	}
	return docs
}

func TestEncodeAll_KeepsInputOrder(t *testing.T) {
	rec := dataRecord(t)
	docs := counterDocs(32)

	out, err := recmap.EncodeAll(context.Background(), rec, docs, recmap.Options{Parallelism: 4})
	require.NoError(t, err)
	require.Len(t, out, len(docs))
	for i, enc := range out {
		assert.Equal(t, byte(i), enc.Bytes()[0], "document %d", i)
	}
}

func TestEncodeAll_ReportsFailingDocument(t *testing.T) {
	rec := dataRecord(t)
	docs := counterDocs(8)
	docs[3] = recmap.Map(recmap.E("counter", recmap.Int(-1)))

	_, err := recmap.EncodeAll(context.Background(), rec, docs, recmap.Options{Parallelism: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 3")

	iss, ok := recmap.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, recmap.CodeIntegerOverflow, iss[0].Code)
}

func TestEncodeAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := recmap.EncodeAll(ctx, dataRecord(t), counterDocs(4))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestEncodeAll_Empty(t *testing.T) {
	out, err := recmap.EncodeAll(context.Background(), dataRecord(t), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
