package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "secretsanta/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestAppendProducesKeyedRecord(t *testing.T) {
	producer := &fakeProducer{}
	store := New(producer, "santa.audit")

	event := audit.Event{
		Category:   audit.CategoryCompliance,
		Timestamp:  time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC),
		Action:     string(audit.EventActivityMatched),
		ActivityID: "act-1",
		ActorRole:  "admin",
	}
	require.NoError(t, store.Append(context.Background(), event))

	require.Len(t, producer.records, 1)
	rec := producer.records[0]
	assert.Equal(t, "santa.audit", rec.Topic)
	assert.Equal(t, []byte("act-1"), rec.Key)

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, event.Action, decoded.Action)
	assert.Equal(t, event.ActorRole, decoded.ActorRole)
	assert.Equal(t, "compliance", string(rec.Headers[0].Value))
}

func TestAppendSurfacesProduceError(t *testing.T) {
	store := New(&fakeProducer{err: errors.New("broker unavailable")}, "santa.audit")

	err := store.Append(context.Background(), audit.Event{ActivityID: "act-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}
