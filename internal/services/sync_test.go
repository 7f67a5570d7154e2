package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"web3events/internal/domain"
	"web3events/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeGateway implements domain.LedgerGateway with scripted responses.
type fakeGateway struct {
	objects     map[string]*domain.LedgerObject
	objectErrs  map[string]error
	fields      map[string][]domain.DynamicFieldInfo
	fieldErrs   map[string]error
	txResult    *domain.TransactionResult
	txErr       error
	executed    []*domain.TransactionRequest
	objectCalls int
}

func (f *fakeGateway) GetObject(ctx context.Context, objectID string) (*domain.LedgerObject, error) {
	f.objectCalls++
	if err, ok := f.objectErrs[objectID]; ok {
		return nil, err
	}
	obj, ok := f.objects[objectID]
	if !ok {
		return nil, errors.New("object not found: " + objectID)
	}
	return obj, nil
}

func (f *fakeGateway) GetDynamicFields(ctx context.Context, parentID string) ([]domain.DynamicFieldInfo, error) {
	if err, ok := f.fieldErrs[parentID]; ok {
		return nil, err
	}
	return f.fields[parentID], nil
}

func (f *fakeGateway) ExecuteTransaction(ctx context.Context, tx *domain.TransactionRequest) (*domain.TransactionResult, error) {
	f.executed = append(f.executed, tx)
	if f.txErr != nil {
		return nil, f.txErr
	}
	if f.txResult != nil {
		return f.txResult, nil
	}
	return &domain.TransactionResult{Digest: "0xdigest", Status: "success"}, nil
}

// syncFixtureGateway builds a registry with two event entries and one
// attendance record, exercising the wrapped table-reference and value-wrapper
// shapes the ledger actually produces.
func syncFixtureGateway() *fakeGateway {
	return &fakeGateway{
		objects: map[string]*domain.LedgerObject{
			"0xregistry": {
				ID: "0xregistry",
				Fields: map[string]any{
					"events":             map[string]any{"fields": map[string]any{"id": map[string]any{"id": "0xevents-table"}}},
					"attendance_records": map[string]any{"fields": map[string]any{"id": map[string]any{"id": "0xatt-table"}}},
				},
			},
			"0xentry-1": {
				ID: "0xevent-1",
				Fields: map[string]any{
					"value": map[string]any{
						"fields": map[string]any{
							"title":     "First",
							"creator":   "0xcreator",
							"is_free":   true,
							"attendees": map[string]any{"fields": map[string]any{"contents": []any{"0xa", "0xb"}}},
						},
					},
				},
			},
			"0xentry-2": {
				ID: "0xevent-2",
				Fields: map[string]any{
					"value": map[string]any{
						"fields": map[string]any{
							"title":     "Second",
							"creator":   "0xcreator",
							"attendees": []any{},
						},
					},
				},
			},
			"0xatt-entry-1": {
				ID: "0xatt-entry-1",
				Fields: map[string]any{
					"name":  "0xevent-1",
					"value": []any{"0xa"},
				},
			},
		},
		fields: map[string][]domain.DynamicFieldInfo{
			"0xevents-table": {
				{ObjectID: "0xentry-1"},
				{ObjectID: "0xentry-2"},
			},
			"0xatt-table": {
				{ObjectID: "0xatt-entry-1"},
			},
		},
		objectErrs: map[string]error{},
		fieldErrs:  map[string]error{},
	}
}

func TestSyncService_FetchEvents(t *testing.T) {
	gw := syncFixtureGateway()
	store := state.NewStore()
	svc := NewSyncService(gw, "0xregistry", store, testLogger, 0)

	events, err := svc.FetchEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "0xevent-1", first.LedgerID)
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, []string{"0xa", "0xb"}, first.Registered)
	assert.Equal(t, []string{"0xa"}, first.Attended, "attendance records cross-referenced by event id")

	second := events[1]
	assert.Equal(t, "Second", second.Title)
	assert.Empty(t, second.Attended)

	// The snapshot landed in the shared store.
	stored, ok := store.Get("0xevent-1")
	require.True(t, ok)
	assert.Equal(t, "First", stored.Title)
}

func TestSyncService_FetchEvents_SkipsBrokenEntries(t *testing.T) {
	gw := syncFixtureGateway()
	gw.objectErrs["0xentry-2"] = errors.New("rpc timeout")

	store := state.NewStore()
	svc := NewSyncService(gw, "0xregistry", store, testLogger, 0)

	events, err := svc.FetchEvents(context.Background())
	require.NoError(t, err, "one broken entry must not fail the fetch")
	require.Len(t, events, 1)
	assert.Equal(t, "0xevent-1", events[0].LedgerID)
}

func TestSyncService_FetchEvents_SkipsUndecodableEntries(t *testing.T) {
	gw := syncFixtureGateway()
	gw.objects["0xentry-2"] = &domain.LedgerObject{ID: "0xevent-2", Fields: map[string]any{"creator": "0xc"}} // no title

	store := state.NewStore()
	svc := NewSyncService(gw, "0xregistry", store, testLogger, 0)

	events, err := svc.FetchEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "0xevent-1", events[0].LedgerID)
}

func TestSyncService_FetchEvents_AttendanceFailureDegrades(t *testing.T) {
	gw := syncFixtureGateway()
	gw.fieldErrs["0xatt-table"] = errors.New("table unavailable")

	store := state.NewStore()
	svc := NewSyncService(gw, "0xregistry", store, testLogger, 0)

	events, err := svc.FetchEvents(context.Background())
	require.NoError(t, err, "attendance failure degrades to empty attendance")
	require.Len(t, events, 2)
	assert.Empty(t, events[0].Attended)
}

func TestSyncService_FetchEvents_RegistryFailureIsFatal(t *testing.T) {
	gw := syncFixtureGateway()
	gw.objectErrs["0xregistry"] = errors.New("rpc down")

	svc := NewSyncService(gw, "0xregistry", state.NewStore(), testLogger, 0)
	_, err := svc.FetchEvents(context.Background())
	require.Error(t, err)
}

func TestSyncService_FetchEvents_EntryNameFallback(t *testing.T) {
	gw := syncFixtureGateway()
	// Entry object without a name field; the enumeration metadata carries it
	// as a value wrapper instead.
	gw.objects["0xatt-entry-1"] = &domain.LedgerObject{
		ID:     "0xatt-entry-1",
		Fields: map[string]any{"value": []any{"0xa"}},
	}
	gw.fields["0xatt-table"] = []domain.DynamicFieldInfo{
		{ObjectID: "0xatt-entry-1", Name: map[string]any{"value": "0xevent-1"}},
	}

	store := state.NewStore()
	svc := NewSyncService(gw, "0xregistry", store, testLogger, 0)

	events, err := svc.FetchEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0xa"}, events[0].Attended)
}
