package screen

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/hepatodb-client/pkg/pagination"
	"github.com/Sternrassler/hepatodb-client/pkg/record"
	"github.com/Sternrassler/hepatodb-client/pkg/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource answers Collect from a function and counts calls.
type fakeSource struct {
	collect func(ctx context.Context, query resource.Query) ([]record.Record, error)
	options map[string][]string
	optErr  error
	calls   atomic.Int32
}

func (f *fakeSource) Collect(ctx context.Context, _ resource.Resource, query resource.Query) ([]record.Record, error) {
	f.calls.Add(1)
	return f.collect(ctx, query)
}

func (f *fakeSource) Options(context.Context, resource.Resource) (map[string][]string, error) {
	return f.options, f.optErr
}

func tpmRecord(gene, liver string) record.Record {
	return record.New(resource.TPM.Fields, []record.Value{
		record.String(gene), record.Absent(), record.String(liver),
	})
}

func TestSearch_Results(t *testing.T) {
	src := &fakeSource{collect: func(_ context.Context, q resource.Query) ([]record.Record, error) {
		return []record.Record{tpmRecord(q.Get(resource.FilterName), "12.5")}, nil
	}}
	sc := New(resource.TPM, src)

	st, err := sc.Search(context.Background(), resource.Query{resource.FilterName: "ALB"})
	require.NoError(t, err)

	assert.Equal(t, StatusResults, st.Status)
	assert.Empty(t, st.Message)
	require.Equal(t, 1, st.Count())
	assert.Equal(t, "ALB", st.Rows()[0]["gene_name"])
	assert.Equal(t, record.Sentinel, st.Rows()[0]["gene_id"])
	assert.Equal(t, st, sc.State())
}

func TestSearch_Empty(t *testing.T) {
	src := &fakeSource{collect: func(context.Context, resource.Query) ([]record.Record, error) {
		return []record.Record{}, nil
	}}
	sc := New(resource.Metabolites, src)

	st, err := sc.Search(context.Background(), resource.Query{resource.FilterDisease: "unknown"})
	require.NoError(t, err)

	assert.Equal(t, StatusEmpty, st.Status)
	assert.Equal(t, "No data found for the entered disease.", st.Message)
	assert.Zero(t, st.Count())
}

func TestSearch_FailureDiscardsPreviousResults(t *testing.T) {
	fail := false
	src := &fakeSource{collect: func(context.Context, resource.Query) ([]record.Record, error) {
		if fail {
			return nil, pagination.ErrFetchFailed
		}
		return []record.Record{tpmRecord("ALB", "1")}, nil
	}}
	sc := New(resource.TPM, src)

	_, err := sc.Search(context.Background(), resource.Query{resource.FilterName: "ALB"})
	require.NoError(t, err)

	fail = true
	st, err := sc.Search(context.Background(), resource.Query{resource.FilterName: "APOB"})
	require.ErrorIs(t, err, pagination.ErrFetchFailed)

	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, FailureMessage, st.Message)
	assert.Zero(t, st.Count(), "error and results must not be visible together")
}

func TestSearch_BlankRequiredInput(t *testing.T) {
	tests := []struct {
		name    string
		res     resource.Resource
		query   resource.Query
		message string
	}{
		{"tpm empty", resource.TPM, resource.Query{}, "Please enter a Gene name."},
		{"tpm whitespace", resource.TPM, resource.Query{resource.FilterName: "   "}, "Please enter a Gene name."},
		{"metabolites nil query", resource.Metabolites, nil, "Please enter a disease name."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{collect: func(context.Context, resource.Query) ([]record.Record, error) {
				t.Fatal("no request expected")
				return nil, nil
			}}
			sc := New(tt.res, src)

			st, err := sc.Search(context.Background(), tt.query)
			require.ErrorIs(t, err, ErrNoInput)
			assert.Equal(t, StatusError, st.Status)
			assert.Equal(t, tt.message, st.Message)
			assert.Zero(t, src.calls.Load())
		})
	}
}

func TestSearch_OptionalFilterMayBeBlank(t *testing.T) {
	src := &fakeSource{collect: func(_ context.Context, q resource.Query) ([]record.Record, error) {
		return []record.Record{record.New([]string{"drug"}, []record.Value{record.String("x")})}, nil
	}}
	sc := New(resource.Drugs, src)

	st, err := sc.Search(context.Background(), resource.Query{resource.FilterDisease: ""})
	require.NoError(t, err)
	assert.Equal(t, StatusResults, st.Status)
}

func TestSearch_DropsUnknownFilters(t *testing.T) {
	var got resource.Query
	src := &fakeSource{collect: func(_ context.Context, q resource.Query) ([]record.Record, error) {
		got = q
		return nil, nil
	}}
	sc := New(resource.Metabolites, src)

	_, err := sc.Search(context.Background(), resource.Query{resource.FilterDisease: "NAFLD", resource.FilterProtein1: "ALB"})
	require.NoError(t, err)
	assert.Equal(t, resource.Query{resource.FilterDisease: "NAFLD"}, got)
}

func TestSearch_NewerSearchWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	src := &fakeSource{collect: func(ctx context.Context, q resource.Query) ([]record.Record, error) {
		if q.Get(resource.FilterName) == "SLOW" {
			close(started)
			select {
			case <-release:
				return []record.Record{tpmRecord("SLOW", "1")}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return []record.Record{tpmRecord("FAST", "2")}, nil
	}}
	sc := New(resource.TPM, src)

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = sc.Search(context.Background(), resource.Query{resource.FilterName: "SLOW"})
	}()

	<-started
	st, err := sc.Search(context.Background(), resource.Query{resource.FilterName: "FAST"})
	require.NoError(t, err)
	assert.Equal(t, "FAST", st.Rows()[0]["gene_name"])

	close(release)
	wg.Wait()

	assert.ErrorIs(t, slowErr, ErrSuperseded)
	final := sc.State()
	assert.Equal(t, StatusResults, final.Status)
	assert.Equal(t, "FAST", final.Rows()[0]["gene_name"])
}

func TestSearch_NewSearchCancelsInFlight(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{})

	src := &fakeSource{collect: func(ctx context.Context, q resource.Query) ([]record.Record, error) {
		if q.Get(resource.FilterName) == "FIRST" {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return nil, nil
	}}
	sc := New(resource.TPM, src)

	go sc.Search(context.Background(), resource.Query{resource.FilterName: "FIRST"})
	<-started

	_, err := sc.Search(context.Background(), resource.Query{resource.FilterName: "SECOND"})
	require.NoError(t, err)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("first search was not cancelled")
	}
	assert.Equal(t, StatusEmpty, sc.State().Status)
}

func TestCancel_ReturnsToIdle(t *testing.T) {
	started := make(chan struct{})
	src := &fakeSource{collect: func(ctx context.Context, _ resource.Query) ([]record.Record, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	sc := New(resource.Disease, src)

	done := make(chan error, 1)
	go func() {
		_, err := sc.Search(context.Background(), nil)
		done <- err
	}()
	<-started
	assert.Equal(t, StatusLoading, sc.State().Status)

	sc.Cancel()
	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, StatusIdle, sc.State().Status)
}

func TestState_IsACopy(t *testing.T) {
	src := &fakeSource{collect: func(context.Context, resource.Query) ([]record.Record, error) {
		return []record.Record{tpmRecord("ALB", "1")}, nil
	}}
	sc := New(resource.TPM, src)
	_, err := sc.Search(context.Background(), resource.Query{resource.FilterName: "ALB"})
	require.NoError(t, err)

	st := sc.State()
	st.Records[0] = tpmRecord("MUTATED", "0")
	st.Query[resource.FilterName] = "MUTATED"

	again := sc.State()
	assert.Equal(t, "ALB", again.Rows()[0]["gene_name"])
	assert.Equal(t, "ALB", again.Query.Get(resource.FilterName))
}

func TestLoadOptions(t *testing.T) {
	src := &fakeSource{options: map[string][]string{"gene": {"ALB", "APOB"}}}
	sc := New(resource.TPM, src)

	require.NoError(t, sc.LoadOptions(context.Background()))
	assert.Equal(t, []string{"ALB", "APOB"}, sc.Options()["gene"])

	src.optErr = errors.New("boom")
	src.options = nil
	require.Error(t, sc.LoadOptions(context.Background()))
	assert.Equal(t, []string{"ALB", "APOB"}, sc.Options()["gene"], "failed reload keeps previous options")
	assert.Equal(t, StatusIdle, sc.State().Status)
}
