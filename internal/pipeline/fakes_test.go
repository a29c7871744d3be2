package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/kurochkinivan/member_uploader/internal/idnumber"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// memStore is an in-memory stand-in for the PostgreSQL repositories.
type memStore struct {
	mu sync.Mutex

	members  map[string]*domain.Member
	nextID   int64
	outcomes map[string][]*domain.RowOutcome
	progress map[string][]int
	totals   map[string]int
	failed   map[string]string
	extended map[string]int

	// lookupHook runs before a member lookup and may block or fail it.
	lookupHook func(ctx context.Context, idNumber string) error
	// insertHook runs before an insert and may return an error to fail it.
	insertHook func(s *memStore, m *domain.Member) error
	// cancelAfter makes CancelRequested report true once it was called that many times.
	cancelAfter int
	cancelCalls int
}

func newMemStore() *memStore {
	return &memStore{
		members:  make(map[string]*domain.Member),
		outcomes: make(map[string][]*domain.RowOutcome),
		progress: make(map[string][]int),
		totals:   make(map[string]int),
		failed:   make(map[string]string),
		extended: make(map[string]int),
	}
}

func (s *memStore) seed(m *domain.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	s.members[m.IDNumber] = m
}

func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return fmt.Errorf("rolled back due to err: %w", err)
	}
	return nil
}

func (s *memStore) MemberByIDNumber(ctx context.Context, idNumber string) (*domain.Member, error) {
	if s.lookupHook != nil {
		if err := s.lookupHook(ctx, idNumber); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[idNumber]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) InsertMember(_ context.Context, m *domain.Member) (int64, error) {
	if s.insertHook != nil {
		if err := s.insertHook(s, m); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[m.IDNumber]; ok {
		return 0, domain.ErrConcurrentInsert
	}
	s.nextID++
	cp := *m
	cp.ID = s.nextID
	s.members[m.IDNumber] = &cp
	return cp.ID, nil
}

func (s *memStore) UpdateMember(_ context.Context, id int64, changes []domain.FieldChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.ID != id {
			continue
		}
		for _, c := range changes {
			switch c.Column {
			case "cell_number":
				m.CellNumber = c.New.(string)
			case "email":
				m.Email = c.New.(string)
			case "ward_id":
				v := c.New.(int64)
				m.WardID = &v
			}
		}
		return nil
	}
	return domain.ErrMemberNotFound
}

func (s *memStore) Resolve(_ context.Context, kind domain.LookupKind, value string) (int64, bool, error) {
	if kind == domain.LookupWard && value == "79800001" {
		return 11, true, nil
	}
	if kind == domain.LookupWard && value == "79800002" {
		return 12, true, nil
	}
	if kind == domain.LookupWard && value == "79800099" {
		return 0, false, errors.New("lookup table unavailable")
	}
	return 0, false, nil
}

func (s *memStore) SetTotalRows(_ context.Context, jobID string, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[jobID] = total
	return nil
}

func (s *memStore) UpdateProgress(_ context.Context, jobID string, rowsProcessed int, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[jobID] = append(s.progress[jobID], rowsProcessed)
	return nil
}

func (s *memStore) ExtendLease(_ context.Context, jobID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extended[jobID]++
	return nil
}

func (s *memStore) extensions(jobID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extended[jobID]
}

func (s *memStore) CancelRequested(context.Context, string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelCalls++
	return s.cancelAfter > 0 && s.cancelCalls > s.cancelAfter, nil
}

func (s *memStore) Fail(_ context.Context, jobID, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[jobID] = summary
	return nil
}

func (s *memStore) DeleteOutcomes(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.outcomes, jobID)
	return nil
}

func (s *memStore) SaveOutcomes(_ context.Context, jobID string, outcomes ...*domain.RowOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[jobID] = append(s.outcomes[jobID], outcomes...)
	return nil
}

func (s *memStore) Outcomes(_ context.Context, jobID string) ([]*domain.RowOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcomes[jobID], nil
}

func (s *memStore) memberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

// eventRecorder collects published events synchronously.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *eventRecorder) Publish(name domain.EventName, jobID string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, domain.Event{Name: name, JobID: jobID, Payload: payload})
}

func (r *eventRecorder) named(name domain.EventName) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type fakeVerifier struct {
	calls int
	err   error
}

func (v *fakeVerifier) Verify(context.Context, string) (domain.Verification, error) {
	v.calls++
	if v.err != nil {
		return domain.Verification{}, v.err
	}
	return domain.Verification{Registered: true}, nil
}

// validID builds a checksum-valid id number born 1980-01-01 with serial n.
func validID(n int) string {
	first12 := fmt.Sprintf("8001015%03d08", n)
	return first12 + string(idnumber.CheckDigit(first12))
}

// badChecksum returns id with its check digit changed.
func badChecksum(id string) string {
	last := id[12]
	next := byte('0' + (int(last-'0')+1)%10)
	return id[:12] + string(next)
}

var fixtureHeader = []any{"ID Number", "Name", "Surname", "Ward", "Cell Number"}

type fixtureRow struct {
	id, name, surname, ward, cell string
}

func writeUpload(t *testing.T, rows []fixtureRow) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &fixtureHeader))
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		values := []any{r.id, r.name, r.surname, r.ward, r.cell}
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}

	path := filepath.Join(t.TempDir(), strings.ReplaceAll(t.Name(), "/", "_")+".xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func writeHeaderOnly(t *testing.T, header ...any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	values := []any{validID(1), "Sipho"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &values))

	path := filepath.Join(t.TempDir(), "headers.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}
