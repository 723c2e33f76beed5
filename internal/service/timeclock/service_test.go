package timeclock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/audit"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/timeclock"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/user"
	auditService "github.com/shiftlog/timeclock-backend-go/internal/service/audit"
)

// In-memory fakes. The service only talks to interfaces, so tests run
// without a database; the fake tx manager just runs the function.

type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// rollbackTxManager behaves like a real transaction over the in-memory
// repos: when fn fails, writes made inside it are discarded.
type rollbackTxManager struct {
	clockLogs *memClockLogRepo
	auditLog  *memAuditRepo
}

func (m rollbackTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.clockLogs.mu.Lock()
	logsBefore := append([]timeclock.ClockLog(nil), m.clockLogs.logs...)
	logSeq := m.clockLogs.seq
	m.clockLogs.mu.Unlock()

	m.auditLog.mu.Lock()
	entriesBefore := append([]audit.Entry(nil), m.auditLog.entries...)
	auditSeq := m.auditLog.seq
	m.auditLog.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.clockLogs.mu.Lock()
		m.clockLogs.logs, m.clockLogs.seq = logsBefore, logSeq
		m.clockLogs.mu.Unlock()

		m.auditLog.mu.Lock()
		m.auditLog.entries, m.auditLog.seq = entriesBefore, auditSeq
		m.auditLog.mu.Unlock()
		return err
	}
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users []user.User
}

func (r *memUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
	return u, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *memUserRepo) FindAllByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []user.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) FindAll(ctx context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]user.User(nil), r.users...), nil
}

func (r *memUserRepo) FindByIDs(ctx context.Context, ids []string) (map[string]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]user.User)
	for _, u := range r.users {
		for _, id := range ids {
			if u.ID == id {
				out[u.ID] = u
			}
		}
	}
	return out, nil
}

func (r *memUserRepo) UpdatePINHash(ctx context.Context, id string, pinHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].PINHash = pinHash
			return nil
		}
	}
	return user.ErrUserNotFound
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return user.ErrUserNotFound
}

type memClockLogRepo struct {
	mu        sync.Mutex
	seq       int
	createErr error
	logs      []timeclock.ClockLog
}

func (r *memClockLogRepo) Create(ctx context.Context, log timeclock.ClockLog) (timeclock.ClockLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return timeclock.ClockLog{}, r.createErr
	}
	r.seq++
	log.ID = fmt.Sprintf("log-%d", r.seq)
	r.logs = append(r.logs, log)
	return log, nil
}

func (r *memClockLogRepo) LatestForUser(ctx context.Context, userID string) (*timeclock.ClockLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *timeclock.ClockLog
	for i := range r.logs {
		if r.logs[i].UserID != userID {
			continue
		}
		if latest == nil || !r.logs[i].Timestamp.Before(latest.Timestamp) {
			cp := r.logs[i]
			latest = &cp
		}
	}
	return latest, nil
}

func (r *memClockLogRepo) FindInRange(ctx context.Context, start, end time.Time) ([]timeclock.ClockLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []timeclock.ClockLog
	for _, l := range r.logs {
		if !l.Timestamp.Before(start) && l.Timestamp.Before(end) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *memClockLogRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = nil
	return nil
}

type memAuditRepo struct {
	mu        sync.Mutex
	seq       int
	createErr error
	entries   []audit.Entry
}

func (r *memAuditRepo) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return audit.Entry{}, r.createErr
	}
	r.seq++
	entry.ID = fmt.Sprintf("audit-%d", r.seq)
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *memAuditRepo) FindRecent(ctx context.Context, offset, limit int) ([]audit.Entry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reversed := make([]audit.Entry, len(r.entries))
	for i, e := range r.entries {
		reversed[len(r.entries)-1-i] = e
	}
	total := int64(len(reversed))
	if offset >= len(reversed) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(reversed) {
		end = len(reversed)
	}
	return reversed[offset:end], total, nil
}

func (r *memAuditRepo) FindInRange(ctx context.Context, start, end time.Time) ([]audit.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Entry
	for _, e := range r.entries {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memAuditRepo) FindAll(ctx context.Context) ([]audit.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Entry(nil), r.entries...), nil
}

func (r *memAuditRepo) byAction(action string) []audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Entry
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func hashPIN(t *testing.T, pin string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestClockService(t *testing.T, users ...user.User) (*ClockServiceImpl, *memClockLogRepo, *memAuditRepo) {
	t.Helper()
	userRepo := &memUserRepo{users: users}
	clockLogRepo := &memClockLogRepo{}
	auditRepo := &memAuditRepo{}
	svc := NewClockService(fakeTxManager{}, clockLogRepo, userRepo, auditService.NewRecorder(auditRepo))
	return svc, clockLogRepo, auditRepo
}

func TestClockService_Clock_FirstClockIn(t *testing.T) {
	ctx := context.Background()
	svc, clockLogRepo, auditRepo := newTestClockService(t, user.User{
		ID:      "emp-1",
		Email:   "jane.doe@example.com",
		Role:    user.RoleEmployee,
		PINHash: hashPIN(t, "1234"),
	})

	// Act
	resp, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, timeclock.ActionClockIn, resp.Action)
	assert.Equal(t, "jane.doe@example.com", resp.UserEmail)
	assert.Equal(t, "Welcome, Jane Doe! Clock-in successful.", resp.Message)
	assert.NotEmpty(t, resp.SessionID)
	assert.Zero(t, resp.HoursWorkedThisSession)

	logs, err := clockLogRepo.FindInRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, timeclock.ActionClockIn, logs[0].Action)
	assert.Nil(t, logs[0].DurationHours)

	entries := auditRepo.byAction(audit.ActionClockInSuccess)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusSuccess, entries[0].Status)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, "emp-1", *entries[0].UserID)
}

func TestClockService_Clock_ClockOutComputesHours(t *testing.T) {
	ctx := context.Background()
	svc, clockLogRepo, auditRepo := newTestClockService(t, user.User{
		ID:      "emp-1",
		Email:   "jane.doe@example.com",
		Role:    user.RoleEmployee,
		PINHash: hashPIN(t, "1234"),
	})

	// A full workday: in at 09:00, out at 17:30.
	clockIn := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	clockOut := time.Date(2026, 8, 26, 17, 30, 0, 0, time.UTC)

	svc.now = func() time.Time { return clockIn }
	first, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})
	require.NoError(t, err)

	svc.now = func() time.Time { return clockOut }

	// Act
	resp, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, timeclock.ActionClockOut, resp.Action)
	assert.Equal(t, "Goodbye, Jane Doe! Clock-out successful.", resp.Message)
	assert.Equal(t, first.SessionID, resp.SessionID, "clock-out must reuse the clock-in session")
	assert.Equal(t, 8.5, resp.HoursWorkedThisSession)

	logs, err := clockLogRepo.FindInRange(ctx, clockIn, clockOut.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.NotNil(t, logs[1].DurationHours)
	assert.Equal(t, 8.5, *logs[1].DurationHours)

	entries := auditRepo.byAction(audit.ActionClockOutSuccess)
	require.Len(t, entries, 1)
	assert.Equal(t, "User clocked out. Hours worked: 8.50", entries[0].Details)
}

func TestClockService_Clock_DurationTruncatesToWholeMinutes(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestClockService(t, user.User{
		ID:      "emp-1",
		Email:   "jane@example.com",
		Role:    user.RoleEmployee,
		PINHash: hashPIN(t, "1234"),
	})

	clockIn := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clockIn }
	_, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})
	require.NoError(t, err)

	// 30 minutes and 59 seconds: the seconds do not count.
	svc.now = func() time.Time { return clockIn.Add(30*time.Minute + 59*time.Second) }
	resp, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, resp.HoursWorkedThisSession)
}

func TestClockService_Clock_InvalidPIN(t *testing.T) {
	ctx := context.Background()
	svc, clockLogRepo, auditRepo := newTestClockService(t, user.User{
		ID:      "emp-1",
		Email:   "jane@example.com",
		Role:    user.RoleEmployee,
		PINHash: hashPIN(t, "1234"),
	})

	// Act
	_, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "9999"})

	// Assert
	assert.ErrorIs(t, err, timeclock.ErrInvalidPIN)

	logs, err := clockLogRepo.FindInRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, logs, "a failed attempt must not create a clock log")

	entries := auditRepo.byAction(audit.ActionPinLoginFailure)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusFailure, entries[0].Status)
	assert.Nil(t, entries[0].UserID)
	assert.Equal(t, "Failed PIN login attempt. No matching user found.", entries[0].Details)
}

func TestClockService_Clock_AdminPINDoesNotMatch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestClockService(t, user.User{
		ID:      "adm-1",
		Email:   "boss@example.com",
		Role:    user.RoleAdmin,
		PINHash: hashPIN(t, "1234"),
	})

	_, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})
	assert.ErrorIs(t, err, timeclock.ErrInvalidPIN, "only EMPLOYEE users participate in PIN matching")
}

func TestClockService_Clock_ActionsAlternate(t *testing.T) {
	ctx := context.Background()
	svc, clockLogRepo, _ := newTestClockService(t, user.User{
		ID:      "emp-1",
		Email:   "jane@example.com",
		Role:    user.RoleEmployee,
		PINHash: hashPIN(t, "1234"),
	})

	base := time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		tick := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return tick }
		_, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})
		require.NoError(t, err)
	}

	logs, err := clockLogRepo.FindInRange(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 6)
	for i, log := range logs {
		if i%2 == 0 {
			assert.Equal(t, timeclock.ActionClockIn, log.Action)
		} else {
			assert.Equal(t, timeclock.ActionClockOut, log.Action)
			assert.Equal(t, logs[i-1].SessionID, log.SessionID)
		}
	}
}

func TestClockService_Clock_ConcurrentSamePIN(t *testing.T) {
	ctx := context.Background()
	svc, clockLogRepo, _ := newTestClockService(t, user.User{
		ID:      "emp-1",
		Email:   "jane@example.com",
		Role:    user.RoleEmployee,
		PINHash: hashPIN(t, "1234"),
	})

	// Two kiosks race on the same PIN. Per-user locking must resolve
	// them to one CLOCK_IN and one CLOCK_OUT, never two CLOCK_INs.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	logs, err := clockLogRepo.FindInRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 2)

	actions := map[timeclock.ClockAction]int{}
	for _, log := range logs {
		actions[log.Action]++
	}
	assert.Equal(t, 1, actions[timeclock.ActionClockIn])
	assert.Equal(t, 1, actions[timeclock.ActionClockOut])
}

func TestClockService_UserStatuses(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestClockService(t,
		user.User{ID: "emp-1", Email: "in@example.com", Role: user.RoleEmployee, PINHash: hashPIN(t, "1111")},
		user.User{ID: "emp-2", Email: "out@example.com", Role: user.RoleEmployee, PINHash: hashPIN(t, "2222")},
		user.User{ID: "emp-3", Email: "never@example.com", Role: user.RoleEmployee, PINHash: hashPIN(t, "3333")},
	)

	_, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1111"})
	require.NoError(t, err)
	_, err = svc.Clock(ctx, timeclock.PinClockRequest{PIN: "2222"})
	require.NoError(t, err)
	_, err = svc.Clock(ctx, timeclock.PinClockRequest{PIN: "2222"})
	require.NoError(t, err)

	// Act
	statuses, err := svc.UserStatuses(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	byID := map[string]string{}
	for _, s := range statuses {
		byID[s.ID] = s.Status
	}
	assert.Equal(t, "Clocked In", byID["emp-1"])
	assert.Equal(t, "Clocked Out", byID["emp-2"])
	assert.Equal(t, "Never Clocked In", byID["emp-3"])
}

func TestClockService_Purge(t *testing.T) {
	ctx := context.Background()
	svc, clockLogRepo, auditRepo := newTestClockService(t, user.User{
		ID:      "emp-1",
		Email:   "jane@example.com",
		Role:    user.RoleEmployee,
		PINHash: hashPIN(t, "1234"),
	})

	_, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})
	require.NoError(t, err)
	_, err = svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})
	require.NoError(t, err)

	// Act
	require.NoError(t, svc.Purge(ctx))

	// Assert
	logs, err := clockLogRepo.FindInRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, logs)

	// Audit history survives the purge, and the purge itself is audited.
	all, err := auditRepo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	reset := auditRepo.byAction(audit.ActionWeeklyReset)
	require.Len(t, reset, 1)
	assert.Equal(t, "Timesheet data cleared for the new week.", reset[0].Details)
}

func TestClockService_Clock_StateResetsAfterPurge(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestClockService(t, user.User{
		ID:      "emp-1",
		Email:   "jane@example.com",
		Role:    user.RoleEmployee,
		PINHash: hashPIN(t, "1234"),
	})

	first, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})
	require.NoError(t, err)
	require.NoError(t, svc.Purge(ctx))

	// With the logs gone the employee is "never clocked in" again.
	resp, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})
	require.NoError(t, err)
	assert.Equal(t, timeclock.ActionClockIn, resp.Action)
	assert.NotEqual(t, first.SessionID, resp.SessionID)
}

func TestClockService_Clock_AuditWriteFailureDiscardsClockLog(t *testing.T) {
	ctx := context.Background()
	userRepo := &memUserRepo{users: []user.User{{
		ID:      "emp-1",
		Email:   "jane@example.com",
		Role:    user.RoleEmployee,
		PINHash: hashPIN(t, "1234"),
	}}}
	clockLogRepo := &memClockLogRepo{}
	auditRepo := &memAuditRepo{createErr: errors.New("audit insert failed")}
	txm := rollbackTxManager{clockLogs: clockLogRepo, auditLog: auditRepo}
	svc := NewClockService(txm, clockLogRepo, userRepo, auditService.NewRecorder(auditRepo))

	// Act
	_, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})

	// Assert: the storage error surfaces as-is, not as a PIN rejection.
	require.Error(t, err)
	assert.NotErrorIs(t, err, timeclock.ErrInvalidPIN)

	// The transaction aborted, so neither write survives.
	logs, ferr := clockLogRepo.FindInRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, ferr)
	assert.Empty(t, logs, "a clock log must not outlive its failed audit entry")

	entries, ferr := auditRepo.FindAll(ctx)
	require.NoError(t, ferr)
	assert.Empty(t, entries)
}

func TestClockService_Clock_LogWriteFailurePropagates(t *testing.T) {
	ctx := context.Background()
	userRepo := &memUserRepo{users: []user.User{{
		ID:      "emp-1",
		Email:   "jane@example.com",
		Role:    user.RoleEmployee,
		PINHash: hashPIN(t, "1234"),
	}}}
	clockLogRepo := &memClockLogRepo{createErr: errors.New("clock_logs insert failed")}
	auditRepo := &memAuditRepo{}
	txm := rollbackTxManager{clockLogs: clockLogRepo, auditLog: auditRepo}
	svc := NewClockService(txm, clockLogRepo, userRepo, auditService.NewRecorder(auditRepo))

	// Act
	_, err := svc.Clock(ctx, timeclock.PinClockRequest{PIN: "1234"})

	// Assert
	require.Error(t, err)
	assert.NotErrorIs(t, err, timeclock.ErrInvalidPIN)

	entries, ferr := auditRepo.FindAll(ctx)
	require.NoError(t, ferr)
	assert.Empty(t, entries, "no success entry may be recorded for a failed commit")
}
