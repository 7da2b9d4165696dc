package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/dbx"
	"github.com/dmitrijs2005/chatandpay/internal/logging"
	"github.com/dmitrijs2005/chatandpay/internal/server/config"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
	"github.com/dmitrijs2005/chatandpay/internal/server/repositories/otp"
	"github.com/dmitrijs2005/chatandpay/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- users store ---

type memUsers struct {
	byID   map[int64]models.User
	nextID int64

	createErr error
	updateErr error
	deleteErr error
	findErr   error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]models.User{}, nextID: 1}
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	c := *u
	c.ID = m.nextID
	m.nextID++
	m.byID[c.ID] = c
	out := c
	return &out, nil
}

func (m *memUsers) find(match func(models.User) bool) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.byID {
		if match(u) {
			c := u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.ID == id })
}

func (m *memUsers) FindByLoginHandle(_ context.Context, handle string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.LoginHandle != nil && *u.LoginHandle == handle })
}

func (m *memUsers) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Phone == phone })
}

func (m *memUsers) ExistsByLoginHandleExcludingID(_ context.Context, handle string, id int64) (bool, error) {
	for _, u := range m.byID {
		if u.ID != id && u.LoginHandle != nil && *u.LoginHandle == handle {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) ExistsByPhoneExcludingID(_ context.Context, phone string, id int64) (bool, error) {
	for _, u := range m.byID {
		if u.ID != id && u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.byID[u.ID]; !ok {
		return common.ErrorNotFound
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.byID, id)
	return nil
}

// --- otp store ---

type memOtp struct {
	byPhone map[string]models.OtpChallenge

	upsertErr error
	deleteErr error
}

func newMemOtp() *memOtp {
	return &memOtp{byPhone: map[string]models.OtpChallenge{}}
}

func (m *memOtp) FindByPhoneForUpdate(_ context.Context, phone string) (*models.OtpChallenge, error) {
	c, ok := m.byPhone[phone]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (m *memOtp) Upsert(_ context.Context, c *models.OtpChallenge) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.byPhone[c.Phone] = models.OtpChallenge{Phone: c.Phone, Code: c.Code, ExpiresAt: c.ExpiresAt}
	return nil
}

func (m *memOtp) IncrementAttempts(_ context.Context, phone string) (int, error) {
	c, ok := m.byPhone[phone]
	if !ok {
		return 0, common.ErrorNotFound
	}
	c.Attempts++
	m.byPhone[phone] = c
	return c.Attempts, nil
}

func (m *memOtp) Close(_ context.Context, phone string, at time.Time) error {
	c, ok := m.byPhone[phone]
	if !ok {
		return common.ErrorNotFound
	}
	c.ConsumedAt = &at
	m.byPhone[phone] = c
	return nil
}

func (m *memOtp) DeleteByPhone(_ context.Context, phone string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.byPhone, phone)
	return nil
}

// --- repo manager ---

type fakeRepoManager struct {
	users *memUsers
	otp   *memOtp
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Otp(dbx.DBTX) otp.Repository                  { return m.otp }

// --- hasher and notifier ---

type prefixHasher struct {
	err error
}

func (h prefixHasher) Hash(plain string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plain, nil
}

func (h prefixHasher) Verify(plain, digest string) bool {
	return strings.HasPrefix(digest, "hashed:") && digest == "hashed:"+plain
}

type recordingNotifier struct {
	challenges    []string
	confirmations []string
	challengeErr  error
	confirmErr    error
}

func (n *recordingNotifier) SendChallenge(_ context.Context, phone, code string) error {
	if n.challengeErr != nil {
		return n.challengeErr
	}
	n.challenges = append(n.challenges, phone+":"+code)
	return nil
}

func (n *recordingNotifier) SendConfirmation(_ context.Context, phone string) error {
	if n.confirmErr != nil {
		return n.confirmErr
	}
	n.confirmations = append(n.confirmations, phone)
	return nil
}

// --- harness ---

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc      *IdentityService
	mock     sqlmock.Sqlmock
	users    *memUsers
	otp      *memOtp
	notifier *recordingNotifier
	clock    time.Time
	codes    []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := &harness{
		mock:     mock,
		users:    newMemUsers(),
		otp:      newMemOtp(),
		notifier: &recordingNotifier{},
		clock:    baseTime,
	}
	cfg := &config.Config{OTPValidityDuration: 5 * time.Minute, OTPMaxAttempts: 3}
	h.svc = NewIdentityService(db, &fakeRepoManager{users: h.users, otp: h.otp},
		prefixHasher{}, h.notifier, cfg, logging.Nop{})
	h.svc.now = func() time.Time { return h.clock }
	h.svc.generateCode = func() (string, error) {
		if len(h.codes) == 0 {
			return "", errors.New("no codes queued")
		}
		c := h.codes[0]
		h.codes = h.codes[1:]
		return c, nil
	}
	return h
}

func (h *harness) expectCommit() {
	h.mock.ExpectBegin()
	h.mock.ExpectCommit()
}

func (h *harness) expectRollback() {
	h.mock.ExpectBegin()
	h.mock.ExpectRollback()
}

func (h *harness) seedUser(u models.User) *models.User {
	if u.Role == "" {
		u.Role = common.RoleUser
	}
	created, _ := h.users.Create(context.Background(), &u)
	return created
}

func strPtr(s string) *string { return &s }
