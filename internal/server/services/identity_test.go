package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/server/auth"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
	"github.com/dmitrijs2005/chatandpay/internal/server/repositories/users"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func requireKind(t *testing.T, err error, kind common.Kind) {
	t.Helper()
	require.Error(t, err)
	var e *common.Error
	require.ErrorAs(t, err, &e, "expected *common.Error, got %T: %v", err, err)
	require.Equal(t, kind, e.Kind, "unexpected kind for %v", err)
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	h := newHarness(t)
	h.expectCommit()

	u, err := h.svc.Register(context.Background(), RegisterInput{Name: "Alice", Phone: "+1555"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "+1555", u.Phone)
	assert.Equal(t, "", u.Password)
	assert.Nil(t, u.LoginHandle)
	assert.Equal(t, common.RoleUser, u.Role)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestRegister_RequiresNameAndPhone(t *testing.T) {
	cases := []RegisterInput{
		{Name: "", Phone: "+1555"},
		{Name: "Alice", Phone: ""},
		{Name: "   ", Phone: "+1555"},
		{Name: "Alice", Phone: " \t"},
	}
	for _, in := range cases {
		h := newHarness(t)
		_, err := h.svc.Register(context.Background(), in)
		requireKind(t, err, common.KindValidation)
		assert.Empty(t, h.users.byID)
		require.NoError(t, h.mock.ExpectationsWereMet())
	}
}

func TestRegister_DuplicatePhone(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Bob", Phone: "+1555"})
	h.expectRollback()

	_, err := h.svc.Register(context.Background(), RegisterInput{Name: "Alice", Phone: "+1555"})
	requireKind(t, err, common.KindValidation)
	assert.Len(t, h.users.byID, 1)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestRegister_ConcurrentInsertLosesRace(t *testing.T) {
	h := newHarness(t)
	h.users.createErr = &pgconn.PgError{Code: "23505", ConstraintName: users.ConstraintPhone}
	h.expectRollback()

	_, err := h.svc.Register(context.Background(), RegisterInput{Name: "Alice", Phone: "+1555"})
	requireKind(t, err, common.KindValidation)
}

func TestRegister_StoreFailure(t *testing.T) {
	h := newHarness(t)
	h.users.createErr = errors.New("db error: connection reset")
	h.expectRollback()

	_, err := h.svc.Register(context.Background(), RegisterInput{Name: "Alice", Phone: "+1555"})
	requireKind(t, err, common.KindInternal)
}

func TestRegister_BeginFailure(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	_, err := h.svc.Register(context.Background(), RegisterInput{Name: "Alice", Phone: "+1555"})
	requireKind(t, err, common.KindInternal)
}

// --- Login ---

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Alice", Phone: "+1555", LoginHandle: strPtr("alice"), Password: "hashed:pw1"})

	u, err := h.svc.Login(context.Background(), LoginInput{LoginHandle: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = h.svc.Login(context.Background(), LoginInput{LoginHandle: "alice", Password: "nope"})
	requireKind(t, err, common.KindValidation)

	_, err = h.svc.Login(context.Background(), LoginInput{LoginHandle: "bob", Password: "pw1"})
	requireKind(t, err, common.KindNotFound)

	_, err = h.svc.Login(context.Background(), LoginInput{LoginHandle: "", Password: ""})
	requireKind(t, err, common.KindNotFound)
}

func TestLogin_EmptyPasswordNeverMatchesPhoneOnlyAccount(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Alice", Phone: "+1555", LoginHandle: strPtr("alice")})

	_, err := h.svc.Login(context.Background(), LoginInput{LoginHandle: "alice", Password: ""})
	requireKind(t, err, common.KindValidation)
}

func TestLogin_StoreFailure(t *testing.T) {
	h := newHarness(t)
	h.users.findErr = errors.New("db error: timeout")

	_, err := h.svc.Login(context.Background(), LoginInput{LoginHandle: "alice", Password: "pw"})
	requireKind(t, err, common.KindInternal)
}

// --- StartPhoneAuth / ConfirmPhoneAuth ---

func TestStartPhoneAuth_UnknownPhone(t *testing.T) {
	h := newHarness(t)
	h.expectRollback()

	_, err := h.svc.StartPhoneAuth(context.Background(), "+1000")
	requireKind(t, err, common.KindNotFound)
	assert.Empty(t, h.notifier.challenges)
	assert.Empty(t, h.otp.byPhone)
}

func TestStartPhoneAuth_StoresAndSendsCode(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.codes = []string{"123456"}
	h.expectCommit()

	u, err := h.svc.StartPhoneAuth(context.Background(), "+1555")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, u.ID)

	c := h.otp.byPhone["+1555"]
	assert.Equal(t, "123456", c.Code)
	assert.Equal(t, baseTime.Add(5*time.Minute), c.ExpiresAt)
	assert.Zero(t, c.Attempts)
	assert.Nil(t, c.ConsumedAt)
	assert.Equal(t, []string{"+1555:123456"}, h.notifier.challenges)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestStartPhoneAuth_NotifierFailureRollsBack(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.codes = []string{"123456"}
	h.notifier.challengeErr = errors.New("sms gateway down")
	h.expectRollback()

	_, err := h.svc.StartPhoneAuth(context.Background(), "+1555")
	requireKind(t, err, common.KindInternal)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestStartPhoneAuth_UpsertFailure(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.codes = []string{"123456"}
	h.otp.upsertErr = errors.New("db error")
	h.expectRollback()

	_, err := h.svc.StartPhoneAuth(context.Background(), "+1555")
	requireKind(t, err, common.KindInternal)
	assert.Empty(t, h.notifier.challenges)
}

func TestConfirmPhoneAuth_CorrectCode(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.codes = []string{"123456"}
	h.expectCommit()
	h.expectCommit()

	_, err := h.svc.StartPhoneAuth(context.Background(), "+1555")
	require.NoError(t, err)

	u, err := h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "123456")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, u.ID)
	assert.Equal(t, []string{"+1555"}, h.notifier.confirmations)

	c := h.otp.byPhone["+1555"]
	require.NotNil(t, c.ConsumedAt)
	assert.Equal(t, baseTime, *c.ConsumedAt)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestConfirmPhoneAuth_WrongCodeThenRetry(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.codes = []string{"123456"}
	h.expectCommit()
	h.expectCommit()
	h.expectCommit()

	_, err := h.svc.StartPhoneAuth(context.Background(), "+1555")
	require.NoError(t, err)

	_, err = h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "000000")
	requireKind(t, err, common.KindValidation)
	assert.Equal(t, 1, h.otp.byPhone["+1555"].Attempts)
	assert.Nil(t, h.otp.byPhone["+1555"].ConsumedAt)
	assert.Empty(t, h.notifier.confirmations)

	_, err = h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "123456")
	require.NoError(t, err)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestConfirmPhoneAuth_ClosesAfterMaxAttempts(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.codes = []string{"123456"}
	h.expectCommit()

	_, err := h.svc.StartPhoneAuth(context.Background(), "+1555")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		h.expectCommit()
		_, err = h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "999999")
		requireKind(t, err, common.KindValidation)
	}
	require.NotNil(t, h.otp.byPhone["+1555"].ConsumedAt)

	h.expectRollback()
	_, err = h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "123456")
	requireKind(t, err, common.KindNotFound)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestConfirmPhoneAuth_SingleUse(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.codes = []string{"123456"}
	h.expectCommit()
	h.expectCommit()
	h.expectRollback()

	_, err := h.svc.StartPhoneAuth(context.Background(), "+1555")
	require.NoError(t, err)
	_, err = h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "123456")
	require.NoError(t, err)

	_, err = h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "123456")
	requireKind(t, err, common.KindNotFound)
}

func TestConfirmPhoneAuth_Expired(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.codes = []string{"123456"}
	h.expectCommit()
	h.expectRollback()

	_, err := h.svc.StartPhoneAuth(context.Background(), "+1555")
	require.NoError(t, err)

	h.clock = baseTime.Add(5 * time.Minute)
	_, err = h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "123456")
	requireKind(t, err, common.KindNotFound)
}

func TestConfirmPhoneAuth_NoChallenge(t *testing.T) {
	h := newHarness(t)
	h.expectRollback()

	_, err := h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "123456")
	requireKind(t, err, common.KindNotFound)
}

func TestConfirmPhoneAuth_ResendReplacesCode(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.codes = []string{"111111", "222222"}
	for i := 0; i < 4; i++ {
		h.expectCommit()
	}

	_, err := h.svc.StartPhoneAuth(context.Background(), "+1555")
	require.NoError(t, err)
	_, err = h.svc.StartPhoneAuth(context.Background(), "+1555")
	require.NoError(t, err)

	_, err = h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "111111")
	requireKind(t, err, common.KindValidation)

	_, err = h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "222222")
	require.NoError(t, err)
}

func TestConfirmPhoneAuth_UserVanished(t *testing.T) {
	h := newHarness(t)
	h.otp.byPhone["+1555"] = models.OtpChallenge{Phone: "+1555", Code: "123456", ExpiresAt: baseTime.Add(time.Minute)}
	h.expectRollback()

	_, err := h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "123456")
	requireKind(t, err, common.KindNotFound)
	assert.Empty(t, h.notifier.confirmations)
}

func TestConfirmPhoneAuth_ConfirmationFailure(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.otp.byPhone["+1555"] = models.OtpChallenge{Phone: "+1555", Code: "123456", ExpiresAt: baseTime.Add(time.Minute)}
	h.notifier.confirmErr = errors.New("sms gateway down")
	h.expectRollback()

	_, err := h.svc.ConfirmPhoneAuth(context.Background(), "+1555", "123456")
	requireKind(t, err, common.KindInternal)
}

// --- UpdateProfile ---

func TestUpdateProfile_UnknownUser(t *testing.T) {
	h := newHarness(t)
	h.expectRollback()

	_, err := h.svc.UpdateProfile(context.Background(), 99, UpdateProfileInput{Phone: "+1555"})
	requireKind(t, err, common.KindNotFound)
}

func TestUpdateProfile_HandleTakenByOther(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Bob", Phone: "+1000", LoginHandle: strPtr("alice")})
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.expectRollback()

	_, err := h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{LoginHandle: strPtr("alice"), Phone: "+1555"})
	requireKind(t, err, common.KindValidation)
	assert.Nil(t, h.users.byID[alice.ID].LoginHandle)
}

func TestUpdateProfile_PhoneTakenByOther(t *testing.T) {
	h := newHarness(t)
	h.seedUser(models.User{Name: "Bob", Phone: "+1000"})
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.expectRollback()

	_, err := h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Phone: "+1000"})
	requireKind(t, err, common.KindValidation)
	assert.Equal(t, "+1555", h.users.byID[alice.ID].Phone)
}

func TestUpdateProfile_OwnValuesAreNotConflicts(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555", LoginHandle: strPtr("alice")})
	h.expectCommit()

	_, err := h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{LoginHandle: strPtr("alice"), Phone: "+1555"})
	require.NoError(t, err)
}

func TestUpdateProfile_FieldRules(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555", LoginHandle: strPtr("alice"), Password: "hashed:old"})

	// nil handle and nil password keep the stored values, phone is replaced
	h.expectCommit()
	u, err := h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Phone: "+1666"})
	require.NoError(t, err)
	assert.Equal(t, "alice", *u.LoginHandle)
	assert.Equal(t, "hashed:old", u.Password)
	assert.Equal(t, "+1666", u.Phone)

	// empty password keeps the digest
	h.expectCommit()
	u, err = h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Password: strPtr(""), Phone: "+1666"})
	require.NoError(t, err)
	assert.Equal(t, "hashed:old", u.Password)

	// non-empty password is re-hashed, handle replaced
	h.expectCommit()
	u, err = h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{LoginHandle: strPtr("al"), Password: strPtr("new"), Phone: "+1666"})
	require.NoError(t, err)
	assert.Equal(t, "hashed:new", u.Password)
	assert.Equal(t, "al", *u.LoginHandle)

	stored := h.users.byID[alice.ID]
	assert.Equal(t, "hashed:new", stored.Password)
	assert.Equal(t, "+1666", stored.Phone)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestUpdateProfile_UniqueViolationFromConcurrentWriter(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.users.updateErr = &pgconn.PgError{Code: "23505", ConstraintName: users.ConstraintLoginHandle}
	h.expectRollback()

	_, err := h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{LoginHandle: strPtr("alice"), Phone: "+1555"})
	requireKind(t, err, common.KindValidation)
}

func TestUpdateProfile_HasherFailure(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.svc.hasher = prefixHasher{err: errors.New("entropy")}
	h.expectRollback()

	_, err := h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Password: strPtr("pw"), Phone: "+1555"})
	requireKind(t, err, common.KindInternal)
}

func TestUpdateProfile_PasswordTooLong(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555", Password: "hashed:old"})
	h.svc.hasher = auth.NewBcryptHasher(bcrypt.MinCost)
	h.expectRollback()

	_, err := h.svc.UpdateProfile(context.Background(), alice.ID,
		UpdateProfileInput{Password: strPtr(strings.Repeat("x", 80)), Phone: "+1555"})
	requireKind(t, err, common.KindValidation)
	assert.Equal(t, "hashed:old", h.users.byID[alice.ID].Password)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestUpdateProfile_PhoneChangeDropsChallenges(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1000"})
	h.otp.byPhone["+1000"] = models.OtpChallenge{Phone: "+1000", Code: "111111", ExpiresAt: baseTime.Add(time.Minute)}
	h.otp.byPhone["+3000"] = models.OtpChallenge{Phone: "+3000", Code: "333333", ExpiresAt: baseTime.Add(time.Minute)}

	// same phone keeps the pending challenge
	h.expectCommit()
	_, err := h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Phone: "+1000"})
	require.NoError(t, err)
	assert.Contains(t, h.otp.byPhone, "+1000")

	h.expectCommit()
	_, err = h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Phone: "+2000"})
	require.NoError(t, err)
	assert.NotContains(t, h.otp.byPhone, "+1000")
	assert.Contains(t, h.otp.byPhone, "+3000")
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestUpdateProfile_ChallengeCleanupFailure(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1000"})
	h.otp.deleteErr = errors.New("db error")
	h.expectRollback()

	_, err := h.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Phone: "+2000"})
	requireKind(t, err, common.KindInternal)
	assert.Equal(t, "+1000", h.users.byID[alice.ID].Phone)
}

func TestRegister_DropsChallengeOfPreviousOwner(t *testing.T) {
	h := newHarness(t)
	h.otp.byPhone["+1000"] = models.OtpChallenge{Phone: "+1000", Code: "111111", ExpiresAt: baseTime.Add(time.Minute)}
	h.expectCommit()

	_, err := h.svc.Register(context.Background(), RegisterInput{Name: "Bob", Phone: "+1000"})
	require.NoError(t, err)
	assert.Empty(t, h.otp.byPhone)
}

// A code sent to a phone must never sign in whoever owns that phone later.
func TestScenario_ReassignedPhoneDoesNotInheritCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.expectCommit()
	a, err := h.svc.Register(ctx, RegisterInput{Name: "A", Phone: "+1000"})
	require.NoError(t, err)

	h.codes = []string{"111111"}
	h.expectCommit()
	_, err = h.svc.StartPhoneAuth(ctx, "+1000")
	require.NoError(t, err)

	h.expectCommit()
	_, err = h.svc.UpdateProfile(ctx, a.ID, UpdateProfileInput{Phone: "+2000"})
	require.NoError(t, err)

	h.expectCommit()
	b, err := h.svc.Register(ctx, RegisterInput{Name: "B", Phone: "+1000"})
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	h.expectRollback()
	got, err := h.svc.ConfirmPhoneAuth(ctx, "+1000", "111111")
	requireKind(t, err, common.KindNotFound)
	assert.Nil(t, got)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

// --- DeleteUser / GetUser ---

func TestDeleteUser(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.otp.byPhone["+1555"] = models.OtpChallenge{Phone: "+1555", Code: "123456", ExpiresAt: baseTime.Add(time.Minute)}
	h.expectCommit()

	require.NoError(t, h.svc.DeleteUser(context.Background(), alice.ID))

	_, err := h.svc.GetUser(context.Background(), alice.ID)
	requireKind(t, err, common.KindNotFound)
	assert.Empty(t, h.otp.byPhone)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestDeleteUser_Unknown(t *testing.T) {
	h := newHarness(t)
	h.expectRollback()

	requireKind(t, h.svc.DeleteUser(context.Background(), 42), common.KindNotFound)
}

func TestDeleteUser_StorageFailure(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.users.deleteErr = errors.New("db error: fk violation")
	h.expectRollback()

	requireKind(t, h.svc.DeleteUser(context.Background(), alice.ID), common.KindInternal)
	assert.Len(t, h.users.byID, 1)
}

func TestDeleteUser_OtpCleanupFailure(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555"})
	h.otp.deleteErr = errors.New("db error")
	h.expectRollback()

	requireKind(t, h.svc.DeleteUser(context.Background(), alice.ID), common.KindInternal)
}

func TestGetUser(t *testing.T) {
	h := newHarness(t)
	alice := h.seedUser(models.User{Name: "Alice", Phone: "+1555"})

	u, err := h.svc.GetUser(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	h.users.findErr = errors.New("db error")
	_, err = h.svc.GetUser(context.Background(), alice.ID)
	requireKind(t, err, common.KindInternal)
}

// --- scenario ---

func TestScenario_RegisterUpdateLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.expectCommit()
	u, err := h.svc.Register(ctx, RegisterInput{Name: "Alice", Phone: "+1555"})
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, "", u.Password)

	_, err = h.svc.Login(ctx, LoginInput{LoginHandle: "alice", Password: "pw1"})
	requireKind(t, err, common.KindNotFound)

	h.expectCommit()
	_, err = h.svc.UpdateProfile(ctx, 1, UpdateProfileInput{LoginHandle: strPtr("alice"), Password: strPtr("pw1"), Phone: "+1555"})
	require.NoError(t, err)

	got, err := h.svc.Login(ctx, LoginInput{LoginHandle: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	require.NoError(t, h.mock.ExpectationsWereMet())
}
