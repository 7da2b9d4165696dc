// Package services contains server-side business logic. IdentityService
// owns registration, password login, phone OTP authentication and profile
// changes. Every failure it returns is a *common.Error.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/dbx"
	"github.com/dmitrijs2005/chatandpay/internal/logging"
	"github.com/dmitrijs2005/chatandpay/internal/server/config"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
	"github.com/dmitrijs2005/chatandpay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/chatandpay/internal/server/repositories/users"
)

const otpCodeDigits = 6

// User-facing messages.
const (
	msgNamePhoneRequired = "name and phone are required"
	msgPhoneTaken        = "phone number is already registered"
	msgHandleTaken       = "login handle is already taken"
	msgNoUserForHandle   = "no user is registered with this login handle"
	msgNoUserForPhone    = "no user is registered with this phone number"
	msgPasswordMismatch  = "password does not match"
	msgNoChallenge       = "no verification was requested for this phone number"
	msgCodeMismatch      = "verification code does not match"
	msgUnknownUser       = "user does not exist"
	msgPasswordTooLong   = "password is too long"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Name  string
	Phone string
}

// LoginInput carries password credentials.
type LoginInput struct {
	LoginHandle string
	Password    string
}

// UpdateProfileInput describes a profile change. Nil LoginHandle keeps the
// current handle and a nil or empty Password keeps the current digest.
// Phone is always written.
type UpdateProfileInput struct {
	LoginHandle *string
	Password    *string
	Phone       string
}

// IdentityService implements the account operations on top of the user and
// OTP stores.
type IdentityService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	hasher         Hasher
	notifier       Notifier
	log            logging.Logger
	otpValidity    time.Duration
	otpMaxAttempts int

	now          func() time.Time
	generateCode func() (string, error)
}

// NewIdentityService wires the service with its collaborators and OTP policy from cfg.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, hasher Hasher, notifier Notifier,
	cfg *config.Config, log logging.Logger) *IdentityService {
	return &IdentityService{
		db:             db,
		repomanager:    m,
		hasher:         hasher,
		notifier:       notifier,
		log:            log.With("module", "identity"),
		otpValidity:    cfg.OTPValidityDuration,
		otpMaxAttempts: cfg.OTPMaxAttempts,
		now:            time.Now,
		generateCode:   func() (string, error) { return common.GenerateNumericCode(otpCodeDigits) },
	}
}

// Register creates a user with an empty password, no login handle and the
// USER role. The phone must not belong to anyone else.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || phone == "" {
		return nil, common.Validation(msgNamePhoneRequired)
	}

	var created *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.FindByPhone(ctx, phone)
		switch {
		case err == nil:
			return common.Validation(msgPhoneTaken)
		case !errors.Is(err, common.ErrorNotFound):
			return common.Internal(err)
		}

		// a challenge left over from a previous owner of the phone must not
		// authenticate the new account
		if err := s.repomanager.Otp(tx).DeleteByPhone(ctx, phone); err != nil {
			return common.Internal(err)
		}

		created, err = repo.Create(ctx, &models.User{Name: name, Phone: phone, Role: common.RoleUser})
		if err != nil {
			if dbx.IsUniqueViolation(err, users.ConstraintPhone) {
				return common.Validation(msgPhoneTaken)
			}
			return common.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

// Login checks password credentials. It has no side effects.
func (s *IdentityService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if in.LoginHandle == "" {
		return nil, common.NotFound(msgNoUserForHandle)
	}

	user, err := s.repomanager.Users(s.db).FindByLoginHandle(ctx, in.LoginHandle)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgNoUserForHandle)
		}
		return nil, common.Internal(err)
	}

	if !s.hasher.Verify(in.Password, user.Password) {
		return nil, common.Validation(msgPasswordMismatch)
	}
	return user, nil
}

// StartPhoneAuth issues a fresh OTP challenge for a registered phone and
// hands the code to the notifier. A previous challenge for the phone is
// replaced. If delivery fails nothing is stored.
func (s *IdentityService) StartPhoneAuth(ctx context.Context, phone string) (*models.User, error) {
	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).FindByPhone(ctx, phone)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(msgNoUserForPhone)
			}
			return common.Internal(err)
		}

		code, err := s.generateCode()
		if err != nil {
			return common.Internal(err)
		}

		challenge := &models.OtpChallenge{
			Phone:     phone,
			Code:      code,
			ExpiresAt: s.now().Add(s.otpValidity),
		}
		if err := s.repomanager.Otp(tx).Upsert(ctx, challenge); err != nil {
			return common.Internal(err)
		}

		if err := s.notifier.SendChallenge(ctx, phone, code); err != nil {
			return common.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.log.Info(ctx, "otp challenge issued", "user_id", user.ID)
	return user, nil
}

// ConfirmPhoneAuth checks code against the open challenge for phone.
//
// A wrong code counts as an attempt and leaves the challenge open until the
// attempt limit, after which it is closed. A closed or expired challenge is
// reported the same way as a missing one. On success the challenge is
// closed and the phone's user is returned.
func (s *IdentityService) ConfirmPhoneAuth(ctx context.Context, phone, code string) (*models.User, error) {
	var (
		user     *models.User
		mismatch bool
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		otpRepo := s.repomanager.Otp(tx)
		now := s.now()

		challenge, err := otpRepo.FindByPhoneForUpdate(ctx, phone)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(msgNoChallenge)
			}
			return common.Internal(err)
		}
		if !challenge.Open(now) {
			return common.NotFound(msgNoChallenge)
		}

		if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
			attempts, err := otpRepo.IncrementAttempts(ctx, phone)
			if err != nil {
				return common.Internal(err)
			}
			if attempts >= s.otpMaxAttempts {
				if err := otpRepo.Close(ctx, phone, now); err != nil {
					return common.Internal(err)
				}
			}
			// commit the attempt, report the mismatch after
			mismatch = true
			return nil
		}

		if err := otpRepo.Close(ctx, phone, now); err != nil {
			return common.Internal(err)
		}

		user, err = s.repomanager.Users(tx).FindByPhone(ctx, phone)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(msgNoUserForPhone)
			}
			return common.Internal(err)
		}

		if err := s.notifier.SendConfirmation(ctx, phone); err != nil {
			return common.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if mismatch {
		s.log.Warn(ctx, "otp code mismatch")
		return nil, common.Validation(msgCodeMismatch)
	}

	s.log.Info(ctx, "phone confirmed", "user_id", user.ID)
	return user, nil
}

// UpdateProfile changes the login handle, password and phone of user id.
func (s *IdentityService) UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (*models.User, error) {
	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		var err error
		user, err = repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(msgUnknownUser)
			}
			return common.Internal(err)
		}

		if in.LoginHandle != nil {
			taken, err := repo.ExistsByLoginHandleExcludingID(ctx, *in.LoginHandle, id)
			if err != nil {
				return common.Internal(err)
			}
			if taken {
				return common.Validation(msgHandleTaken)
			}
		}

		taken, err := repo.ExistsByPhoneExcludingID(ctx, in.Phone, id)
		if err != nil {
			return common.Internal(err)
		}
		if taken {
			return common.Validation(msgPhoneTaken)
		}

		if in.LoginHandle != nil {
			handle := *in.LoginHandle
			user.LoginHandle = &handle
		}
		if in.Password != nil && *in.Password != "" {
			digest, err := s.hasher.Hash(*in.Password)
			if err != nil {
				if errors.Is(err, common.ErrPasswordTooLong) {
					return common.Validation(msgPasswordTooLong)
				}
				return common.Internal(err)
			}
			user.Password = digest
		}
		oldPhone := user.Phone
		user.Phone = in.Phone

		// challenges are bound to a phone, so they die when the phone changes hands
		if oldPhone != in.Phone {
			otpRepo := s.repomanager.Otp(tx)
			for _, phone := range []string{oldPhone, in.Phone} {
				if err := otpRepo.DeleteByPhone(ctx, phone); err != nil {
					return common.Internal(err)
				}
			}
		}

		if err := repo.Update(ctx, user); err != nil {
			switch {
			case dbx.IsUniqueViolation(err, users.ConstraintLoginHandle):
				return common.Validation(msgHandleTaken)
			case dbx.IsUniqueViolation(err, users.ConstraintPhone):
				return common.Validation(msgPhoneTaken)
			case errors.Is(err, common.ErrorNotFound):
				return common.NotFound(msgUnknownUser)
			}
			return common.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.log.Info(ctx, "profile updated", "user_id", id)
	return user, nil
}

// DeleteUser removes user id together with any pending OTP challenge for
// its phone.
func (s *IdentityService) DeleteUser(ctx context.Context, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(msgUnknownUser)
			}
			return common.Internal(err)
		}

		if err := s.repomanager.Otp(tx).DeleteByPhone(ctx, user.Phone); err != nil {
			return common.Internal(err)
		}

		if err := repo.Delete(ctx, id); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(msgUnknownUser)
			}
			return common.Internal(err)
		}
		return nil
	})
	if err != nil {
		return classify(err)
	}

	s.log.Info(ctx, "user deleted", "user_id", id)
	return nil
}

// GetUser returns user id.
func (s *IdentityService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgUnknownUser)
		}
		return nil, common.Internal(err)
	}
	return user, nil
}

// classify leaves *common.Error values alone and turns anything else
// (begin and commit failures) into an internal error.
func classify(err error) error {
	var e *common.Error
	if errors.As(err, &e) {
		return err
	}
	return common.Internal(err)
}
