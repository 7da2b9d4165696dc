package rest

import (
	"context"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
	"github.com/dmitrijs2005/chatandpay/internal/server/services"
)

type fakeIdentity struct {
	users map[int64]*models.User

	err        error
	panicOn    string
	lastUpdate services.UpdateProfileInput
	deleted    []int64
	started    []string
}

func newFakeIdentity(users ...*models.User) *fakeIdentity {
	f := &fakeIdentity{users: map[int64]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeIdentity) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	if f.panicOn == "register" {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	u := &models.User{ID: int64(len(f.users) + 1), Name: in.Name, Phone: in.Phone, Role: common.RoleUser, Password: "hashed:secret"}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeIdentity) Login(_ context.Context, in services.LoginInput) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.LoginHandle != nil && *u.LoginHandle == in.LoginHandle {
			return u, nil
		}
	}
	return nil, common.NotFound("no user is registered with this login handle")
}

func (f *fakeIdentity) StartPhoneAuth(_ context.Context, phone string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.started = append(f.started, phone)
	return &models.User{ID: 1, Phone: phone}, nil
}

func (f *fakeIdentity) ConfirmPhoneAuth(_ context.Context, phone, code string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if code != "123456" {
		return nil, common.Validation("verification code does not match")
	}
	return &models.User{ID: 1, Phone: phone, Role: common.RoleUser}, nil
}

func (f *fakeIdentity) UpdateProfile(_ context.Context, id int64, in services.UpdateProfileInput) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastUpdate = in
	u, ok := f.users[id]
	if !ok {
		return nil, common.NotFound("user does not exist")
	}
	u.Phone = in.Phone
	if in.LoginHandle != nil {
		u.LoginHandle = in.LoginHandle
	}
	return u, nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIdentity) GetUser(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.NotFound("user does not exist")
	}
	return u, nil
}
