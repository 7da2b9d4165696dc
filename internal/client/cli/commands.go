package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatandpay/internal/client/client"
	"github.com/dmitrijs2005/chatandpay/internal/common"
)

// ErrNotLoggedIn is returned by commands that need a session.
var ErrNotLoggedIn = errors.New("not logged in")

// Indirections over the interactive input helpers, swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getOptionalText = GetOptionalText
	getPassword     = GetPassword
)

func (a *App) printUser(u *client.User) {
	handle := "-"
	if u.LoginHandle != nil {
		handle = *u.LoginHandle
	}
	fmt.Fprintf(a.out, "id=%d name=%s handle=%s phone=%s role=%s\n", u.ID, u.Name, handle, u.Phone, u.Role)
}

// Register creates an account with a display name and phone.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.api.Register(ctx, name, phone)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Registered. Use 'phone' to sign in, then 'profile' to set a login handle and password.")
	a.printUser(user)
	return nil
}

// Login signs in with a login handle and password.
func (a *App) Login(ctx context.Context) error {
	handle, err := getSimpleText(a.reader, "Enter login handle", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.api.Login(ctx, handle, password)
	if err != nil {
		return err
	}
	a.user = user
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// PhoneLogin requests a one-time code for a phone and redeems it.
func (a *App) PhoneLogin(ctx context.Context) error {
	phone, err := getSimpleText(a.reader, "Enter phone", a.out)
	if err != nil {
		return err
	}

	sendCtx, cancel := a.withTimeout(ctx)
	err = a.api.StartPhoneAuth(sendCtx, phone)
	cancel()
	if err != nil {
		return err
	}

	code, err := getSimpleText(a.reader, "Enter the code sent to "+phone, a.out)
	if err != nil {
		return err
	}

	confirmCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.api.ConfirmPhoneAuth(confirmCtx, phone, code)
	if err != nil {
		return err
	}
	a.user = user
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// UpdateProfile edits the signed-in account. The phone is always sent;
// an empty answer keeps the current one.
func (a *App) UpdateProfile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}

	handle, err := getOptionalText(a.reader, "New login handle", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	if len(password) == 0 {
		password = nil
	}

	phone := a.user.Phone
	newPhone, err := getOptionalText(a.reader, "New phone", a.out)
	if err != nil {
		return err
	}
	if newPhone != nil {
		phone = *newPhone
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.api.UpdateProfile(ctx, a.user.ID, handle, password, phone)
	if err != nil {
		return err
	}
	a.user = user
	a.printUser(user)
	return nil
}

// Delete removes the signed-in account after confirmation.
func (a *App) Delete(ctx context.Context) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}

	answer, err := getSimpleText(a.reader, "Type 'yes' to delete your account", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.api.DeleteUser(ctx, a.user.ID); err != nil {
		return err
	}
	a.api.Logout()
	a.user = nil
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}
	a.printUser(a.user)
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "pong")
	return nil
}

func (a *App) Logout(context.Context) error {
	a.api.Logout()
	a.user = nil
	return nil
}
