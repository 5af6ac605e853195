package main

import (
	"context"

	"github.com/trezcool/klabu/core"
	"github.com/trezcool/klabu/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByUsername(ctx, uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		if usr, err = cli.usrRepo.GetUserByEmail(ctx, email); err != nil && err != user.ErrNotFound {
			return err
		}
	}

	isNew := usr.ID == 0
	usr.Username = uname
	usr.Email = email
	if isAdmin {
		usr.Roles = user.AllRoles
	} else if len(usr.Roles) == 0 {
		usr.Roles = []string{user.RoleMember}
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	active, subscribed := true, true
	if isNew {
		usr.IsActive = active
		usr.Subscribed = subscribed
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr, &active, &subscribed)
	return err
}
