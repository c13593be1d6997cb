package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/telegram"
)

// Register wires every command of the bot and the confirmation callback
// into r.
func Register(r *telegram.Router, apps *Apps, prompter *telegram.Prompter, logger *logrus.Logger) {
	r.RegisterCommand("start", NewStartHandler(apps, logger))
	r.RegisterCommand("help", NewHelpHandler(logger))

	r.RegisterCommand("login", NewLoginHandler(apps, logger))
	r.RegisterCommand("signup", NewSignupHandler(apps, logger))
	r.RegisterCommand("logout", NewLogoutHandler(apps, logger))

	r.RegisterCommand("dashboard", NewDashboardHandler(apps, logger))
	r.RegisterCommand("open", NewOpenHandler(apps, logger))
	r.RegisterCommand("go", NewGoHandler(apps, logger))
	r.RegisterCommand("back", NewBackHandler(apps, logger))

	r.RegisterCommand("add", NewAddHandler(apps, logger))
	r.RegisterCommand("idea", NewIdeaHandler(apps, logger))

	r.RegisterCommand("edit", NewEditHandler(apps, logger))
	r.RegisterCommand("set", NewSetHandler(apps, logger))
	r.RegisterCommand("save", NewSaveHandler(apps, logger))
	r.RegisterCommand("cancel", NewCancelHandler(apps, logger))
	r.RegisterCommand("delete", NewDeleteHandler(apps, logger))

	if prompter != nil {
		r.RegisterCallback(telegram.ConfirmPrefix, prompter)
	}
}
