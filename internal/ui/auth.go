package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rivo/tview"

	"chat-client/internal/models"
	"chat-client/internal/store"
)

var validate = validator.New()

// buildAuthPage assembles the sign-in and register forms on one page,
// toggled by the last form button.
func (a *App) buildAuthPage() {
	login := tview.NewForm()
	register := tview.NewForm()
	forms := tview.NewPages().
		AddPage("login", center(login, 50, 11), true, true).
		AddPage("register", center(register, 50, 15), true, false)

	login.
		AddInputField("Username", "", 30, nil, nil).
		AddPasswordField("Password", "", 30, '*', nil).
		AddButton("Sign in", func() {
			req := models.LoginRequest{
				Username: strings.TrimSpace(fieldText(login, 0)),
				Password: fieldText(login, 1),
			}
			if err := validate.Struct(req); err != nil {
				a.setStatus(fmt.Sprintf("[red]%s[-]", validationMessage(err)))
				return
			}
			a.setStatus("signing in...")
			go a.doLogin(req)
		}).
		AddButton("Register instead", func() {
			forms.SwitchToPage("register")
		})
	login.SetBorder(true).SetTitle(" Sign in ").SetTitleColor(ColorTitle).SetBorderColor(ColorBorder)

	register.
		AddInputField("Username", "", 30, nil, nil).
		AddInputField("Email", "", 30, nil, nil).
		AddInputField("Display name", "", 30, nil, nil).
		AddPasswordField("Password", "", 30, '*', nil).
		AddButton("Create account", func() {
			req := models.RegisterRequest{
				Username:    strings.TrimSpace(fieldText(register, 0)),
				Email:       strings.TrimSpace(fieldText(register, 1)),
				DisplayName: strings.TrimSpace(fieldText(register, 2)),
				Password:    fieldText(register, 3),
			}
			if err := validate.Struct(req); err != nil {
				a.setStatus(fmt.Sprintf("[red]%s[-]", validationMessage(err)))
				return
			}
			a.setStatus("creating account...")
			go a.doRegister(req)
		}).
		AddButton("Back to sign in", func() {
			forms.SwitchToPage("login")
		})
	register.SetBorder(true).SetTitle(" Register ").SetTitleColor(ColorTitle).SetBorderColor(ColorBorder)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(forms, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)
	a.pages.AddPage(pageAuth, layout, true, false)
}

func (a *App) doLogin(req models.LoginRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	resp, err := a.client.Login(ctx, req)
	if err != nil {
		a.setStatus(fmt.Sprintf("[red]sign in failed:[-] %v", err))
		return
	}
	a.adoptSession(resp)
}

func (a *App) doRegister(req models.RegisterRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	resp, err := a.client.Register(ctx, req)
	if err != nil {
		a.setStatus(fmt.Sprintf("[red]registration failed:[-] %v", err))
		return
	}
	a.adoptSession(resp)
}

// adoptSession persists the credentials and enters the main page.
func (a *App) adoptSession(resp models.AuthResponse) {
	sess := store.Session{User: resp.User, Token: resp.Token}
	if err := a.sessions.Set(sess); err != nil {
		a.setStatus(fmt.Sprintf("[red]could not save session:[-] %v", err))
		return
	}
	a.queue(func() { a.startSession(resp.User) })
}

func fieldText(form *tview.Form, index int) string {
	return form.GetFormItem(index).(*tview.InputField).GetText()
}

// validationMessage flattens the first field error into something a
// person can act on.
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err.Error()
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", strings.ToLower(fe.Field()))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", strings.ToLower(fe.Field()), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", strings.ToLower(fe.Field()), fe.Param())
	case "email":
		return "email address is not valid"
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and digits", strings.ToLower(fe.Field()))
	}
	return fmt.Sprintf("%s is not valid", strings.ToLower(fe.Field()))
}

// center wraps p in a flex so it floats in the middle of the screen.
func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}
