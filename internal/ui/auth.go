package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"

	"github.com/yukikurage/taskpad/internal/constants"
	"github.com/yukikurage/taskpad/internal/services"
)

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
	fieldConfirm
)

type authForm struct {
	register bool
	inputs   []textinput.Model
	focus    int
	err      string
}

type loginForm struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=6"`
}

type registerForm struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"eqfield=Password"`
}

var formValidator = validator.New()

func newAuthForm() *authForm {
	labels := []string{"Username", "Email", "Password", "Confirm password"}
	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		ti := textinput.New()
		ti.Placeholder = label
		ti.CharLimit = 128
		ti.Width = 32
		if i == fieldPassword || i == fieldConfirm {
			ti.EchoMode = textinput.EchoPassword
		}
		inputs[i] = ti
	}
	f := &authForm{inputs: inputs}
	f.setFocus(fieldUsername)
	return f
}

// fields lists the inputs visible in the current form mode.
func (f *authForm) fields() []int {
	if f.register {
		return []int{fieldUsername, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldUsername, fieldPassword}
}

func (f *authForm) setFocus(field int) {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.focus = field
	f.inputs[field].Focus()
}

func (f *authForm) move(delta int) {
	fields := f.fields()
	pos := 0
	for i, field := range fields {
		if field == f.focus {
			pos = i
		}
	}
	f.setFocus(fields[wrapIndex(pos+delta, len(fields))])
}

func (f *authForm) toggleMode() {
	f.register = !f.register
	f.err = ""
	f.setFocus(fieldUsername)
}

func (f *authForm) value(field int) string {
	return f.inputs[field].Value()
}

// validate applies the form rules and returns the first violation.
func (f *authForm) validate() error {
	var err error
	if f.register {
		err = formValidator.Struct(registerForm{
			Username: strings.TrimSpace(f.value(fieldUsername)),
			Email:    strings.TrimSpace(f.value(fieldEmail)),
			Password: f.value(fieldPassword),
			Confirm:  f.value(fieldConfirm),
		})
	} else {
		err = formValidator.Struct(loginForm{
			Username: strings.TrimSpace(f.value(fieldUsername)),
			Password: f.value(fieldPassword),
		})
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Username":
		if fe.Tag() == "required" {
			return errors.New("Username is required")
		}
		return fmt.Errorf("Username must be at least %d characters", constants.MinUsernameLength)
	case "Email":
		if fe.Tag() == "required" {
			return errors.New("Email is required")
		}
		return errors.New("Please enter a valid email")
	case "Confirm":
		return errors.New("Passwords do not match")
	default:
		return fmt.Errorf("Password must be at least %d characters", constants.MinPasswordLength)
	}
}

func (f *authForm) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.err = ""
	f.setFocus(fieldUsername)
}

func (m Model) updateAuthMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.auth
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		f.move(1)
		return m, nil
	case "shift+tab", "up":
		f.move(-1)
		return m, nil
	case "ctrl+t":
		f.toggleMode()
		return m, nil
	case "enter":
		return m.submitAuth()
	default:
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		f.err = ""
		return m, cmd
	}
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	f := m.auth
	if err := f.validate(); err != nil {
		f.err = err.Error()
		return m, nil
	}

	ctx := context.Background()
	username := strings.TrimSpace(f.value(fieldUsername))
	var err error
	if f.register {
		account, regErr := m.app.Auth.Register(ctx, services.RegisterInput{
			Username: username,
			Email:    strings.TrimSpace(f.value(fieldEmail)),
			Password: f.value(fieldPassword),
		})
		if err = regErr; err == nil {
			m.app.Session.Establish(ctx, *account)
		}
	} else {
		account, loginErr := m.app.Auth.Login(ctx, services.LoginInput{
			Username: username,
			Password: f.value(fieldPassword),
		})
		if err = loginErr; err == nil {
			m.app.Session.Establish(ctx, *account)
		}
	}
	if err != nil {
		f.err = describeAuthError(err)
		return m, nil
	}

	f.reset()
	m.mode = modeList
	m.cursor = 0
	m.status = fmt.Sprintf("Welcome, %s", username)
	return m, nil
}

func describeAuthError(err error) string {
	switch {
	case errors.Is(err, services.ErrDuplicateUsername):
		return "Username already exists"
	case errors.Is(err, services.ErrDuplicateEmail):
		return "Email already registered"
	case errors.Is(err, services.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, services.ErrInvalidPassword):
		return "Invalid password"
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}

func (m Model) renderAuth() string {
	f := m.auth
	var b strings.Builder
	title := "Login"
	if f.register {
		title = "Create account"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for _, field := range f.fields() {
		b.WriteString(f.inputs[field].View())
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab move • enter submit • ctrl+t switch login/register • ctrl+c quit"))
	return b.String()
}
