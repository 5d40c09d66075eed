package controllers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/constants"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database"
	"github.com/ManuelReschke/BaanBox/internal/pkg/env"
	"github.com/ManuelReschke/BaanBox/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/BaanBox/internal/pkg/jobqueue"
	"github.com/ManuelReschke/BaanBox/internal/pkg/mail"
	"github.com/ManuelReschke/BaanBox/internal/pkg/oauth"
	"github.com/ManuelReschke/BaanBox/internal/pkg/session"
	"github.com/ManuelReschke/BaanBox/internal/pkg/viewmodel"
)

// loginFailed never says whether the email exists.
const loginFailed = "Email or password is wrong, or the account is not activated yet."

type AuthController struct {
	repos *repository.Repositories
	now   func() time.Time
}

func NewAuthController(repos *repository.Repositories) *AuthController {
	return &AuthController{repos: repos, now: time.Now}
}

func (ac *AuthController) authView(c *fiber.Ctx) viewmodel.Auth {
	return viewmodel.Auth{
		Next:            safeNext(c.Query("next", c.FormValue("next")), ""),
		Email:           strings.TrimSpace(c.FormValue("email")),
		Name:            strings.TrimSpace(c.FormValue("username")),
		HCaptchaSiteKey: hcaptcha.SiteKey(),
		Providers:       oauth.Providers,
	}
}

func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	if isLoggedIn(c) {
		return c.Redirect(constants.RouteMenu, fiber.StatusSeeOther)
	}
	if c.Method() != fiber.MethodPost {
		return render(c, ac.repos, "login", " | Log in", ac.authView(c))
	}

	next := safeNext(c.FormValue("next"), constants.RouteMenu)
	back := constants.RouteLogin
	if next != constants.RouteMenu {
		back += "?next=" + url.QueryEscape(next)
	}

	user, err := ac.repos.User.GetByEmail(strings.ToLower(strings.TrimSpace(c.FormValue("email"))))
	if err != nil || !models.CheckPasswordHash(c.FormValue("password"), user.Password) {
		log.Infof("[Auth] failed login from %s", GetClientIP(c))
		return redirectWithError(c, back, loginFailed)
	}
	if user.Status != models.STATUS_ACTIVE {
		return redirectWithError(c, back, loginFailed)
	}

	if err := ac.startSession(c, user); err != nil {
		return serverError("Auth", err)
	}
	return redirectWithSuccess(c, next, "Welcome back, "+user.Name+"!")
}

// startSession marks the existing session as logged in. The session id is
// kept so the cart and a checkout in progress survive the login.
func (ac *AuthController) startSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.Name)
	sess.Set(USER_IS_ADMIN, user.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		return err
	}

	if err := ac.repos.User.TouchLastLogin(user.ID, ac.now()); err != nil {
		log.Warnf("[Auth] last login for user %d: %v", user.ID, err)
	}
	return nil
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return redirectWithError(c, constants.RouteLogin, "You are logged out.")
	}
	if err := sess.Destroy(); err != nil {
		return serverError("Auth", err)
	}
	c.Locals(FROM_PROTECTED, false)
	return redirectWithSuccess(c, constants.RouteLogin, "Bye! See you at the next meal.")
}

type RegisterInput struct {
	Username string `form:"username" validate:"required,min=3,max=150"`
	Email    string `form:"email" validate:"required,email,max=200"`
	Password string `form:"password" validate:"required,min=6"`
	Confirm  string `form:"password_confirm" validate:"eqfield=Password"`
}

func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	if isLoggedIn(c) {
		return c.Redirect(constants.RouteMenu, fiber.StatusSeeOther)
	}
	if c.Method() != fiber.MethodPost {
		return render(c, ac.repos, "register", " | Sign up", ac.authView(c))
	}

	if hcaptcha.Enabled() {
		ok, err := hcaptcha.Verify(c.FormValue("h-captcha-response"))
		if err != nil || !ok {
			msg := "Captcha validation failed. Please try again."
			if err != nil {
				log.Warnf("[Auth] hCaptcha: %v", err)
				if env.IsDev() {
					msg = fmt.Sprintf("Captcha validation failed: %v", err)
				}
			}
			return redirectWithError(c, constants.RouteRegister, msg)
		}
	}

	var in RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return redirectWithError(c, constants.RouteRegister, "The form could not be read.")
	}
	if err := validate.Struct(in); err != nil {
		return redirectWithError(c, constants.RouteRegister, "Please use a name of at least 3 characters, a valid email and matching passwords of at least 6 characters.")
	}

	user, err := models.CreateUser(in.Username, in.Email, in.Password)
	if err != nil {
		return redirectWithError(c, constants.RouteRegister, "Please check your details.")
	}
	if existing, err := ac.repos.User.GetByEmail(user.Email); err == nil && existing != nil {
		return redirectWithError(c, constants.RouteRegister, "This email is already registered.")
	}
	if err := user.GenerateActivationToken(); err != nil {
		return serverError("Auth", err)
	}
	if err := ac.repos.User.Create(user); err != nil {
		return serverError("Auth", err)
	}

	link := mail.PublicURL(constants.RouteActivate + "?token=" + url.QueryEscape(user.ActivationToken))
	if err := jobqueue.SendActivationMail(user.Email, mail.ActivationData{Name: user.Name, Link: link}); err != nil {
		log.Errorf("[Auth] activation mail to user %d: %v", user.ID, err)
	}

	jobqueue.RefreshStatistics()

	return redirectWithSuccess(c, constants.RouteLogin, "Almost done! We sent you an email with an activation link.")
}

func (ac *AuthController) HandleActivate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return redirectWithError(c, constants.RouteLogin, "This activation link is invalid.")
	}
	user, err := ac.repos.User.GetByActivationToken(token)
	if err != nil || !user.ActivationTokenValid(token, ac.now()) {
		return redirectWithError(c, constants.RouteLogin, "This activation link is invalid or has expired.")
	}

	user.Activate()
	if err := ac.repos.User.Update(user); err != nil {
		return serverError("Auth", err)
	}
	return redirectWithSuccess(c, constants.RouteLogin, "Your account is active. Enjoy your meals!")
}

// HandleOAuthCallback completes a Google or Facebook login. Accounts are
// linked by provider id first and by email second.
func (ac *AuthController) HandleOAuthCallback(c *fiber.Ctx) error {
	if !oauth.IsProvider(c.Params("provider")) {
		return fiber.ErrNotFound
	}
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Warnf("[Auth] oauth callback: %v", err)
		return redirectWithError(c, constants.RouteLogin, "The login with "+c.Params("provider")+" did not work. Please try again.")
	}

	db := database.GetDB()
	var expires *time.Time
	if !u.ExpiresAt.IsZero() {
		t := u.ExpiresAt
		expires = &t
	}

	var account models.ProviderAccount
	var user *models.User
	res := db.Where("provider = ? AND provider_user_id = ?", u.Provider, u.UserID).First(&account)
	switch {
	case res.Error == nil:
		account.AccessToken = u.AccessToken
		account.RefreshToken = u.RefreshToken
		account.ExpiresAt = expires
		if err := db.Save(&account).Error; err != nil {
			return serverError("Auth", err)
		}
		if user, err = ac.repos.User.GetByID(account.UserID); err != nil {
			return serverError("Auth", err)
		}
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		if user, err = ac.oauthUser(u.Provider, u.UserID, u.Email, firstNonEmpty(u.Name, u.NickName, u.Email, "Guest")); err != nil {
			return serverError("Auth", err)
		}
		account = models.ProviderAccount{
			UserID:         user.ID,
			Provider:       u.Provider,
			ProviderUserID: u.UserID,
			Email:          u.Email,
			AccessToken:    u.AccessToken,
			RefreshToken:   u.RefreshToken,
			ExpiresAt:      expires,
		}
		if err := db.Create(&account).Error; err != nil {
			return serverError("Auth", err)
		}
	default:
		return serverError("Auth", res.Error)
	}

	if user.Status == models.STATUS_DISABLED {
		return redirectWithError(c, constants.RouteLogin, "This account is disabled.")
	}
	if err := ac.startSession(c, user); err != nil {
		return serverError("Auth", err)
	}

	c.Set("HX-Redirect", constants.RouteMenu)
	return c.Redirect(constants.RouteMenu, fiber.StatusSeeOther)
}

// oauthUser finds the user by email or creates an active one with an unusable password.
func (ac *AuthController) oauthUser(provider, providerID, email, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if existing, err := ac.repos.User.GetByEmail(email); err == nil && existing != nil {
			if existing.Status == models.STATUS_INACTIVE {
				existing.Activate()
				if err := ac.repos.User.Update(existing); err != nil {
					return nil, err
				}
			}
			return existing, nil
		}
	} else {
		email = fmt.Sprintf("%s_%s@%s.oauth.local", provider, providerID, provider)
	}

	hash, err := models.HashPassword(fmt.Sprintf("oauth_%d", ac.now().UnixNano()))
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.ROLE_USER,
		Status:   models.STATUS_ACTIVE,
	}
	if err := ac.repos.User.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
