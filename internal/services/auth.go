package services

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/AnshRaj112/pinvent-backend/internal/models"
	"github.com/AnshRaj112/pinvent-backend/pkg/utils"
)

// AuthService orchestrates registration, login, profile and password flows.
type AuthService struct {
	users       UserStore
	hasher      utils.PasswordHasher
	sessions    *SessionIssuer
	resets      *ResetTokenManager
	mailer      Mailer
	frontendURL string
	log         *zap.Logger
}

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Users       UserStore
	Hasher      utils.PasswordHasher
	Sessions    *SessionIssuer
	Resets      *ResetTokenManager
	Mailer      Mailer
	FrontendURL string
	Logger      *zap.Logger
}

func NewAuthService(d AuthDeps) *AuthService {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:       d.Users,
		hasher:      d.Hasher,
		sessions:    d.Sessions,
		resets:      d.Resets,
		mailer:      d.Mailer,
		frontendURL: strings.TrimRight(d.FrontendURL, "/"),
		log:         log,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ProfileUpdate lists the fields a user may change on their profile. Empty
// values leave the stored field untouched.
type ProfileUpdate struct {
	Name  string
	Photo string
	Phone string
	Bio   string
}

// Register creates an account and returns it with a fresh session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, "", validationFailed("", "Please fill in all the required fields")
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, "", fromValidation(err)
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, "", fromValidation(err)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", duplicateEmail()
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", upstream("find user", err)
	}

	user := &models.User{Name: name, Email: email}
	user.SetPassword(in.Password)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, "", duplicateEmail()
		}
		return nil, "", upstream("create user", err)
	}

	token, err := s.sessions.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", upstream("issue session", err)
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.Hex()))
	return user, token, nil
}

// Login checks credentials and issues a session token. No token is minted
// unless the account exists and the password matches.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", validationFailed("", "Please add email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", notFound("User not found, Please signup")
		}
		return nil, "", upstream("find user", err)
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		return nil, "", upstream("verify password", err)
	}
	if !ok {
		return nil, "", invalidCredentials("Invalid email or Password")
	}

	token, err := s.sessions.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", upstream("issue session", err)
	}
	return user, token, nil
}

// LoginStatus reports whether token is a valid, unexpired session token.
func (s *AuthService) LoginStatus(token string) bool {
	if token == "" {
		return false
	}
	_, err := s.sessions.Verify(token)
	return err == nil
}

// SessionTTL is the lifetime transports should give the session cookie.
func (s *AuthService) SessionTTL() int {
	return int(s.sessions.TTL().Seconds())
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.sessions.Verify(token)
	if err != nil {
		return nil, unauthorized("Not authorized, please login")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, unauthorized("Not authorized, please login")
		}
		return nil, upstream("find user", err)
	}
	return user, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, upstream("find user", err)
	}
	return user, nil
}

// UpdateProfile applies upd. Email cannot be changed here.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	if err := utils.ValidateBio(upd.Bio); err != nil {
		return nil, fromValidation(err)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(upd.Name); v != "" {
		user.Name = v
	}
	if upd.Photo != "" {
		user.Photo = upd.Photo
	}
	if upd.Phone != "" {
		user.Phone = upd.Phone
	}
	if upd.Bio != "" {
		user.Bio = upd.Bio
	}

	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, upstream("save user", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one. A
// wrong current password leaves the stored hash untouched.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return validationFailed("password", "Please enter old and new passwords")
	}
	if err := utils.ValidatePassword(newPassword); err != nil {
		return fromValidation(err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("User not found, Please sign-up")
		}
		return upstream("find user", err)
	}

	ok, err := s.hasher.Verify(oldPassword, user.Password)
	if err != nil {
		return upstream("verify password", err)
	}
	if !ok {
		return invalidCredentials("Incorrect password please enter again")
	}

	user.SetPassword(newPassword)
	if err := s.users.Save(ctx, user); err != nil {
		return upstream("save user", err)
	}
	return nil
}

// ForgotPassword issues a reset token and mails the reset link. Unknown
// addresses fail with NotFound, which reveals whether an account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return validationFailed("email", "Please add an email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("User not found")
		}
		return upstream("find user", err)
	}

	raw, err := s.resets.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	resetURL := s.frontendURL + "/resetpassword/" + raw
	if err := s.mailer.Send(ctx, user.Email, resetEmailSubject, resetEmailBody(user.Name, resetURL)); err != nil {
		s.log.Error("Failed to send reset email", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		return oops.Code(string(KindUpstream)).
			With("operation", "send reset email").
			With("public", "Email not sent, please try again").
			Wrap(err)
	}
	return nil
}

// ResetPassword redeems a reset token, setting newPassword on its owner.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return fromValidation(err)
	}
	return s.resets.Redeem(ctx, rawToken, newPassword)
}
