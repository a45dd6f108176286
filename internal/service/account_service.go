package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"chirp/internal/auth"
	"chirp/internal/mail"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/storage"
	"chirp/internal/validation"
)

const resetTokenTTL = 15 * time.Minute

// PictureSlot selects which profile image an operation targets.
type PictureSlot int

const (
	ProfilePicture PictureSlot = iota
	PosterPicture
)

// Session is the result of a successful register or login.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Image    *storage.UploadInput
}

type UpdateProfileInput struct {
	Name     string
	Bio      string
	Location string
	Website  string
}

// AccountService owns registration, credentials and profile data.
type AccountService struct {
	users       repository.UserRepository
	relations   repository.RelationRepository
	hasher      auth.PasswordHasher
	tokens      *auth.TokenManager
	store       storage.Store
	mailer      mail.Sender
	frontendURL string
	now         func() time.Time
}

func NewAccountService(
	users repository.UserRepository,
	relations repository.RelationRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenManager,
	store storage.Store,
	mailer mail.Sender,
	frontendURL string,
) *AccountService {
	return &AccountService{
		users:       users,
		relations:   relations,
		hasher:      hasher,
		tokens:      tokens,
		store:       store,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Name == "" || in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewMissingFieldsError("Some of the fields are missing")
	}

	username := validation.NormalizeUsername(in.Username)
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:               strings.TrimSpace(in.Name),
		Username:           username,
		Email:              email,
		Password:           hashed,
		Location:           models.DefaultLocation,
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionInactive,
		VerifiedType:       models.VerifiedBlue,
	}

	if in.Image != nil {
		img := *in.Image
		img.Kind = models.ResourceImage
		media, err := s.store.Upload(ctx, img)
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = models.Image{PublicID: media.PublicID, URL: media.URL}
	}

	if err := s.users.Create(ctx, user); err != nil {
		releaseUserImages(ctx, s.store, user)
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return s.issue(user)
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, models.NewMissingFieldsError("Some of the fields are missing")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Compare(user.Password, password) {
		return nil, models.NewValidationError("Invalid email or password")
	}
	return s.issue(user)
}

func (s *AccountService) issue(user *models.User) (*Session, error) {
	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: expires}, nil
}

// Logout revokes the presented token. A nil claims value is a no-op.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke token", "error", err)
	}
	return nil
}

// Me returns the user with every relationship collection loaded.
func (s *AccountService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.relations.LoadUserCollections(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	if in.Name == "" && in.Bio == "" && in.Location == "" && in.Website == "" {
		return nil, models.NewValidationError("There is nothing to update")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		if err := validation.ValidateName(in.Name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Name = strings.TrimSpace(in.Name)
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.Location != "" {
		user.Location = in.Location
	}
	if in.Website != "" {
		user.Website = in.Website
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return models.NewMissingFieldsError("Some of the fields are missing")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(user.Password, oldPassword) {
		return models.NewForbiddenError("Invalid old password")
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *AccountService) setPassword(ctx context.Context, user *models.User, password string) error {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = hashed
	return s.users.Update(ctx, user)
}

// ForgotPassword stores a hashed single-use token and mails the raw token
// to the user in the background.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return models.NewMissingFieldsError("Please enter an email")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewUnauthorizedError("Invalid email id")
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return models.NewInternalError(err)
	}
	token := hex.EncodeToString(raw)
	expires := s.now().Add(resetTokenTTL)
	user.ResetPasswordToken = hashResetToken(token)
	user.ResetPasswordExpire = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	mail.SendAsync(ctx, s.mailer, mail.PasswordResetMessage(user.Email, s.frontendURL, token))
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	if password == "" {
		return models.NewValidationError("Please enter a new password")
	}
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}
	invalid := models.NewValidationError("Reset password link is either invalid or expired")
	if token == "" {
		return invalid
	}
	user, err := s.users.GetByResetToken(ctx, hashResetToken(token))
	if err != nil {
		return err
	}
	if user == nil || user.ResetPasswordExpire == nil || user.ResetPasswordExpire.Before(s.now()) {
		return invalid
	}

	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	return s.setPassword(ctx, user, password)
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *AccountService) UpdateEmail(ctx context.Context, userID uint, newEmail string) error {
	if newEmail == "" {
		return models.NewValidationError("Please enter a new email id to update")
	}
	newEmail = validation.NormalizeEmail(newEmail)
	if err := validation.ValidateEmail(newEmail); err != nil {
		return models.NewValidationError(err.Error())
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if newEmail == user.Email {
		return models.NewValidationError("Please enter a new email to update")
	}
	existing, err := s.users.GetByEmail(ctx, newEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewConflictError("Email is already in use by another user")
	}
	user.Email = newEmail
	return s.users.Update(ctx, user)
}

func (s *AccountService) UpdateUsername(ctx context.Context, userID uint, newUsername string) error {
	newUsername = validation.NormalizeUsername(newUsername)
	if newUsername == "" {
		return models.NewValidationError("Please enter a new username to update")
	}
	if err := validation.ValidateUsername(newUsername); err != nil {
		return models.NewValidationError(err.Error())
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if newUsername == user.Username {
		return models.NewValidationError("Please enter a new username to update")
	}
	existing, err := s.users.GetByUsername(ctx, newUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewConflictError("Username is already in use by another user")
	}
	user.Username = newUsername
	return s.users.Update(ctx, user)
}

// UpdatePicture replaces the image in slot and releases the previous one
// once the new one is saved.
func (s *AccountService) UpdatePicture(ctx context.Context, userID uint, slot PictureSlot, file *storage.UploadInput) (*models.Image, error) {
	if file == nil || len(file.Content) == 0 {
		return nil, models.NewValidationError("Please provide a picture to update")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	upload := *file
	upload.Kind = models.ResourceImage
	media, err := s.store.Upload(ctx, upload)
	if err != nil {
		return nil, err
	}

	target := pictureField(user, slot)
	previous := *target
	*target = models.Image{PublicID: media.PublicID, URL: media.URL}
	if err := s.users.Update(ctx, user); err != nil {
		releaseMedia(ctx, s.store, media.PublicID, models.ResourceImage)
		return nil, err
	}
	releaseMedia(ctx, s.store, previous.PublicID, models.ResourceImage)
	return target, nil
}

func (s *AccountService) DeletePicture(ctx context.Context, userID uint, slot PictureSlot) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	target := pictureField(user, slot)
	previous := *target
	*target = models.Image{}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	releaseMedia(ctx, s.store, previous.PublicID, models.ResourceImage)
	return nil
}

func pictureField(u *models.User, slot PictureSlot) *models.Image {
	if slot == PosterPicture {
		return &u.PosterPicture
	}
	return &u.ProfilePicture
}

// DeleteAccount removes the caller after confirming their password.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint, password string) error {
	if password == "" {
		return models.NewValidationError("Please enter your password to delete your account")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(user.Password, password) {
		return models.NewForbiddenError("Incorrect Password")
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	releaseUserImages(ctx, s.store, user)
	middleware.Logger.InfoContext(ctx, "account deleted", "user_id", user.ID)
	return nil
}

// GetUserDetails returns a public profile and counts the view.
func (s *AccountService) GetUserDetails(ctx context.Context, username string) (*models.User, error) {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.users.IncrementProfileViews(ctx, user.ID); err != nil {
		return nil, err
	}
	user.ProfileViews++
	if err := s.relations.LoadUserCollections(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) GetBasicUserDetails(ctx context.Context, username string) (*models.BasicUser, error) {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	basic := user.Basic()
	return &basic, nil
}

func (s *AccountService) findByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User not found")
	}
	return user, nil
}

func (s *AccountService) Search(ctx context.Context, keyword string, limit int) ([]models.BasicUser, error) {
	users, err := s.users.Search(ctx, strings.TrimSpace(keyword), limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.BasicUser, len(users))
	for i := range users {
		out[i] = users[i].Basic()
	}
	return out, nil
}

// ResolveSession maps a token to its claims and user record.
func (s *AccountService) ResolveSession(ctx context.Context, token string) (*auth.Claims, *models.User, error) {
	unauthenticated := models.NewUnauthorizedError("Please login to access this resource")
	if token == "" {
		return nil, nil, unauthenticated
	}
	claims, err := s.tokens.Parse(ctx, token)
	if err != nil {
		return nil, nil, unauthenticated
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, nil, unauthenticated
		}
		return nil, nil, err
	}
	return claims, user, nil
}
