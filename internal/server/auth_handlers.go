package server

import (
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Name     string `json:"name" form:"name"`
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// parseBody decodes a JSON, urlencoded or multipart body into out. An empty
// body leaves out untouched so the service reports the missing fields.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// Register handles POST /api/v1/register
// @Summary Register a new account
// @Description Creates an account, with an optional profile picture, and starts a session
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Param name formData string true "Display name"
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param file formData file false "Profile picture"
// @Success 201 {object} object{success=bool,message=string,token=string,user=models.User}
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	image, err := readUpload(c, "file", "image")
	if err != nil {
		return err
	}

	session, err := s.accounts.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Image:    image,
	})
	if err != nil {
		return err
	}

	s.setSessionCookie(c, session.Token, session.ExpiresAt)
	return models.Respond(c, fiber.StatusCreated, fiber.Map{
		"message": "User registered successfully",
		"token":   session.Token,
		"user":    session.User,
	})
}

// Login handles POST /api/v1/login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} object{success=bool,message=string,token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := s.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	s.setSessionCookie(c, session.Token, session.ExpiresAt)
	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"message": "Logged in successfully",
		"token":   session.Token,
		"user":    session.User,
	})
}

// Logout handles GET /api/v1/logout. A valid token is revoked; the cookie
// is cleared either way.
// @Summary Log out and revoke the session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,message=string}
// @Router /logout [get]
func (s *Server) Logout(c *fiber.Ctx) error {
	if claims, _, err := s.accounts.ResolveSession(c.UserContext(), requestToken(c)); err == nil {
		if err := s.accounts.Logout(c.UserContext(), claims); err != nil {
			return err
		}
	}
	s.clearSessionCookie(c)
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Logged out successfully"})
}

// ForgotPassword handles POST /api/v1/forgotpassword
// @Summary Email a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /forgotpassword [post]
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" form:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := s.accounts.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Reset password link sent to your email"})
}

// ResetPassword handles PATCH /api/v1/resetpassword/:token
// @Summary Reset the password with a mailed token
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body object{password=string} true "New password"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /resetpassword/{token} [patch]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password" form:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := s.accounts.ResetPassword(c.UserContext(), c.Params("token"), req.Password); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Password updated successfully"})
}

// GetMyProfile handles GET /api/v1/me
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,user=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.accounts.Me(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"user": user})
}

// UpdateProfile handles PATCH /api/v1/updateprofile
// @Summary Update name, bio, location or website
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,bio=string,location=string,website=string} true "Profile fields"
// @Success 200 {object} object{success=bool,message=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /updateprofile [patch]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name" form:"name"`
		Bio      string `json:"bio" form:"bio"`
		Location string `json:"location" form:"location"`
		Website  string `json:"website" form:"website"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := s.accounts.UpdateProfile(c.UserContext(), currentUser(c).ID, service.UpdateProfileInput{
		Name:     req.Name,
		Bio:      req.Bio,
		Location: req.Location,
		Website:  req.Website,
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// UpdatePassword handles PATCH /api/v1/updatepassword
// @Summary Change the password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{oldPassword=string,newPassword=string} true "Passwords"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /updatepassword [patch]
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	var req struct {
		OldPassword string `json:"oldPassword" form:"oldPassword"`
		NewPassword string `json:"newPassword" form:"newPassword"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := s.accounts.UpdatePassword(c.UserContext(), currentUser(c).ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Password updated successfully"})
}

// UpdateProfilePic handles PATCH /api/v1/updateprofilepic
// @Summary Replace the profile picture
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 200 {object} object{success=bool,message=string,image=models.Image}
// @Failure 400 {object} models.ErrorResponse
// @Router /updateprofilepic [patch]
func (s *Server) UpdateProfilePic(c *fiber.Ctx) error {
	return s.updatePicture(c, service.ProfilePicture, "Profile picture updated successfully")
}

// UpdateProfilePoster handles PATCH /api/v1/updateprofileposter
// @Summary Replace the profile banner
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 200 {object} object{success=bool,message=string,image=models.Image}
// @Failure 400 {object} models.ErrorResponse
// @Router /updateprofileposter [patch]
func (s *Server) UpdateProfilePoster(c *fiber.Ctx) error {
	return s.updatePicture(c, service.PosterPicture, "Profile banner updated successfully")
}

func (s *Server) updatePicture(c *fiber.Ctx, slot service.PictureSlot, message string) error {
	file, err := readUpload(c, "file", "image")
	if err != nil {
		return err
	}
	image, err := s.accounts.UpdatePicture(c.UserContext(), currentUser(c).ID, slot, file)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": message, "image": image})
}

// DeleteProfilePic handles DELETE /api/v1/deleteprofilepic
// @Summary Remove the profile picture
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,message=string}
// @Router /deleteprofilepic [delete]
func (s *Server) DeleteProfilePic(c *fiber.Ctx) error {
	if err := s.accounts.DeletePicture(c.UserContext(), currentUser(c).ID, service.ProfilePicture); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Profile picture deleted successfully"})
}

// DeleteProfilePoster handles DELETE /api/v1/deleteprofileposter
// @Summary Remove the profile banner
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,message=string}
// @Router /deleteprofileposter [delete]
func (s *Server) DeleteProfilePoster(c *fiber.Ctx) error {
	if err := s.accounts.DeletePicture(c.UserContext(), currentUser(c).ID, service.PosterPicture); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Profile banner deleted successfully"})
}

// UpdateEmail handles PATCH /api/v1/updateemail
// @Summary Change the email address
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{newEmail=string} true "New email"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 409 {object} models.ErrorResponse
// @Router /updateemail [patch]
func (s *Server) UpdateEmail(c *fiber.Ctx) error {
	var req struct {
		NewEmail string `json:"newEmail" form:"newEmail"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := s.accounts.UpdateEmail(c.UserContext(), currentUser(c).ID, req.NewEmail); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Email updated successfully"})
}

// UpdateUsername handles PATCH /api/v1/updateusername
// @Summary Change the username
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{newUsername=string} true "New username"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 409 {object} models.ErrorResponse
// @Router /updateusername [patch]
func (s *Server) UpdateUsername(c *fiber.Ctx) error {
	var req struct {
		NewUsername string `json:"newUsername" form:"newUsername"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := s.accounts.UpdateUsername(c.UserContext(), currentUser(c).ID, req.NewUsername); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Username updated successfully"})
}

// DeleteAccount handles DELETE /api/v1/deleteaccount
// @Summary Delete the current account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{password=string} true "Current password"
// @Success 202 {object} object{success=bool,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /deleteaccount [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password" form:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := s.accounts.DeleteAccount(c.UserContext(), currentUser(c).ID, req.Password); err != nil {
		return err
	}
	_ = s.accounts.Logout(c.UserContext(), currentClaims(c))
	s.clearSessionCookie(c)
	return models.Respond(c, fiber.StatusAccepted, fiber.Map{"message": "Your account has been deleted successfully"})
}
