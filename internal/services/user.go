package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

	validate = validator.New()
)

type UserInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// UserUpdate leaves nil fields untouched.
type UserUpdate struct {
	Username *string
	Email    *string
	Role     *string
	Password *string
}

type UserRow struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func validateUsername(errs fieldErrors, username string) {
	switch {
	case username == "":
		errs.add("username", "This field is required.")
	case len(username) > 150:
		errs.add("username", "Ensure this field has at most 150 characters.")
	case !usernamePattern.MatchString(username):
		errs.add("username", "Enter a valid username: letters, digits and @/./+/-/_ only.")
	}
}

func validateEmail(errs fieldErrors, email string) {
	if email != "" && validate.Var(email, "email") != nil {
		errs.add("email", "Enter a valid email address.")
	}
}

func validatePassword(errs fieldErrors, password string) {
	if len(password) < auth.MinPasswordLength {
		errs.add("password", "This password is too short. It must contain at least 8 characters.")
	}
}

func validateRole(errs fieldErrors, role string) {
	if !models.Role(role).Valid() {
		errs.add("role", "Select a valid choice. "+role+" is not one of the available choices.")
	}
}

func usernameTaken(conn *gorm.DB, username string, exceptID uint) (bool, error) {
	var count int64

	query := conn.Model(&models.User{}).Where("username = ?", username)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// CreateUser hashes the password and stores the user. An empty role means viewer.
func CreateUser(conn *gorm.DB, in UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = string(models.RoleViewer)
	}

	errs := fieldErrors{}
	validateUsername(errs, in.Username)
	validateEmail(errs, in.Email)
	validatePassword(errs, in.Password)
	validateRole(errs, in.Role)
	if err := errs.err(); err != nil {
		return nil, err
	}

	taken, err := usernameTaken(conn, in.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, NewValidationError("username", "A user with that username already exists.")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.Role(in.Role),
	}

	if err := conn.Create(&user).Error; err != nil {
		return nil, translate(err, "user")
	}

	return &user, nil
}

// RegisterUser is self-service sign-up: the role is always viewer.
func RegisterUser(conn *gorm.DB, in UserInput) (*models.User, error) {
	in.Role = string(models.RoleViewer)
	return CreateUser(conn, in)
}

// AdminCreateUser lets an administrator pick the role.
func AdminCreateUser(conn *gorm.DB, actor *access.Actor, in UserInput) (*models.User, error) {
	if !access.CanManageUsers(actor) {
		return nil, permissionDenied("only administrators can create users")
	}
	return CreateUser(conn, in)
}

func Authenticate(conn *gorm.DB, username, password string) (*models.User, error) {
	var user models.User

	err := conn.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

func GetUser(conn *gorm.DB, id uint) (*models.User, error) {
	var user models.User

	if err := conn.First(&user, id).Error; err != nil {
		return nil, translate(err, "user")
	}

	return &user, nil
}

func GetUserByUsername(conn *gorm.DB, username string) (*models.User, error) {
	var user models.User

	if err := conn.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}

	return &user, nil
}

func ListUsers(conn *gorm.DB) ([]models.User, error) {
	var users []models.User

	if err := conn.Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func ListUserRows(conn *gorm.DB) ([]UserRow, error) {
	rows := []UserRow{}

	err := conn.Model(&models.User{}).
		Select("id, username, email").
		Order("username ASC").
		Scan(&rows).Error

	return rows, err
}

// UpdateUser is the administrator edit: username, email, role and password.
func UpdateUser(conn *gorm.DB, actor *access.Actor, id uint, in UserUpdate) (*models.User, error) {
	if !access.CanManageUsers(actor) {
		return nil, permissionDenied("only administrators can edit users")
	}

	user, err := GetUser(conn, id)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	updates := map[string]interface{}{}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		validateUsername(errs, username)
		updates["username"] = username
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		validateEmail(errs, email)
		updates["email"] = email
	}
	if in.Role != nil {
		validateRole(errs, *in.Role)
		updates["role"] = models.Role(*in.Role)
	}
	if in.Password != nil && *in.Password != "" {
		validatePassword(errs, *in.Password)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if username, ok := updates["username"].(string); ok {
		taken, err := usernameTaken(conn, username, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, NewValidationError("username", "A user with that username already exists.")
		}
	}

	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := conn.Model(user).Updates(updates).Error; err != nil {
		return nil, translate(err, "user")
	}

	return GetUser(conn, user.ID)
}

// SetRole is the narrow form of UpdateUser used by the role screens.
func SetRole(conn *gorm.DB, actor *access.Actor, id uint, role string) (*models.User, error) {
	return UpdateUser(conn, actor, id, UserUpdate{Role: &role})
}

type ProfileUpdate struct {
	Email           string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile lets any user change their own email and password.
func UpdateProfile(conn *gorm.DB, actor *access.Actor, in ProfileUpdate) (*models.User, error) {
	if !access.IsAuthenticated(actor) {
		return nil, permissionDenied("authentication required")
	}

	user, err := GetUser(conn, actor.ID)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	updates := map[string]interface{}{}

	if in.Email != "" {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		validateEmail(errs, email)
		updates["email"] = email
	}

	if in.NewPassword != "" {
		switch {
		case in.CurrentPassword == "":
			errs.add("current_password", "Current password is required to change password.")
		case !auth.CheckPassword(user.PasswordHash, in.CurrentPassword):
			errs.add("current_password", "Current password is incorrect.")
		}
		validatePassword(errs, in.NewPassword)
	}

	if err := errs.err(); err != nil {
		return nil, err
	}

	if in.NewPassword != "" {
		hash, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return nil, NewValidationError("non_field_errors", "No valid fields to update.")
	}

	if err := conn.Model(user).Updates(updates).Error; err != nil {
		return nil, translate(err, "user")
	}

	return GetUser(conn, user.ID)
}

// DeleteUser removes the user. Projects, tasks and comments that referenced
// the user survive with the reference cleared; memberships are dropped.
func DeleteUser(conn *gorm.DB, actor *access.Actor, id uint) error {
	if !access.CanManageUsers(actor) && (actor == nil || actor.ID != id) {
		return permissionDenied("only administrators can delete other users")
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return translate(err, "user")
		}

		nullify := []struct {
			model  interface{}
			column string
		}{
			{&models.Project{}, "creator_id"},
			{&models.Task{}, "assigned_to_id"},
			{&models.Task{}, "created_by_id"},
			{&models.Comment{}, "author_id"},
		}

		for _, ref := range nullify {
			if err := tx.Model(ref.model).Where(ref.column+" = ?", id).Update(ref.column, nil).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&user).Error; err != nil {
			return translate(err, "user")
		}

		return nil
	})
}
