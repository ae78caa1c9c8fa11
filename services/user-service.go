package services

import (
	"context"
	"html"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Ekram2004/task-manager-saas-collaborative/logging"
	"github.com/Ekram2004/task-manager-saas-collaborative/models"
	"github.com/Ekram2004/task-manager-saas-collaborative/utils"
)

type UserService struct {
	UserCollection *mongo.Collection
	JWTService     *JWTService
}

func NewUserService(userCollection *mongo.Collection, jwtService *JWTService) *UserService {
	return &UserService{
		UserCollection: userCollection,
		JWTService:     jwtService,
	}
}

// Register creates a new user with no organization and issues an auth token.
func (s *UserService) Register(ctx context.Context, name, email, password string) (models.User, string, *models.AppError) {
	if err := utils.ValidatePassword(password); err != nil {
		return models.User{}, "", models.NewAppError(models.ErrValidation, err.Error())
	}

	name = html.EscapeString(strings.TrimSpace(name))
	email = strings.TrimSpace(email)

	var existing models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&existing); err == nil {
		return models.User{}, "", models.NewAppError(models.ErrValidation, "User already exists")
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, "", models.InternalError("Failed to register user", err)
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	}

	if _, err := s.UserCollection.InsertOne(ctx, user); err != nil {
		// The unique email index catches the race where two registrations
		// pass the existence check at the same time.
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, "", models.NewAppError(models.ErrValidation, "User already exists")
		}
		return models.User{}, "", models.InternalError("Failed to register user", err)
	}

	token, err := s.JWTService.GenerateAuthToken(user.ID.Hex(), "")
	if err != nil {
		return models.User{}, "", models.InternalError("Failed to generate token", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: Registered user %s", user.Email)
	return user, token, nil
}

// Login verifies credentials and issues a fresh auth token. Unknown email and
// wrong password return the same message on purpose.
func (s *UserService) Login(ctx context.Context, email, password string) (models.User, string, *models.AppError) {
	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return models.User{}, "", models.NewAppError(models.ErrValidation, "Invalid credentials")
	}

	if !utils.CheckPassword(user.Password, password) {
		return models.User{}, "", models.NewAppError(models.ErrValidation, "Invalid credentials")
	}

	organizationID := ""
	if user.Organization != nil {
		organizationID = user.Organization.Hex()
	}

	token, err := s.JWTService.GenerateAuthToken(user.ID.Hex(), organizationID)
	if err != nil {
		return models.User{}, "", models.InternalError("Failed to generate token", err)
	}

	return user, token, nil
}

// GetUserByID loads a user by hex id. Used by the auth middleware to rebuild
// the requester from the database on every request.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	userID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, models.NewAppError(models.ErrNotFound, "User not found")
	}

	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return models.User{}, models.NewAppError(models.ErrNotFound, "User not found")
	}

	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return models.User{}, models.NewAppError(models.ErrNotFound, "User with that email not found")
	}
	return user, nil
}
