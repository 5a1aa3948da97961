package security

import (
	"testing"
	"time"

	"github.com/alchemorsel/mealplan/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// AuthServiceTestSuite provides a test suite for AuthService
type AuthServiceTestSuite struct {
	suite.Suite
	config      *config.Config
	authService *AuthService
	now         time.Time
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.config = &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret-key-for-testing-only-32-bytes",
			Issuer:    "mealplan-test",
			TokenTTL:  time.Hour,
		},
	}
	suite.now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	suite.authService = NewAuthService(suite.config, zap.NewNop())
	suite.authService.now = func() time.Time { return suite.now }
}

func (suite *AuthServiceTestSuite) TestTokenRoundTrip() {
	suite.Run("GenerateAccessToken_ValidInputs_ShouldValidate", func() {
		// Arrange
		userID := uuid.New()

		// Act
		token, err := suite.authService.GenerateAccessToken(userID, "cook@example.com")
		suite.Require().NoError(err)
		claims, err := suite.authService.ValidateToken(token)

		// Assert
		suite.Require().NoError(err)
		owner, err := claims.Owner()
		suite.Require().NoError(err)
		suite.Equal(userID, owner)
		suite.Equal("cook@example.com", claims.Email)
		suite.Equal(AccessToken, claims.TokenType)
		suite.Equal("mealplan-test", claims.Issuer)
	})

	suite.Run("ValidateToken_Expired_ShouldFail", func() {
		token, err := suite.authService.GenerateAccessToken(uuid.New(), "")
		suite.Require().NoError(err)

		suite.now = suite.now.Add(2 * time.Hour)
		defer func() { suite.now = suite.now.Add(-2 * time.Hour) }()

		_, err = suite.authService.ValidateToken(token)
		suite.ErrorIs(err, ErrInvalidToken)
	})
}

func (suite *AuthServiceTestSuite) TestRejectedTokens() {
	userID := uuid.New()

	suite.Run("WrongSecret_ShouldFail", func() {
		other := &config.Config{Auth: config.AuthConfig{JWTSecret: "another-secret", Issuer: "mealplan-test"}}
		token, err := NewAuthService(other, zap.NewNop()).GenerateAccessToken(userID, "")
		suite.Require().NoError(err)

		_, err = suite.authService.ValidateToken(token)
		suite.ErrorIs(err, ErrInvalidToken)
	})

	suite.Run("WrongIssuer_ShouldFail", func() {
		other := &config.Config{Auth: config.AuthConfig{JWTSecret: suite.config.Auth.JWTSecret, Issuer: "someone-else"}}
		token, err := NewAuthService(other, zap.NewNop()).GenerateAccessToken(userID, "")
		suite.Require().NoError(err)

		_, err = suite.authService.ValidateToken(token)
		suite.ErrorIs(err, ErrInvalidToken)
	})

	suite.Run("UnsignedToken_ShouldFail", func() {
		claims := &Claims{UserID: userID.String(), TokenType: AccessToken, RegisteredClaims: jwt.RegisteredClaims{Issuer: "mealplan-test"}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		suite.Require().NoError(err)

		_, err = suite.authService.ValidateToken(token)
		suite.ErrorIs(err, ErrInvalidToken)
	})

	suite.Run("Garbage_ShouldFail", func() {
		_, err := suite.authService.ValidateToken("invalid.jwt.token")
		suite.ErrorIs(err, ErrInvalidToken)
	})

	suite.Run("NonUUIDSubject_ShouldFailOwner", func() {
		claims := &Claims{UserID: "not-a-uuid"}
		_, err := claims.Owner()
		suite.ErrorIs(err, ErrInvalidToken)
	})
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
