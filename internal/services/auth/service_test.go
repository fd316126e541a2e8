package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/guessword/internal/dependencies/mocks"
	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.clock, s.random, Config{Secret: "test-secret"})
	s.ctx = context.Background()
}

// CreateGuestPlayer tests

func (s *ServiceSuite) TestCreateGuestPlayerSucceeds() {
	session, err := s.service.CreateGuestPlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("Alice", session.Player.DisplayName)
	s.True(session.Player.IsGuest)
	s.Equal("p_id-1", string(session.PlayerID))
	s.Equal(s.clock.Now().Add(24*time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestCreateGuestPlayerDefaultsDisplayName() {
	session, err := s.service.CreateGuestPlayer(s.ctx, "   ")
	s.Require().NoError(err)
	s.Equal("Guest", session.Player.DisplayName)
}

func (s *ServiceSuite) TestCreateGuestPlayerPersistsPlayer() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "Alice")

	player, err := s.storage.GetPlayer(s.ctx, session.PlayerID)
	s.Require().NoError(err)
	s.Equal("Alice", player.DisplayName)
}

func (s *ServiceSuite) TestCreateGuestPlayerSessionIsValid() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "Alice")

	validated, err := s.service.ValidateSession(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(session.PlayerID, validated.PlayerID)
	s.True(session.ExpiresAt.Equal(validated.ExpiresAt))
}

// RegisterPlayer tests

func (s *ServiceSuite) TestRegisterPlayerSucceeds() {
	session, err := s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("Alice", session.Player.DisplayName)
	s.False(session.Player.IsGuest)
}

func (s *ServiceSuite) TestRegisterPlayerDefaultsDisplayNameToUsername() {
	session, err := s.service.RegisterPlayer(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)
	s.Equal("alice", session.Player.DisplayName)
}

func (s *ServiceSuite) TestRegisterPlayerRequiresCredentials() {
	_, err := s.service.RegisterPlayer(s.ctx, " ", "password123", "Alice")
	s.ErrorIs(err, ErrMissingCredentials)

	_, err = s.service.RegisterPlayer(s.ctx, "alice", "", "Alice")
	s.ErrorIs(err, ErrMissingCredentials)
}

func (s *ServiceSuite) TestRegisterPlayerPersistsRegistration() {
	_, _ = s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")

	rp, err := s.storage.GetRegisteredPlayerByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", rp.Username)
	s.NotEmpty(rp.PasswordHash)
	s.NotEqual("password123", rp.PasswordHash)
}

func (s *ServiceSuite) TestRegisterPlayerFailsIfUsernameExists() {
	_, _ = s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")

	_, err := s.service.RegisterPlayer(s.ctx, "alice", "different", "Alice2")
	s.ErrorIs(err, ErrUsernameExists)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	registered, _ := s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")

	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(registered.PlayerID, session.PlayerID)
	s.Equal("Alice", session.Player.DisplayName)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, _ = s.service.RegisterPlayer(s.ctx, "alice", "password123", "Alice")

	_, err := s.service.Login(s.ctx, "alice", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// ValidateSession tests

func (s *ServiceSuite) TestValidateSessionSucceeds() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "Alice")

	validated, err := s.service.ValidateSession(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(session.Token, validated.Token)
	s.Equal("Alice", validated.Player.DisplayName)
}

func (s *ServiceSuite) TestValidateSessionFailsWithInvalidToken() {
	_, err := s.service.ValidateSession(s.ctx, "invalid_token")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionFailsWithOtherSecret() {
	other := New(s.storage, s.clock, s.random, Config{Secret: "other-secret"})
	session, err := other.CreateGuestPlayer(s.ctx, "Mallory")
	s.Require().NoError(err)

	_, err = s.service.ValidateSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionRejectsUnsignedToken() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "Alice")

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   string(session.PlayerID),
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.ValidateSession(s.ctx, unsigned)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionFailsWhenExpired() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "Alice")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionFailsWhenPlayerGone() {
	// Signed correctly, but the player was never saved
	session, err := s.service.createSession(&model.Player{ID: "p_ghost", DisplayName: "Ghost", IsGuest: true})
	s.Require().NoError(err)

	_, err = s.service.ValidateSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestSessionDurationIsConfigurable() {
	service := New(s.storage, s.clock, s.random, Config{Secret: "test-secret", SessionDuration: time.Hour})
	session, err := service.CreateGuestPlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	s.clock.Advance(30 * time.Minute)
	_, err = service.ValidateSession(s.ctx, session.Token)
	s.NoError(err)

	s.clock.Advance(31 * time.Minute)
	_, err = service.ValidateSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

// InvalidateSession tests

func (s *ServiceSuite) TestInvalidateSessionRemovesSession() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "Alice")

	s.service.InvalidateSession(session.Token)

	_, err := s.service.ValidateSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSessionLeavesOtherSessions() {
	first, _ := s.service.CreateGuestPlayer(s.ctx, "Alice")
	other, _ := s.service.CreateGuestPlayer(s.ctx, "Bob")
	s.service.InvalidateSession(first.Token)

	_, err := s.service.ValidateSession(s.ctx, other.Token)
	s.NoError(err)
}

func (s *ServiceSuite) TestInvalidateSessionNoopForUnknownToken() {
	s.service.InvalidateSession("unknown_token")
	s.Equal(0, s.service.RevokedCount())
}

// GetPlayer tests

func (s *ServiceSuite) TestGetPlayerSucceeds() {
	session, _ := s.service.CreateGuestPlayer(s.ctx, "Alice")

	player, err := s.service.GetPlayer(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal("Alice", player.DisplayName)
}

func (s *ServiceSuite) TestGetPlayerFailsWithInvalidToken() {
	_, err := s.service.GetPlayer(s.ctx, "invalid_token")
	s.ErrorIs(err, ErrInvalidSession)
}

// CleanExpiredSessions tests

func (s *ServiceSuite) TestCleanExpiredSessionsDropsExpiredRevocations() {
	session1, _ := s.service.CreateGuestPlayer(s.ctx, "Alice")
	s.service.InvalidateSession(session1.Token)

	s.clock.Advance(25 * time.Hour)

	session2, _ := s.service.CreateGuestPlayer(s.ctx, "Bob")
	s.service.InvalidateSession(session2.Token)
	s.Equal(2, s.service.RevokedCount())

	s.service.CleanExpiredSessions()
	s.Equal(1, s.service.RevokedCount())

	_, err := s.service.ValidateSession(s.ctx, session1.Token)
	s.ErrorIs(err, ErrInvalidSession)
	_, err = s.service.ValidateSession(s.ctx, session2.Token)
	s.ErrorIs(err, ErrInvalidSession)
}
