package services

import (
	"context"
	"testing"
	"time"

	"github.com/kendall-kelly/otica-api/models"
	"github.com/kendall-kelly/otica-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db, cfg := setupTest(t)
	return NewAuthService(db, newTokenService(t, cfg)), db
}

func countLiveSessions(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.RefreshSession{}).Where("user_id = ? AND revoked_at IS NULL", userID).Count(&n).Error)
	return n
}

// expireRotation moves the rotation of sessionID out of the grace window
func expireRotation(t *testing.T, db *gorm.DB, sessionID string) {
	t.Helper()
	require.NoError(t, db.Model(&models.RefreshSession{}).Where("id = ?", sessionID).
		Update("revoked_at", time.Now().Add(-RotationGrace-time.Minute)).Error)
}

func TestLoginSuccess(t *testing.T) {
	svc, db := setupAuthService(t)
	user := testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123")

	session, err := svc.Login(context.Background(), "  Cliente@Teste.com ", "cliente123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
	assert.NotEmpty(t, session.AccessToken.Token)
	assert.NotEmpty(t, session.RefreshToken.Token)

	var stored models.RefreshSession
	require.NoError(t, db.First(&stored, "id = ?", session.RefreshToken.ID).Error)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Nil(t, stored.RevokedAt)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, db := setupAuthService(t)
	testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123")

	_, wrongPassword := svc.Login(context.Background(), "cliente@teste.com", "nope")
	_, unknownEmail := svc.Login(context.Background(), "ghost@teste.com", "cliente123")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword, unknownEmail)
	assert.Equal(t, ErrInvalidCredentials, wrongPassword)
}

func TestRegisterCreatesCustomer(t *testing.T) {
	svc, db := setupAuthService(t)

	session, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Maria Silva",
		Email:    "Maria@Example.com",
		Password: "segredo123",
		Phone:    "(11) 98888-7777",
	})
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", session.User.Email)
	assert.Equal(t, models.RoleCustomer, session.User.Role)
	require.NotNil(t, session.User.Customer)
	assert.Equal(t, "(11) 98888-7777", session.User.Customer.Phone)

	var customers int64
	db.Model(&models.Customer{}).Where("user_id = ?", session.User.ID).Count(&customers)
	assert.Equal(t, int64(1), customers)
	assert.Equal(t, int64(1), countLiveSessions(t, db, session.User.ID))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, db := setupAuthService(t)
	testutil.CreateCustomerUser(t, db, "maria@example.com", "x")

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Maria", Email: "MARIA@example.com", Password: "segredo123"})
	assert.Equal(t, ErrEmailExists, err)

	var users int64
	db.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(1), users)
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, db := setupAuthService(t)
	user := testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123")
	ctx := context.Background()

	first, err := svc.Login(ctx, user.Email, "cliente123")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken.Token)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken.ID, second.RefreshToken.ID)

	var old models.RefreshSession
	require.NoError(t, db.First(&old, "id = ?", first.RefreshToken.ID).Error)
	require.NotNil(t, old.RevokedAt)
	require.NotNil(t, old.ReplacedByID)
	assert.Equal(t, second.RefreshToken.ID, *old.ReplacedByID)
	assert.Equal(t, int64(1), countLiveSessions(t, db, user.ID))
}

func TestRefreshReuseRevokesAllSessions(t *testing.T) {
	svc, db := setupAuthService(t)
	user := testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123")
	ctx := context.Background()

	first, err := svc.Login(ctx, user.Email, "cliente123")
	require.NoError(t, err)
	_, err = svc.Login(ctx, user.Email, "cliente123")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, first.RefreshToken.Token)
	require.NoError(t, err)
	require.Equal(t, int64(2), countLiveSessions(t, db, user.ID))
	expireRotation(t, db, first.RefreshToken.ID)

	_, err = svc.Refresh(ctx, first.RefreshToken.Token)
	assert.Equal(t, ErrInvalidRefresh, err)
	assert.Equal(t, int64(0), countLiveSessions(t, db, user.ID), "reuse must revoke every session")
}

func TestRefreshWithinRotationGrace(t *testing.T) {
	svc, db := setupAuthService(t)
	user := testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123")
	ctx := context.Background()

	first, err := svc.Login(ctx, user.Email, "cliente123")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken.Token)
	require.NoError(t, err)
	third, err := svc.Refresh(ctx, first.RefreshToken.Token)
	require.NoError(t, err)
	assert.NotEqual(t, second.RefreshToken.ID, third.RefreshToken.ID)
	assert.Equal(t, int64(2), countLiveSessions(t, db, user.ID))

	var old models.RefreshSession
	require.NoError(t, db.First(&old, "id = ?", first.RefreshToken.ID).Error)
	require.NotNil(t, old.ReplacedByID)
	assert.Equal(t, second.RefreshToken.ID, *old.ReplacedByID)

	// both the successor and the sibling keep working
	_, err = svc.Refresh(ctx, second.RefreshToken.Token)
	assert.NoError(t, err)
	_, err = svc.Refresh(ctx, third.RefreshToken.Token)
	assert.NoError(t, err)
}

func TestRefreshWithinGraceNeedsLiveSuccessor(t *testing.T) {
	svc, db := setupAuthService(t)
	user := testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123")
	ctx := context.Background()

	first, err := svc.Login(ctx, user.Email, "cliente123")
	require.NoError(t, err)
	second, err := svc.Refresh(ctx, first.RefreshToken.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, second.RefreshToken.Token))

	_, err = svc.Refresh(ctx, first.RefreshToken.Token)
	assert.Equal(t, ErrInvalidRefresh, err)
	assert.Equal(t, int64(0), countLiveSessions(t, db, user.ID))
}

func TestRefreshRejectsInvalidTokens(t *testing.T) {
	svc, db := setupAuthService(t)
	user := testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123")
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "")
	assert.Equal(t, ErrInvalidRefresh, err)

	_, err = svc.Refresh(ctx, "garbage")
	assert.Equal(t, ErrInvalidRefresh, err)

	orphan, err := svc.Tokens().IssueRefreshToken(user.ID)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, orphan.Token)
	assert.Equal(t, ErrInvalidRefresh, err, "token without a session is rejected")
}

func TestMeLoadsProfiles(t *testing.T) {
	svc, db := setupAuthService(t)
	user := testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123")
	sphere := -1.25
	require.NoError(t, db.Create(&models.Prescription{CustomerID: user.Customer.ID, RightEyeSphere: &sphere}).Error)

	me, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, me.Customer)
	assert.Nil(t, me.Admin)
	require.Len(t, me.Customer.Prescriptions, 1)
	assert.Equal(t, -1.25, *me.Customer.Prescriptions[0].RightEyeSphere)

	_, err = svc.Me(context.Background(), "missing")
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, appErr.Kind)
}

func TestChangePassword(t *testing.T) {
	svc, db := setupAuthService(t)
	user := testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123")
	ctx := context.Background()

	old, err := svc.Login(ctx, user.Email, "cliente123")
	require.NoError(t, err)

	_, err = svc.ChangePassword(ctx, user.ID, "wrong", "novaSenha1")
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, appErr.Kind)

	session, err := svc.ChangePassword(ctx, user.ID, "cliente123", "novaSenha1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken.Token)

	_, err = svc.Refresh(ctx, old.RefreshToken.Token)
	assert.Error(t, err, "sessions from before the change are revoked")

	_, err = svc.Login(ctx, user.Email, "cliente123")
	assert.Equal(t, ErrInvalidCredentials, err)
	_, err = svc.Login(ctx, user.Email, "novaSenha1")
	assert.NoError(t, err)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, db := setupAuthService(t)
	user := testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123")
	ctx := context.Background()

	session, err := svc.Login(ctx, user.Email, "cliente123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.RefreshToken.Token))
	assert.Equal(t, int64(0), countLiveSessions(t, db, user.ID))

	assert.NoError(t, svc.Logout(ctx, ""))
	assert.NoError(t, svc.Logout(ctx, "garbage"))
}
