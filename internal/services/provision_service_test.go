package services

import (
	"testing"
	"time"

	"awp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProfileFieldErrors(t *testing.T) {
	svc := NewProvisionService()

	err := svc.validateProfile(&ProfileInput{})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "first_name")
	assert.Contains(t, validationErr.Fields, "last_name")
	assert.Contains(t, validationErr.Fields, "email")
	assert.Contains(t, validationErr.Fields, "password")
	// 用户名可不填
	assert.NotContains(t, validationErr.Fields, "username")
}

func TestValidateProfileBadEmailAndShortPassword(t *testing.T) {
	svc := NewProvisionService()

	input := validProfile("student1", "not-an-email")
	input.Password = "123"
	input.PasswordConfirm = "123"

	err := svc.validateProfile(input)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "email")
	assert.Contains(t, validationErr.Fields, "password")
}

func TestValidateProfilePasswordMismatch(t *testing.T) {
	svc := NewProvisionService()

	input := validProfile("student1", "student1@example.com")
	input.PasswordConfirm = "different"

	err := svc.validateProfile(input)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "password_confirm")
	assert.Len(t, validationErr.Fields, 1)
}

func TestValidateProfileAccepts(t *testing.T) {
	svc := NewProvisionService()
	assert.NoError(t, svc.validateProfile(validProfile("student1", "student1@example.com")))
}

func TestCreateAccountDerivesUsername(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	code := &models.InviteCode{
		Token:           "AAAA-BBBB-CCCC-DDDD",
		IssuerID:        owner.ID,
		Role:            models.InviteCodeRoleStudent,
		AccommodationID: accommodation.ID,
		Status:          models.InviteCodeStatusUnused,
		ExpiresAt:       time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(code).Error)

	svc := NewProvisionService()

	input := validProfile("", "wei.chen@example.com")
	user, err := svc.CreateAccountForCode(db, code, input)
	require.NoError(t, err)
	assert.Equal(t, "weichen", user.Username)

	// 同名的第二个人拿到数字后缀
	input2 := validProfile("", "wei.chen2@example.com")
	user2, err := svc.CreateAccountForCode(db, code, input2)
	require.NoError(t, err)
	assert.Equal(t, "weichen2", user2.Username)
}

func TestCreateAccountManagerRequiresUsername(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	code := &models.InviteCode{
		Token:           "AAAA-BBBB-CCCC-DDDD",
		IssuerID:        owner.ID,
		Role:            models.InviteCodeRoleManager,
		AccommodationID: accommodation.ID,
		Status:          models.InviteCodeStatusUnused,
		ExpiresAt:       time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(code).Error)

	svc := NewProvisionService()

	// 管理员开通不做用户名推导，必须显式指定
	_, err := svc.CreateAccountForCode(db, code, validProfile("", "manager1@example.com"))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "username")

	var count int64
	db.Model(&models.User{}).Where("email = ?", "manager1@example.com").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateAccountUnknownRole(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	code := &models.InviteCode{
		Token:           "AAAA-BBBB-CCCC-DDDD",
		IssuerID:        owner.ID,
		Role:            "tenant",
		AccommodationID: accommodation.ID,
		Status:          models.InviteCodeStatusUnused,
		ExpiresAt:       time.Now().Add(time.Hour),
	}

	svc := NewProvisionService()
	_, err := svc.CreateAccountForCode(db, code, validProfile("student1", "student1@example.com"))
	assert.Error(t, err)
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "weichen", sanitizeUsername("Wei Chen"))
	assert.Equal(t, "annelouise", sanitizeUsername("Anne-Louise"))
	assert.Equal(t, "user42", sanitizeUsername("User 42!"))
	assert.Equal(t, "", sanitizeUsername("汉字"))
}

func TestCreateAccountStoresPasswordHashed(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	code := &models.InviteCode{
		Token:           "AAAA-BBBB-CCCC-DDDD",
		IssuerID:        owner.ID,
		Role:            models.InviteCodeRoleStudent,
		AccommodationID: accommodation.ID,
		Status:          models.InviteCodeStatusUnused,
		ExpiresAt:       time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(code).Error)

	svc := NewProvisionService()
	user, err := svc.CreateAccountForCode(db, code, validProfile("student1", "student1@example.com"))
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}
