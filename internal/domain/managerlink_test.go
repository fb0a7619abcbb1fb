package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Registered(t *testing.T) {
	u := &User{ID: 1, Username: "edx", Email: "edx@example.com"}
	m := RegisteredManager(u)

	assert.True(t, m.Registered())
	assert.Equal(t, "edx@example.com", m.Email())
	require.NotNil(t, m.Username())
	assert.Equal(t, "edx", *m.Username())
}

func TestManager_Unregistered(t *testing.T) {
	m := UnregisteredManager("ghost@example.com")

	assert.False(t, m.Registered())
	assert.Nil(t, m.User())
	assert.Nil(t, m.Username())
	assert.Equal(t, "ghost@example.com", m.Email())
}

func TestLinkData_Validate_SelfManager(t *testing.T) {
	u := &User{ID: 7, Username: "user", Email: "user@example.com"}

	err := LinkData{User: u, Manager: RegisteredManager(u)}.Validate()
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	err = LinkData{User: u, Manager: UnregisteredManager("user@example.com")}.Validate()
	assert.ErrorAs(t, err, &verr)
}

func TestLinkData_Validate_OK(t *testing.T) {
	u := &User{ID: 7, Username: "user", Email: "user@example.com"}
	boss := &User{ID: 8, Username: "boss", Email: "boss@example.com"}

	assert.NoError(t, LinkData{User: u, Manager: RegisteredManager(boss)}.Validate())
	assert.NoError(t, LinkData{User: u, Manager: UnregisteredManager("boss@example.com")}.Validate())
}

func TestReportItem_Identifier(t *testing.T) {
	id, err := ReportItem{Email: "a@b.co"}.Identifier()
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", id)

	id, err = ReportItem{Username: "a"}.Identifier()
	require.NoError(t, err)
	assert.Equal(t, "a", id)

	// Email wins when both are present.
	id, err = ReportItem{Username: "a", Email: "a@b.co"}.Identifier()
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", id)

	_, err = ReportItem{}.Identifier()
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("a@b.co"))
	assert.False(t, IsEmail("username"))
	// Presence of '@' is the only signal.
	assert.True(t, IsEmail("@"))
}

func TestRegisterUserRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterUserRequest
		wantErr bool
	}{
		{"valid", RegisterUserRequest{Username: "user", Email: "user@example.com"}, false},
		{"missing username", RegisterUserRequest{Email: "user@example.com"}, true},
		{"missing email", RegisterUserRequest{Username: "user"}, true},
		{"email without at", RegisterUserRequest{Username: "user", Email: "nope"}, true},
		{"username with at", RegisterUserRequest{Username: "u@ser", Email: "user@example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPageRequest_Roundtrip(t *testing.T) {
	token := EncodePageToken(200)
	require.NotEmpty(t, token)

	p := PageRequest{MaxResults: 50, PageToken: token}
	assert.Equal(t, 200, p.Offset())
	assert.Equal(t, 50, p.Limit())

	assert.Equal(t, 0, PageRequest{PageToken: "not-base64!"}.Offset())
	assert.Equal(t, DefaultMaxResults, PageRequest{}.Limit())
	assert.Equal(t, MaxMaxResults, PageRequest{MaxResults: 10_000}.Limit())
}

func TestNextPageToken(t *testing.T) {
	assert.Empty(t, NextPageToken(0, 100, 50))
	assert.NotEmpty(t, NextPageToken(0, 100, 150))
	assert.Empty(t, NextPageToken(100, 100, 150))
}
