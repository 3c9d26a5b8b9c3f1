package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-03-01",
		" 2024-03-01 ",
		"2024-03-01T00:00:00Z",
		"2024-03-01T00:00",
		"2024-03-01 00:00:00",
		"03/01/2024",
		"Mar 1, 2024",
		"1 Mar 2024",
	} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDate(in)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s", got)
		})
	}

	_, err := ParseDate("next tuesday")
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()

	token, err := GenerateJWT("admin", "admin", secret, time.Hour, now)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, "admin", claims["role"])

	_, err = ValidateJWT(token, []byte("other-secret"))
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateJWT("admin", "admin", secret, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ValidateJWT(token, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseCertificateManifest(t *testing.T) {
	csv := "File,StudentName\n" +
		"certs/a.png,Alice\n" +
		"certs/b.png,\n" +
		"certs/c.png, Carol \n"

	rows, err := ParseCertificateManifest(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, ManifestRow{Line: 2, File: "certs/a.png", StudentName: "Alice"}, rows[0])
	assert.Equal(t, ManifestRow{Line: 3, File: "certs/b.png"}, rows[1])
	assert.Equal(t, "Carol", rows[2].StudentName)
}

func TestParseCertificateManifest_FileOnly(t *testing.T) {
	rows, err := ParseCertificateManifest(strings.NewReader("path\na.pdf\nb.pdf\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0].StudentName)
	assert.Equal(t, "b.pdf", rows[1].File)
}

func TestParseCertificateManifest_Errors(t *testing.T) {
	tests := []struct {
		name, csv, msg string
	}{
		{"empty", "", "header"},
		{"no file column", "name,email\nAlice,a@example.com\n", "file column"},
		{"blank file", "file,name\n,Alice\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCertificateManifest(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
