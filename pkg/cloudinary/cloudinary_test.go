package cloudinary

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPublicID(t *testing.T) {
	require.Equal(t, "student-stu-001", PublicID("stu-001"))
	require.Equal(t, "student-a-b-c", PublicID(" a/b c "))
	require.Equal(t, "student-unknown", PublicID("../"))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
	require.False(t, Config{CloudName: "demo", APIKey: "key"}.Enabled())
}

func TestNewDefaultsFolder(t *testing.T) {
	store, err := New(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", Folder: "/"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "mikoro/students", store.folder)
}
