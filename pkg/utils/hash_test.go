package utils_test

import (
	"testing"

	"github.com/pseudomuto/roadwork/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	// echo -n "" | sha256sum | xxd -r -p | base64
	require.Equal(t, "h1:47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", utils.Hash(""))

	a := utils.Hash("CREATE TABLE users (id INT);")
	b := utils.Hash("CREATE TABLE users (id INT);")
	c := utils.Hash("CREATE TABLE posts (id INT);")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.True(t, utils.IsHash(a))
}

func TestIsHash(t *testing.T) {
	require.True(t, utils.IsHash(utils.Hash("x")))
	require.False(t, utils.IsHash("47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="))
	require.False(t, utils.IsHash("h1:not-base64!"))
	require.False(t, utils.IsHash("h1:YWJj"))
}
