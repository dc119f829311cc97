package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFileKind(t *testing.T) {
	cases := map[string]FileKind{
		"contrato.PDF":                          FileDocument,
		"bi.docx":                               FileDocument,
		"https://cdn.example/foto.jpg?token=ab": FileImage,
		"foto.webp":                             FileImage,
		"audio.mp3":                             FileUnknown,
		"":                                      FileUnknown,
	}
	for name, want := range cases {
		assert.Equal(t, want, DetectFileKind(name), name)
	}
}

func TestRoleError(t *testing.T) {
	assert.Equal(t, "only admin or secretary may access this resource", RoleError("admin", "secretary"))
}
