package shellbackend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dirdkv/dird/backend"
	"github.com/dirdkv/dird/backend/shellbackend"
	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entry"
)

func mailDesc() *entry.AttributeDescription { return &entry.AttributeDescription{Name: "mail"} }

func TestModifyParsesSuccessResult(t *testing.T) {
	script := `cat >/dev/null; printf 'RESULT\ncode: 0\ntext: ok\n\n'`
	b := shellbackend.New("sh", []string{"-c", script}, "", true)

	reply := b.Modify(&backend.Request{
		Name: "cn=Alice",
		ModList: entry.ModList{
			{Op: entry.Add, Desc: mailDesc(), Values: []string{"a@example.com"}},
		},
	})

	assert.Equal(t, direrr.Success, reply.Code)
	assert.Equal(t, "ok", reply.Text)
}

func TestModifyParsesFailureResult(t *testing.T) {
	script := `cat >/dev/null; printf 'RESULT\ncode: 3\ntext: constraint violation\n\n'`
	b := shellbackend.New("sh", []string{"-c", script}, "", true)

	reply := b.Modify(&backend.Request{Name: "cn=Alice"})

	assert.Equal(t, direrr.ConstraintViolation, reply.Code)
}

func TestModifyEmptyCommandIsUnwillingToPerform(t *testing.T) {
	b := shellbackend.New("", nil, "", true)
	reply := b.Modify(&backend.Request{Name: "cn=Alice"})
	assert.Equal(t, direrr.UnwillingToPerform, reply.Code)
}
