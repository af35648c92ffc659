package authn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticValidator(t *testing.T) {
	v := NewStaticValidator()
	v.AddUser("jsmith", "hunter2", map[string]string{"email": "jsmith@example.com"})

	t.Run("valid credentials", func(t *testing.T) {
		p, err := v.Validate(context.Background(), Credential{Username: "jsmith", Password: "hunter2"})
		require.NoError(t, err)
		assert.Equal(t, "jsmith", p.ID)
		assert.Equal(t, "jsmith@example.com", p.Attributes["email"])
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := v.Validate(context.Background(), Credential{Username: "nobody", Password: "x"})
		var vf *ValidationFailure
		require.ErrorAs(t, err, &vf)
		assert.Equal(t, FailureAccountNotFound, vf.Kind)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := v.Validate(context.Background(), Credential{Username: "jsmith", Password: "wrong"})
		var vf *ValidationFailure
		require.ErrorAs(t, err, &vf)
		assert.Equal(t, FailureBadPassword, vf.Kind)
	})

	t.Run("locked account", func(t *testing.T) {
		v.LockUser("jsmith")
		_, err := v.Validate(context.Background(), Credential{Username: "jsmith", Password: "hunter2"})
		var vf *ValidationFailure
		require.ErrorAs(t, err, &vf)
		assert.Equal(t, FailureAccountLocked, vf.Kind)
	})
}

func TestPrincipalClone(t *testing.T) {
	p := Principal{ID: "jsmith", Attributes: map[string]string{"role": "staff"}}
	clone := p.Clone()
	clone.Attributes["role"] = "admin"

	assert.Equal(t, "staff", p.Attributes["role"])
}

func TestValidationFailureError(t *testing.T) {
	f := &ValidationFailure{Kind: FailureBadPassword, Message: "nope"}
	assert.Contains(t, f.Error(), "BadPassword")
	assert.Contains(t, f.Error(), "nope")

	bare := &ValidationFailure{Kind: FailureAccountLocked}
	assert.Contains(t, bare.Error(), "AccountLocked")
}
