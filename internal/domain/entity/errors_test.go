package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := NewActionError("ec2.RunInstances", ErrProvider, cause)

	assert.ErrorIs(t, err, ErrProvider)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "ec2.RunInstances: provider error: boom", err.Error())
}

func TestNotFoundf(t *testing.T) {
	err := NotFoundf("s3.DeleteBucket", "bucket %q does not exist", "logs")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `bucket "logs" does not exist`)

	var actionErr *ActionError
	assert.True(t, errors.As(err, &actionErr))
	assert.Equal(t, "s3.DeleteBucket", actionErr.Op)
}
