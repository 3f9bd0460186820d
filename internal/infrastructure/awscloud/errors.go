package awscloud

import (
	"context"
	"errors"
	"fmt"

	"cloud-agent/internal/domain/entity"

	"github.com/aws/smithy-go"
)

const (
	codeGroupDuplicate = "InvalidGroup.Duplicate"
)

var errorKinds = map[string]error{
	"InvalidGroup.NotFound":      entity.ErrNotFound,
	"InvalidInstanceID.NotFound": entity.ErrNotFound,
	"NoSuchBucket":               entity.ErrNotFound,
	"NoSuchKey":                  entity.ErrNotFound,
	"NotFound":                   entity.ErrNotFound,

	codeGroupDuplicate:        entity.ErrConflict,
	"BucketAlreadyExists":     entity.ErrConflict,
	"BucketAlreadyOwnedByYou": entity.ErrConflict,

	"InvalidParameterValue":       entity.ErrInvalidInput,
	"InvalidParameterCombination": entity.ErrInvalidInput,
	"InvalidBucketName":           entity.ErrInvalidInput,
	"InvalidAMIID.Malformed":      entity.ErrInvalidInput,
	"InvalidKeyPair.NotFound":     entity.ErrInvalidInput,
	"InvalidLocationConstraint":   entity.ErrInvalidInput,
}

// classify maps an SDK error onto the domain error taxonomy. Context errors
// pass through untouched so callers can still tell a cancelled request.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	kind := entity.ErrProvider
	if k, ok := errorKinds[apiErrorCode(err)]; ok {
		kind = k
	}
	return entity.NewActionError(op, kind, err)
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
