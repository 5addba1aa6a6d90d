package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

func rateLimited(after time.Duration) *model.TrackerError {
	return &model.TrackerError{
		Kind:       model.TrackerErrRateLimited,
		StatusCode: 429,
		RetryAfter: after,
		Op:         "create issue",
	}
}

func TestDo_SuccessFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	calls := 0
	original := &model.TrackerError{Kind: model.TrackerErrForbidden, StatusCode: 403, Op: "validate"}
	err := Do(context.Background(), func() error {
		calls++
		return original
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	var te *model.TrackerError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, model.TrackerErrForbidden, te.Kind)
}

func TestDo_PlainErrorFailsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return errors.New("not a tracker error")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetryableRecovers(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return rateLimited(time.Millisecond)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return rateLimited(time.Millisecond)
	})
	require.Error(t, err)
	assert.Equal(t, maxRetries+1, calls)
}

func TestDo_ContextCancelStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, func() error {
		calls++
		cancel()
		return rateLimited(time.Second)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestHintedBackOff_PrefersRetryAfter(t *testing.T) {
	exp := &backoffStub{next: 5 * time.Second}
	var last *model.TrackerError
	bo := &hintedBackOff{base: exp, last: &last}

	assert.Equal(t, 5*time.Second, bo.NextBackOff(), "no hint, exponential schedule applies")

	last = rateLimited(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, bo.NextBackOff())

	last = rateLimited(0)
	assert.Equal(t, 5*time.Second, bo.NextBackOff(), "zero hint falls back to the schedule")
}

type backoffStub struct{ next time.Duration }

func (b *backoffStub) NextBackOff() time.Duration { return b.next }
func (b *backoffStub) Reset()                     {}
